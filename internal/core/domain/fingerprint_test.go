package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/internal/core/domain"
)

func TestFingerprintJSON_ValueInsensitive(t *testing.T) {
	t.Parallel()

	a, err := domain.FingerprintJSON("analysis", []byte(`{"n": 1, "s": "hello", "list": [1, 2, 3]}`))
	require.NoError(t, err)

	b, err := domain.FingerprintJSON("analysis", []byte(`{"n": 999, "s": "goodbye", "list": [7, 8, 9]}`))
	require.NoError(t, err)

	assert.Equal(t, a, b, "structurally identical inputs must fingerprint identically")
}

func TestFingerprintJSON_KeyOrderInsensitive(t *testing.T) {
	t.Parallel()

	a, err := domain.FingerprintJSON("analysis", []byte(`{"x": 1, "y": "a"}`))
	require.NoError(t, err)

	b, err := domain.FingerprintJSON("analysis", []byte(`{"y": "b", "x": 2}`))
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestFingerprintJSON_ShapeSensitive(t *testing.T) {
	t.Parallel()

	base, err := domain.FingerprintJSON("analysis", []byte(`{"list": [1, 2]}`))
	require.NoError(t, err)

	t.Run("array length changes shape", func(t *testing.T) {
		t.Parallel()
		other, err := domain.FingerprintJSON("analysis", []byte(`{"list": [1, 2, 3]}`))
		require.NoError(t, err)
		assert.NotEqual(t, base.Shape, other.Shape)
	})

	t.Run("scalar type changes shape", func(t *testing.T) {
		t.Parallel()
		other, err := domain.FingerprintJSON("analysis", []byte(`{"list": ["a", "b"]}`))
		require.NoError(t, err)
		assert.NotEqual(t, base.Shape, other.Shape)
	})

	t.Run("extra key changes shape", func(t *testing.T) {
		t.Parallel()
		other, err := domain.FingerprintJSON("analysis", []byte(`{"list": [1, 2], "extra": null}`))
		require.NoError(t, err)
		assert.NotEqual(t, base.Shape, other.Shape)
	})
}

func TestFingerprintJSON_Nesting(t *testing.T) {
	t.Parallel()

	fp, err := domain.FingerprintJSON("k", []byte(`{"a": {"b": [true, null]}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"{", "a:", "{", "b:", "[2", "b", "z", "]", "}", "}"}, fp.Shape)
}

func TestFingerprintJSON_Invalid(t *testing.T) {
	t.Parallel()

	_, err := domain.FingerprintJSON("k", []byte(`{not json`))
	require.Error(t, err)
}
