package commands_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/weft/cmd/weft/commands"
	"go.trai.ch/weft/internal/app"
	"go.trai.ch/weft/internal/build"
	"go.trai.ch/weft/internal/core/domain"
	"go.trai.ch/weft/internal/engine/validator"
)

type mockApp struct {
	runFunc    func(ctx context.Context) (*app.RunResult, error)
	verifyFunc func(ctx context.Context, runID string, verbose bool) (*validator.Report, error)
}

func (m *mockApp) RunPipeline(ctx context.Context) (*app.RunResult, error) {
	if m.runFunc != nil {
		return m.runFunc(ctx)
	}
	return &app.RunResult{RunID: "run-1"}, nil
}

func (m *mockApp) Verify(ctx context.Context, runID string, verbose bool) (*validator.Report, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, runID, verbose)
	}
	return &validator.Report{}, nil
}

func execute(t *testing.T, mock *mockApp, args ...string) (string, error) {
	t.Helper()

	cli := commands.New(mock)
	cli.SetArgs(args)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)

	err := cli.Execute(context.Background())
	return buf.String(), err
}

func TestCommands_Run(t *testing.T) {
	t.Run("prints run summary", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(context.Context) (*app.RunResult, error) {
				return &app.RunResult{
					RunID:      "run-1",
					Moderation: "mod-artifact",
					TrailID:    "trail-artifact",
					Artifacts:  12,
				}, nil
			},
		}

		out, err := execute(t, mock, "run")
		require.NoError(t, err)
		assert.Contains(t, out, "run run-1 finished")
		assert.Contains(t, out, "mod-artifact")
		assert.Contains(t, out, "trail-artifact")
		assert.Contains(t, out, "12")
	})

	t.Run("returns error on pipeline failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(context.Context) (*app.RunResult, error) {
				return nil, errors.New("simulated error")
			},
		}

		_, err := execute(t, mock, "run")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("rejects positional arguments", func(t *testing.T) {
		_, err := execute(t, &mockApp{}, "run", "extra")
		require.Error(t, err)
	})
}

func TestCommands_Verify(t *testing.T) {
	t.Run("passes run id and verbose flag", func(t *testing.T) {
		var gotRunID string
		var gotVerbose bool
		mock := &mockApp{
			verifyFunc: func(_ context.Context, runID string, verbose bool) (*validator.Report, error) {
				gotRunID = runID
				gotVerbose = verbose
				return &validator.Report{ChecksRun: 3, ChecksPassed: 3}, nil
			},
		}

		out, err := execute(t, mock, "verify", "run-42", "--verbose")
		require.NoError(t, err)
		assert.Equal(t, "run-42", gotRunID)
		assert.True(t, gotVerbose)
		assert.Contains(t, out, "3/3 checks passed")
	})

	t.Run("run id is optional", func(t *testing.T) {
		var gotRunID string
		mock := &mockApp{
			verifyFunc: func(_ context.Context, runID string, _ bool) (*validator.Report, error) {
				gotRunID = runID
				return &validator.Report{}, nil
			},
		}

		_, err := execute(t, mock, "verify")
		require.NoError(t, err)
		assert.Empty(t, gotRunID)
	})

	t.Run("prints summary and propagates fatal error", func(t *testing.T) {
		mock := &mockApp{
			verifyFunc: func(context.Context, string, bool) (*validator.Report, error) {
				return &validator.Report{
					ChecksRun: 2,
					Violations: []validator.Violation{{
						Class:  validator.ViolationCorruption,
						Detail: "stored bytes do not match declared digest",
					}},
				}, domain.ErrIntegrityCheckFailed
			},
		}

		out, err := execute(t, mock, "verify", "run-1")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrIntegrityCheckFailed)
		assert.Contains(t, out, "Corruption")
	})
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "weft version "+build.Version)
}
