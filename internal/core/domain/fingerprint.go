package domain

import (
	"encoding/json"
	"sort"
	"strconv"

	"go.trai.ch/zerr"
)

// Fingerprint is a canonical summary of an input's structural shape. It is
// deliberately insensitive to scalar values so that differently-valued but
// structurally identical inputs collapse to the same cache key.
type Fingerprint struct {
	// Kind is the logical input kind, typically the task type.
	Kind string

	// Shape is the canonical token sequence describing the structure.
	Shape []string
}

// FingerprintJSON derives the structural fingerprint of a JSON document.
// Object keys are recorded sorted, array lengths are recorded, and scalar
// values are reduced to their JSON type.
func FingerprintJSON(kind string, raw []byte) (Fingerprint, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return Fingerprint{}, zerr.Wrap(err, "failed to fingerprint payload")
	}

	fp := Fingerprint{Kind: kind}
	fp.Shape = appendShape(fp.Shape, v)
	return fp, nil
}

func appendShape(shape []string, v any) []string {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		shape = append(shape, "{")
		for _, k := range keys {
			shape = append(shape, k+":")
			shape = appendShape(shape, t[k])
		}
		shape = append(shape, "}")
	case []any:
		shape = append(shape, "["+strconv.Itoa(len(t)))
		for _, e := range t {
			shape = appendShape(shape, e)
		}
		shape = append(shape, "]")
	case string:
		shape = append(shape, "s")
	case float64:
		shape = append(shape, "n")
	case bool:
		shape = append(shape, "b")
	case nil:
		shape = append(shape, "z")
	}
	return shape
}
