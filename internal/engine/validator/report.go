package validator

import (
	"fmt"
	"strings"
	"sync"

	"go.trai.ch/weft/internal/core/domain"
)

// ViolationClass classifies an integrity violation.
type ViolationClass string

const (
	// ViolationCorruption marks a stored object whose recomputed digest does
	// not match its declared identifier.
	ViolationCorruption ViolationClass = "Corruption"
	// ViolationDanglingReference marks a reference that resolves to no stored
	// object.
	ViolationDanglingReference ViolationClass = "DanglingReference"
	// ViolationMissingDependency marks a provenance dependency that was never
	// stored.
	ViolationMissingDependency ViolationClass = "MissingDependency"
	// ViolationCycle marks a cyclic dependency relation.
	ViolationCycle ViolationClass = "Cycle"
	// ViolationWarning marks advisory findings, e.g. a missing external audit
	// record. Never fatal.
	ViolationWarning ViolationClass = "Warning"
)

// Fatal reports whether the class fails the scan as a whole.
func (c ViolationClass) Fatal() bool {
	return c != ViolationWarning
}

// Violation is one itemized finding, addressed by artifact.
type Violation struct {
	Class     ViolationClass      `json:"violation_class"`
	Artifacts []domain.ArtifactID `json:"artifact_ids,omitzero"`
	Detail    string              `json:"detail"`
}

// Report is the structured outcome of a validation scan. Violations are
// accumulated, never short-circuited; the caller derives the process outcome
// from Fatal.
type Report struct {
	mu           sync.Mutex
	ChecksRun    int         `json:"checks_run"`
	ChecksPassed int         `json:"checks_passed"`
	Violations   []Violation `json:"violations"`
}

func (r *Report) pass() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ChecksRun++
	r.ChecksPassed++
}

func (r *Report) fail(v Violation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ChecksRun++
	r.Violations = append(r.Violations, v)
}

// Fatal reports whether any violation is of a fatal class.
func (r *Report) Fatal() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.Violations {
		if v.Class.Fatal() {
			return true
		}
	}
	return false
}

// Summary renders the concise pass/fail line plus the itemized violations.
func (r *Report) Summary() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "%d/%d checks passed", r.ChecksPassed, r.ChecksRun)
	if len(r.Violations) == 0 {
		b.WriteString(", no violations")
		return b.String()
	}

	fmt.Fprintf(&b, ", %d violation(s)", len(r.Violations))
	for _, v := range r.Violations {
		b.WriteString("\n  ")
		b.WriteString(string(v.Class))
		if len(v.Artifacts) > 0 {
			ids := make([]string, len(v.Artifacts))
			for i, id := range v.Artifacts {
				ids[i] = id.Short()
			}
			b.WriteString(" [" + strings.Join(ids, ", ") + "]")
		}
		b.WriteString(": " + v.Detail)
	}
	return b.String()
}
