package ports

// AuditLog is an external append-only, independently-timestamped log used as a
// secondary tamper-evidence signal. Not all deployments maintain one; its
// absence is a warning, never fatal.
//
//go:generate go run go.uber.org/mock/mockgen -source=audit.go -destination=mocks/mock_audit.go -package=mocks
type AuditLog interface {
	// Append records a finalized run identifier.
	Append(runID string) error

	// Contains reports whether the run identifier appears in the log.
	Contains(runID string) (bool, error)
}
