package diag

// Severity ranks how serious a diagnostic is. The backend gates its phases
// on error severity; everything below is advisory and never blocks an
// artifact.
type Severity uint8

const (
	// SevInfo carries context that does not affect the build outcome.
	SevInfo Severity = iota
	// SevWarning flags something suspect in the model or template that the
	// backend can still work around.
	SevWarning
	// SevError marks a defect that stops the pipeline between phases.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
