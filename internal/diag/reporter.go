package diag

// Reporter is the minimal contract for receiving diagnostics from backend
// phases. Implementations: BagReporter (collects into a Bag), NopReporter.
type Reporter interface {
	Report(code Code, sev Severity, primary Loc, msg string, notes []Note)
}

// ReportError reports a SevError diagnostic.
func ReportError(r Reporter, code Code, primary Loc, msg string) {
	if r == nil {
		return
	}
	r.Report(code, SevError, primary, msg, nil)
}

// ReportWarning reports a SevWarning diagnostic.
func ReportWarning(r Reporter, code Code, primary Loc, msg string) {
	if r == nil {
		return
	}
	r.Report(code, SevWarning, primary, msg, nil)
}

// BagReporter writes every reported diagnostic into Bag.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary Loc, msg string, notes []Note) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Message: msg,
		Primary: primary, Notes: notes,
	})
}

// NopReporter drops everything.
type NopReporter struct{}

func (NopReporter) Report(Code, Severity, Loc, string, []Note) {}
