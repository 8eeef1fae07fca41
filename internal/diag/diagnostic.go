package diag

// Loc points at the origin of a backend diagnostic. The backend runs on a
// resolved model, so there are no source spans here: the best available
// location is an artifact or input path plus, when known, the qualified name
// of the symbol involved.
type Loc struct {
	Path   string
	Symbol string
}

func (l Loc) String() string {
	switch {
	case l.Path != "" && l.Symbol != "":
		return l.Path + ": " + l.Symbol
	case l.Path != "":
		return l.Path
	case l.Symbol != "":
		return l.Symbol
	}
	return "<unknown>"
}

// IsZero reports whether the location carries no information.
func (l Loc) IsZero() bool {
	return l.Path == "" && l.Symbol == ""
}

type Note struct {
	Loc Loc
	Msg string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  Loc
	Notes    []Note
}

func New(sev Severity, code Code, primary Loc, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary Loc, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(loc Loc, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Loc: loc, Msg: msg})
	return d
}
