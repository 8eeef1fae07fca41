package diag

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	errorLabel   = color.New(color.FgRed, color.Bold)
	warningLabel = color.New(color.FgYellow, color.Bold)
	infoLabel    = color.New(color.FgCyan)
	noteLabel    = color.New(color.Faint)
)

// Print renders every diagnostic in the bag as one human-readable line
// (plus indented note lines), optionally colorized.
func Print(w io.Writer, bag *Bag, colorize bool) error {
	if bag == nil {
		return nil
	}
	for _, d := range bag.Items() {
		label := d.Severity.String()
		if colorize {
			switch d.Severity {
			case SevError:
				label = errorLabel.Sprint(label)
			case SevWarning:
				label = warningLabel.Sprint(label)
			default:
				label = infoLabel.Sprint(label)
			}
		}
		var err error
		if d.Primary.IsZero() {
			_, err = fmt.Fprintf(w, "%s %s: %s\n", label, d.Code.ID(), d.Message)
		} else {
			_, err = fmt.Fprintf(w, "%s %s: %s: %s\n", label, d.Code.ID(), d.Primary, d.Message)
		}
		if err != nil {
			return err
		}
		for _, n := range d.Notes {
			line := fmt.Sprintf("  note: %s", n.Msg)
			if !n.Loc.IsZero() {
				line = fmt.Sprintf("  note: %s: %s", n.Loc, n.Msg)
			}
			if colorize {
				line = noteLabel.Sprint(line)
			}
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
