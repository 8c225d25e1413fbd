package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/funvibe/surf/internal/diagnostics"
)

const (
	colorError = "#ff3333"
	colorWarn  = "#fffb7a"
	colorHelp  = "#2eff5f"
	colorInfo  = "#6ea6ff"
	colorTrace = "#8a8a8a"
)

// ColorEnabled reports whether diagnostics written to f should be coloured.
func ColorEnabled(f *os.File) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Reporter renders diagnostics for people.
type Reporter struct {
	out *termenv.Output
}

func NewReporter(w io.Writer, color bool) *Reporter {
	profile := termenv.Ascii
	if color {
		profile = termenv.TrueColor
	}
	return &Reporter{out: termenv.NewOutput(w, termenv.WithProfile(profile))}
}

func (r *Reporter) Error(d *diagnostics.DiagnosticError) {
	r.diagnostic("[ERROR] ", colorError, d)
}

func (r *Reporter) Warning(d *diagnostics.DiagnosticError) {
	r.diagnostic("[WARN]  ", colorWarn, d)
}

func (r *Reporter) Info(msg string) {
	fmt.Fprintf(r.out, "%s%s\n", r.prefix("[INFO]  ", colorInfo), msg)
}

func (r *Reporter) diagnostic(prefix, color string, d *diagnostics.DiagnosticError) {
	msg := d.Message
	if d.Err != nil {
		msg += ": " + d.Err.Error()
	}
	fmt.Fprintf(r.out, "%s%s %s\n", r.prefix(prefix, color), r.faint("["+string(d.Code)+"]"), msg)

	if d.Trace != "" {
		fmt.Fprintf(r.out, "        %s\n", r.faint("at "+d.Trace))
	}
	if len(d.Chain) > 0 {
		fmt.Fprintf(r.out, "        %s\n", r.faint("import chain:"))
		for _, line := range diagnostics.ChainTrace(d.Chain) {
			fmt.Fprintf(r.out, "        %s\n", r.faint(line))
		}
	}
	for _, hint := range d.Hints {
		fmt.Fprintf(r.out, "%s%s\n", r.prefix("[HELP]  ", colorHelp), hint)
	}
}

func (r *Reporter) prefix(text, color string) string {
	return r.out.String(text).Foreground(r.out.Color(color)).Bold().String()
}

func (r *Reporter) faint(text string) string {
	return r.out.String(text).Foreground(r.out.Color(colorTrace)).String()
}
