package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/custodia-labs/seek/internal/core/domain"
)

// printer writes session events as text lines or as NDJSON.
type printer struct {
	out  io.Writer
	json bool
	enc  *json.Encoder

	path    *color.Color
	lineNo  *color.Color
	failure *color.Color
	done    *color.Color
}

// jsonEvent is one NDJSON line.
type jsonEvent struct {
	Type  domain.EventKind `json:"type"`
	Run   int              `json:"run,omitempty"`
	Event domain.Event     `json:"event"`
}

func newPrinter(out io.Writer, asJSON bool) *printer {
	p := &printer{
		out:     out,
		json:    asJSON,
		enc:     json.NewEncoder(out),
		path:    color.New(color.FgMagenta),
		lineNo:  color.New(color.FgGreen),
		failure: color.New(color.FgRed),
		done:    color.New(color.Bold),
	}
	colour := isTerminal(out)
	for _, c := range []*color.Color{p.path, p.lineNo, p.failure, p.done} {
		if colour {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Event prints ev. run is the watch run number, 0 for a one-shot search.
func (p *printer) Event(run int, ev domain.Event) error {
	if p.json {
		return p.enc.Encode(jsonEvent{Type: ev.Kind(), Run: run, Event: ev})
	}

	var err error
	switch e := ev.(type) {
	case domain.MatchEvent:
		if e.HasLine() {
			_, err = fmt.Fprintf(p.out, "%s:%s: %s\n", p.path.Sprint(e.Path), p.lineNo.Sprint(e.Line), e.Excerpt)
		} else {
			_, err = fmt.Fprintf(p.out, "MATCH: %s\n", p.path.Sprint(e.Path))
		}
	case domain.ErrorEvent:
		_, err = fmt.Fprintln(p.out, p.failure.Sprintf("ERROR: Cannot read %s: %s", e.Path, e.Message))
	case domain.SessionSummary:
		_, err = fmt.Fprintln(p.out, p.done.Sprint(summaryLine(e)))
	}
	return err
}

// Notice prints an informational line in text mode only.
func (p *printer) Notice(format string, args ...any) error {
	if p.json {
		return nil
	}
	_, err := fmt.Fprintf(p.out, format+"\n", args...)
	return err
}

func summaryLine(s domain.SessionSummary) string {
	line := fmt.Sprintf("Search complete. Found %d matches.", s.MatchCount)
	if !s.Completed {
		line = fmt.Sprintf("Search cancelled. Found %d matches.", s.MatchCount)
	}
	if s.ErrorCount > 0 {
		line += fmt.Sprintf(" %d files could not be read.", s.ErrorCount)
	}
	return line
}
