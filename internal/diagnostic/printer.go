package diagnostic

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"
)

// Output formats understood by Printer.
const (
	FormatPretty = "pretty"
	FormatShort  = "short"
	FormatJSON   = "json"
)

// Printer renders diagnostics for humans or tools.
type Printer struct {
	w      io.Writer
	format string
	// baseDir makes file paths relative when set.
	baseDir string

	errorStyle *color.Color
	codeStyle  *color.Color
	locStyle   *color.Color
	noteStyle  *color.Color
}

// NewPrinter creates a printer. Colors apply to the pretty format only.
func NewPrinter(w io.Writer, format string, useColor bool, baseDir string) (*Printer, error) {
	switch format {
	case FormatPretty, FormatShort, FormatJSON:
	default:
		return nil, fmt.Errorf("unknown diagnostic format %q", format)
	}

	p := &Printer{
		w:          w,
		format:     format,
		baseDir:    baseDir,
		errorStyle: color.New(color.FgRed, color.Bold),
		codeStyle:  color.New(color.FgYellow),
		locStyle:   color.New(color.Bold),
		noteStyle:  color.New(color.FgCyan),
	}

	for _, c := range []*color.Color{p.errorStyle, p.codeStyle, p.locStyle, p.noteStyle} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p, nil
}

// Print writes all diagnostics in order.
func (p *Printer) Print(diags []Diagnostic) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(diags)
	case FormatShort:
		for _, d := range diags {
			if _, err := fmt.Fprintf(p.w, "%s: %s: %s\n", p.location(d), d.Code, d.Message()); err != nil {
				return err
			}
		}

		return nil
	default:
		for _, d := range diags {
			if err := p.printPretty(d); err != nil {
				return err
			}
		}

		return nil
	}
}

func (p *Printer) printPretty(d Diagnostic) error {
	_, err := fmt.Fprintf(p.w, "%s: %s%s: %s\n",
		p.locStyle.Sprint(p.location(d)),
		p.errorStyle.Sprint(d.Severity),
		p.codeStyle.Sprintf("[%s]", d.Code),
		d.Message())
	if err != nil {
		return err
	}

	for _, s := range d.Suggestions {
		if _, err := fmt.Fprintf(p.w, "    %s %s\n", p.noteStyle.Sprint("= help:"), s); err != nil {
			return err
		}
	}

	return nil
}

type jsonDiagnostic struct {
	Code        string   `json:"code"`
	Kind        string   `json:"kind"`
	Title       string   `json:"title"`
	Severity    string   `json:"severity"`
	File        string   `json:"file,omitempty"`
	Line        uint32   `json:"line,omitempty"`
	Column      uint32   `json:"column,omitempty"`
	Message     string   `json:"message"`
	Args        []string `json:"args"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (p *Printer) printJSON(diags []Diagnostic) error {
	out := make([]jsonDiagnostic, 0, len(diags))

	for _, d := range diags {
		desc, _ := Describe(d.Kind())

		out = append(out, jsonDiagnostic{
			Code:        d.Code,
			Kind:        d.Kind().String(),
			Title:       desc.Title,
			Severity:    d.Severity.String(),
			File:        p.relative(d.Location.File),
			Line:        d.Location.Line,
			Column:      d.Location.Column,
			Message:     d.Message(),
			Args:        d.Args(),
			Suggestions: d.Suggestions,
		})
	}

	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

func (p *Printer) location(d Diagnostic) string {
	loc := d.Location
	loc.File = p.relative(loc.File)

	return loc.String()
}

func (p *Printer) relative(file string) string {
	if p.baseDir == "" || file == "" || !filepath.IsAbs(file) {
		return file
	}

	if rel, err := filepath.Rel(p.baseDir, file); err == nil {
		return rel
	}

	return file
}
