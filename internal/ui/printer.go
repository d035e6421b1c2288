package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes command output either as key=value lines or as styled boxes.
type Printer struct {
	out    io.Writer
	styled bool
	width  int
}

// NewPrinter creates a Printer for w. Styled output is only used when
// styled is set; callers decide that from terminal detection and --plain.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer, styled bool) *Printer {
	if w == nil {
		w = os.Stdout
	}
	return &Printer{out: w, styled: styled, width: GetTerminalWidth()}
}

// Styled reports whether the printer renders boxes
func (p *Printer) Styled() bool {
	return p.styled
}

// SetWidth overrides the detected terminal width
func (p *Printer) SetWidth(width int) *Printer {
	p.width = width
	return p
}

// Status prints device fields, with gauges when styled
func (p *Printer) Status(title string, fields [][2]string, bars ...Bar) {
	if !p.styled {
		_, _ = fmt.Fprint(p.out, PlainFields(fields))
		return
	}
	r := NewStatusResult(title, fields).SetWidth(p.width)
	for _, b := range bars {
		r.AddBar(b)
	}
	_, _ = fmt.Fprintln(p.out, r.Render())
}

// Success prints the outcome of a command
func (p *Printer) Success(title string, fields [][2]string) {
	if !p.styled {
		_, _ = fmt.Fprint(p.out, PlainFields(fields))
		return
	}
	_, _ = fmt.Fprintln(p.out, NewSuccessResult(title, fields).SetWidth(p.width).Render())
}

// Error prints err, as a failure box with troubleshooting tips when styled
func (p *Printer) Error(title string, err error, troubleshooting []string) {
	if !p.styled {
		_, _ = fmt.Fprintf(p.out, "Error: %v\n", err)
		return
	}
	_, _ = fmt.Fprintln(p.out, NewFailureResult(title, err, troubleshooting).SetWidth(p.width).Render())
}
