package cli

import (
	"fmt"
	"golang.org/x/term"
	"io"
	"os"
)

const (
	styleBold  = "\x1b[1m"
	styleDim   = "\x1b[2m"
	styleReset = "\x1b[0m"
)

// Printer writes user-visible output. Headings and emphasis are styled only when the output is a terminal.
type Printer struct {
	out    io.Writer
	styled bool
}

// NewPrinter creates a [Printer] writing to out, or to stderr if out is nil.
func NewPrinter(out io.Writer) *Printer {
	p := new(Printer)
	p.Redirect(out)
	return p
}

// Redirect changes where the [Printer] writes, or to stderr if writer is nil.
func (p *Printer) Redirect(writer io.Writer) {
	if writer == nil {
		writer = os.Stderr
	}
	p.out = writer
	p.styled = isTerminal(writer)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Styled reports whether output is styled with terminal escape sequences.
func (p *Printer) Styled() bool {
	return p.styled
}

// Write allows the [Printer] to be used as an [io.Writer].
func (p *Printer) Write(data []byte) (int, error) {
	return p.out.Write(data)
}

func (p *Printer) Print(msg ...any) {
	_, _ = fmt.Fprint(p.out, msg...)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) Println(msg ...any) {
	_, _ = fmt.Fprintln(p.out, msg...)
}

// Heading prints a line of text in bold.
func (p *Printer) Heading(text string) {
	p.Println(p.style(styleBold, text))
}

// Dim returns text styled to be less prominent.
func (p *Printer) Dim(text string) string {
	return p.style(styleDim, text)
}

func (p *Printer) style(style, text string) string {
	if !p.styled {
		return text
	}
	return style + text + styleReset
}
