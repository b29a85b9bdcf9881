package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes UI components to a writer. When the writer is not a
// terminal, result boxes are rendered as plain text.
type Printer struct {
	out    io.Writer
	width  int
	styled bool
}

// NewPrinter creates a new Printer that writes to the given writer.
// If w is nil, os.Stdout is used.
func NewPrinter(w io.Writer) *Printer {
	styled := false
	if w == nil {
		w = os.Stdout
		styled = IsTerminal()
	}
	return &Printer{
		out:    w,
		width:  GetTerminalWidth(),
		styled: styled,
	}
}

// SetStyled forces styled or plain output.
func (p *Printer) SetStyled(styled bool) *Printer {
	p.styled = styled
	return p
}

// Width returns the current terminal width used by this printer
func (p *Printer) Width() int {
	return p.width
}

// Println writes content with a newline
func (p *Printer) Println(content string) {
	_, _ = fmt.Fprintln(p.out, content)
}

// Newline prints an empty line
func (p *Printer) Newline() {
	_, _ = fmt.Fprintln(p.out)
}

// PrintHeader prints a command header box. Plain output skips it.
func (p *Printer) PrintHeader(title, command string, params map[string]string) {
	if !p.styled {
		return
	}
	p.Println(NewHeader(title, command, params).SetWidth(p.width).Render())
}

// PrintResult prints a result box.
func (p *Printer) PrintResult(r *Result) {
	if !p.styled {
		_, _ = fmt.Fprint(p.out, r.PlainText())
		return
	}
	p.Println(r.SetWidth(p.width).Render())
}

// PrintError prints a failure box with troubleshooting tips derived from err.
func (p *Printer) PrintError(title string, err error) {
	p.PrintResult(NewErrorResult(title, err))
}
