package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nanalan/nom/compiler"
)

// reporter renders diagnostics for a terminal. Colors are dropped
// automatically when the writer is not a TTY.
type reporter struct {
	w io.Writer

	banner  lipgloss.Style
	detail  lipgloss.Style
	gutter  lipgloss.Style
	code    lipgloss.Style
	caret   lipgloss.Style
	help    lipgloss.Style
	heading lipgloss.Style
	ok      lipgloss.Style
}

func newReporter(w io.Writer) *reporter {
	return newReporterWith(w, lipgloss.NewRenderer(w))
}

func newReporterWith(w io.Writer, r *lipgloss.Renderer) *reporter {
	return &reporter{
		w:       w,
		banner:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("1")),
		detail:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")).Background(lipgloss.Color("15")),
		gutter:  r.NewStyle().Foreground(lipgloss.Color("4")),
		code:    r.NewStyle().Foreground(lipgloss.Color("6")).TabWidth(lipgloss.NoTabConversion),
		caret:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		help:    r.NewStyle().Foreground(lipgloss.Color("4")),
		heading: r.NewStyle().Bold(true),
		ok:      r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// diagnostic prints err against the source it came from.
func (r *reporter) diagnostic(src string, err error) {
	if offset, ok := compiler.Offset(err); ok {
		r.syntax(src, offset)
		return
	}

	var structErr *compiler.StructuralError
	if errors.As(err, &structErr) {
		r.structural(structErr.Type, structErr.Message, structErr.Help)
		return
	}

	var readErr *readError
	if errors.As(err, &readErr) {
		r.readFile(readErr.Path)
		return
	}

	fmt.Fprintf(r.w, "  %v\n", err)
}

// syntax prints the positional error banner, up to three lines of context
// ending at the offending line, and a caret under the offending column.
func (r *reporter) syntax(src string, offset int) {
	line, col := compiler.LineCol(src, offset)
	lines := strings.Split(src, "\n")
	width := len(strconv.Itoa(len(lines)))

	fmt.Fprintf(r.w, "  %s%s\n\n",
		r.banner.Render(" SYNTAX ERROR!! "),
		r.detail.Render(fmt.Sprintf(" Unexpected %s on line %d ", describe(compiler.CharAt(src, offset)), line)),
	)

	for n := line - 3; n < line; n++ {
		if n < 0 || n >= len(lines) {
			continue
		}
		num := fmt.Sprintf("%*d", width, n+1)
		fmt.Fprintf(r.w, "  %s %s\n", r.gutter.Render(num), r.code.Render(lines[n]))
	}

	fmt.Fprintf(r.w, "  %s%s\n\n", strings.Repeat(" ", width+1+col), r.caret.Render("^"))
}

func (r *reporter) structural(typ, message, help string) {
	fmt.Fprintf(r.w, "  %s%s\n\n",
		r.banner.Render(" "+typ+"!! "),
		r.detail.Render(" "+message+" "),
	)
	if help == "" {
		return
	}
	for _, line := range strings.Split(help, "\n") {
		fmt.Fprintf(r.w, "  %s\n", r.help.Render(line))
	}
	fmt.Fprintln(r.w)
}

func (r *reporter) readFile(path string) {
	fmt.Fprintf(r.w, "  %s%s\n\n",
		r.banner.Render(" READFILE ERROR!! "),
		r.detail.Render(" "+path+" "),
	)
}

// file prints the heading that precedes a file's diagnostics in check output.
func (r *reporter) file(path string) {
	fmt.Fprintf(r.w, "%s\n", r.heading.Render(path))
}

func (r *reporter) summary(files, failed int) {
	noun := "files"
	if files == 1 {
		noun = "file"
	}
	if failed == 0 {
		fmt.Fprintf(r.w, "%s\n", r.ok.Render(fmt.Sprintf("%d %s ok", files, noun)))
		return
	}
	fmt.Fprintf(r.w, "%s\n", r.caret.Render(fmt.Sprintf("%d of %d %s failed", failed, files, noun)))
}

// describe names a character for the error banner.
func describe(c string) string {
	switch c {
	case "":
		return "end of input"
	case "\n":
		return "↵"
	}
	return c
}

// readError is a source file that could not be read.
type readError struct {
	Path string
	Err  error
}

func (e *readError) Error() string {
	return fmt.Sprintf("cannot read %s: %v", e.Path, e.Err)
}

func (e *readError) Unwrap() error {
	return e.Err
}
