// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ui prints the human-readable progress narrative. Styling is bound
// to the destination writer, so output to files and pipes stays plain.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes styled narrative lines to one writer.
type Printer struct {
	w      io.Writer
	header lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	warn   lipgloss.Style
	faint  lipgloss.Style
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:      w,
		header: r.NewStyle().Bold(true),
		pass:   r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		fail:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		warn:   r.NewStyle().Foreground(lipgloss.Color("3")),
		faint:  r.NewStyle().Faint(true),
	}
}

// Writer returns the underlying writer for unstyled output.
func (p *Printer) Writer() io.Writer { return p.w }

// Header prints "=== title ===".
func (p *Printer) Header(format string, args ...any) {
	title := fmt.Sprintf(format, args...)
	fmt.Fprintln(p.w, p.header.Render("=== "+title+" ==="))
}

// Printf prints an unstyled line fragment.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Println prints an unstyled line.
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.w, args...)
}

// Field prints an indented "label: value" line.
func (p *Printer) Field(label string, value any) {
	fmt.Fprintf(p.w, "%s %v\n", p.faint.Render(label+":"), value)
}

// Pass prints an indented PASSED mark.
func (p *Printer) Pass() {
	fmt.Fprintln(p.w, "  "+p.pass.Render("PASSED"))
}

// Fail prints an indented "FAILED: reason" line.
func (p *Printer) Fail(format string, args ...any) {
	fmt.Fprintln(p.w, "  "+p.fail.Render("FAILED:")+" "+fmt.Sprintf(format, args...))
}

// Warn prints a "Warning: ..." line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.warn.Render("Warning: "+fmt.Sprintf(format, args...)))
}

// Error prints an "Error: ..." line.
func (p *Printer) Error(format string, args ...any) {
	fmt.Fprintln(p.w, p.fail.Render("Error: "+fmt.Sprintf(format, args...)))
}
