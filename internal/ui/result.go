package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/opensprinkler/internal/sprinkler"
	"github.com/muurk/opensprinkler/internal/transport"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Detail is one key/value line in a result box. Details render in the
// order they were added.
type Detail struct {
	Key   string
	Value string
}

// Result represents a result box (success, failure, or warning)
type Result struct {
	Type            ResultType // Success, failure, or warning
	Title           string     // e.g., "Station 3 started"
	Details         []Detail   // Key-value details to display
	Error           error      // Error (for failure results)
	Troubleshooting []string   // Troubleshooting tips (for failure results)
	Width           int        // Terminal width
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string) *Result {
	return &Result{
		Type:  ResultSuccess,
		Title: title,
		Width: GetTerminalWidth(),
	}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{
		Type:            ResultFailure,
		Title:           title,
		Error:           err,
		Troubleshooting: troubleshooting,
		Width:           GetTerminalWidth(),
	}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string) *Result {
	return &Result{
		Type:  ResultWarning,
		Title: title,
		Width: GetTerminalWidth(),
	}
}

// NewErrorResult creates a failure box for err, filling troubleshooting
// tips from the transport or command error it wraps.
func NewErrorResult(title string, err error) *Result {
	return NewFailureResult(title, err, Troubleshoot(err))
}

// NewCommandResult creates a success or failure box from the return code
// of a write operation.
func NewCommandResult(title string, res *sprinkler.CommandResult) *Result {
	if res.IsSuccess() {
		return NewSuccessResult(title)
	}
	return NewErrorResult(title, res.Err())
}

// Troubleshoot returns user-facing tips for err.
func Troubleshoot(err error) []string {
	if hints := transport.TroubleshootingHint(err); hints != nil {
		return hints
	}

	var cmdErr *sprinkler.CommandError
	if !errors.As(err, &cmdErr) {
		return nil
	}
	switch cmdErr.Code {
	case sprinkler.ReturnUnauthorized:
		return []string{
			"Check OPENSPRINKLER_PASSWORD (plain text or its md5 hash)",
			"The factory default password is 'opendoor'",
		}
	case sprinkler.ReturnMismatch:
		return []string{"The new password and its confirmation differ"}
	case sprinkler.ReturnDataMissing, sprinkler.ReturnDataFormatError:
		return []string{"The controller rejected the parameters; check the firmware version"}
	case sprinkler.ReturnOutOfRange:
		return []string{"A value is outside the range the controller accepts"}
	case sprinkler.ReturnNotPermitted:
		return []string{"The controller refuses this while a program is running or it is disabled"}
	}
	return nil
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail adds a detail key-value pair
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Detail{Key: key, Value: value})
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	switch r.Type {
	case ResultFailure:
		return r.renderFailure()
	case ResultWarning:
		return r.renderBox(WarningColor, lipgloss.NewStyle().Foreground(WarningColor).Bold(true),
			fmt.Sprintf("   %s  WARNING  ─  %s", WarningMarker, r.Title))
	default:
		return r.renderBox(SuccessColor, SuccessTitleStyle,
			fmt.Sprintf("   %s  SUCCESS  ─  %s", SuccessMarker, r.Title))
	}
}

func (r *Result) renderBox(border lipgloss.Color, titleStyle lipgloss.Style, title string) string {
	width := clampWidth(r.Width)

	lines := []string{"", titleStyle.Render(title), ""}
	lines = append(lines, r.detailLines()...)
	if len(r.Details) > 0 {
		lines = append(lines, "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

func (r *Result) detailLines() []string {
	lines := make([]string, 0, len(r.Details))
	for _, d := range r.Details {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	return lines
}

func (r *Result) renderFailure() string {
	width := clampWidth(r.Width)

	lines := []string{
		"",
		ErrorTitleStyle.Render(fmt.Sprintf("   %s  FAILED  ─  %s", FailureMarker, r.Title)),
		"",
	}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}
	if len(r.Details) > 0 {
		lines = append(lines, r.detailLines()...)
		lines = append(lines, "")
	}
	if len(r.Troubleshooting) > 0 {
		lines = append(lines, r.renderTroubleshootingBox(width), "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(ErrorColor).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

func (r *Result) renderTroubleshootingBox(width int) string {
	lines := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
	for _, tip := range r.Troubleshooting {
		lines = append(lines, TroubleshootingItemStyle.Render("  • "+tip))
	}

	innerWidth := width - 12
	if innerWidth < 40 {
		innerWidth = 40
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(innerWidth).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

// PlainText renders the result without styling, for non-terminal output.
func (r *Result) PlainText() string {
	var b strings.Builder
	switch r.Type {
	case ResultFailure:
		fmt.Fprintf(&b, "FAILED: %s\n", r.Title)
		if r.Error != nil {
			fmt.Fprintf(&b, "Error: %v\n", r.Error)
		}
	case ResultWarning:
		fmt.Fprintf(&b, "WARNING: %s\n", r.Title)
	default:
		fmt.Fprintf(&b, "OK: %s\n", r.Title)
	}
	for _, d := range r.Details {
		fmt.Fprintf(&b, "  %s: %s\n", d.Key, d.Value)
	}
	for _, tip := range r.Troubleshooting {
		fmt.Fprintf(&b, "  - %s\n", tip)
	}
	return b.String()
}
