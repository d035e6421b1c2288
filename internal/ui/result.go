package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
)

// ResultType indicates the kind of box to render
type ResultType int

const (
	ResultStatus ResultType = iota
	ResultSuccess
	ResultFailure
)

// Bar is a labelled gauge, e.g. brightness
type Bar struct {
	Label   string
	Value   int
	Max     int
	Percent float64 // derived from Value and Max when zero
}

// BrightnessBar returns a gauge for a 0-100 brightness value
func BrightnessBar(label string, brightness int) Bar {
	return Bar{Label: label, Value: brightness, Max: 100}
}

func (b Bar) percent() float64 {
	if b.Percent > 0 {
		return b.Percent
	}
	if b.Max <= 0 {
		return 0
	}
	p := float64(b.Value) / float64(b.Max)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

// Result represents a rendered box: device status, success or failure
type Result struct {
	Type            ResultType
	Title           string
	Fields          [][2]string // Ordered key-value details
	Bars            []Bar
	Error           error
	Troubleshooting []string
	Width           int
}

// NewStatusResult creates a device status box
func NewStatusResult(title string, fields [][2]string) *Result {
	return &Result{Type: ResultStatus, Title: title, Fields: fields, Width: GetTerminalWidth()}
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, fields [][2]string) *Result {
	return &Result{Type: ResultSuccess, Title: title, Fields: fields, Width: GetTerminalWidth()}
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

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddBar appends a gauge below the fields
func (r *Result) AddBar(bar Bar) *Result {
	r.Bars = append(r.Bars, bar)
	return r
}

// Render returns the styled box as a string
func (r *Result) Render() string {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}

	switch r.Type {
	case ResultFailure:
		return r.renderFailure(width)
	case ResultSuccess:
		title := SuccessTitleStyle.Render(fmt.Sprintf("%s  %s", SuccessMarker, r.Title))
		return SuccessBoxStyle(width).Render(r.body(title, width))
	default:
		return StatusBoxStyle(width).Render(r.body(TitleStyle.Render(r.Title), width))
	}
}

func (r *Result) body(title string, width int) string {
	lines := []string{"", title, ""}
	for _, f := range r.Fields {
		lines = append(lines, ResultKeyStyle.Render(f[0])+" "+renderValue(f[1]))
	}
	if len(r.Bars) > 0 {
		lines = append(lines, "")
		for _, b := range r.Bars {
			lines = append(lines, renderBar(b, width))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func renderValue(v string) string {
	switch v {
	case "on":
		return OnStyle.Render(v)
	case "off":
		return OffStyle.Render(v)
	}
	return ResultValueStyle.Render(v)
}

// renderBar draws a static gauge with the bubbles progress bar
func renderBar(b Bar, width int) string {
	barWidth := width - 36
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	bar := progress.New(
		progress.WithSolidFill(string(PrimaryColor)),
		progress.WithWidth(barWidth),
		progress.WithoutPercentage(),
	)
	return ResultKeyStyle.Render(b.Label) + " " + bar.ViewAs(b.percent()) +
		ResultValueStyle.Render(fmt.Sprintf(" %3d", b.Value))
}

func (r *Result) renderFailure(width int) string {
	lines := []string{"", ErrorTitleStyle.Render(fmt.Sprintf("%s  FAILED  ─  %s", FailureMarker, r.Title)), ""}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("Error: "+r.Error.Error()), "")
	}

	if len(r.Troubleshooting) > 0 {
		tips := []string{TroubleshootingTitleStyle.Render("Troubleshooting:"), ""}
		for _, tip := range r.Troubleshooting {
			tips = append(tips, TroubleshootingItemStyle.Render("  • "+tip))
		}
		lines = append(lines, TroubleshootingBoxStyle(width).Render(strings.Join(tips, "\n")), "")
	}

	return ErrorBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

// PlainFields renders fields as key=value lines
func PlainFields(fields [][2]string) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f[0])
		b.WriteByte('=')
		b.WriteString(f[1])
		b.WriteByte('\n')
	}
	return b.String()
}
