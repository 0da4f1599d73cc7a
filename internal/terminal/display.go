// Package terminal renders answers, history listings and the stats
// dashboard, and reads interactive input.
package terminal

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// Color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Display writes formatted output to stdout.
type Display struct {
	width    int
	renderer *glamour.TermRenderer
}

// NewDisplay creates a display sized to the current terminal.
func NewDisplay() *Display {
	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w
	}

	renderer, _ := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)

	return &Display{width: width, renderer: renderer}
}

// Answer renders a bot answer as markdown, falling back to plain text
// if rendering fails.
func (d *Display) Answer(content, source string, processingTime float64) {
	rendered := content
	if d.renderer != nil {
		if out, err := d.renderer.Render(content); err == nil {
			rendered = out
		}
	}
	fmt.Print(rendered)
	if source != "" {
		fmt.Printf("%s  source: %s · %.2fs%s\n", colorGray, source, processingTime, colorReset)
	}
}

// Errorf prints an error line to stderr.
func (d *Display) Errorf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%serror:%s %s\n", colorRed, colorReset, fmt.Sprintf(format, args...))
}

// Infof prints a dimmed informational line.
func (d *Display) Infof(format string, args ...any) {
	fmt.Printf("%s%s%s\n", colorDim, fmt.Sprintf(format, args...), colorReset)
}

// HistoryRow is one line of the history listing.
type HistoryRow struct {
	ID        int
	Question  string
	Preview   string
	Status    string
	CreatedAt string
}

// HistoryList prints a history page or search result set.
func (d *Display) HistoryList(rows []HistoryRow, total int, query string) {
	if query != "" {
		fmt.Printf("%s%d result(s) for %q%s\n\n", colorBold, len(rows), query, colorReset)
	} else {
		fmt.Printf("%sHistory — showing %d of %d%s\n\n", colorBold, len(rows), total, colorReset)
	}
	if len(rows) == 0 {
		fmt.Printf("%s(no conversations)%s\n", colorDim, colorReset)
		return
	}

	qWidth := d.width/2 - 10
	if qWidth < 20 {
		qWidth = 20
	}
	for _, row := range rows {
		status := colorGreen + "✓" + colorReset
		if row.Status != "success" {
			status = colorRed + "✗" + colorReset
		}
		fmt.Printf("%s#%-5d%s %s %s  %s%s%s\n",
			colorCyan, row.ID, colorReset,
			status,
			Truncate(row.Question, qWidth),
			colorGray, row.CreatedAt, colorReset)
		if row.Preview != "" {
			fmt.Printf("       %s%s%s\n", colorDim, Truncate(row.Preview, d.width-10), colorReset)
		}
	}
}

// StatsRow is one labeled value of the dashboard.
type StatsRow struct {
	Label string
	Value string
}

// Stats prints the usage dashboard.
func (d *Display) Stats(rows []StatsRow, sources []StatsRow) {
	fmt.Printf("%sUsage statistics%s\n\n", colorBold, colorReset)
	for _, row := range rows {
		fmt.Printf("  %-22s %s%s%s\n", row.Label, colorCyan, row.Value, colorReset)
	}
	if len(sources) > 0 {
		fmt.Printf("\n%sMost used sources%s\n\n", colorBold, colorReset)
		for _, row := range sources {
			fmt.Printf("  %-22s %s%s%s\n", row.Label, colorYellow, row.Value, colorReset)
		}
	}
}

// Truncate shortens s to max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if max <= 1 || len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// ReadLine prompts on stdout and reads one line from r.
func ReadLine(r *bufio.Reader, prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword prompts and reads a password without echo.
func ReadPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
