// Copyright (C) 2025 aemctl contributors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Exit codes for CLI commands.
const (
	CLIExitSuccess = 0 // Operation completed successfully
	CLIExitError   = 1 // Operation failed
)

// aemctl color palette - forest greens with amber accents
var (
	colorPrimary = lipgloss.Color("#36A269") // main brand green
	colorBright  = lipgloss.Color("#5FD68B") // highlights, success
	colorAccent  = lipgloss.Color("#D9A441") // amber for warnings
	colorDanger  = lipgloss.Color("#D9534F") // red for errors
	colorMuted   = lipgloss.Color("#6B7D7D") // muted text, inactive rows
)

// styles provides pre-configured lipgloss styles.
var styles = struct {
	Title   lipgloss.Style
	Header  lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Active  lipgloss.Style
}{
	Title:   lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
	Header:  lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
	Success: lipgloss.NewStyle().Foreground(colorBright),
	Warning: lipgloss.NewStyle().Foreground(colorAccent),
	Error:   lipgloss.NewStyle().Foreground(colorDanger),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Active:  lipgloss.NewStyle().Bold(true).Foreground(colorBright),
}

// stdoutIsTerminal gates styling and spinners; redirected output gets
// plain text.
func stdoutIsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// styled applies a style only when stdout is a terminal.
func styled(s lipgloss.Style, text string) string {
	if !stdoutIsTerminal() {
		return text
	}
	return s.Render(text)
}

func printSuccess(format string, args ...any) {
	fmt.Println(styled(styles.Success, "✓ "+fmt.Sprintf(format, args...)))
}

func printWarning(format string, args ...any) {
	fmt.Println(styled(styles.Warning, "! "+fmt.Sprintf(format, args...)))
}

func printError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, styled(styles.Error, "✗ "+fmt.Sprintf(format, args...)))
}

func printTitle(text string) {
	fmt.Println(styled(styles.Title, text))
}

// outputJSON writes structured data as indented JSON to stdout.
func outputJSON(data any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// renderTable prints a simple aligned table. Headers are styled; rows
// are printed as-is so callers can pre-style individual cells with
// styledCell.
func renderTable(headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && cellWidth(cell) > widths[i] {
				widths[i] = cellWidth(cell)
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(padCell(styled(styles.Header, h), len(h), widths[i]))
		b.WriteString("  ")
	}
	fmt.Println(strings.TrimRight(b.String(), " "))

	for _, row := range rows {
		b.Reset()
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			b.WriteString(padCell(cell, cellWidth(cell), widths[i]))
			b.WriteString("  ")
		}
		fmt.Println(strings.TrimRight(b.String(), " "))
	}
}

// cellWidth measures the printable width of a cell, ignoring any ANSI
// styling a caller baked in.
func cellWidth(cell string) int {
	return len([]rune(stripANSI(cell)))
}

// padCell right-pads to the column width using the printable width,
// so styled cells align with plain ones.
func padCell(cell string, printable, width int) string {
	if printable >= width {
		return cell
	}
	return cell + strings.Repeat(" ", width-printable)
}

// stripANSI removes CSI escape sequences.
func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case inEscape:
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
		case r == '\033':
			inEscape = true
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// markActive styles the glyph shown in "active" table columns.
func markActive(active bool) string {
	if active {
		return styled(styles.Active, "●")
	}
	return styled(styles.Muted, "○")
}

// dash substitutes a placeholder for empty optional cells.
func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
