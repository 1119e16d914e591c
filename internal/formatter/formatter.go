// package formatter renders gateway results as terminal tables, Markdown or CSV
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/spotilytics/internal/shared"
)

// Format selects an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
)

// ParseFormat accepts text, markdown (or md) and csv. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// Extension is the file extension used by [WriteExport].
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatCSV:
		return ".csv"
	}
	return ".txt"
}

// Table is a titled grid of cells. Every row has len(Headers) cells.
type Table struct {
	Title   string
	Note    string
	Headers []string
	Rows    [][]string
}

// ToCSV writes the header row followed by every data row. Titles and notes are omitted.
func ToCSV(t Table) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(t.Headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range t.Rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ToMarkdown renders t as a level-two heading and a pipe table.
func ToMarkdown(t Table) []byte {
	var buf bytes.Buffer

	if t.Title != "" {
		fmt.Fprintf(&buf, "## %s\n\n", t.Title)
	}
	if t.Note != "" {
		fmt.Fprintf(&buf, "_%s_\n\n", t.Note)
	}
	if len(t.Rows) == 0 {
		buf.WriteString("_Nothing to show._\n")
		return buf.Bytes()
	}

	buf.WriteString("| " + strings.Join(escapeCells(t.Headers), " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(t.Headers)) + "\n")
	for _, row := range t.Rows {
		buf.WriteString("| " + strings.Join(escapeCells(row), " | ") + " |\n")
	}
	return buf.Bytes()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		c = strings.ReplaceAll(c, "|", `\|`)
		out[i] = strings.ReplaceAll(c, "\n", " ")
	}
	return out
}

// ToText renders t as a bordered terminal table styled with p.
func ToText(t Table, p *Palette) []byte {
	if p == nil {
		p = Styles
	}
	var buf bytes.Buffer

	if t.Title != "" {
		buf.WriteString(p.Title(t.Title) + "\n")
	}
	if t.Note != "" {
		buf.WriteString(p.Warn(t.Note) + "\n")
	}
	if len(t.Rows) == 0 {
		buf.WriteString(p.Help("Nothing to show.") + "\n")
		return buf.Bytes()
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(NewStyle("#535353")).
		Headers(t.Headers...).
		Rows(t.Rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.header
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	buf.WriteString(tbl.String() + "\n")
	return buf.Bytes()
}

// ToPlain renders t as an unstyled numbered list, one row per line with cells joined by " - ".
func ToPlain(t Table) []byte {
	var buf bytes.Buffer
	if t.Title != "" {
		fmt.Fprintf(&buf, "%s\n", t.Title)
	}
	if t.Note != "" {
		fmt.Fprintf(&buf, "%s\n", t.Note)
	}
	fmt.Fprintf(&buf, "Items: %d\n\n", len(t.Rows))
	for i, row := range t.Rows {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, strings.Join(row, " - "))
	}
	return buf.Bytes()
}

// Render writes tables to w in format, separated by blank lines.
func Render(w io.Writer, format Format, tables ...Table) error {
	for i, t := range tables {
		var data []byte
		switch format {
		case FormatCSV:
			var err error
			if data, err = ToCSV(t); err != nil {
				return err
			}
		case FormatMarkdown:
			data = ToMarkdown(t)
		default:
			data = ToText(t, Styles)
		}

		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

// WriteExport renders tables into path, creating parent directories.
// When path has no extension the format's extension is appended. Returns the written path.
func WriteExport(path string, format Format, tables ...Table) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: output path", shared.ErrMissingArgument)
	}
	if filepath.Ext(path) == "" {
		path += format.Extension()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if format == FormatText {
		for i, t := range tables {
			if i > 0 {
				buf.WriteString("\n")
			}
			buf.Write(ToPlain(t))
		}
	} else if err := Render(&buf, format, tables...); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return path, nil
}
