package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/lipgloss/v2"
	"gopkg.in/yaml.v3"
)

// Format is an output format for a rendered view
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates an output format name
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatText, FormatJSON, FormatYAML:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unsupported format: %s (expected text, json or yaml)", name)
	}
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	labelStyle     = lipgloss.NewStyle().Bold(true).Width(18)
	emptyStyle     = lipgloss.NewStyle().Faint(true).Italic(true)
	activeTabStyle = lipgloss.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("#7D56F4"))
	tabStyle       = lipgloss.NewStyle().Faint(true)
	hintStyle      = lipgloss.NewStyle().Faint(true)
)

// Write renders v to w in the given format
func Write(w io.Writer, v View, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return enc.Close()
	default:
		out := colorprofile.NewWriter(w, os.Environ())
		_, err := io.WriteString(out, renderText(v))
		return err
	}
}

func renderText(v View) string {
	var b strings.Builder

	switch v.Section {
	case SectionProcessing:
		b.WriteString(titleStyle.Render("Processing business card...") + "\n")
	case SectionResults:
		renderResults(&b, v)
	default:
		renderUpload(&b, v)
	}

	return b.String()
}

func renderUpload(b *strings.Builder, v View) {
	b.WriteString(titleStyle.Render("Upload business card") + "\n")
	if v.FileInfo == nil {
		b.WriteString(hintStyle.Render("No files selected (1 or 2 images: front and back).") + "\n")
	} else {
		b.WriteString(v.FileInfo.Summary + "\n")
		b.WriteString(v.FileInfo.Size + "\n")
		for _, f := range v.FileInfo.Files {
			line := fmt.Sprintf("  %s  %s  %s", f.Name, f.MediaType, f.Size)
			if f.Width > 0 && f.Height > 0 {
				line += fmt.Sprintf("  %dx%d", f.Width, f.Height)
			}
			b.WriteString(line + "\n")
		}
	}
	if v.ExportVisible {
		b.WriteString(hintStyle.Render("Processed cards are ready to export as CSV.") + "\n")
	}
}

func renderResults(b *strings.Builder, v View) {
	tabs := make([]string, 0, len(Tabs))
	for _, t := range Tabs {
		if t == v.ActiveTab {
			tabs = append(tabs, activeTabStyle.Render(string(t)))
		} else {
			tabs = append(tabs, tabStyle.Render(string(t)))
		}
	}
	b.WriteString(strings.Join(tabs, "  ") + "\n\n")

	switch v.ActiveTab {
	case TabVCard:
		b.WriteString(v.VCard)
		if !strings.HasSuffix(v.VCard, "\n") {
			b.WriteString("\n")
		}
	case TabRaw:
		b.WriteString(v.RawText)
		if !strings.HasSuffix(v.RawText, "\n") {
			b.WriteString("\n")
		}
	default:
		for _, item := range v.Fields {
			value := item.Value
			if item.Empty {
				value = emptyStyle.Render(value)
			}
			b.WriteString(labelStyle.Render(item.Label) + " " + value + "\n")
		}
	}

	if v.ExportVisible {
		b.WriteString("\n" + hintStyle.Render("Export the session as CSV with `export`.") + "\n")
	}
}
