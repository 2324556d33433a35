package ui

import (
	"fmt"

	"github.com/lehigh-university-libraries/cardscan/internal/models"
	"github.com/lehigh-university-libraries/cardscan/internal/selection"
)

// Section is the part of the interface currently shown
type Section string

const (
	SectionUpload     Section = "upload"
	SectionProcessing Section = "processing"
	SectionResults    Section = "results"
)

// Tab selects which result surface is active
type Tab string

const (
	TabStructured Tab = "structured"
	TabVCard      Tab = "vcard"
	TabRaw        Tab = "raw"
)

// Tabs lists the result tabs in display order
var Tabs = []Tab{TabStructured, TabVCard, TabRaw}

// ParseTab validates a tab name
func ParseTab(name string) (Tab, error) {
	for _, t := range Tabs {
		if string(t) == name {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q (expected structured, vcard or raw)", ErrUnknownTab, name)
}

// FileInfo describes the current selection
type FileInfo struct {
	Summary string        `json:"summary" yaml:"summary"`
	Size    string        `json:"size" yaml:"size"`
	Files   []FileSummary `json:"files" yaml:"files"`
}

// FileSummary is one selected image
type FileSummary struct {
	Name      string `json:"name" yaml:"name"`
	MediaType string `json:"media_type" yaml:"media_type"`
	Size      string `json:"size" yaml:"size"`
	Width     int    `json:"width,omitempty" yaml:"width,omitempty"`
	Height    int    `json:"height,omitempty" yaml:"height,omitempty"`
}

// DataItem is one row of the structured data grid
type DataItem struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
	Empty bool   `json:"empty,omitempty" yaml:"empty,omitempty"`
}

// View is everything the interface displays
type View struct {
	SessionID     string     `json:"session_id" yaml:"session_id"`
	Section       Section    `json:"section" yaml:"section"`
	FileInfo      *FileInfo  `json:"file_info,omitempty" yaml:"file_info,omitempty"`
	ActiveTab     Tab        `json:"active_tab" yaml:"active_tab"`
	Fields        []DataItem `json:"fields,omitempty" yaml:"fields,omitempty"`
	VCard         string     `json:"vcard,omitempty" yaml:"vcard,omitempty"`
	RawText       string     `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
	ExportVisible bool       `json:"export_available" yaml:"export_available"`
}

// Field returns the displayed value for key, if present
func (v View) Field(key string) (string, bool) {
	for _, item := range v.Fields {
		if item.Key == key {
			return item.Value, true
		}
	}
	return "", false
}

func (v View) clone() View {
	out := v
	if v.FileInfo != nil {
		info := *v.FileInfo
		info.Files = append([]FileSummary(nil), v.FileInfo.Files...)
		out.FileInfo = &info
	}
	out.Fields = append([]DataItem(nil), v.Fields...)
	return out
}

func buildDataGrid(data models.StructuredData) []DataItem {
	items := make([]DataItem, 0, len(models.Fields))
	for _, f := range models.Fields {
		value := data.Display(f.Key)
		items = append(items, DataItem{
			Key:   f.Key,
			Label: f.Label,
			Value: value,
			Empty: value == models.NotDetected,
		})
	}
	return items
}

func buildFileInfo(sel *selection.Selection) *FileInfo {
	info := &FileInfo{
		Summary: sel.Summary(),
		Size:    sel.SizeLabel(),
		Files:   make([]FileSummary, 0, len(sel.Files)),
	}
	for _, f := range sel.Files {
		info.Files = append(info.Files, FileSummary{
			Name:      f.Name,
			MediaType: f.MediaType,
			Size:      selection.FormatFileSize(f.Size),
			Width:     f.Width,
			Height:    f.Height,
		})
	}
	return info
}
