package cardclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path"
	"regexp"
	"strings"
)

const (
	DefaultCSVFilename = "business_cards.csv"
	defaultExportError = "Failed to export CSV."
)

// CSVExport is a CSV payload returned by /export-csv
type CSVExport struct {
	Filename string
	Data     []byte
}

// ExportError carries the detail message of a failed export
type ExportError struct {
	StatusCode int
	Detail     string
}

func (e *ExportError) Error() string {
	return e.Detail
}

// ExportCSV asks the service for every card processed in this session.
// The service clears the session once the export succeeds.
func (c *Client) ExportCSV(ctx context.Context) (*CSVExport, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if err := writer.WriteField("session_id", c.sessionID); err != nil {
		return nil, fmt.Errorf("failed to write session_id field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+ExportPath, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create export request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call card service: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ExportError{StatusCode: resp.StatusCode, Detail: exportDetail(data)}
	}

	export := &CSVExport{
		Filename: FilenameFromDisposition(resp.Header.Get("Content-Disposition"), DefaultCSVFilename),
		Data:     data,
	}

	slog.Info("Exported session CSV", "session_id", c.sessionID, "filename", export.Filename, "bytes", len(data))
	return export, nil
}

func exportDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return defaultExportError
	}

	switch d := payload.Detail.(type) {
	case string:
		if d != "" {
			return d
		}
	case nil:
	default:
		// validation errors arrive as structured detail
		if b, err := json.Marshal(d); err == nil {
			return string(b)
		}
	}
	return defaultExportError
}

var filenamePattern = regexp.MustCompile(`filename[^;=\n]*=("[^"]*"|'[^']*'|[^;\n]*)`)

// FilenameFromDisposition extracts the attachment filename from a
// Content-Disposition header, falling back when none is present.
// Only the base name is returned.
func FilenameFromDisposition(header, fallback string) string {
	if !strings.Contains(header, "attachment") {
		return fallback
	}

	name := ""
	if _, params, err := mime.ParseMediaType(header); err == nil {
		name = params["filename"]
	}
	if name == "" {
		if m := filenamePattern.FindStringSubmatch(header); m != nil {
			name = strings.TrimSpace(m[1])
		}
	}
	name = strings.NewReplacer(`"`, "", "'", "").Replace(name)

	name = path.Base(strings.ReplaceAll(name, `\`, "/"))
	if name == "" || name == "." || name == "/" || name == ".." {
		return fallback
	}
	return name
}
