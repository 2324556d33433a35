package cardclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/cardscan/internal/selection"
)

func writeCard(t *testing.T, dir, name, content string) selection.File {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return selection.File{Path: path, Name: name, Size: int64(len(content)), MediaType: "image/png"}
}

func TestNewClient(t *testing.T) {
	c := NewClient("http://localhost:8000/")

	if c.BaseURL != "http://localhost:8000" {
		t.Errorf("Expected trailing slash trimmed, got %s", c.BaseURL)
	}
	if _, err := uuid.Parse(c.SessionID()); err != nil {
		t.Errorf("Expected UUID session id, got %q: %v", c.SessionID(), err)
	}
	if c.httpClient.Timeout != 0 {
		t.Errorf("Expected no timeout by default, got %v", c.httpClient.Timeout)
	}

	other := NewClient("http://localhost:8000")
	if other.SessionID() == c.SessionID() {
		t.Error("Expected distinct session ids per client")
	}

	fixed := NewClient("http://localhost:8000", WithSessionID("abc"))
	if fixed.SessionID() != "abc" {
		t.Errorf("Expected session id abc, got %s", fixed.SessionID())
	}
}

func TestProcessCardsRequest(t *testing.T) {
	dir := t.TempDir()
	front := writeCard(t, dir, "front.png", "front-bytes")
	back := writeCard(t, dir, "back.png", "back-bytes")

	c := NewClient("")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != ProcessPath {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("Failed to parse multipart form: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		files := r.MultipartForm.File["files"]
		if len(files) != 2 {
			t.Errorf("Expected 2 files, got %d", len(files))
			http.Error(w, "bad files", http.StatusBadRequest)
			return
		}
		for i, want := range []string{"front-bytes", "back-bytes"} {
			f, err := files[i].Open()
			if err != nil {
				t.Errorf("Failed to open part: %v", err)
				continue
			}
			got, _ := io.ReadAll(f)
			f.Close()
			if string(got) != want {
				t.Errorf("Part %d: expected %q, got %q", i, want, got)
			}
			if ct := files[i].Header.Get("Content-Type"); ct != "image/png" {
				t.Errorf("Part %d: expected image/png, got %s", i, ct)
			}
		}

		expected := map[string]string{
			"include_vcard":    "true",
			"include_raw_text": "true",
			"session_id":       c.SessionID(),
		}
		for k, v := range expected {
			if got := r.FormValue(k); got != v {
				t.Errorf("Field %s: expected %q, got %q", k, v, got)
			}
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"success": true, "structured_data": {"mobile": "+1234567890"}, "vcard": "BEGIN:VCARD", "raw_text": "raw"}`)
	}))
	defer server.Close()
	c.BaseURL = server.URL

	result, err := c.ProcessCards(context.Background(), []selection.File{front, back})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !result.Success {
		t.Error("Expected success")
	}
	if got := result.StructuredData.Display("mobile"); got != "+1234567890" {
		t.Errorf("Expected mobile +1234567890, got %s", got)
	}
	if result.VCard != "BEGIN:VCARD" || result.RawText != "raw" {
		t.Errorf("Unexpected vcard/raw text: %q %q", result.VCard, result.RawText)
	}
}

func TestProcessCardsFailures(t *testing.T) {
	dir := t.TempDir()
	front := writeCard(t, dir, "front.png", "front-bytes")

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"detail": "boom"}`, wantErr: ErrProcessFailed},
		{name: "bad request", status: http.StatusBadRequest, body: `{"detail": "You must upload 1 or 2 images."}`, wantErr: ErrProcessFailed},
		{name: "array body", status: http.StatusOK, body: `[{"success": true}]`, wantErr: ErrUnexpectedResponse},
		{name: "empty body", status: http.StatusOK, body: ``, wantErr: ErrUnexpectedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			c := NewClient(server.URL)
			_, err := c.ProcessCards(context.Background(), []selection.File{front})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProcessCardsTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	front := writeCard(t, t.TempDir(), "front.png", "x")
	if _, err := NewClient(url).ProcessCards(context.Background(), []selection.File{front}); err == nil {
		t.Fatal("Expected transport error")
	}
}

func TestExportCSV(t *testing.T) {
	tests := []struct {
		name        string
		disposition string
		expected    string
	}{
		{name: "quoted filename", disposition: `attachment; filename="cards.csv"`, expected: "cards.csv"},
		{name: "bare filename", disposition: `attachment; filename=business_cards_1a2b3c4d.csv`, expected: "business_cards_1a2b3c4d.csv"},
		{name: "no header", disposition: "", expected: DefaultCSVFilename},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClient("")
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != ExportPath {
					t.Errorf("Unexpected path %s", r.URL.Path)
				}
				if got := r.FormValue("session_id"); got != c.SessionID() {
					t.Errorf("Expected session id %s, got %s", c.SessionID(), got)
				}
				w.Header().Set("Content-Type", "text/csv")
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				fmt.Fprint(w, "\"first_name\"\n\"Dev\"\n")
			}))
			defer server.Close()
			c.BaseURL = server.URL

			export, err := c.ExportCSV(context.Background())
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if export.Filename != tt.expected {
				t.Errorf("Expected filename %s, got %s", tt.expected, export.Filename)
			}
			if string(export.Data) != "\"first_name\"\n\"Dev\"\n" {
				t.Errorf("Unexpected data %q", export.Data)
			}
		})
	}
}

func TestExportCSVError(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{name: "detail message", body: `{"detail": "No data available for export for this session."}`, expected: "No data available for export for this session."},
		{name: "non json", body: `oops`, expected: "Failed to export CSV."},
		{name: "empty detail", body: `{"detail": ""}`, expected: "Failed to export CSV."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			_, err := NewClient(server.URL).ExportCSV(context.Background())
			var exportErr *ExportError
			if !errors.As(err, &exportErr) {
				t.Fatalf("Expected ExportError, got %v", err)
			}
			if exportErr.StatusCode != http.StatusNotFound {
				t.Errorf("Expected status 404, got %d", exportErr.StatusCode)
			}
			if exportErr.Detail != tt.expected {
				t.Errorf("Expected detail %q, got %q", tt.expected, exportErr.Detail)
			}
		})
	}
}

func TestFilenameFromDisposition(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{`attachment; filename="cards.csv"`, "cards.csv"},
		{`attachment; filename='cards.csv'`, "cards.csv"},
		{`attachment;filename=cards.csv`, "cards.csv"},
		{`attachment; filename="../../etc/cards.csv"`, "cards.csv"},
		{`attachment`, "fallback.csv"},
		{`inline; filename="cards.csv"`, "fallback.csv"},
		{``, "fallback.csv"},
		{`attachment; filename=""`, "fallback.csv"},
	}

	for _, tt := range tests {
		if got := FilenameFromDisposition(tt.header, "fallback.csv"); got != tt.expected {
			t.Errorf("FilenameFromDisposition(%q): expected %q, got %q", tt.header, tt.expected, got)
		}
	}
}
