package cardclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lehigh-university-libraries/cardscan/internal/models"
	"github.com/lehigh-university-libraries/cardscan/internal/selection"
)

const (
	ProcessPath = "/process-cards"
	ExportPath  = "/export-csv"
)

var (
	// ErrProcessFailed is returned for any non-2xx /process-cards response
	ErrProcessFailed = errors.New("failed to process images")
	// ErrUnexpectedResponse is returned when the body is not a single JSON object
	ErrUnexpectedResponse = errors.New("unexpected response from card service")
)

// Client talks to the card processing service on behalf of one session
type Client struct {
	BaseURL    string
	sessionID  string
	httpClient *http.Client
}

// Option configures a Client
type Option func(*Client)

// WithSessionID reuses an existing session instead of starting a new one
func WithSessionID(id string) Option {
	return func(c *Client) {
		c.sessionID = id
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets an overall request timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// NewClient creates a client with a fresh session id
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		sessionID:  uuid.NewString(),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SessionID returns the id sent with every request
func (c *Client) SessionID() string {
	return c.sessionID
}

// ProcessCards uploads the selected images and returns the service's result
func (c *Client) ProcessCards(ctx context.Context, files []selection.File) (*models.ProcessingResult, error) {
	body, contentType, err := c.buildProcessForm(files)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+ProcessPath, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create process request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	slog.Debug("Submitting cards", "session_id", c.sessionID, "files", len(files), "url", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call card service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		slog.Debug("Card service rejected upload", "status", resp.StatusCode, "body", string(detail))
		return nil, ErrProcessFailed
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read process response: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: expected a single result object", ErrUnexpectedResponse)
	}

	var result models.ProcessingResult
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("failed to decode process response: %w", err)
	}

	slog.Info("Card processed", "session_id", c.sessionID, "success", result.Success, "fields", len(result.StructuredData))
	return &result, nil
}

func (c *Client) buildProcessForm(files []selection.File) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, f := range files {
		if err := writeFilePart(writer, f); err != nil {
			return nil, "", err
		}
	}

	fields := [][2]string{
		{"include_vcard", "true"},
		{"include_raw_text", "true"},
		{"session_id", c.sessionID},
	}
	for _, kv := range fields {
		if err := writer.WriteField(kv[0], kv[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write %s field: %w", kv[0], err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(writer *multipart.Writer, f selection.File) error {
	file, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer file.Close()

	mediaType := f.MediaType
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(f.Name)))
	header.Set("Content-Type", mediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create part for %s: %w", f.Name, err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy %s: %w", f.Name, err)
	}
	return nil
}
