package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/lehigh-university-libraries/cardscan/internal/archive"
	"github.com/lehigh-university-libraries/cardscan/internal/cardclient"
	"github.com/lehigh-university-libraries/cardscan/internal/models"
	"github.com/lehigh-university-libraries/cardscan/internal/selection"
)

const (
	VCardFilename = "contact.vcf"

	msgSelectCount    = "Please select 1 or 2 image files (for front and back)."
	msgSelectImages   = "Please select only image files."
	msgNoSelection    = "Please select 1 or 2 images to process."
	msgNoData         = "No structured data extracted from the image."
	msgExportComplete = "CSV exported successfully! Session data has been cleared."
)

var (
	ErrNoSelection = errors.New("no card images selected")
	ErrNoVCard     = errors.New("no vCard to download")
	ErrUnknownTab  = errors.New("unknown tab")
)

// ResultError is a failure reported by the card service in its result body
type ResultError struct {
	Message string
}

func (e *ResultError) Error() string {
	return e.Message
}

// CardService is the remote side of the upload client
type CardService interface {
	SessionID() string
	ProcessCards(ctx context.Context, files []selection.File) (*models.ProcessingResult, error)
	ExportCSV(ctx context.Context) (*cardclient.CSVExport, error)
}

// UploadClient drives one card-scanning session: selection, submission,
// result display and downloads.
type UploadClient struct {
	service     CardService
	alerts      Alerter
	downloadDir string
	parquet     bool

	mu        sync.Mutex
	selection *selection.Selection
	view      View
}

// Option configures an UploadClient
type Option func(*UploadClient)

// WithAlerter shows user-facing messages through a
func WithAlerter(a Alerter) Option {
	return func(c *UploadClient) {
		c.alerts = a
	}
}

// WithParquetArchive also writes exported CSVs as Parquet
func WithParquetArchive(enabled bool) Option {
	return func(c *UploadClient) {
		c.parquet = enabled
	}
}

// New creates an UploadClient that saves downloads into downloadDir
func New(service CardService, downloadDir string, opts ...Option) *UploadClient {
	c := &UploadClient{
		service:     service,
		downloadDir: downloadDir,
		view: View{
			SessionID: service.SessionID(),
			Section:   SectionUpload,
			ActiveTab: TabStructured,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// View returns a snapshot of the current display state
func (c *UploadClient) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.clone()
}

func (c *UploadClient) alert(msg string) {
	if c.alerts != nil {
		c.alerts.Alert(msg)
	}
}

// SelectFiles replaces the selection with 1 or 2 images. A rejected batch
// leaves the previous selection in place.
func (c *UploadClient) SelectFiles(paths []string) error {
	sel, err := selection.Select(paths)
	if err != nil {
		switch {
		case errors.Is(err, selection.ErrFileCount):
			c.alert(msgSelectCount)
		case errors.Is(err, selection.ErrNotImage):
			c.alert(msgSelectImages)
		default:
			c.alert("Unable to read selected files: " + err.Error())
		}
		return err
	}

	c.mu.Lock()
	c.selection = sel
	c.view.FileInfo = buildFileInfo(sel)
	c.mu.Unlock()

	slog.Debug("Selection updated", "files", len(sel.Files), "bytes", sel.TotalSize)
	return nil
}

// Submit sends the current selection to the card service and renders the
// result. Overlapping submissions are allowed; the last to finish wins.
func (c *UploadClient) Submit(ctx context.Context) error {
	c.mu.Lock()
	sel := c.selection
	if sel == nil {
		c.mu.Unlock()
		c.alert(msgNoSelection)
		return ErrNoSelection
	}
	c.view.Section = SectionProcessing
	c.mu.Unlock()

	result, err := c.service.ProcessCards(ctx, sel.Files)
	if err != nil {
		c.alert("Error processing images: " + err.Error())
		c.mu.Lock()
		c.view.Section = SectionUpload
		c.mu.Unlock()
		return fmt.Errorf("failed to process cards: %w", err)
	}

	return c.Render(result)
}

// Render displays a processing result. Failed results are reported and the
// view is reset.
func (c *UploadClient) Render(result *models.ProcessingResult) error {
	if result == nil || !result.Success || result.StructuredData == nil {
		msg := msgNoData
		if result != nil && result.ErrorMessage != "" {
			msg = result.ErrorMessage
		}
		c.alert(msg)
		c.Reset()
		return &ResultError{Message: msg}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Section = SectionResults
	c.view.ExportVisible = true
	c.view.Fields = buildDataGrid(result.StructuredData)
	c.view.VCard = result.VCard
	c.view.RawText = result.RawText
	c.view.ActiveTab = TabStructured
	return nil
}

// SwitchTab activates one of the result tabs
func (c *UploadClient) SwitchTab(name string) error {
	tab, err := ParseTab(name)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.view.ActiveTab = tab
	c.mu.Unlock()
	return nil
}

// ExportCSV downloads every card processed in this session. The service
// clears the session afterwards, so the export action is hidden again.
func (c *UploadClient) ExportCSV(ctx context.Context) (string, error) {
	export, err := c.service.ExportCSV(ctx)
	if err != nil {
		c.alert("Error exporting CSV: " + err.Error())
		return "", fmt.Errorf("failed to export CSV: %w", err)
	}

	c.mu.Lock()
	c.view.ExportVisible = false
	c.mu.Unlock()

	path, err := c.save(export.Filename, export.Data)
	if err != nil {
		c.alert("Error exporting CSV: " + err.Error())
		return "", err
	}

	if c.parquet {
		parquetPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".parquet"
		if _, err := archive.WriteParquet(export.Data, parquetPath); err != nil {
			c.alert("Error archiving CSV: " + err.Error())
			return path, err
		}
	}

	c.alert(msgExportComplete)
	return path, nil
}

// DownloadVCard saves the displayed vCard text as contact.vcf
func (c *UploadClient) DownloadVCard() (string, error) {
	c.mu.Lock()
	vcard := c.view.VCard
	c.mu.Unlock()

	if vcard == "" {
		c.alert("There is no vCard to download.")
		return "", ErrNoVCard
	}
	return c.save(VCardFilename, []byte(vcard))
}

// Reset clears the selection and all results and returns to the upload
// section. Cards already processed stay exportable.
func (c *UploadClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = nil
	c.view = View{
		SessionID:     c.view.SessionID,
		Section:       SectionUpload,
		ActiveTab:     TabStructured,
		ExportVisible: c.view.ExportVisible,
	}
}

func (c *UploadClient) save(filename string, data []byte) (string, error) {
	if err := os.MkdirAll(c.downloadDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	path := filepath.Join(c.downloadDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", filename, err)
	}

	slog.Info("Saved download", "path", path, "bytes", len(data))
	return path, nil
}
