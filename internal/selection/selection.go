package selection

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	MinFiles = 1
	MaxFiles = 2
)

var (
	ErrFileCount = errors.New("please select 1 or 2 image files (for front and back)")
	ErrNotImage  = errors.New("please select only image files")
)

// File is one selected card image
type File struct {
	Path      string
	Name      string
	Size      int64
	MediaType string
	Width     int
	Height    int
}

// Selection holds the front (and optionally back) image of a card
type Selection struct {
	Files     []File
	TotalSize int64
}

// Select validates paths as a card selection. The whole batch is rejected if
// the count is not 1 or 2 or if any entry is not an image.
func Select(paths []string) (*Selection, error) {
	if len(paths) < MinFiles || len(paths) > MaxFiles {
		return nil, fmt.Errorf("%d file(s) selected: %w", len(paths), ErrFileCount)
	}

	sel := &Selection{Files: make([]File, 0, len(paths))}
	for _, path := range paths {
		f, err := inspect(path)
		if err != nil {
			return nil, err
		}
		sel.Files = append(sel.Files, f)
		sel.TotalSize += f.Size
	}

	return sel, nil
}

// Summary is the "N file(s) selected" line
func (s *Selection) Summary() string {
	return fmt.Sprintf("%d file(s) selected", len(s.Files))
}

// SizeLabel is the "Total size: ..." line
func (s *Selection) SizeLabel() string {
	return "Total size: " + FormatFileSize(s.TotalSize)
}

func inspect(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s is a directory: %w", path, ErrNotImage)
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to detect media type of %s: %w", path, err)
	}

	mediaType := mtype.String()
	if !strings.HasPrefix(mediaType, "image/") {
		return File{}, fmt.Errorf("%s has media type %s: %w", filepath.Base(path), mediaType, ErrNotImage)
	}

	f := File{
		Path:      path,
		Name:      filepath.Base(path),
		Size:      info.Size(),
		MediaType: mediaType,
	}

	f.Width, f.Height, err = imageDimensions(path)
	if err != nil {
		slog.Warn("Failed to get image dimensions", "file", f.Name, "error", err)
	}

	slog.Debug("Selected card image", "file", f.Name, "type", f.MediaType, "size", f.Size, "width", f.Width, "height", f.Height)
	return f, nil
}

func imageDimensions(path string) (int, int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer file.Close()

	cfg, _, err := image.DecodeConfig(file)
	if err != nil {
		return 0, 0, err
	}

	return cfg.Width, cfg.Height, nil
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders bytes with base-1024 units and at most two decimals
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}

	value := float64(bytes) / math.Pow(1024, float64(i))
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(value, 'f', 2, 64), 64)
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[i]
}
