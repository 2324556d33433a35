package archive

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// CardRow is one exported business card
type CardRow struct {
	FirstName   string `json:"first_name" parquet:"first_name"`
	MiddleName  string `json:"middle_name" parquet:"middle_name"`
	LastName    string `json:"last_name" parquet:"last_name"`
	CompanyName string `json:"company_name" parquet:"company_name"`
	Position    string `json:"position" parquet:"position"`
	Department  string `json:"department" parquet:"department"`
	Mobile      string `json:"mobile" parquet:"mobile"`
	Telephone   string `json:"telephone" parquet:"telephone"`
	Email       string `json:"email" parquet:"email"`
	Website     string `json:"website" parquet:"website"`
	Address     string `json:"address" parquet:"address"`
	Extension   string `json:"extension" parquet:"extension"`
	Notes       string `json:"notes" parquet:"notes"`
}

func (r *CardRow) set(column, value string) bool {
	switch column {
	case "first_name":
		r.FirstName = value
	case "middle_name":
		r.MiddleName = value
	case "last_name":
		r.LastName = value
	case "company_name":
		r.CompanyName = value
	case "position":
		r.Position = value
	case "department":
		r.Department = value
	case "mobile":
		r.Mobile = value
	case "telephone":
		r.Telephone = value
	case "email":
		r.Email = value
	case "website":
		r.Website = value
	case "address":
		r.Address = value
	case "extension":
		r.Extension = value
	case "notes":
		r.Notes = value
	default:
		return false
	}
	return true
}

// ParseCSV reads an exported CSV whose header row names the card fields.
// Columns that are not card fields are skipped.
func ParseCSV(data []byte) ([]CardRow, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var rows []CardRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", len(rows)+1, err)
		}

		var row CardRow
		for i, value := range record {
			if i >= len(header) {
				break
			}
			if !row.set(header[i], value) {
				slog.Debug("Skipping unknown CSV column", "column", header[i])
			}
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// WriteParquet converts an exported CSV into a Parquet file at path
func WriteParquet(csvData []byte, path string) (int, error) {
	rows, err := ParseCSV(csvData)
	if err != nil {
		return 0, err
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create parquet file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[CardRow](file)
	if _, err := writer.Write(rows); err != nil {
		return 0, fmt.Errorf("failed to write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to finalize parquet file: %w", err)
	}

	slog.Info("Wrote parquet archive", "path", path, "rows", len(rows))
	return len(rows), nil
}

// ReadParquet loads the cards stored in a Parquet archive
func ReadParquet(path string) ([]CardRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat parquet file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[CardRow](pf)
	defer reader.Close()

	rows := make([]CardRow, pf.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read parquet rows: %w", err)
	}

	return rows[:n], nil
}
