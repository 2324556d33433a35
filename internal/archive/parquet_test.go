package archive

import (
	"path/filepath"
	"testing"
)

const exportedCSV = `"first_name","middle_name","last_name","company_name","position","department","mobile","telephone","email","website","address","extension","notes","source"
"Dev","D","Yadav","ODeX Global","Software Engineer","Engineering","['+1234567890']","['+1987654321']","['dev.yadav@odexglobal.com']","['https://odexglobal.com/']","123 Innovation Drive","405","","scan"
"Ada","","Lovelace","Analytical Engines","Programmer","","","","","","","",""
`

func TestParseCSV(t *testing.T) {
	rows, err := ParseCSV([]byte(exportedCSV))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}

	if rows[0].FirstName != "Dev" || rows[0].CompanyName != "ODeX Global" || rows[0].Extension != "405" {
		t.Errorf("Unexpected first row: %+v", rows[0])
	}
	if rows[0].Mobile != "['+1234567890']" {
		t.Errorf("Expected mobile kept verbatim, got %q", rows[0].Mobile)
	}
	if rows[1].LastName != "Lovelace" || rows[1].Mobile != "" {
		t.Errorf("Unexpected second row: %+v", rows[1])
	}
}

func TestParseCSVEmpty(t *testing.T) {
	rows, err := ParseCSV(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("Expected no rows, got %d", len(rows))
	}
}

func TestWriteParquetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.parquet")

	n, err := WriteParquet([]byte(exportedCSV), path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("Expected 2 rows written, got %d", n)
	}

	rows, err := ReadParquet(path)
	if err != nil {
		t.Fatalf("Unexpected error reading parquet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows read, got %d", len(rows))
	}
	if rows[0].Email != "['dev.yadav@odexglobal.com']" {
		t.Errorf("Unexpected email %q", rows[0].Email)
	}
	if rows[1].FirstName != "Ada" {
		t.Errorf("Unexpected first name %q", rows[1].FirstName)
	}
}
