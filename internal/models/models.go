package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// NotDetected is displayed for fields the service did not extract
const NotDetected = "Not detected"

// ProcessingResult is the single result object returned by /process-cards
type ProcessingResult struct {
	Success        bool           `json:"success"`
	StructuredData StructuredData `json:"structured_data,omitempty"`
	VCard          string         `json:"vcard,omitempty"`
	RawText        string         `json:"raw_text,omitempty"`
	ErrorMessage   string         `json:"error_message,omitempty"`
}

// StructuredData maps a contact field name to its extracted value(s)
type StructuredData map[string]FieldValue

// Field is one entry of the contact field catalogue
type Field struct {
	Key   string
	Label string
}

// Fields lists the contact attributes in display order
var Fields = []Field{
	{Key: "first_name", Label: "First Name"},
	{Key: "middle_name", Label: "Middle Name"},
	{Key: "last_name", Label: "Last Name"},
	{Key: "company_name", Label: "Company"},
	{Key: "position", Label: "Position"},
	{Key: "department", Label: "Department"},
	{Key: "mobile", Label: "Mobile Phone"},
	{Key: "telephone", Label: "Office Phone"},
	{Key: "extension", Label: "Extension"},
	{Key: "email", Label: "Email"},
	{Key: "website", Label: "Website"},
	{Key: "address", Label: "Address"},
	{Key: "notes", Label: "Additional Notes"},
}

// FieldKeys returns the catalogue keys in display order
func FieldKeys() []string {
	keys := make([]string, 0, len(Fields))
	for _, f := range Fields {
		keys = append(keys, f.Key)
	}
	return keys
}

// Display returns the value for key as shown to the user
func (d StructuredData) Display(key string) string {
	value := d[key].String()
	if value == "" {
		return NotDetected
	}
	return value
}

// FieldValue holds either a single string or a list of strings.
// A single string is stored as a one-element list.
type FieldValue []string

// String joins multiple values with ", "
func (v FieldValue) String() string {
	return strings.Join(v, ", ")
}

func (v *FieldValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = nil
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = FieldValue{s}
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		values := make(FieldValue, 0, len(raw))
		for _, item := range raw {
			var s string
			if err := json.Unmarshal(item, &s); err != nil {
				// numbers and booleans keep their JSON text
				s = string(bytes.TrimSpace(item))
			}
			values = append(values, s)
		}
		*v = values
	case '{':
		return fmt.Errorf("unsupported field value: %s", data)
	default:
		*v = FieldValue{string(data)}
	}
	return nil
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch len(v) {
	case 0:
		return []byte("null"), nil
	case 1:
		return json.Marshal(v[0])
	default:
		return json.Marshal([]string(v))
	}
}
