// Package dataview models the tabular input the host binds to the viewer:
// role-tagged columns, rows of cells and formatting objects.
package dataview

import (
	"fmt"
	"strings"

	"github.com/domonda/go-retable/csvtable"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

// Data roles a column can be bound to.
const (
	RolePdfData  = "pdfData"
	RoleFileName = "pdfFileName"
	RoleTooltip  = "tooltipData"
)

// Column is the metadata of one bound field.
type Column struct {
	DisplayName string          `json:"displayName"`
	Roles       map[string]bool `json:"roles"`

	// IsMeasure is set for computed or aggregated values.
	IsMeasure bool `json:"isMeasure"`
}

// HasRole reports whether the column is bound to role.
func (c Column) HasRole(role string) bool {
	_, ok := c.Roles[role]
	return ok
}

// Objects holds formatting values keyed by object then property name.
type Objects map[string]map[string]any

// DataView is one host update's worth of data.
type DataView struct {
	Columns []Column `json:"columns"`
	Rows    [][]any  `json:"rows"`
	Objects Objects  `json:"objects,omitempty"`
}

// Field is a column located by role.
type Field struct {
	Index  int
	Column Column
}

// HasColumns reports whether any field is bound at all.
func (d *DataView) HasColumns() bool {
	return d != nil && len(d.Columns) > 0
}

// Field returns the first column bound to role. The boolean is false when
// no column carries the role.
func (d *DataView) Field(role string) (Field, bool) {
	if d == nil {
		return Field{}, false
	}
	for i, c := range d.Columns {
		if c.HasRole(role) {
			return Field{Index: i, Column: c}, true
		}
	}
	return Field{}, false
}

// Cell returns the text of field f in row. Missing rows, short rows and nil
// cells yield false.
func (d *DataView) Cell(row int, f Field) (string, bool) {
	if d == nil || row < 0 || row >= len(d.Rows) {
		return "", false
	}
	cells := d.Rows[row]
	if f.Index < 0 || f.Index >= len(cells) || cells[f.Index] == nil {
		return "", false
	}
	switch v := cells[f.Index].(type) {
	case string:
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}

// -----------------------------------------------------------------------------
// CSV Input
// -----------------------------------------------------------------------------

// MeasureSuffix marks a CSV header as a computed field, e.g. "pdfData:measure".
const MeasureSuffix = ":measure"

// FromCSV builds a data view from CSV text. The header row names the role of
// each column; separator and encoding are detected.
func FromCSV(data []byte) (*DataView, error) {
	rows, _, err := csvtable.ParseDetectFormat(data, nil)
	if err != nil {
		return nil, werrors.WrapValidation(err, werrors.ErrDataViewInvalid, "cannot parse csv data")
	}
	if len(rows) == 0 || isBlank(rows[0]) {
		return nil, werrors.AttachSuggestions(werrors.ValidationError(werrors.ErrDataViewInvalid,
			"csv data has no header row"))
	}

	dv := &DataView{Rows: [][]any{}}
	for _, header := range rows[0] {
		header = strings.TrimSpace(header)
		measure := strings.HasSuffix(header, MeasureSuffix)
		role := strings.TrimSuffix(header, MeasureSuffix)
		dv.Columns = append(dv.Columns, Column{
			DisplayName: role,
			Roles:       map[string]bool{role: true},
			IsMeasure:   measure,
		})
	}

	for _, record := range rows[1:] {
		if isBlank(record) {
			continue
		}
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = cell
		}
		dv.Rows = append(dv.Rows, row)
	}
	return dv, nil
}

// FromPayload is a single-row view with a static pdf column and a file name.
func FromPayload(base64Data, fileName string) *DataView {
	return &DataView{
		Columns: []Column{
			{DisplayName: "PDF", Roles: map[string]bool{RolePdfData: true}},
			{DisplayName: "File name", Roles: map[string]bool{RoleFileName: true}},
		},
		Rows: [][]any{{base64Data, fileName}},
	}
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
