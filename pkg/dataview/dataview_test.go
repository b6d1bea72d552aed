package dataview

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	werrors "github.com/DanielSallander/Pdf-Viewer/pkg/errors"
)

func TestFieldLookup(t *testing.T) {
	dv := &DataView{
		Columns: []Column{
			{DisplayName: "Name", Roles: map[string]bool{RoleFileName: true}},
			{DisplayName: "Doc", Roles: map[string]bool{RolePdfData: true}, IsMeasure: true},
		},
		Rows: [][]any{{"report", "QUJD"}},
	}

	f, ok := dv.Field(RolePdfData)
	require.True(t, ok)
	require.Equal(t, 1, f.Index)
	require.True(t, f.Column.IsMeasure)

	_, ok = dv.Field(RoleTooltip)
	require.False(t, ok, "unbound role must report absence")

	v, ok := dv.Cell(0, f)
	require.True(t, ok)
	require.Equal(t, "QUJD", v)

	_, ok = dv.Cell(1, f)
	require.False(t, ok, "row out of range")
	_, ok = dv.Cell(0, Field{Index: 5})
	require.False(t, ok, "column out of range")
}

func TestCellNilAndNumbers(t *testing.T) {
	dv := &DataView{Rows: [][]any{{nil, 42.0}}}
	_, ok := dv.Cell(0, Field{Index: 0})
	require.False(t, ok)
	v, ok := dv.Cell(0, Field{Index: 1})
	require.True(t, ok)
	require.Equal(t, "42", v)
}

func TestNilDataView(t *testing.T) {
	var dv *DataView
	require.False(t, dv.HasColumns())
	_, ok := dv.Field(RolePdfData)
	require.False(t, ok)
}

func TestFromCSV(t *testing.T) {
	data := []byte("pdfData;pdfFileName;tooltipData:measure\nJVBERi0xLjQK;report;Total 12\n\n")

	dv, err := FromCSV(data)
	require.NoError(t, err)
	require.Len(t, dv.Columns, 3)
	require.Len(t, dv.Rows, 1)

	tip, ok := dv.Field(RoleTooltip)
	require.True(t, ok)
	require.True(t, tip.Column.IsMeasure)

	name, _ := dv.Field(RoleFileName)
	v, _ := dv.Cell(0, name)
	require.Equal(t, "report", v)
}

func TestFromCSV_Empty(t *testing.T) {
	_, err := FromCSV([]byte(""))
	require.True(t, werrors.IsCode(err, werrors.ErrDataViewInvalid))
}

func TestJSONShape(t *testing.T) {
	raw := `{"columns":[{"displayName":"Doc","roles":{"pdfData":true},"isMeasure":false}],
		"rows":[["QUJD"]],"objects":{"dataCard":{"showHeader":false}}}`
	var dv DataView
	require.NoError(t, json.Unmarshal([]byte(raw), &dv))
	require.True(t, dv.HasColumns())
	require.Equal(t, false, dv.Objects["dataCard"]["showHeader"])
}

func TestFromPayload(t *testing.T) {
	dv := FromPayload("QUJD", "a")
	f, ok := dv.Field(RolePdfData)
	require.True(t, ok)
	v, _ := dv.Cell(0, f)
	require.Equal(t, "QUJD", v)
}
