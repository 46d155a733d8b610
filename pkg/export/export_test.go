package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDocument() Document {
	return Document{
		Title:   "Frequency report",
		Summary: []string{"Total sessions: 4"},
		Sections: []Section{{
			Name: "Students",
			Data: Dataset{
				Headers: []string{"student_id", "percentage"},
				Rows: []map[string]string{
					{"student_id": "stu-1", "percentage": "75.00"},
					{"student_id": "stu-2", "percentage": "100.00"},
				},
			},
		}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDocument())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Total sessions: 4", lines[0])
	assert.Equal(t, "student_id,percentage", lines[2])
	assert.Equal(t, "stu-1,75.00", lines[3])
}

func TestCSVExporterRequiresSections(t *testing.T) {
	_, err := NewCSVExporter().Render(Document{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDocument())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Students")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"student_id", "percentage"}, rows[0])
	assert.Equal(t, []string{"stu-2", "100.00"}, rows[2])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.Equal(t, "Frequency report", summary[0][0])
}

func TestSheetNameTruncates(t *testing.T) {
	assert.Len(t, sheetName(strings.Repeat("x", 40), 0), 31)
	assert.Equal(t, "Section 2", sheetName("", 1))
}
