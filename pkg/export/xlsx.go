package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const summarySheet = "Summary"

// XLSXExporter renders documents into a workbook with one sheet per section.
type XLSXExporter struct{}

// NewXLSXExporter constructs an XLSX exporter.
func NewXLSXExporter() *XLSXExporter {
	return &XLSXExporter{}
}

func (e *XLSXExporter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (e *XLSXExporter) Extension() string { return "xlsx" }

// Render writes the summary lines to a leading sheet followed by every section.
func (e *XLSXExporter) Render(doc Document) ([]byte, error) {
	if len(doc.Sections) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one section")
	}
	f := excelize.NewFile()
	defer f.Close()

	defaultSheet := f.GetSheetName(0)
	if err := f.SetSheetName(defaultSheet, summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if doc.Title != "" {
		if err := f.SetCellValue(summarySheet, "A1", doc.Title); err != nil {
			return nil, fmt.Errorf("write title: %w", err)
		}
	}
	for i, line := range doc.Summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetCellValue(summarySheet, cell, line); err != nil {
			return nil, fmt.Errorf("write summary: %w", err)
		}
	}

	for i, section := range doc.Sections {
		if len(section.Data.Headers) == 0 {
			return nil, fmt.Errorf("xlsx section %q has no headers", section.Name)
		}
		name := sheetName(section.Name, i)
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
		header := make([]interface{}, len(section.Data.Headers))
		for j, h := range section.Data.Headers {
			header[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return nil, fmt.Errorf("write headers: %w", err)
		}
		for r, row := range section.Data.Rows {
			values := make([]interface{}, len(section.Data.Headers))
			for j, h := range section.Data.Headers {
				values[j] = row[h]
			}
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return nil, fmt.Errorf("write row: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// sheetName keeps names within the 31 character worksheet limit.
func sheetName(name string, index int) string {
	if name == "" || name == summarySheet {
		name = fmt.Sprintf("Section %d", index+1)
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
