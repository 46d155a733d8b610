package dto

// ReportFormat selects the representation of a report response.
type ReportFormat string

const (
	ReportFormatJSON ReportFormat = "json"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatXLSX ReportFormat = "xlsx"
)

// FrequencyReportQuery holds the query string of the frequency report.
type FrequencyReportQuery struct {
	DateFrom string       `form:"date_from" validate:"required,datetime=2006-01-02"`
	DateTo   string       `form:"date_to" validate:"required,datetime=2006-01-02"`
	Format   ReportFormat `form:"format" validate:"omitempty,oneof=json csv pdf xlsx"`
}

// PerformanceReportQuery holds the query string of the performance report.
type PerformanceReportQuery struct {
	Period string       `form:"period" validate:"omitempty,max=64"`
	Format ReportFormat `form:"format" validate:"omitempty,oneof=json csv pdf xlsx"`
}
