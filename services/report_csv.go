package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/yeremiapane/site-engineer-app/models"
)

var reportCSVHeader = []string{"Report Date", "Engineer", "Client", "Site", "Work Done", "Issues", "Submitted At"}

// WriteReportsCSV writes one row per report under a header row.
func WriteReportsCSV(w io.Writer, reports []models.ReportView) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportCSVHeader); err != nil {
		return err
	}
	for _, r := range reports {
		row := []string{
			r.ReportDate,
			r.EngineerName,
			r.ClientName,
			deref(r.SiteName),
			r.WorkDone,
			deref(r.Issues),
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReportsCSV(reports []models.ReportView) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteReportsCSV(&buf, reports); err != nil {
		return nil, fmt.Errorf("build reports csv: %w", err)
	}
	return buf.Bytes(), nil
}

// ReportsCSVFilename names an export after its date range.
func ReportsCSVFilename(reports []models.ReportView) string {
	if len(reports) == 0 {
		return "daily-reports.csv"
	}
	first, last := reports[0].ReportDate, reports[0].ReportDate
	for _, r := range reports[1:] {
		if r.ReportDate < first {
			first = r.ReportDate
		}
		if r.ReportDate > last {
			last = r.ReportDate
		}
	}
	if first == last {
		return fmt.Sprintf("daily-reports-%s.csv", first)
	}
	return fmt.Sprintf("daily-reports-%s_%s.csv", first, last)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
