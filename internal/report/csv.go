package report

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/franops/studiodash/internal/metrics"
)

// WriteCSV writes a header row and data rows as RFC-4180 CSV. Fields with
// commas, quotes, or newlines are quoted and inner quotes doubled by the
// encoder, so a re-parse recovers the exact field values.
func WriteCSV(w io.Writer, headers []string, rows [][]string) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SegmentCSVHeaders is the column set of a segment export.
var SegmentCSVHeaders = []string{
	"Email", "Name", "Visits", "First Visit", "Last Visit",
	"Revenue", "LTV", "Active Member",
}

// SegmentCSVRows flattens customer profiles for export.
func SegmentCSVRows(profiles []*metrics.CustomerProfile) [][]string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		first, last := "", ""
		if p.FirstVisit != nil {
			first = p.FirstVisit.Format("2006-01-02")
		}
		if p.LastVisit != nil {
			last = p.LastVisit.Format("2006-01-02")
		}
		member := "No"
		if p.HasActiveMembership {
			member = "Yes"
		}
		rows = append(rows, []string{
			p.Email,
			p.Name,
			fmt.Sprintf("%d", p.Visits),
			first,
			last,
			p.Revenue.StringFixed(2),
			p.LTV.StringFixed(2),
			member,
		})
	}
	return rows
}

// ExportSegment writes one segment list as CSV.
func ExportSegment(w io.Writer, profiles []*metrics.CustomerProfile) error {
	return WriteCSV(w, SegmentCSVHeaders, SegmentCSVRows(profiles))
}
