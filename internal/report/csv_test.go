package report

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franops/studiodash/internal/metrics"
)

func TestWriteCSVRoundTripsAwkwardFields(t *testing.T) {
	headers := []string{"Name", "Note"}
	rows := [][]string{
		{`Lee, Kim`, `said "see you next week"`},
		{"Multi\nline", "plain"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, headers, rows))

	// A standard reader must recover the exact field values.
	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	assert.Equal(t, headers, parsed[0])
	assert.Equal(t, rows[0], parsed[1])
	assert.Equal(t, rows[1], parsed[2])
}

func TestSegmentCSVRows(t *testing.T) {
	profiles := []*metrics.CustomerProfile{
		{
			Email:               "kim@x.com",
			Name:                "Kim Lee",
			Visits:              3,
			FirstVisit:          dt("2026-06-01"),
			LastVisit:           dt("2026-07-15"),
			Revenue:             money(360),
			LTV:                 money(640),
			HasActiveMembership: true,
		},
		{Email: "never@x.com", LTV: money(1200)},
	}

	rows := SegmentCSVRows(profiles)
	require.Len(t, rows, 2)

	assert.Equal(t, []string{
		"kim@x.com", "Kim Lee", "3", "2026-06-01", "2026-07-15",
		"360.00", "640.00", "Yes",
	}, rows[0])

	// Never-visited profiles export with blank visit dates.
	assert.Equal(t, "", rows[1][3])
	assert.Equal(t, "", rows[1][4])
	assert.Equal(t, "No", rows[1][7])
}

func TestExportSegment(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportSegment(&buf, nil))

	parsed, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 1)
	assert.Equal(t, SegmentCSVHeaders, parsed[0])
}
