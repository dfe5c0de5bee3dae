package loader

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franops/studiodash/internal/parser"
)

const appointmentsCSV = `Date,Practitioner,Customer Email,Revenue,Time (h)
2026-07-10,Amy Jones,kim@x.com,$90.00,1.0
2026-07-11,Amy Jones,lou@x.com,$150.00,1.0
`

const membershipsCSV = `Purchase ID,Customer Email,Membership Name,Membership Type,Paid Amount,Bought Date/Time (GMT)
P-1,kim@x.com,Monthly Unlimited,Subscription,$89.00,2026-07-02
`

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "appointments_july.csv"), []byte(appointmentsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Memberships (Jul 2026).csv"), []byte(membershipsCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "random_notes.csv"), []byte("a,b\n1,2\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("not csv"), 0o644))

	ds, result, err := Load(dir)
	require.NoError(t, err)

	assert.Len(t, ds.Appointments, 2)
	assert.Len(t, ds.Memberships, 1)
	assert.Equal(t, 2, result.FilesParsed)
	assert.Equal(t, 1, result.FilesSkipped)
	assert.Equal(t, 2, result.RowCounts[parser.SourceAppointments])
	assert.Equal(t, 1, result.RowCounts[parser.SourceMemberships])
}

func TestLoadZipBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exports.zip")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	w, err := zw.Create("appointments.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte(appointmentsCSV))
	require.NoError(t, err)
	w, err = zw.Create("exports/memberships.csv")
	require.NoError(t, err)
	_, err = w.Write([]byte(membershipsCSV))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	ds, result, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, ds.Appointments, 2)
	assert.Len(t, ds.Memberships, 1)
	assert.Equal(t, 2, result.FilesParsed)
}

func TestLoadRejectsUnknownPaths(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	plain := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(plain, []byte("x"), 0o644))
	_, _, err = Load(plain)
	assert.Error(t, err)
}

func TestLoadEmptyDirectory(t *testing.T) {
	_, _, err := Load(t.TempDir())
	assert.Error(t, err)
}
