// Package loader reads an export bundle, a directory of CSV files or a ZIP
// archive, into a parser.Dataset. Files route to sources by filename; files
// that match no source are skipped with a warning rather than failing the
// whole load.
package loader

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"

	"github.com/franops/studiodash/internal/parser"
)

// LoadResult describes what a load brought in.
type LoadResult struct {
	FilesParsed  int
	FilesSkipped int
	RowCounts    map[parser.SourceKind]int
	Duration     time.Duration
}

// Load reads a dataset from a directory or a .zip bundle.
func Load(path string) (*parser.Dataset, *LoadResult, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read data path: %w", err)
	}

	if info.IsDir() {
		return loadDir(path)
	}
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return loadZip(path)
	}
	return nil, nil, fmt.Errorf("data path must be a directory or a .zip bundle: %s", path)
}

func loadDir(dir string) (*parser.Dataset, *LoadResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list data directory: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("no CSV files found in %s", dir)
	}

	start := time.Now()
	ds := &parser.Dataset{}
	result := newResult()
	bar := progressbar.Default(int64(len(files)))
	csvParser := parser.NewCSVParser()

	for _, path := range files {
		if err := loadFile(csvParser, ds, result, path); err != nil {
			return nil, nil, err
		}
		_ = bar.Add(1)
	}

	result.Duration = time.Since(start)
	return ds, result, nil
}

func loadFile(p *parser.CSVParser, ds *parser.Dataset, result *LoadResult, path string) error {
	kind, ok := parser.DetectSource(path)
	if !ok {
		log.WithField("file", filepath.Base(path)).Warn("unrecognized export file, skipping")
		result.FilesSkipped++
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	rows, err := p.ParseInto(ds, kind, f)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	result.FilesParsed++
	result.RowCounts[kind] += rows
	log.WithFields(log.Fields{
		"file":   filepath.Base(path),
		"source": kind,
		"rows":   rows,
	}).Info("parsed export file")

	return nil
}

func loadZip(path string) (*parser.Dataset, *LoadResult, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open zip bundle: %w", err)
	}
	defer zr.Close()

	var csvFiles []*zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !strings.EqualFold(filepath.Ext(f.Name), ".csv") {
			continue
		}
		csvFiles = append(csvFiles, f)
	}
	if len(csvFiles) == 0 {
		return nil, nil, fmt.Errorf("no CSV files found in %s", path)
	}

	start := time.Now()
	ds := &parser.Dataset{}
	result := newResult()
	bar := progressbar.Default(int64(len(csvFiles)))
	csvParser := parser.NewCSVParser()

	for _, zf := range csvFiles {
		if err := loadZipEntry(csvParser, ds, result, zf); err != nil {
			return nil, nil, err
		}
		_ = bar.Add(1)
	}

	result.Duration = time.Since(start)
	return ds, result, nil
}

func loadZipEntry(p *parser.CSVParser, ds *parser.Dataset, result *LoadResult, zf *zip.File) error {
	kind, ok := parser.DetectSource(zf.Name)
	if !ok {
		log.WithField("file", zf.Name).Warn("unrecognized export file in bundle, skipping")
		result.FilesSkipped++
		return nil
	}

	rc, err := zf.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s in bundle: %w", zf.Name, err)
	}
	defer rc.Close()

	rows, err := p.ParseInto(ds, kind, rc)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", zf.Name, err)
	}

	result.FilesParsed++
	result.RowCounts[kind] += rows
	log.WithFields(log.Fields{
		"file":   zf.Name,
		"source": kind,
		"rows":   rows,
	}).Info("parsed export file")

	return nil
}

func newResult() *LoadResult {
	return &LoadResult{RowCounts: make(map[parser.SourceKind]int)}
}
