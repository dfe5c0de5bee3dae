package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/franops/studiodash/internal/filter"
	"github.com/franops/studiodash/internal/loader"
	"github.com/franops/studiodash/internal/parser"
)

// reportOptions holds every flag a report subcommand accepts. Flags that a
// given report does not use are simply ignored.
type reportOptions struct {
	dataPath string
	spec     filter.Spec
	topN     int
	output   string
	export   string
	segment  string
	tier     string
}

func parseReportFlags(args []string) (*reportOptions, error) {
	opts := &reportOptions{topN: 10}

	i := 0
	next := func(flag string) (string, error) {
		i++
		if i >= len(args) {
			return "", fmt.Errorf("%s requires a value", flag)
		}
		return args[i], nil
	}

	for ; i < len(args); i++ {
		var err error
		switch flag := args[i]; flag {
		case "--data":
			opts.dataPath, err = next(flag)
		case "--month":
			opts.spec.Month, err = next(flag)
		case "--from":
			var v string
			if v, err = next(flag); err == nil {
				t, perr := time.Parse("2006-01-02", v)
				if perr != nil {
					err = fmt.Errorf("invalid --from date %q (want YYYY-MM-DD)", v)
					break
				}
				opts.spec.StartDate = &t
			}
		case "--to":
			var v string
			if v, err = next(flag); err == nil {
				t, perr := time.Parse("2006-01-02", v)
				if perr != nil {
					err = fmt.Errorf("invalid --to date %q (want YYYY-MM-DD)", v)
					break
				}
				// Inclusive: records on the --to day itself pass the window.
				t = t.Add(24*time.Hour - time.Second)
				opts.spec.EndDate = &t
			}
		case "--location":
			opts.spec.Location, err = next(flag)
		case "--practitioner":
			opts.spec.Practitioner, err = next(flag)
		case "--service":
			opts.spec.Service, err = next(flag)
		case "--top":
			var v string
			if v, err = next(flag); err == nil {
				n, perr := strconv.Atoi(v)
				if perr != nil || n < 1 {
					err = fmt.Errorf("invalid --top value %q (want a positive integer)", v)
					break
				}
				opts.topN = n
			}
		case "--output":
			opts.output, err = next(flag)
		case "--export":
			opts.export, err = next(flag)
		case "--segment":
			opts.segment, err = next(flag)
		case "--tier":
			opts.tier, err = next(flag)
		default:
			return nil, fmt.Errorf("unknown flag: %s", flag)
		}
		if err != nil {
			return nil, err
		}
	}

	if opts.dataPath == "" {
		return nil, fmt.Errorf("--data is required")
	}
	if opts.spec.Month != "" && opts.spec.Month != filter.MonthAll {
		if _, _, err := filter.ParseMonth(opts.spec.Month); err != nil {
			return nil, err
		}
	}
	if opts.spec.StartDate != nil && opts.spec.EndDate != nil &&
		opts.spec.EndDate.Before(*opts.spec.StartDate) {
		return nil, fmt.Errorf("--to date is before --from date")
	}

	return opts, nil
}

// mustOptions parses flags and exits with a usage hint on error.
func mustOptions(args []string) *reportOptions {
	opts, err := parseReportFlags(args)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		fmt.Println("Run 'studiodash help' for usage.")
		os.Exit(1)
	}
	return opts
}

// mustLoad reads the export bundle and exits on failure.
func mustLoad(opts *reportOptions) *parser.Dataset {
	ds, result, err := loader.Load(opts.dataPath)
	if err != nil {
		fmt.Printf("Error loading data: %v\n", err)
		os.Exit(1)
	}

	total := 0
	for _, n := range result.RowCounts {
		total += n
	}
	fmt.Printf("✅ Loaded %d files (%d rows) in %s\n",
		result.FilesParsed, total, result.Duration.Round(time.Millisecond))
	if result.FilesSkipped > 0 {
		fmt.Printf("⚠️  Skipped %d unrecognized files\n", result.FilesSkipped)
	}
	fmt.Println()

	return ds
}

func describeSpec(spec filter.Spec) string {
	s := "all data"
	if spec.Month != "" && spec.Month != filter.MonthAll {
		s = "month " + spec.Month
	}
	if spec.StartDate != nil || spec.EndDate != nil {
		from, to := "…", "…"
		if spec.StartDate != nil {
			from = spec.StartDate.Format("2006-01-02")
		}
		if spec.EndDate != nil {
			to = spec.EndDate.Format("2006-01-02")
		}
		s = from + " to " + to
	}
	if spec.Location != "" {
		s += " · " + spec.Location
	}
	if spec.Practitioner != "" {
		s += " · " + spec.Practitioner
	}
	if spec.Service != "" {
		s += " · " + spec.Service
	}
	return s
}
