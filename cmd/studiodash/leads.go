package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/metrics"
	"github.com/franops/studiodash/internal/report"
)

func reportLeads(cfg *config.Config, args []string) {
	opts := mustOptions(args)
	ds := mustLoad(opts)

	r := report.Generate(ds, opts.spec, cfg, time.Now())
	leads := r.Leads

	fmt.Println(strings.Repeat("═", 78))
	fmt.Println("🧲 LEADS & CONVERSION")
	fmt.Printf("   Period: %s\n", describeSpec(opts.spec))
	fmt.Println(strings.Repeat("═", 78))
	fmt.Println()

	source := "basic leads export (converted = became a customer)"
	if leads.FromConvertedSource {
		source = "converted-leads export (converted = has a Converted-to value)"
	}
	fmt.Printf("  %d leads from the %s\n", leads.TotalLeads, source)
	fmt.Println()

	if len(leads.BySource) > 0 {
		fmt.Println("By Lead Source")
		fmt.Println(strings.Repeat("─", 78))
		fmt.Printf("  %-28s %8s %10s %8s %14s\n", "Source", "Leads", "Converted", "Rate", "Total LTV")
		for _, g := range leads.BySource {
			fmt.Printf("  %-28s %8d %10d %7.1f%% %14s\n",
				truncateName(g.Name, 28), g.Count, g.Converted, g.ConversionRate,
				report.FormatMoney(g.TotalLTV))
		}
		fmt.Println()
	}

	if len(leads.ByLocation) > 0 {
		fmt.Println("By Home Location")
		fmt.Println(strings.Repeat("─", 78))
		fmt.Printf("  %-28s %8s %10s %8s\n", "Location", "Leads", "Converted", "Rate")
		for _, g := range leads.ByLocation {
			fmt.Printf("  %-28s %8d %10d %7.1f%%\n",
				truncateName(g.Name, 28), g.Count, g.Converted, g.ConversionRate)
		}
		fmt.Println()
	}

	if len(leads.CrossTab) > 0 {
		fmt.Println("Source by Location")
		fmt.Println(strings.Repeat("─", 78))
		fmt.Printf("  %-28s %-28s %8s\n", "Source", "Location", "Leads")
		sources := make([]string, 0, len(leads.CrossTab))
		for s := range leads.CrossTab {
			sources = append(sources, s)
		}
		sort.Strings(sources)
		for _, src := range sources {
			locations := make([]string, 0, len(leads.CrossTab[src]))
			for loc := range leads.CrossTab[src] {
				locations = append(locations, loc)
			}
			sort.Strings(locations)
			for _, loc := range locations {
				fmt.Printf("  %-28s %-28s %8d\n",
					truncateName(src, 28), truncateName(loc, 28), leads.CrossTab[src][loc])
			}
		}
		fmt.Println()
	}

	fmt.Println("Customer Journey")
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-28s %8s %12s %12s\n", "Stage", "Count", "Conversion", "Drop-off")
	for i, stage := range leads.Funnel {
		conv, drop := "—", "—"
		if i > 0 {
			conv = report.FormatPercent(stage.ConversionPct)
			drop = report.FormatPercent(stage.DropOffPct)
		}
		fmt.Printf("  %-28s %8d %12s %12s\n", stage.Name, stage.Count, conv, drop)
	}
	fmt.Println()

	if len(leads.Cohorts) > 0 {
		fmt.Println("LTV by Conversion Month")
		fmt.Println(strings.Repeat("─", 78))
		fmt.Printf("  %-10s %8s %14s %14s\n", "Month", "Leads", "Total LTV", "Avg LTV")
		for _, c := range leads.Cohorts {
			fmt.Printf("  %-10s %8d %14s %14s\n",
				c.Month, c.Count, report.FormatMoney(c.TotalLTV), report.FormatMoney(c.AvgLTV))
		}
		fmt.Println()
	}

	if opts.export != "" {
		exportSourceCSV(leads.BySource, opts.export)
	}
}

func exportSourceCSV(groups []metrics.GroupStats, path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("Error creating export file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	headers := []string{"Source", "Leads", "Converted", "Conversion Rate", "Total LTV"}
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		rows = append(rows, []string{
			g.Name,
			fmt.Sprintf("%d", g.Count),
			fmt.Sprintf("%d", g.Converted),
			fmt.Sprintf("%.1f", g.ConversionRate),
			g.TotalLTV.StringFixed(2),
		})
	}
	if err := report.WriteCSV(f, headers, rows); err != nil {
		fmt.Printf("Error writing export: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("📄 Exported %d lead sources to %s\n", len(rows), path)
}
