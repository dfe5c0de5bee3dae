package main

import (
	"fmt"
	"strings"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/filter"
	"github.com/franops/studiodash/internal/metrics"
	"github.com/franops/studiodash/internal/report"
)

func reportGaps(cfg *config.Config, args []string) {
	opts := mustOptions(args)
	ds := mustLoad(opts)

	rec := filter.Apply(ds, opts.spec)
	analysis := metrics.AnalyzeGaps(rec.Appointments, cfg.GapHourlyRevenue, opts.topN)

	fmt.Println(strings.Repeat("═", 78))
	fmt.Println("🕳️  SCHEDULING GAPS")
	fmt.Printf("   Period: %s · Assumed revenue: $%.0f/bookable hour\n",
		describeSpec(opts.spec), cfg.GapHourlyRevenue)
	fmt.Println(strings.Repeat("═", 78))
	fmt.Println()

	fmt.Printf("  %-38s %14.1fh\n", "Total idle time:", analysis.TotalGapHours)
	fmt.Printf("  %-38s %15s\n", "Potential revenue:", report.FormatMoney(analysis.PotentialRevenue))
	fmt.Printf("  %-38s %15s\n", "Lost wages (practitioner share):", report.FormatMoney(analysis.LostWages))
	fmt.Printf("  %-38s %15s\n", "Cost to business:", report.FormatMoney(analysis.CostToBusiness))
	fmt.Printf("  %-38s %15s\n", "Avg utilization:", report.FormatPercent(analysis.AvgUtilization))
	fmt.Printf("  %-38s %15s\n", "Avg payout rate:", report.FormatPercent(analysis.AvgPayoutRate*100))
	fmt.Println()

	if len(analysis.Days) == 0 {
		fmt.Println("✅ No scheduling gaps over 15 minutes in the selected period")
		return
	}

	fmt.Printf("Worst Days (top %d by idle time)\n", opts.topN)
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-26s %-12s %6s %6s %10s %12s\n",
		"Practitioner", "Date", "Appts", "Gaps", "Idle", "Utilization")
	for _, d := range analysis.Days {
		fmt.Printf("  %-26s %-12s %6d %6d %9.0fm %12s\n",
			truncateName(d.Practitioner, 26), d.Date.Format("2006-01-02"),
			d.Appointments, d.GapCount, d.GapMinutes,
			report.FormatPercent(d.UtilizationRate))
	}
	fmt.Println()
}
