package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/report"
)

func reportSummary(cfg *config.Config, args []string) {
	opts := mustOptions(args)
	ds := mustLoad(opts)

	r := report.Generate(ds, opts.spec, cfg, time.Now())

	fmt.Println(strings.Repeat("═", 78))
	fmt.Println("📊 STUDIO SUMMARY")
	fmt.Printf("   Period: %s\n", describeSpec(opts.spec))
	fmt.Println(strings.Repeat("═", 78))
	fmt.Println()

	fmt.Println("💰 Revenue & Profit")
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-38s %15s\n", "Total revenue:", report.FormatMoney(r.Revenue.TotalRevenue))
	fmt.Printf("  %-38s %15s\n", "Labor cost:", report.FormatMoney(r.Revenue.Labor.Total))
	fmt.Printf("  %-38s %15s\n", "Net profit:", report.FormatMoney(r.Revenue.Profit.NetProfit))
	fmt.Printf("  %-38s %15s\n", "Profit margin:", report.FormatPercent(r.Revenue.Profit.ProfitMargin))
	fmt.Printf("  %-38s %15s\n", "Net after fees:", report.FormatMoney(r.Revenue.Fees.NetAfterFees))
	fmt.Println()

	if r.Goals.HasAnyGoal {
		fmt.Println("🎯 Goals")
		fmt.Println(strings.Repeat("─", 78))
		if r.Goals.RevenueGoal > 0 {
			fmt.Printf("  %-38s %14s%%\n", fmt.Sprintf("Revenue vs $%.0f goal:", r.Goals.RevenueGoal),
				fmt.Sprintf("%.1f", r.Goals.RevenuePct))
		}
		if r.Goals.ApptGoal > 0 {
			fmt.Printf("  %-38s %15s\n", fmt.Sprintf("Appointments (%d of %d):", r.Goals.ApptCount, r.Goals.ApptGoal),
				report.FormatPercent(r.Goals.ApptPct))
		}
		if r.Goals.IntroGoal > 0 {
			fmt.Printf("  %-38s %15s\n", fmt.Sprintf("Intros (%d of %d):", r.Goals.IntroCount, r.Goals.IntroGoal),
				report.FormatPercent(r.Goals.IntroPct))
		}
		if !r.Goals.PeriodIsMonth {
			fmt.Println("  ⚠️  Goals are monthly; the selected period is not a single month")
		}
		fmt.Println()
	}

	fmt.Println("🔁 Retention")
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-38s %15d\n", "Unique clients:", r.Retention.UniqueClients)
	fmt.Printf("  %-38s %15d\n", "Returning clients:", r.Retention.ReturningClients)
	fmt.Printf("  %-38s %15s\n", "Retention rate:", report.FormatPercent(r.Retention.RetentionRate))
	fmt.Printf("  %-38s %15.1f\n", "Avg days between visits:", r.Retention.AvgDaysBetweenVisits)
	fmt.Println()

	fmt.Println("👥 Segments")
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  VIP: %d · Inactive members: %d · At risk: %d · New: %d · High freq: %d\n",
		r.Counts.VIP, r.Counts.InactivePaidMembers, r.Counts.AtRisk,
		r.Counts.NewClients, r.Counts.HighFrequency)
	fmt.Println()

	fmt.Println("🕳️  Scheduling Gaps")
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-38s %14.1fh\n", "Idle hours:", r.Gaps.TotalGapHours)
	fmt.Printf("  %-38s %15s\n", "Potential revenue:", report.FormatMoney(r.Gaps.PotentialRevenue))
	fmt.Printf("  %-38s %15s\n", "Cost to business:", report.FormatMoney(r.Gaps.CostToBusiness))
	fmt.Printf("  %-38s %15s\n", "Avg utilization:", report.FormatPercent(r.Gaps.AvgUtilization))
	fmt.Println()

	fmt.Println("📇 Memberships")
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-38s %15s\n", "MRR:", report.FormatMoney(r.Memberships.Stats.MRR))
	fmt.Printf("  New sales: %d · Renewals: %d · Churn: %s · Frozen: %s\n",
		r.Memberships.Stats.NewSales, r.Memberships.Stats.Renewals,
		report.FormatPercent(r.Memberships.Stats.ChurnRate),
		report.FormatPercent(r.Memberships.Stats.FrozenRate))
	fmt.Println()

	if len(r.Recommendations) > 0 {
		fmt.Println("💡 Recommendations")
		fmt.Println(strings.Repeat("─", 78))
		for _, rec := range r.Recommendations {
			fmt.Printf("  %s [%s] %s (%s)\n",
				priorityIcon(rec.Priority), strings.ToUpper(string(rec.Priority)),
				rec.Title, report.FormatMoney(rec.ImpactValue))
		}
		fmt.Println()
	}

	if opts.output != "" {
		writeHTML(r, opts.output)
	}
}

func writeHTML(r *report.SummaryReport, path string) {
	renderer, err := report.NewRenderer()
	if err != nil {
		fmt.Printf("Error preparing report template: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("Error creating report file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := renderer.RenderSummary(f, r); err != nil {
		fmt.Printf("Error rendering report: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("📄 HTML report written to %s\n", path)
}
