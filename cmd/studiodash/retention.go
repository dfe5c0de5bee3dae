package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/filter"
	"github.com/franops/studiodash/internal/metrics"
	"github.com/franops/studiodash/internal/report"
)

func reportRetention(cfg *config.Config, args []string) {
	opts := mustOptions(args)
	ds := mustLoad(opts)

	rec := filter.Apply(ds, opts.spec)
	rec.Memberships = metrics.MarkLifecycle(rec.Memberships)

	leads := rec.Leads
	if len(rec.ConvertedLeads) > 0 {
		leads = rec.ConvertedLeads
	}
	profiles := metrics.BuildCustomerProfiles(rec.Appointments, rec.Memberships, leads)
	ret := metrics.ComputeRetention(profiles)
	atRisk := metrics.AtRiskClients(profiles, ret.AtRiskThresholdDays, time.Now())

	fmt.Println(strings.Repeat("═", 78))
	fmt.Println("🔁 CLIENT RETENTION")
	fmt.Printf("   Period: %s\n", describeSpec(opts.spec))
	fmt.Println(strings.Repeat("═", 78))
	fmt.Println()

	fmt.Printf("  %-38s %15d\n", "Unique clients:", ret.UniqueClients)
	fmt.Printf("  %-38s %15d\n", "Returning clients:", ret.ReturningClients)
	fmt.Printf("  %-38s %15s\n", "Retention rate:", report.FormatPercent(ret.RetentionRate))
	fmt.Printf("  %-38s %15.1f\n", "Avg days between visits:", ret.AvgDaysBetweenVisits)
	fmt.Printf("  %-38s %15.1f\n", "At-risk threshold (days):", ret.AtRiskThresholdDays)
	fmt.Println()

	fmt.Println("Visit Distribution")
	fmt.Println(strings.Repeat("─", 78))
	for _, b := range ret.Buckets {
		bar := strings.Repeat("█", barWidth(b.Count, ret.UniqueClients, 40))
		fmt.Printf("  %-8s %6d  %s\n", b.Label, b.Count, bar)
	}
	fmt.Println()

	if len(atRisk) > 0 {
		fmt.Printf("⚠️  At-Risk Clients (%d past the %.0f-day threshold)\n", len(atRisk), ret.AtRiskThresholdDays)
		fmt.Println(strings.Repeat("─", 78))
		fmt.Printf("  %-32s %8s %12s %12s\n", "Client", "Visits", "Last Visit", "LTV")
		for i, p := range atRisk {
			if i >= 15 {
				fmt.Printf("  ... and %d more\n", len(atRisk)-i)
				break
			}
			last := "never"
			if p.LastVisit != nil {
				last = p.LastVisit.Format("2006-01-02")
			}
			name := p.Name
			if name == "" {
				name = p.Email
			}
			fmt.Printf("  %-32s %8d %12s %12s\n",
				truncateName(name, 32), p.Visits, last, report.FormatMoney(p.LTV))
		}
		fmt.Println()
	}
}

// barWidth scales a count into a histogram bar capped at max characters.
func barWidth(count, total, max int) int {
	if total == 0 || count == 0 {
		return 0
	}
	w := count * max / total
	if w == 0 {
		w = 1
	}
	return w
}
