package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/report"
)

func reportMemberships(cfg *config.Config, args []string) {
	opts := mustOptions(args)
	ds := mustLoad(opts)

	r := report.Generate(ds, opts.spec, cfg, time.Now())
	m := r.Memberships

	fmt.Println(strings.Repeat("═", 78))
	fmt.Println("📇 MEMBERSHIP LIFECYCLE")
	fmt.Printf("   Period: %s\n", describeSpec(opts.spec))
	fmt.Println(strings.Repeat("═", 78))
	fmt.Println()

	fmt.Printf("  %-38s %15d\n", "Memberships sold:", m.Stats.Total)
	fmt.Printf("  %-38s %15d\n", "New sales:", m.Stats.NewSales)
	fmt.Printf("  %-38s %15d\n", "Renewals:", m.Stats.Renewals)
	fmt.Printf("  %-38s %15s\n", "MRR (active subscriptions):", report.FormatMoney(m.Stats.MRR))
	fmt.Printf("  %-38s %15s\n", "Total paid:", report.FormatMoney(m.Stats.TotalPaid))
	fmt.Printf("  %-38s %15s\n", "Total refunded:", report.FormatMoney(m.Stats.TotalRefunded))
	fmt.Printf("  %-38s %15s\n", "Churn rate:", report.FormatPercent(m.Stats.ChurnRate))
	fmt.Printf("  %-38s %15s\n", "Frozen rate:", report.FormatPercent(m.Stats.FrozenRate))
	fmt.Printf("  %-38s %15s\n", "Refund rate:", report.FormatPercent(m.Stats.RefundRate))
	fmt.Println()

	if len(m.StaffSales) > 0 {
		fmt.Println("Sales by Staff (credited to the customer's first seller)")
		fmt.Println(strings.Repeat("─", 78))
		fmt.Printf("  %-30s %10s %10s %16s\n", "Staff", "New", "Renewals", "Revenue")
		for _, s := range m.StaffSales {
			fmt.Printf("  %-30s %10d %10d %16s\n",
				truncateName(s.Staff, 30), s.NewSales, s.Renewals, report.FormatMoney(s.Revenue))
		}
		fmt.Println()
	}

	if len(m.Commissions) > 0 {
		fmt.Println("Commissions")
		fmt.Println(strings.Repeat("─", 78))
		fmt.Printf("  %-26s %12s %12s %12s %12s\n", "Employee", "Membership", "Product", "Other", "Total")
		for _, c := range m.Commissions {
			fmt.Printf("  %-26s %12s %12s %12s %12s\n",
				truncateName(c.Employee, 26),
				report.FormatMoney(c.Membership), report.FormatMoney(c.Product),
				report.FormatMoney(c.Other), report.FormatMoney(c.Total))
		}
		fmt.Println()
	}

	if len(m.CancellationReasons) > 0 {
		fmt.Println("Cancellation Reasons")
		fmt.Println(strings.Repeat("─", 78))
		for _, g := range m.CancellationReasons {
			fmt.Printf("  %-50s %6d\n", truncateName(g.Name, 50), g.Count)
		}
		fmt.Println()
	}
}
