package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/report"
)

func reportRevenue(cfg *config.Config, args []string) {
	opts := mustOptions(args)
	ds := mustLoad(opts)

	r := report.Generate(ds, opts.spec, cfg, time.Now())
	rev := r.Revenue

	fmt.Println(strings.Repeat("═", 78))
	fmt.Println("💰 REVENUE & LABOR")
	fmt.Printf("   Period: %s\n", describeSpec(opts.spec))
	fmt.Println(strings.Repeat("═", 78))
	fmt.Println()

	fmt.Println("Revenue")
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-44s %15s\n", "Appointment revenue (non-member visits):", report.FormatMoney(rev.AppointmentRevenue))
	fmt.Printf("  %-44s %15s\n", "Member visit revenue (excluded from total):", report.FormatMoney(rev.MemberVisitRevenue))
	fmt.Printf("  %-44s %15s\n", "Membership revenue:", report.FormatMoney(rev.MembershipRevenue))
	fmt.Printf("  %-44s %15s\n", "Total revenue:", report.FormatMoney(rev.TotalRevenue))
	fmt.Printf("  %-44s %15d\n", "Late cancellations (charged):", rev.LateCancellations)
	fmt.Println()

	fmt.Println("Labor")
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-44s %15s\n", "Appointment payouts:", report.FormatMoney(rev.Labor.AppointmentPayout))
	fmt.Printf("  %-44s %15s\n",
		fmt.Sprintf("Non-appointment hours (%.1fh @ $%.2f/h):", rev.Labor.NonApptHours, cfg.BaseHourlyRate),
		report.FormatMoney(rev.Labor.NonApptCost))
	for _, sc := range rev.Labor.SalaryCosts {
		fmt.Printf("  %-44s %15s\n",
			fmt.Sprintf("Salary — %s (%d days):", sc.Name, sc.DaysWorked),
			report.FormatMoney(sc.Cost))
	}
	fmt.Printf("  %-44s %15s\n", "Total labor:", report.FormatMoney(rev.Labor.Total))
	fmt.Println()

	fmt.Println("Profit")
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-44s %15s\n", "Net profit:", report.FormatMoney(rev.Profit.NetProfit))
	fmt.Printf("  %-44s %15s\n", "Profit margin:", report.FormatPercent(rev.Profit.ProfitMargin))
	fmt.Println()

	fmt.Println("Fees")
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-44s %15s\n", "Franchise fee:", report.FormatMoney(rev.Fees.FranchiseFee))
	fmt.Printf("  %-44s %15s\n", "Brand fund:", report.FormatMoney(rev.Fees.BrandFund))
	fmt.Printf("  %-44s %15s\n", "Card processing fees:", report.FormatMoney(rev.Fees.CCFees))
	fmt.Printf("  %-44s %15s\n", "Net after fees:", report.FormatMoney(rev.Fees.NetAfterFees))
	fmt.Println()

	if len(r.Utilization) > 0 {
		fmt.Println("Staff Utilization")
		fmt.Println(strings.Repeat("─", 78))
		fmt.Printf("  %-30s %12s %12s %12s\n", "Employee", "Appt Hrs", "Clocked", "Utilization")
		for _, u := range r.Utilization {
			fmt.Printf("  %-30s %11.1fh %11.1fh %12s\n",
				truncateName(u.Employee, 30), u.AppointmentHrs, u.ClockedHrs,
				report.FormatPercent(u.UtilizationRate))
		}
		fmt.Println()
	}
}

func truncateName(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
