// Package metrics contains the pure computation functions of the dashboard:
// revenue and labor, retention and segmentation, scheduling gaps, the leads
// funnel, membership lifecycle and the recommendation rules. Everything here
// operates on filtered in-memory slices and returns plain values; nothing
// logs, caches, or touches I/O.
package metrics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/parser"
)

// ActiveMemberEmails collects the emails of customers holding an unexpired
// membership. Their visit revenue is already captured in membership revenue
// and must not be counted again on the appointment side.
func ActiveMemberEmails(memberships []parser.Membership) map[string]struct{} {
	active := make(map[string]struct{})
	for _, m := range memberships {
		if !m.Expired && m.CustomerEmail != "" {
			active[m.CustomerEmail] = struct{}{}
		}
	}
	return active
}

// RevenueBreakdown splits raw appointment revenue into the member-excluded
// portion and the portion attributed to active members. NonMember + Member
// always equals the raw total.
type RevenueBreakdown struct {
	NonMember decimal.Decimal
	Member    decimal.Decimal
	Total     decimal.Decimal
}

// AppointmentRevenue sums appointment revenue excluding rows whose customer
// email is in the active-member set.
func AppointmentRevenue(appts []parser.Appointment, activeMembers map[string]struct{}) decimal.Decimal {
	return SplitAppointmentRevenue(appts, activeMembers).NonMember
}

// SplitAppointmentRevenue computes the full revenue breakdown.
func SplitAppointmentRevenue(appts []parser.Appointment, activeMembers map[string]struct{}) RevenueBreakdown {
	b := RevenueBreakdown{
		NonMember: decimal.Zero,
		Member:    decimal.Zero,
		Total:     decimal.Zero,
	}
	for _, a := range appts {
		b.Total = b.Total.Add(a.Revenue)
		if _, isMember := activeMembers[a.CustomerEmail]; isMember {
			b.Member = b.Member.Add(a.Revenue)
		} else {
			b.NonMember = b.NonMember.Add(a.Revenue)
		}
	}
	return b
}

// MembershipRevenue sums the paid amount over filtered memberships.
func MembershipRevenue(memberships []parser.Membership) decimal.Decimal {
	total := decimal.Zero
	for _, m := range memberships {
		total = total.Add(m.PaidAmount)
	}
	return total
}

// SalaryCost is one salaried employee's prorated cost within the period.
type SalaryCost struct {
	Name       string
	DaysWorked int
	Cost       decimal.Decimal
}

// LaborCost aggregates the three components of labor spend: appointment
// payouts, clocked hours outside appointments, and prorated salaries.
type LaborCost struct {
	AppointmentPayout decimal.Decimal
	NonApptHours      float64
	NonApptCost       decimal.Decimal
	SalaryCosts       []SalaryCost
	Total             decimal.Decimal
}

// TotalLaborCost computes the labor model for a period.
//
// Time tracking is restricted to employees present in the appointment slice
// before non-appointment hours are derived, mirroring the filter layer's
// rule, so the function stays correct on unfiltered input too.
func TotalLaborCost(
	appts []parser.Appointment,
	timeTracking []parser.TimeEntry,
	baseHourlyRate float64,
	salaried []config.SalariedEmployee,
	periodStart, periodEnd time.Time,
) LaborCost {
	cost := LaborCost{
		AppointmentPayout: decimal.Zero,
		NonApptCost:       decimal.Zero,
	}

	activeStaff := make(map[string]bool)
	totalApptHours := 0.0
	for _, a := range appts {
		cost.AppointmentPayout = cost.AppointmentPayout.Add(a.TotalPayout)
		activeStaff[strings.ToLower(strings.TrimSpace(a.Practitioner))] = true
		totalApptHours += a.DurationHours
	}

	totalClockedHours := 0.0
	for _, t := range timeTracking {
		if activeStaff[strings.ToLower(strings.TrimSpace(t.Employee))] {
			totalClockedHours += t.DurationHours
		}
	}

	cost.NonApptHours = math.Max(0, totalClockedHours-totalApptHours)
	cost.NonApptCost = decimal.NewFromFloat(cost.NonApptHours).
		Mul(decimal.NewFromFloat(baseHourlyRate))

	salaryTotal := decimal.Zero
	for _, emp := range salaried {
		sc := prorateSalary(emp, periodStart, periodEnd)
		if sc.Cost.IsZero() {
			continue
		}
		cost.SalaryCosts = append(cost.SalaryCosts, sc)
		salaryTotal = salaryTotal.Add(sc.Cost)
	}

	cost.Total = cost.AppointmentPayout.Add(cost.NonApptCost).Add(salaryTotal)
	return cost
}

// prorateSalary computes dailyRate * daysWorked for one salaried employee.
// Employees starting after the period end contribute nothing.
func prorateSalary(emp config.SalariedEmployee, periodStart, periodEnd time.Time) SalaryCost {
	sc := SalaryCost{Name: emp.Name, Cost: decimal.Zero}

	if emp.AnnualSalary.IsZero() || periodEnd.Before(periodStart) {
		return sc
	}
	if !emp.StartDate.IsZero() && emp.StartDate.After(periodEnd) {
		return sc
	}

	workStart := periodStart
	if emp.StartDate.After(workStart) {
		workStart = emp.StartDate
	}

	daysWorked := daysInclusive(workStart, periodEnd)
	periodDays := daysInclusive(periodStart, periodEnd)
	if daysWorked > periodDays {
		daysWorked = periodDays
	}
	if daysWorked <= 0 {
		return sc
	}

	dailyRate := emp.AnnualSalary.Div(decimal.NewFromInt(365))
	sc.DaysWorked = daysWorked
	sc.Cost = dailyRate.Mul(decimal.NewFromInt(int64(daysWorked)))
	return sc
}

// daysInclusive counts days between two instants, both ends included.
func daysInclusive(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(math.Ceil(end.Sub(start).Hours()/24)) + 1
}

// ProfitSummary holds revenue minus labor with a safe margin.
type ProfitSummary struct {
	TotalRevenue decimal.Decimal
	LaborCost    decimal.Decimal
	NetProfit    decimal.Decimal
	ProfitMargin float64 // percent; 0 when revenue is 0
}

// Profit computes net profit and margin.
func Profit(totalRevenue, laborCost decimal.Decimal) ProfitSummary {
	p := ProfitSummary{
		TotalRevenue: totalRevenue,
		LaborCost:    laborCost,
		NetProfit:    totalRevenue.Sub(laborCost),
	}
	if totalRevenue.GreaterThan(decimal.Zero) {
		p.ProfitMargin, _ = p.NetProfit.Div(totalRevenue).Mul(decimal.NewFromInt(100)).Float64()
	}
	return p
}

// FeeBreakdown applies the three franchise fee percentages independently to
// total revenue.
type FeeBreakdown struct {
	FranchiseFee decimal.Decimal
	BrandFund    decimal.Decimal
	CCFees       decimal.Decimal
	TotalFees    decimal.Decimal
	NetAfterFees decimal.Decimal
}

// Fees computes the franchise fee breakdown and net-after-fees
// (revenue - labor - fees).
func Fees(totalRevenue, laborCost decimal.Decimal, franchisePct, brandPct, ccPct float64) FeeBreakdown {
	pct := func(p float64) decimal.Decimal {
		return totalRevenue.Mul(decimal.NewFromFloat(p)).Div(decimal.NewFromInt(100))
	}

	f := FeeBreakdown{
		FranchiseFee: pct(franchisePct),
		BrandFund:    pct(brandPct),
		CCFees:       pct(ccPct),
	}
	f.TotalFees = f.FranchiseFee.Add(f.BrandFund).Add(f.CCFees)
	f.NetAfterFees = totalRevenue.Sub(laborCost).Sub(f.TotalFees)
	return f
}

// SortSalaryCosts orders salary costs descending for display.
func SortSalaryCosts(costs []SalaryCost) {
	sort.Slice(costs, func(i, j int) bool {
		return costs[i].Cost.GreaterThan(costs[j].Cost)
	})
}
