package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/franops/studiodash/internal/parser"
)

// DirectOnlineStaff is the attribution bucket for sales with no recorded
// seller.
const DirectOnlineStaff = "Direct/Online"

// FirstPurchase records a customer's earliest membership purchase: the "first
// VSP". All of that customer's later revenue rolls up to whoever made it.
type FirstPurchase struct {
	PurchaseID string
	SoldBy     string
	BoughtDate *time.Time
}

// FirstPurchases finds the earliest purchase per customer email. Memberships
// are considered in bought-date order; undated rows sort last so a dated
// purchase always wins the "first" slot when one exists.
func FirstPurchases(memberships []parser.Membership) map[string]FirstPurchase {
	sorted := make([]parser.Membership, len(memberships))
	copy(sorted, memberships)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i].BoughtDate, sorted[j].BoughtDate
		switch {
		case di == nil:
			return false
		case dj == nil:
			return true
		}
		return di.Before(*dj)
	})

	firsts := make(map[string]FirstPurchase)
	for i := range sorted {
		m := &sorted[i]
		if m.CustomerEmail == "" {
			continue
		}
		if _, seen := firsts[m.CustomerEmail]; seen {
			continue
		}
		firsts[m.CustomerEmail] = FirstPurchase{
			PurchaseID: m.PurchaseID,
			SoldBy:     m.SoldBy,
			BoughtDate: m.BoughtDate,
		}
	}
	return firsts
}

// MarkLifecycle tags every membership as a new sale or a renewal, in place.
// Exactly one purchase per customer email is the new sale (the earliest);
// every other purchase for that email is a renewal, regardless of membership
// type changes. Rows without an email are neither.
func MarkLifecycle(memberships []parser.Membership) []parser.Membership {
	firsts := FirstPurchases(memberships)

	for i := range memberships {
		m := &memberships[i]
		m.IsNewSale = false
		m.IsRenewal = false
		if m.CustomerEmail == "" {
			continue
		}
		first, ok := firsts[m.CustomerEmail]
		if !ok {
			continue
		}
		if m.PurchaseID == first.PurchaseID {
			m.IsNewSale = true
		} else {
			m.IsRenewal = true
		}
	}

	return memberships
}

// StaffSales is one staff member's attributed membership sales.
type StaffSales struct {
	Staff    string
	NewSales int
	Renewals int
	Revenue  decimal.Decimal
}

// AttributeSales credits every membership sale to the customer's first VSP,
// so renewal revenue rolls up to whoever originally acquired the customer.
// Sales with no email or no recorded first purchase fall back to their own
// "Sold by", and blank sellers land in the Direct/Online bucket.
func AttributeSales(memberships []parser.Membership) []StaffSales {
	firsts := FirstPurchases(memberships)

	byStaff := make(map[string]*StaffSales)
	credit := func(name string) *StaffSales {
		name = strings.TrimSpace(name)
		if name == "" {
			name = DirectOnlineStaff
		}
		s, ok := byStaff[name]
		if !ok {
			s = &StaffSales{Staff: name, Revenue: decimal.Zero}
			byStaff[name] = s
		}
		return s
	}

	for _, m := range memberships {
		seller := m.SoldBy
		if m.CustomerEmail != "" {
			if first, ok := firsts[m.CustomerEmail]; ok && strings.TrimSpace(first.SoldBy) != "" {
				seller = first.SoldBy
			}
		}

		s := credit(seller)
		s.Revenue = s.Revenue.Add(m.PaidAmount)
		if m.IsNewSale {
			s.NewSales++
		} else if m.IsRenewal {
			s.Renewals++
		}
	}

	results := make([]StaffSales, 0, len(byStaff))
	for _, s := range byStaff {
		results = append(results, *s)
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].Revenue.Equal(results[j].Revenue) {
			return results[i].Revenue.GreaterThan(results[j].Revenue)
		}
		return results[i].Staff < results[j].Staff
	})
	return results
}

// MRR sums the paid amount over active subscription memberships.
func MRR(memberships []parser.Membership) decimal.Decimal {
	total := decimal.Zero
	for _, m := range memberships {
		if m.Type == parser.MembershipSubscription && !m.Expired {
			total = total.Add(m.PaidAmount)
		}
	}
	return total
}

// LifecycleStats summarizes the membership base.
type LifecycleStats struct {
	Total    int
	NewSales int
	Renewals int

	ExpiredCount int
	FrozenCount  int

	ChurnRate  float64 // expired / total, percent
	FrozenRate float64 // frozen / total, percent
	RefundRate float64 // refunded amount / paid amount, percent

	MRR           decimal.Decimal
	TotalPaid     decimal.Decimal
	TotalRefunded decimal.Decimal
}

// ComputeLifecycle derives the membership aggregate. Input must already be
// tagged by MarkLifecycle for the new-sale/renewal counts to be meaningful.
func ComputeLifecycle(memberships []parser.Membership) LifecycleStats {
	stats := LifecycleStats{
		MRR:           MRR(memberships),
		TotalPaid:     decimal.Zero,
		TotalRefunded: decimal.Zero,
	}

	for _, m := range memberships {
		stats.Total++
		if m.IsNewSale {
			stats.NewSales++
		}
		if m.IsRenewal {
			stats.Renewals++
		}
		if m.Expired {
			stats.ExpiredCount++
		}
		if m.Frozen {
			stats.FrozenCount++
		}
		stats.TotalPaid = stats.TotalPaid.Add(m.PaidAmount)
		stats.TotalRefunded = stats.TotalRefunded.Add(m.RefundedAmount)
	}

	if stats.Total > 0 {
		stats.ChurnRate = float64(stats.ExpiredCount) / float64(stats.Total) * 100
		stats.FrozenRate = float64(stats.FrozenCount) / float64(stats.Total) * 100
	}
	if stats.TotalPaid.GreaterThan(decimal.Zero) {
		stats.RefundRate, _ = stats.TotalRefunded.Div(stats.TotalPaid).
			Mul(decimal.NewFromInt(100)).Float64()
	}

	return stats
}

// CommissionSummary is one employee's commission totals by item type.
type CommissionSummary struct {
	Employee   string
	Membership decimal.Decimal
	Product    decimal.Decimal
	Other      decimal.Decimal
	Total      decimal.Decimal
}

// SummarizeCommissions aggregates commission entries per employee, sorted by
// total earned descending.
func SummarizeCommissions(entries []parser.CommissionEntry) []CommissionSummary {
	byEmployee := make(map[string]*CommissionSummary)
	for _, e := range entries {
		name := strings.TrimSpace(e.Employee)
		if name == "" {
			continue
		}
		s, ok := byEmployee[name]
		if !ok {
			s = &CommissionSummary{
				Employee:   name,
				Membership: decimal.Zero,
				Product:    decimal.Zero,
				Other:      decimal.Zero,
				Total:      decimal.Zero,
			}
			byEmployee[name] = s
		}
		switch e.ItemType {
		case parser.CommissionMembership:
			s.Membership = s.Membership.Add(e.CommissionEarned)
		case parser.CommissionProduct:
			s.Product = s.Product.Add(e.CommissionEarned)
		default:
			s.Other = s.Other.Add(e.CommissionEarned)
		}
		s.Total = s.Total.Add(e.CommissionEarned)
	}

	results := make([]CommissionSummary, 0, len(byEmployee))
	for _, s := range byEmployee {
		results = append(results, *s)
	}
	sort.Slice(results, func(i, j int) bool {
		if !results[i].Total.Equal(results[j].Total) {
			return results[i].Total.GreaterThan(results[j].Total)
		}
		return results[i].Employee < results[j].Employee
	})
	return results
}

// CancellationReasons counts cancellations per reason, most common first.
func CancellationReasons(cancellations []parser.Cancellation) []GroupStats {
	byReason := make(map[string]*GroupStats)
	for _, c := range cancellations {
		reason := orUnknown(c.Reason)
		g, ok := byReason[reason]
		if !ok {
			g = &GroupStats{Name: reason, TotalLTV: decimal.Zero}
			byReason[reason] = g
		}
		g.Count++
	}

	results := make([]GroupStats, 0, len(byReason))
	for _, g := range byReason {
		results = append(results, *g)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Count != results[j].Count {
			return results[i].Count > results[j].Count
		}
		return results[i].Name < results[j].Name
	})
	return results
}
