package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franops/studiodash/internal/parser"
)

func TestMarkLifecycleExactlyOneNewSalePerEmail(t *testing.T) {
	memberships := []parser.Membership{
		{PurchaseID: "P-2", CustomerEmail: "kim@x.com", BoughtDate: dt("2026-03-01")},
		{PurchaseID: "P-1", CustomerEmail: "kim@x.com", BoughtDate: dt("2026-01-01")},
		{PurchaseID: "P-3", CustomerEmail: "kim@x.com", BoughtDate: nil},
		{PurchaseID: "P-4", CustomerEmail: ""},
	}

	marked := MarkLifecycle(memberships)

	newSales := 0
	for _, m := range marked {
		if m.IsNewSale {
			newSales++
			// The earliest dated purchase wins the new-sale slot.
			assert.Equal(t, "P-1", m.PurchaseID)
		}
	}
	assert.Equal(t, 1, newSales)

	byID := make(map[string]parser.Membership)
	for _, m := range marked {
		byID[m.PurchaseID] = m
	}
	assert.True(t, byID["P-2"].IsRenewal)
	assert.True(t, byID["P-3"].IsRenewal, "undated purchase is a renewal when a dated first exists")
	assert.False(t, byID["P-4"].IsNewSale)
	assert.False(t, byID["P-4"].IsRenewal)
}

func TestMarkLifecycleIdempotent(t *testing.T) {
	memberships := []parser.Membership{
		{PurchaseID: "P-1", CustomerEmail: "kim@x.com", BoughtDate: dt("2026-01-01")},
		{PurchaseID: "P-2", CustomerEmail: "kim@x.com", BoughtDate: dt("2026-02-01")},
	}

	once := MarkLifecycle(memberships)
	twice := MarkLifecycle(once)
	assert.Equal(t, once, twice)
}

func TestAttributeSalesCreditsFirstSeller(t *testing.T) {
	// Amy sold Kim's first membership; Ben handled the renewal. Both sales
	// credit Amy: renewal revenue belongs to whoever acquired the customer.
	memberships := MarkLifecycle([]parser.Membership{
		{PurchaseID: "P-1", CustomerEmail: "kim@x.com", SoldBy: "Amy Jones",
			BoughtDate: dt("2026-01-01"), PaidAmount: d(100)},
		{PurchaseID: "P-2", CustomerEmail: "kim@x.com", SoldBy: "Ben Smith",
			BoughtDate: dt("2026-02-01"), PaidAmount: d(100)},
		// No email and no seller: Direct/Online.
		{PurchaseID: "P-3", CustomerEmail: "", SoldBy: "", PaidAmount: d(50)},
	})

	sales := AttributeSales(memberships)
	require.Len(t, sales, 2)

	assert.Equal(t, "Amy Jones", sales[0].Staff)
	assert.Equal(t, 1, sales[0].NewSales)
	assert.Equal(t, 1, sales[0].Renewals)
	assertMoney(t, 200, sales[0].Revenue)

	assert.Equal(t, DirectOnlineStaff, sales[1].Staff)
	assertMoney(t, 50, sales[1].Revenue)
}

func TestAttributeSalesFallsBackToOwnSeller(t *testing.T) {
	// The first purchase has no recorded seller, so each sale keeps its own.
	memberships := MarkLifecycle([]parser.Membership{
		{PurchaseID: "P-1", CustomerEmail: "kim@x.com", SoldBy: "",
			BoughtDate: dt("2026-01-01"), PaidAmount: d(100)},
		{PurchaseID: "P-2", CustomerEmail: "kim@x.com", SoldBy: "Ben Smith",
			BoughtDate: dt("2026-02-01"), PaidAmount: d(100)},
	})

	sales := AttributeSales(memberships)
	require.Len(t, sales, 2)
	assert.Equal(t, "Ben Smith", sales[0].Staff)
	assertMoney(t, 100, sales[0].Revenue)
	assert.Equal(t, DirectOnlineStaff, sales[1].Staff)
}

func TestMRRCountsActiveSubscriptionsOnly(t *testing.T) {
	memberships := []parser.Membership{
		{Type: parser.MembershipSubscription, Expired: false, PaidAmount: d(89)},
		{Type: parser.MembershipSubscription, Expired: true, PaidAmount: d(89)},
		{Type: parser.MembershipPackage, Expired: false, PaidAmount: d(450)},
	}
	assertMoney(t, 89, MRR(memberships))
}

func TestComputeLifecycle(t *testing.T) {
	memberships := MarkLifecycle([]parser.Membership{
		{PurchaseID: "P-1", CustomerEmail: "kim@x.com", Type: parser.MembershipSubscription,
			BoughtDate: dt("2026-01-01"), PaidAmount: d(100)},
		{PurchaseID: "P-2", CustomerEmail: "kim@x.com", Type: parser.MembershipSubscription,
			BoughtDate: dt("2026-02-01"), PaidAmount: d(100), Expired: true},
		{PurchaseID: "P-3", CustomerEmail: "lou@x.com", Type: parser.MembershipPackage,
			BoughtDate: dt("2026-02-10"), PaidAmount: d(200), RefundedAmount: d(40), Frozen: true},
		{PurchaseID: "P-4", CustomerEmail: "max@x.com", Type: parser.MembershipPackage,
			BoughtDate: dt("2026-02-15"), PaidAmount: d(0)},
	})

	stats := ComputeLifecycle(memberships)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.NewSales)
	assert.Equal(t, 1, stats.Renewals)
	assert.Equal(t, 1, stats.ExpiredCount)
	assert.Equal(t, 1, stats.FrozenCount)
	assert.InDelta(t, 25.0, stats.ChurnRate, 0.001)
	assert.InDelta(t, 25.0, stats.FrozenRate, 0.001)
	// 40 refunded over 400 paid.
	assert.InDelta(t, 10.0, stats.RefundRate, 0.001)
	assertMoney(t, 100, stats.MRR)
	assertMoney(t, 400, stats.TotalPaid)
	assertMoney(t, 40, stats.TotalRefunded)
}

func TestComputeLifecycleEmpty(t *testing.T) {
	stats := ComputeLifecycle(nil)
	assert.Equal(t, 0.0, stats.ChurnRate)
	assert.Equal(t, 0.0, stats.RefundRate)
	assert.True(t, stats.MRR.IsZero())
}

func TestSummarizeCommissions(t *testing.T) {
	entries := []parser.CommissionEntry{
		{Employee: "Amy Jones", ItemType: parser.CommissionMembership, CommissionEarned: d(15)},
		{Employee: "Amy Jones", ItemType: parser.CommissionProduct, CommissionEarned: d(5)},
		{Employee: "Ben Smith", ItemType: parser.CommissionOther, CommissionEarned: d(40)},
		{Employee: "  ", CommissionEarned: d(99)},
	}

	summaries := SummarizeCommissions(entries)
	require.Len(t, summaries, 2)

	assert.Equal(t, "Ben Smith", summaries[0].Employee)
	assertMoney(t, 40, summaries[0].Other)

	assert.Equal(t, "Amy Jones", summaries[1].Employee)
	assertMoney(t, 15, summaries[1].Membership)
	assertMoney(t, 5, summaries[1].Product)
	assertMoney(t, 20, summaries[1].Total)
}

func TestCancellationReasons(t *testing.T) {
	cancellations := []parser.Cancellation{
		{Reason: "Moving"},
		{Reason: "Moving"},
		{Reason: "Too expensive"},
		{Reason: ""},
	}

	reasons := CancellationReasons(cancellations)
	require.Len(t, reasons, 3)
	assert.Equal(t, "Moving", reasons[0].Name)
	assert.Equal(t, 2, reasons[0].Count)
	// Blank reasons group under Unknown.
	found := false
	for _, r := range reasons {
		if r.Name == "Unknown" {
			found = true
			assert.Equal(t, 1, r.Count)
		}
	}
	assert.True(t, found)
}
