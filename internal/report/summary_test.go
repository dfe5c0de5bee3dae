package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/filter"
	"github.com/franops/studiodash/internal/metrics"
	"github.com/franops/studiodash/internal/parser"
)

func dt(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func ts(s string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func money(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

// testDataset is a small July 2026 studio: Kim holds an active membership
// and visits twice, Lou pays per visit once.
func testDataset() *parser.Dataset {
	return &parser.Dataset{
		Appointments: []parser.Appointment{
			{Date: ts("2026-07-10 09:00"), Practitioner: "Amy Jones", CustomerEmail: "kim@x.com",
				CustomerName: "Kim Lee", Service: "Deep Tissue 60", Revenue: money(90),
				TotalPayout: money(30), DurationHours: 1},
			{Date: ts("2026-07-10 11:00"), Practitioner: "Amy Jones", CustomerEmail: "lou@x.com",
				CustomerName: "Lou Park", Service: "Deep Tissue 60", Revenue: money(150),
				TotalPayout: money(60), DurationHours: 1, LateCancellation: true},
			{Date: ts("2026-07-17 09:00"), Practitioner: "Amy Jones", CustomerEmail: "kim@x.com",
				CustomerName: "Kim Lee", Service: "Deep Tissue 60", Revenue: money(90),
				TotalPayout: money(30), DurationHours: 1},
		},
		Memberships: []parser.Membership{
			{PurchaseID: "P-1", CustomerEmail: "kim@x.com", Name: "Monthly Unlimited",
				Type: parser.MembershipSubscription, PaidAmount: money(89),
				BoughtDate: dt("2026-07-02"), SoldBy: "Amy Jones"},
		},
		ConvertedLeads: []parser.Lead{
			{Email: "kim@x.com", FirstName: "Kim", LastName: "Lee", LTV: money(640),
				LeadSource: "Instagram", ConvertedTo: "Monthly Unlimited",
				ConvertedDate: dt("2026-07-02")},
		},
		TimeTracking: []parser.TimeEntry{
			{Employee: "Amy Jones", ClockedInAt: dt("2026-07-10"), DurationHours: 5},
		},
	}
}

func testConfig() *config.Config {
	return &config.Config{
		BaseHourlyRate:   13,
		GapHourlyRevenue: 150,
		LTVTierName:      "standard",
		StaffDirectory:   map[string]string{},
	}
}

func TestGenerate(t *testing.T) {
	now := *dt("2026-08-01")
	r := Generate(testDataset(), filter.Spec{Month: "2026-07"}, testConfig(), now)

	assert.Equal(t, "2026-07-01", r.PeriodStart.Format("2006-01-02"))
	assert.Equal(t, "2026-07-31", r.PeriodEnd.Format("2006-01-02"))

	// Kim's visits are covered by her membership, only Lou's visit bills.
	assert.True(t, money(150).Equal(r.Revenue.AppointmentRevenue), "got %s", r.Revenue.AppointmentRevenue)
	assert.True(t, money(180).Equal(r.Revenue.MemberVisitRevenue))
	assert.True(t, money(89).Equal(r.Revenue.MembershipRevenue))
	assert.True(t, money(239).Equal(r.Revenue.TotalRevenue))
	// Lou late-cancelled but was charged; revenue keeps counting.
	assert.Equal(t, 1, r.Revenue.LateCancellations)

	// 120 in payouts plus 2 non-appointment hours at the base rate.
	assert.True(t, money(120).Equal(r.Revenue.Labor.AppointmentPayout))
	assert.Equal(t, 2.0, r.Revenue.Labor.NonApptHours)
	assert.True(t, money(146).Equal(r.Revenue.Labor.Total), "got %s", r.Revenue.Labor.Total)
	assert.True(t, money(93).Equal(r.Revenue.Profit.NetProfit))

	assert.Equal(t, 2, r.Retention.UniqueClients)
	assert.Equal(t, 1, r.Retention.ReturningClients)
	assert.InDelta(t, 50.0, r.Retention.RetentionRate, 0.001)

	// One 60-minute gap on the 10th.
	assert.InDelta(t, 1.0, r.Gaps.TotalGapHours, 0.001)
	assert.InDelta(t, 75.0, r.Gaps.AvgUtilization, 0.001)

	require.Len(t, r.Utilization, 1)
	assert.Equal(t, "Amy Jones", r.Utilization[0].Employee)
	assert.InDelta(t, 60.0, r.Utilization[0].UtilizationRate, 0.001)

	assert.Equal(t, 1, r.Memberships.Stats.Total)
	assert.Equal(t, 1, r.Memberships.Stats.NewSales)
	require.NotEmpty(t, r.Memberships.StaffSales)
	// Staff tables carry display names, not raw export strings.
	assert.Equal(t, "Amy J.", r.Memberships.StaffSales[0].Staff)

	assert.True(t, r.Leads.FromConvertedSource)
	assert.Equal(t, 1, r.Leads.TotalLeads)
	assert.Equal(t, 1, r.Leads.CrossTab["Instagram"]["Unknown"])
	require.Len(t, r.Leads.Funnel, 6)
	assert.Equal(t, 1, r.Leads.Funnel[1].Count)

	// A healthy small studio triggers no recommendations.
	assert.Empty(t, r.Recommendations)
}

func TestGenerateStaffDisplayNames(t *testing.T) {
	// Sellers recorded as emails resolve through the directory; unlisted
	// emails fall back to the local part. The Direct/Online bucket is a
	// label and must not be reformatted.
	ds := &parser.Dataset{
		Memberships: []parser.Membership{
			{PurchaseID: "P-1", CustomerEmail: "kim@x.com", Name: "Monthly Unlimited",
				Type: parser.MembershipSubscription, PaidAmount: money(89),
				BoughtDate: dt("2026-07-02"), SoldBy: "amy@studio.com"},
			{PurchaseID: "P-2", CustomerEmail: "pat@x.com", Name: "Monthly Unlimited",
				Type: parser.MembershipSubscription, PaidAmount: money(50),
				BoughtDate: dt("2026-07-03")},
		},
		Commissions: []parser.CommissionEntry{
			{Employee: "ben.smith@studio.com", ItemType: parser.CommissionMembership,
				CommissionEarned: money(12), Date: dt("2026-07-05")},
		},
	}
	cfg := testConfig()
	cfg.StaffDirectory = map[string]string{"amy@studio.com": "Amelia Jones"}

	r := Generate(ds, filter.Spec{}, cfg, *dt("2026-08-01"))

	names := make([]string, 0, len(r.Memberships.StaffSales))
	for _, s := range r.Memberships.StaffSales {
		names = append(names, s.Staff)
	}
	assert.Contains(t, names, "Amelia J.")
	assert.Contains(t, names, metrics.DirectOnlineStaff)
	assert.NotContains(t, names, "amy@studio.com")

	require.Len(t, r.Memberships.Commissions, 1)
	assert.Equal(t, "Ben S.", r.Memberships.Commissions[0].Employee)
}

func TestGenerateIsIdempotent(t *testing.T) {
	ds := testDataset()
	cfg := testConfig()
	now := *dt("2026-08-01")
	spec := filter.Spec{Month: "2026-07"}

	first := Generate(ds, spec, cfg, now)
	second := Generate(ds, spec, cfg, now)
	assert.Equal(t, first, second)
}

func TestGenerateGoals(t *testing.T) {
	cfg := testConfig()
	cfg.MonthlyRevenueGoal = 500
	cfg.MonthlyApptGoal = 10

	r := Generate(testDataset(), filter.Spec{Month: "2026-07"}, cfg, *dt("2026-08-01"))

	assert.True(t, r.Goals.HasAnyGoal)
	assert.True(t, r.Goals.PeriodIsMonth)
	assert.InDelta(t, 47.8, r.Goals.RevenuePct, 0.001)
	assert.Equal(t, 3, r.Goals.ApptCount)
	assert.InDelta(t, 30.0, r.Goals.ApptPct, 0.001)
}

func TestGenerateEmptyDataset(t *testing.T) {
	now := *dt("2026-08-01")
	r := Generate(&parser.Dataset{}, filter.Spec{}, testConfig(), now)

	assert.True(t, r.Revenue.TotalRevenue.IsZero())
	assert.Equal(t, 0.0, r.Revenue.Profit.ProfitMargin)
	assert.Equal(t, 0, r.Retention.UniqueClients)
	assert.Equal(t, now, r.PeriodStart)
	assert.Equal(t, now, r.PeriodEnd)
	assert.Empty(t, r.Recommendations)
}
