package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/filter"
	"github.com/franops/studiodash/internal/metrics"
	"github.com/franops/studiodash/internal/parser"
)

// RevenueSection is the money side of the summary.
type RevenueSection struct {
	AppointmentRevenue decimal.Decimal // non-member visits only
	MemberVisitRevenue decimal.Decimal // excluded from appointment totals
	MembershipRevenue  decimal.Decimal
	TotalRevenue       decimal.Decimal

	// LateCancellations counts appointments flagged as late cancels; their
	// revenue still counts because the studio charges for them.
	LateCancellations int

	Labor  metrics.LaborCost
	Profit metrics.ProfitSummary
	Fees   metrics.FeeBreakdown
}

// GoalAttainment compares the period's actuals against the configured
// monthly goals.
type GoalAttainment struct {
	RevenueGoal   float64
	RevenuePct    float64
	ApptGoal      int
	ApptCount     int
	ApptPct       float64
	IntroGoal     int
	IntroCount    int
	IntroPct      float64
	HasAnyGoal    bool
	PeriodIsMonth bool
}

// SegmentCounts is the headline view of the segmentation lists.
type SegmentCounts struct {
	VIP                 int
	InactivePaidMembers int
	AtRisk              int
	NewClients          int
	HighFrequency       int
}

// LeadsSection bundles the funnel analyzer outputs.
type LeadsSection struct {
	FromConvertedSource bool
	TotalLeads          int
	BySource            []metrics.GroupStats
	ByLocation          []metrics.GroupStats
	CrossTab            map[string]map[string]int // source → location → leads
	Funnel              []metrics.FunnelStage
	Cohorts             []metrics.LTVCohort
}

// MembershipSection bundles the lifecycle analyzer outputs.
type MembershipSection struct {
	Stats               metrics.LifecycleStats
	StaffSales          []metrics.StaffSales
	Commissions         []metrics.CommissionSummary
	CancellationReasons []metrics.GroupStats
}

// SummaryReport contains every aggregate the dashboard shows for one filter
// state. It is rebuilt in full on every invocation; nothing is incremental.
type SummaryReport struct {
	GeneratedAt time.Time
	Spec        filter.Spec
	PeriodStart time.Time
	PeriodEnd   time.Time

	Revenue     RevenueSection
	Goals       GoalAttainment
	Retention   metrics.RetentionStats
	Segments    metrics.Segments
	Counts      SegmentCounts
	Gaps        metrics.GapAnalysis
	Leads       LeadsSection
	Memberships MembershipSection

	Utilization     []filter.EmployeeUtilization
	Recommendations []metrics.Recommendation
}

// Generate runs the whole pipeline: filter, every metrics component, then
// the recommendation rules over their aggregates.
func Generate(ds *parser.Dataset, spec filter.Spec, cfg *config.Config, now time.Time) *SummaryReport {
	rec := filter.Apply(ds, spec)
	rec.Memberships = metrics.MarkLifecycle(rec.Memberships)

	r := &SummaryReport{
		GeneratedAt: now,
		Spec:        spec,
		Utilization: rec.Utilization,
	}
	r.PeriodStart, r.PeriodEnd = periodBounds(spec, rec.Appointments, now)

	active := metrics.ActiveMemberEmails(rec.Memberships)
	split := metrics.SplitAppointmentRevenue(rec.Appointments, active)
	membershipRevenue := metrics.MembershipRevenue(rec.Memberships)

	labor := metrics.TotalLaborCost(
		rec.Appointments, rec.TimeTracking,
		cfg.BaseHourlyRate, cfg.Salaried,
		r.PeriodStart, r.PeriodEnd,
	)
	metrics.SortSalaryCosts(labor.SalaryCosts)

	totalRevenue := split.NonMember.Add(membershipRevenue)
	profit := metrics.Profit(totalRevenue, labor.Total)
	fees := metrics.Fees(totalRevenue, labor.Total,
		cfg.FranchiseFeePercent, cfg.BrandFundPercent, cfg.CCFeesPercent)

	r.Revenue = RevenueSection{
		AppointmentRevenue: split.NonMember,
		MemberVisitRevenue: split.Member,
		MembershipRevenue:  membershipRevenue,
		TotalRevenue:       totalRevenue,
		Labor:              labor,
		Profit:             profit,
		Fees:               fees,
	}
	for _, a := range rec.Appointments {
		if a.LateCancellation {
			r.Revenue.LateCancellations++
		}
	}

	r.Goals = computeGoals(cfg, spec, rec.Appointments, totalRevenue)

	profiles := metrics.BuildCustomerProfiles(rec.Appointments, rec.Memberships, leadsForJoin(rec))
	r.Retention = metrics.ComputeRetention(profiles)
	r.Segments = metrics.ClassifySegments(profiles, cfg.Tier(), now)
	r.Counts = SegmentCounts{
		VIP:                 len(r.Segments.VIP),
		InactivePaidMembers: len(r.Segments.InactivePaidMembers),
		AtRisk:              len(r.Segments.AtRisk),
		NewClients:          len(r.Segments.NewClients),
		HighFrequency:       len(r.Segments.HighFrequency),
	}

	r.Gaps = metrics.AnalyzeGaps(rec.Appointments, cfg.GapHourlyRevenue, 10)

	leadsInput := metrics.NormalizeLeads(rec.ConvertedLeads, rec.Leads)
	r.Leads = LeadsSection{
		FromConvertedSource: leadsInput.FromConvertedSource,
		TotalLeads:          len(leadsInput.Records),
		BySource:            metrics.LeadsBySource(leadsInput),
		ByLocation:          metrics.LeadsByLocation(leadsInput),
		CrossTab:            metrics.CrossTab(leadsInput),
		Funnel:              metrics.Funnel(leadsInput, rec.Appointments, rec.Memberships),
		Cohorts:             metrics.LTVCohorts(rec.ConvertedLeads),
	}

	r.Memberships = MembershipSection{
		Stats:               metrics.ComputeLifecycle(rec.Memberships),
		StaffSales:          metrics.AttributeSales(rec.Memberships),
		Commissions:         metrics.SummarizeCommissions(rec.Commissions),
		CancellationReasons: metrics.CancellationReasons(rec.Cancellations),
	}
	formatStaffNames(&r.Memberships, cfg.StaffDirectory)

	r.Recommendations = metrics.Recommend(metrics.RecommendInputs{
		RetentionRate:       r.Retention.RetentionRate,
		UniqueClients:       r.Retention.UniqueClients,
		AvgRevenuePerClient: avgRevenuePerClient(split.NonMember, r.Retention.UniqueClients),
		ProfitMargin:        profit.ProfitMargin,
		TotalRevenue:        totalRevenue,
		FrozenRate:          r.Memberships.Stats.FrozenRate,
		MRR:                 r.Memberships.Stats.MRR,
		RefundRate:          r.Memberships.Stats.RefundRate,
		RefundedAmount:      r.Memberships.Stats.TotalRefunded,
		GapHours:            r.Gaps.TotalGapHours,
		GapCostToBusiness:   r.Gaps.CostToBusiness,
	})

	return r
}

// formatStaffNames rewrites the staff tables to "First L." display form,
// resolving emails through the configured directory. The Direct/Online
// attribution bucket is a label, not a person, and stays as-is.
func formatStaffNames(m *MembershipSection, directory map[string]string) {
	for i := range m.StaffSales {
		if m.StaffSales[i].Staff == metrics.DirectOnlineStaff {
			continue
		}
		m.StaffSales[i].Staff = parser.FormatStaffName(m.StaffSales[i].Staff, directory)
	}
	for i := range m.Commissions {
		m.Commissions[i].Employee = parser.FormatStaffName(m.Commissions[i].Employee, directory)
	}
}

// leadsForJoin picks the lead source carrying LTV data for the customer
// profile join, preferring the converted export like the funnel does.
func leadsForJoin(rec *filter.Records) []parser.Lead {
	if len(rec.ConvertedLeads) > 0 {
		return rec.ConvertedLeads
	}
	return rec.Leads
}

func avgRevenuePerClient(revenue decimal.Decimal, clients int) decimal.Decimal {
	if clients == 0 {
		return decimal.Zero
	}
	return revenue.Div(decimal.NewFromInt(int64(clients)))
}

// periodBounds resolves the reporting period: the spec's explicit window
// when set, else the filtered appointments' date span, else "now" for both
// ends so prorated salaries cover a single day at most.
func periodBounds(spec filter.Spec, appts []parser.Appointment, now time.Time) (time.Time, time.Time) {
	if start, end, ok := specWindow(spec); ok {
		return start, end
	}

	var first, last *time.Time
	for _, a := range appts {
		if a.Date == nil {
			continue
		}
		if first == nil || a.Date.Before(*first) {
			d := *a.Date
			first = &d
		}
		if last == nil || a.Date.After(*last) {
			d := *a.Date
			last = &d
		}
	}
	if first != nil && last != nil {
		return *first, *last
	}
	return now, now
}

func specWindow(spec filter.Spec) (time.Time, time.Time, bool) {
	if spec.StartDate != nil && spec.EndDate != nil {
		return *spec.StartDate, *spec.EndDate, true
	}
	if spec.Month != "" && spec.Month != filter.MonthAll {
		if start, end, err := filter.ParseMonth(spec.Month); err == nil {
			return start, end, true
		}
	}
	return time.Time{}, time.Time{}, false
}

// computeGoals compares the filtered actuals to the monthly goals. Goal
// percentages only make sense against a single month; for wider windows the
// section still reports counts but flags the mismatch.
func computeGoals(cfg *config.Config, spec filter.Spec, appts []parser.Appointment, totalRevenue decimal.Decimal) GoalAttainment {
	g := GoalAttainment{
		RevenueGoal:   cfg.MonthlyRevenueGoal,
		ApptGoal:      cfg.MonthlyApptGoal,
		IntroGoal:     cfg.MonthlyIntroGoal,
		PeriodIsMonth: spec.Month != "" && spec.Month != filter.MonthAll,
	}
	g.HasAnyGoal = g.RevenueGoal > 0 || g.ApptGoal > 0 || g.IntroGoal > 0

	for _, a := range appts {
		g.ApptCount++
		if parser.IsIntroductoryService(a.Service) {
			g.IntroCount++
		}
	}

	revenue, _ := totalRevenue.Float64()
	if g.RevenueGoal > 0 {
		g.RevenuePct = revenue / g.RevenueGoal * 100
	}
	if g.ApptGoal > 0 {
		g.ApptPct = float64(g.ApptCount) / float64(g.ApptGoal) * 100
	}
	if g.IntroGoal > 0 {
		g.IntroPct = float64(g.IntroCount) / float64(g.IntroGoal) * 100
	}

	return g
}
