package metrics

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/parser"
)

// neverVisitedDays is the sentinel days-since-last-visit for customers with
// no recorded appointment.
const neverVisitedDays = 999

// CustomerProfile is the per-customer aggregate built by joining
// appointments, memberships and leads on normalized email.
type CustomerProfile struct {
	Email string
	Name  string

	Visits     int
	FirstVisit *time.Time
	LastVisit  *time.Time

	// Revenue counts only non-member visit revenue, consistent with the
	// appointment revenue totals.
	Revenue decimal.Decimal

	HasActiveMembership bool
	LTV                 decimal.Decimal
}

// DaysSinceLastVisit returns whole days since the last visit, or the 999
// sentinel for customers who never visited.
func (p *CustomerProfile) DaysSinceLastVisit(ref time.Time) float64 {
	if p.LastVisit == nil {
		return neverVisitedDays
	}
	return ref.Sub(*p.LastVisit).Hours() / 24
}

// daysBetweenVisits is the span from first to last visit in days.
func (p *CustomerProfile) daysBetweenVisits() float64 {
	if p.FirstVisit == nil || p.LastVisit == nil {
		return 0
	}
	return p.LastVisit.Sub(*p.FirstVisit).Hours() / 24
}

// BuildCustomerProfiles scans the filtered records once per source and keys
// everything on normalized email. Rows without an email cannot join and are
// skipped.
func BuildCustomerProfiles(
	appts []parser.Appointment,
	memberships []parser.Membership,
	leads []parser.Lead,
) map[string]*CustomerProfile {
	profiles := make(map[string]*CustomerProfile)

	get := func(email string) *CustomerProfile {
		p, ok := profiles[email]
		if !ok {
			p = &CustomerProfile{Email: email, Revenue: decimal.Zero, LTV: decimal.Zero}
			profiles[email] = p
		}
		return p
	}

	active := ActiveMemberEmails(memberships)

	for _, a := range appts {
		if a.CustomerEmail == "" {
			continue
		}
		p := get(a.CustomerEmail)
		p.Visits++
		if p.Name == "" {
			p.Name = a.CustomerName
		}
		if a.Date != nil {
			if p.FirstVisit == nil || a.Date.Before(*p.FirstVisit) {
				d := *a.Date
				p.FirstVisit = &d
			}
			if p.LastVisit == nil || a.Date.After(*p.LastVisit) {
				d := *a.Date
				p.LastVisit = &d
			}
		}
		if _, isMember := active[a.CustomerEmail]; !isMember {
			p.Revenue = p.Revenue.Add(a.Revenue)
		}
	}

	for _, m := range memberships {
		if m.CustomerEmail == "" {
			continue
		}
		p := get(m.CustomerEmail)
		if !m.Expired {
			p.HasActiveMembership = true
		}
	}

	for _, l := range leads {
		if l.Email == "" {
			continue
		}
		p := get(l.Email)
		p.LTV = l.LTV
		if p.Name == "" {
			p.Name = joinName(l.FirstName, l.LastName)
		}
	}

	return profiles
}

func joinName(first, last string) string {
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return first + " " + last
}

// VisitBucket is one bar of the visit-frequency histogram.
type VisitBucket struct {
	Label string
	Count int
}

// RetentionBuckets is the histogram used by the retention report:
// 1 / 2-3 / 4-6 / 7-10 / 11+.
func RetentionBuckets(profiles map[string]*CustomerProfile) []VisitBucket {
	buckets := []VisitBucket{
		{Label: "1"}, {Label: "2-3"}, {Label: "4-6"}, {Label: "7-10"}, {Label: "11+"},
	}
	for _, p := range profiles {
		switch v := p.Visits; {
		case v == 1:
			buckets[0].Count++
		case v >= 2 && v <= 3:
			buckets[1].Count++
		case v >= 4 && v <= 6:
			buckets[2].Count++
		case v >= 7 && v <= 10:
			buckets[3].Count++
		case v >= 11:
			buckets[4].Count++
		}
	}
	return buckets
}

// SegmentBuckets is the histogram used by the segment export, which
// historically bucketed differently: 1 / 2-3 / 4-5 / 6-10 / 10+.
func SegmentBuckets(profiles map[string]*CustomerProfile) []VisitBucket {
	buckets := []VisitBucket{
		{Label: "1"}, {Label: "2-3"}, {Label: "4-5"}, {Label: "6-10"}, {Label: "10+"},
	}
	for _, p := range profiles {
		switch v := p.Visits; {
		case v == 1:
			buckets[0].Count++
		case v >= 2 && v <= 3:
			buckets[1].Count++
		case v >= 4 && v <= 5:
			buckets[2].Count++
		case v >= 6 && v <= 10:
			buckets[3].Count++
		case v > 10:
			buckets[4].Count++
		}
	}
	return buckets
}

// LTVBucket is one band of the lifetime-value histogram.
type LTVBucket struct {
	Label string
	Count int
}

// LTVDistribution bands customers by lifetime value using the tier's range
// bounds. Five bounds make six bands; the last one is open-ended. Profiles
// with neither a visit nor an LTV are join leftovers and are not counted.
func LTVDistribution(profiles map[string]*CustomerProfile, tier config.LTVTier) []LTVBucket {
	buckets := make([]LTVBucket, 0, len(tier.Ranges)+1)
	lower := 0.0
	for _, upper := range tier.Ranges {
		buckets = append(buckets, LTVBucket{Label: fmt.Sprintf("$%.0f-$%.0f", lower, upper)})
		lower = upper
	}
	buckets = append(buckets, LTVBucket{Label: fmt.Sprintf("$%.0f+", lower)})

	for _, p := range profiles {
		if p.Visits == 0 && !p.LTV.GreaterThan(decimal.Zero) {
			continue
		}
		ltv, _ := p.LTV.Float64()
		placed := false
		for i, upper := range tier.Ranges {
			if ltv < upper {
				buckets[i].Count++
				placed = true
				break
			}
		}
		if !placed {
			buckets[len(buckets)-1].Count++
		}
	}

	return buckets
}

// RetentionStats summarizes client return behavior for the filtered slice.
type RetentionStats struct {
	UniqueClients    int
	ReturningClients int
	RetentionRate    float64 // percent

	AvgDaysBetweenVisits float64
	AtRiskThresholdDays  float64 // 1.5 x average gap, data-driven

	Buckets []VisitBucket
}

// ComputeRetention derives the retention aggregate from customer profiles.
// Only customers with at least one visit count toward the client totals.
func ComputeRetention(profiles map[string]*CustomerProfile) RetentionStats {
	stats := RetentionStats{Buckets: RetentionBuckets(profiles)}

	gapSum := 0.0
	gapClients := 0
	for _, p := range profiles {
		if p.Visits == 0 {
			continue
		}
		stats.UniqueClients++
		if p.Visits > 1 {
			stats.ReturningClients++
			gapSum += p.daysBetweenVisits() / float64(p.Visits-1)
			gapClients++
		}
	}

	if stats.UniqueClients > 0 {
		stats.RetentionRate = float64(stats.ReturningClients) / float64(stats.UniqueClients) * 100
	}
	if gapClients > 0 {
		stats.AvgDaysBetweenVisits = gapSum / float64(gapClients)
	}
	stats.AtRiskThresholdDays = stats.AvgDaysBetweenVisits * 1.5

	return stats
}

// Segments holds the five independent customer classifications. A customer
// may appear in several lists; these are boolean tags, not a partition.
type Segments struct {
	VIP                 []*CustomerProfile
	InactivePaidMembers []*CustomerProfile
	AtRisk              []*CustomerProfile
	NewClients          []*CustomerProfile
	HighFrequency       []*CustomerProfile
}

// Segment thresholds. VIPMin comes from the configured LTV tier; the rest are
// the fixed business constants the dashboard has always used.
const (
	inactiveMemberDays = 30
	atRiskDays         = 45
	atRiskMinLTV       = 50
	newClientMinLTV    = 50
	highFreqMinVisits  = 4
	highFreqVisitsWk   = 1.0
)

// ClassifySegments applies the segment rules to every profile. Results are
// sorted by LTV descending, then email, so repeated runs over the same data
// produce identical output.
func ClassifySegments(profiles map[string]*CustomerProfile, tier config.LTVTier, ref time.Time) Segments {
	var seg Segments
	vipMin := decimal.NewFromFloat(tier.VIPMin)
	atRiskLTV := decimal.NewFromInt(atRiskMinLTV)
	newLTV := decimal.NewFromInt(newClientMinLTV)

	for _, p := range profiles {
		sinceLast := p.DaysSinceLastVisit(ref)

		if p.LTV.GreaterThan(vipMin) {
			seg.VIP = append(seg.VIP, p)
		}
		if p.HasActiveMembership && sinceLast >= inactiveMemberDays {
			seg.InactivePaidMembers = append(seg.InactivePaidMembers, p)
		}
		if p.Visits >= 1 && sinceLast >= atRiskDays && p.LTV.GreaterThanOrEqual(atRiskLTV) {
			seg.AtRisk = append(seg.AtRisk, p)
		}
		if p.Visits > 0 && p.Visits < 3 && p.LTV.GreaterThanOrEqual(newLTV) {
			seg.NewClients = append(seg.NewClients, p)
		}
		if p.Visits >= highFreqMinVisits && visitsPerWeek(p) >= highFreqVisitsWk {
			seg.HighFrequency = append(seg.HighFrequency, p)
		}
	}

	for _, list := range [][]*CustomerProfile{
		seg.VIP, seg.InactivePaidMembers, seg.AtRisk, seg.NewClients, seg.HighFrequency,
	} {
		sortProfiles(list)
	}

	return seg
}

// visitsPerWeek normalizes visit count over the first-to-last span. Spans
// under a day collapse to one day so a burst of same-day visits still
// qualifies instead of dividing by zero.
func visitsPerWeek(p *CustomerProfile) float64 {
	days := p.daysBetweenVisits()
	if days < 1 {
		days = 1
	}
	return float64(p.Visits) / days * 7
}

func sortProfiles(list []*CustomerProfile) {
	sort.Slice(list, func(i, j int) bool {
		if !list[i].LTV.Equal(list[j].LTV) {
			return list[i].LTV.GreaterThan(list[j].LTV)
		}
		return list[i].Email < list[j].Email
	})
}

// AtRiskClients returns profiles whose days since last visit exceed the
// dynamic threshold from ComputeRetention, sorted like the segments.
func AtRiskClients(profiles map[string]*CustomerProfile, thresholdDays float64, ref time.Time) []*CustomerProfile {
	if thresholdDays <= 0 {
		return nil
	}
	var list []*CustomerProfile
	for _, p := range profiles {
		if p.Visits == 0 {
			continue
		}
		if p.DaysSinceLastVisit(ref) > thresholdDays {
			list = append(list, p)
		}
	}
	sortProfiles(list)
	return list
}
