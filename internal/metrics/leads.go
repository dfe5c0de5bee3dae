package metrics

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/franops/studiodash/internal/parser"
)

// LeadRecord is the canonical lead shape after normalization. The analyzer
// behaves identically regardless of which export the records came from.
type LeadRecord struct {
	Email     string
	Source    string
	Location  string
	Converted bool
	LTV       decimal.Decimal
}

// LeadsInput tags the normalized records with their origin so reports can
// say which conversion definition applied.
type LeadsInput struct {
	Records             []LeadRecord
	FromConvertedSource bool
}

// NormalizeLeads prefers the richer converted-leads export when present and
// falls back to the basic leads export. The branch happens once, here, on
// data availability: with the converted source a lead counts as converted
// when its Converted-to value is non-empty and not "N/A"; with the basic
// source when its type is "customer".
func NormalizeLeads(convertedLeads, basicLeads []parser.Lead) LeadsInput {
	if len(convertedLeads) > 0 {
		records := make([]LeadRecord, 0, len(convertedLeads))
		for _, l := range convertedLeads {
			records = append(records, LeadRecord{
				Email:     l.Email,
				Source:    orUnknown(l.LeadSource),
				Location:  orUnknown(l.HomeLocation),
				Converted: hasConversion(l.ConvertedTo),
				LTV:       l.LTV,
			})
		}
		return LeadsInput{Records: records, FromConvertedSource: true}
	}

	records := make([]LeadRecord, 0, len(basicLeads))
	for _, l := range basicLeads {
		records = append(records, LeadRecord{
			Email:     l.Email,
			Source:    orUnknown(l.LeadSource),
			Location:  orUnknown(l.HomeLocation),
			Converted: strings.EqualFold(l.Type, "customer"),
			LTV:       l.LTV,
		})
	}
	return LeadsInput{Records: records}
}

func hasConversion(convertedTo string) bool {
	convertedTo = strings.TrimSpace(convertedTo)
	return convertedTo != "" && !strings.EqualFold(convertedTo, "N/A")
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "Unknown"
	}
	return s
}

// GroupStats is one row of a per-source or per-location lead aggregate.
type GroupStats struct {
	Name           string
	Count          int
	Converted      int
	ConversionRate float64 // percent
	TotalLTV       decimal.Decimal
}

// LeadsBySource aggregates the normalized leads per lead source.
func LeadsBySource(in LeadsInput) []GroupStats {
	return groupLeads(in.Records, func(r LeadRecord) string { return r.Source })
}

// LeadsByLocation aggregates the normalized leads per home location.
func LeadsByLocation(in LeadsInput) []GroupStats {
	return groupLeads(in.Records, func(r LeadRecord) string { return r.Location })
}

func groupLeads(records []LeadRecord, keyFn func(LeadRecord) string) []GroupStats {
	byKey := make(map[string]*GroupStats)
	for _, r := range records {
		key := keyFn(r)
		g, ok := byKey[key]
		if !ok {
			g = &GroupStats{Name: key, TotalLTV: decimal.Zero}
			byKey[key] = g
		}
		g.Count++
		if r.Converted {
			g.Converted++
		}
		g.TotalLTV = g.TotalLTV.Add(r.LTV)
	}

	results := make([]GroupStats, 0, len(byKey))
	for _, g := range byKey {
		if g.Count > 0 {
			g.ConversionRate = float64(g.Converted) / float64(g.Count) * 100
		}
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

// CrossTab counts leads per source per location.
func CrossTab(in LeadsInput) map[string]map[string]int {
	tab := make(map[string]map[string]int)
	for _, r := range in.Records {
		if tab[r.Source] == nil {
			tab[r.Source] = make(map[string]int)
		}
		tab[r.Source][r.Location]++
	}
	return tab
}

// FunnelStage is one step of the customer journey with pairwise conversion
// and drop-off against the previous stage.
type FunnelStage struct {
	Name          string
	Count         int
	ConversionPct float64 // vs previous stage; 0 when previous is 0
	DropOffPct    float64
}

// Funnel builds the six-stage journey. Each stage is a strict subset of the
// one before it, so counts are monotonically non-increasing:
// contacts → customers → tried intro → first purchase → repeat → loyal.
func Funnel(in LeadsInput, appts []parser.Appointment, memberships []parser.Membership) []FunnelStage {
	visitCounts := make(map[string]int)
	for _, a := range appts {
		if a.CustomerEmail != "" {
			visitCounts[a.CustomerEmail]++
		}
	}

	firstPurchases := FirstPurchases(memberships)
	membershipNames := make(map[string]string)
	for _, m := range memberships {
		membershipNames[m.PurchaseID] = m.Name
	}

	triedIntro := func(email string) bool {
		fp, ok := firstPurchases[email]
		if !ok {
			return false
		}
		return parser.IsIntroductoryService(membershipNames[fp.PurchaseID])
	}
	boughtBeyondIntro := func(email string, first FirstPurchase) bool {
		for _, m := range memberships {
			if m.CustomerEmail != email || m.PurchaseID == first.PurchaseID {
				continue
			}
			if !parser.IsIntroductoryService(m.Name) {
				return true
			}
		}
		return false
	}

	total := len(in.Records)
	customers := 0
	intro := 0
	purchased := 0
	repeat := 0
	loyal := 0

	for _, r := range in.Records {
		if !r.Converted {
			continue
		}
		customers++

		if r.Email == "" || !triedIntro(r.Email) {
			continue
		}
		intro++

		if !boughtBeyondIntro(r.Email, firstPurchases[r.Email]) {
			continue
		}
		purchased++

		if visitCounts[r.Email] < 2 {
			continue
		}
		repeat++

		if visitCounts[r.Email] >= 5 {
			loyal++
		}
	}

	stages := []FunnelStage{
		{Name: "Total Contacts", Count: total},
		{Name: "Customers", Count: customers},
		{Name: "Tried Intro", Count: intro},
		{Name: "First Purchase", Count: purchased},
		{Name: "Repeat", Count: repeat},
		{Name: "Loyal", Count: loyal},
	}

	for i := 1; i < len(stages); i++ {
		prev := stages[i-1].Count
		if prev > 0 {
			stages[i].ConversionPct = float64(stages[i].Count) / float64(prev) * 100
			stages[i].DropOffPct = 100 - stages[i].ConversionPct
		}
	}

	return stages
}

// LTVCohort buckets converted leads by conversion month for the journey
// view. Only records from the converted source carry a conversion date, so
// the basic source yields no cohorts.
type LTVCohort struct {
	Month    string
	Count    int
	TotalLTV decimal.Decimal
	AvgLTV   decimal.Decimal
}

// LTVCohorts groups converted leads by the month they converted.
func LTVCohorts(convertedLeads []parser.Lead) []LTVCohort {
	byMonth := make(map[string]*LTVCohort)
	for _, l := range convertedLeads {
		if l.ConvertedDate == nil || !hasConversion(l.ConvertedTo) {
			continue
		}
		month := l.ConvertedDate.Format("2006-01")
		c, ok := byMonth[month]
		if !ok {
			c = &LTVCohort{Month: month, TotalLTV: decimal.Zero, AvgLTV: decimal.Zero}
			byMonth[month] = c
		}
		c.Count++
		c.TotalLTV = c.TotalLTV.Add(l.LTV)
	}

	results := make([]LTVCohort, 0, len(byMonth))
	for _, c := range byMonth {
		if c.Count > 0 {
			c.AvgLTV = c.TotalLTV.Div(decimal.NewFromInt(int64(c.Count)))
		}
		results = append(results, *c)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Month < results[j].Month })
	return results
}
