package metrics

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/franops/studiodash/internal/parser"
)

// Gap analysis constants. Gaps at or under the threshold are routine
// turnover time, not idle time. The payout-rate fallback applies when the
// analyzed slice has no revenue to derive a real rate from.
const (
	gapThresholdMinutes = 15
	fallbackPayoutRate  = 0.5
)

// DayGaps is one practitioner-day with idle time between appointments.
type DayGaps struct {
	Practitioner string
	Date         time.Time

	Appointments int
	GapCount     int
	GapMinutes   float64

	WorkingHours    float64 // total booked appointment hours that day
	UtilizationRate float64 // percent; 0 when no working hours
}

// GapAnalysis aggregates idle time across the filtered appointment slice and
// prices it.
type GapAnalysis struct {
	Days []DayGaps // sorted by gap minutes descending, capped at top N

	TotalGapHours  float64
	AvgUtilization float64

	// AvgPayoutRate is totalPayout/totalRevenue over the slice, the share of
	// each booked dollar that goes to the practitioner.
	AvgPayoutRate    float64
	PotentialRevenue decimal.Decimal
	LostWages        decimal.Decimal
	CostToBusiness   decimal.Decimal
}

// AnalyzeGaps groups appointments by practitioner and calendar day, scans
// consecutive pairs for idle gaps over the threshold, and quantifies the
// lost revenue at the assumed hourly rate.
func AnalyzeGaps(appts []parser.Appointment, gapHourlyRevenue float64, topN int) GapAnalysis {
	analysis := GapAnalysis{
		PotentialRevenue: decimal.Zero,
		LostWages:        decimal.Zero,
		CostToBusiness:   decimal.Zero,
	}

	type dayKey struct {
		practitioner string
		day          string
	}
	byDay := make(map[dayKey][]parser.Appointment)
	totalRevenue := decimal.Zero
	totalPayout := decimal.Zero

	for _, a := range appts {
		if a.Date == nil {
			continue
		}
		totalRevenue = totalRevenue.Add(a.Revenue)
		totalPayout = totalPayout.Add(a.TotalPayout)
		key := dayKey{practitioner: a.Practitioner, day: a.Date.Format("2006-01-02")}
		byDay[key] = append(byDay[key], a)
	}

	var days []DayGaps
	utilizationSum := 0.0
	for key, dayAppts := range byDay {
		sort.Slice(dayAppts, func(i, j int) bool {
			return dayAppts[i].Date.Before(*dayAppts[j].Date)
		})

		d := DayGaps{
			Practitioner: key.practitioner,
			Appointments: len(dayAppts),
		}
		d.Date = time.Date(dayAppts[0].Date.Year(), dayAppts[0].Date.Month(), dayAppts[0].Date.Day(),
			0, 0, 0, 0, dayAppts[0].Date.Location())

		for i, a := range dayAppts {
			d.WorkingHours += a.DurationHours
			if i == 0 {
				continue
			}
			prev := dayAppts[i-1]
			prevEnd := prev.Date.Add(time.Duration(prev.DurationHours * float64(time.Hour)))
			gap := a.Date.Sub(prevEnd).Minutes()
			if gap > gapThresholdMinutes {
				d.GapCount++
				d.GapMinutes += gap
			}
		}

		gapHours := d.GapMinutes / 60
		if d.WorkingHours > 0 {
			d.UtilizationRate = (d.WorkingHours - gapHours) / d.WorkingHours * 100
		}

		analysis.TotalGapHours += gapHours
		utilizationSum += d.UtilizationRate
		days = append(days, d)
	}

	sort.Slice(days, func(i, j int) bool {
		if days[i].GapMinutes != days[j].GapMinutes {
			return days[i].GapMinutes > days[j].GapMinutes
		}
		if !days[i].Date.Equal(days[j].Date) {
			return days[i].Date.Before(days[j].Date)
		}
		return days[i].Practitioner < days[j].Practitioner
	})
	if topN > 0 && len(days) > topN {
		days = days[:topN]
	}
	analysis.Days = days

	if len(byDay) > 0 {
		analysis.AvgUtilization = utilizationSum / float64(len(byDay))
	}

	analysis.AvgPayoutRate = fallbackPayoutRate
	if totalRevenue.GreaterThan(decimal.Zero) {
		analysis.AvgPayoutRate, _ = totalPayout.Div(totalRevenue).Float64()
	}

	gapHours := decimal.NewFromFloat(analysis.TotalGapHours)
	hourlyRevenue := decimal.NewFromFloat(gapHourlyRevenue)
	avgHourlyPayout := decimal.NewFromFloat(analysis.AvgPayoutRate).Mul(hourlyRevenue)

	analysis.PotentialRevenue = gapHours.Mul(hourlyRevenue)
	analysis.LostWages = gapHours.Mul(avgHourlyPayout)
	analysis.CostToBusiness = analysis.PotentialRevenue.Sub(analysis.LostWages)

	return analysis
}
