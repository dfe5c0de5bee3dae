package metrics

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Priority ranks a recommendation.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Recommendation is one quantified business recommendation.
type Recommendation struct {
	Priority    Priority
	Title       string
	Description string
	Action      string
	ImpactValue decimal.Decimal
}

// Recommendation thresholds. These are the fixed business constants the rule
// table has always used; changing one changes which studios get flagged.
const (
	lowRetentionPct      = 40
	retentionImpactShare = 0.5
	lowMarginPct         = 25
	highFrozenRatePct    = 10
	highRefundRatePct    = 5
	gapHoursThreshold    = 10
)

// RecommendInputs carries the aggregates the rule table reads.
type RecommendInputs struct {
	RetentionRate       float64
	UniqueClients       int
	AvgRevenuePerClient decimal.Decimal

	ProfitMargin float64
	TotalRevenue decimal.Decimal

	FrozenRate float64
	MRR        decimal.Decimal

	RefundRate     float64
	RefundedAmount decimal.Decimal

	GapHours          float64
	GapCostToBusiness decimal.Decimal
}

// Recommend applies the threshold rule table and returns recommendations
// sorted by impact value descending. This is a deterministic table, not a
// model: same inputs, same output.
func Recommend(in RecommendInputs) []Recommendation {
	var recs []Recommendation

	if in.UniqueClients > 0 && in.RetentionRate < lowRetentionPct {
		impact := in.AvgRevenuePerClient.
			Mul(decimal.NewFromInt(int64(in.UniqueClients))).
			Mul(decimal.NewFromFloat(retentionImpactShare))
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Title:    "Improve client retention",
			Description: fmt.Sprintf("Only %.1f%% of clients return for a second visit (target: %d%%).",
				in.RetentionRate, lowRetentionPct),
			Action:      "Launch a rebooking campaign targeting one-visit clients within 7 days of their appointment.",
			ImpactValue: impact,
		})
	}

	if in.TotalRevenue.GreaterThan(decimal.Zero) && in.ProfitMargin < lowMarginPct {
		impact := in.TotalRevenue.
			Mul(decimal.NewFromFloat(lowMarginPct - in.ProfitMargin)).
			Div(decimal.NewFromInt(100))
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Title:    "Raise profit margin",
			Description: fmt.Sprintf("Profit margin is %.1f%%, below the %d%% benchmark.",
				in.ProfitMargin, lowMarginPct),
			Action:      "Review payout rates and non-appointment hours; reprice underperforming services.",
			ImpactValue: impact,
		})
	}

	if in.FrozenRate > highFrozenRatePct {
		impact := in.MRR.
			Mul(decimal.NewFromFloat(in.FrozenRate)).
			Div(decimal.NewFromInt(100))
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Title:    "Reactivate frozen memberships",
			Description: fmt.Sprintf("%.1f%% of memberships are frozen (threshold: %d%%).",
				in.FrozenRate, highFrozenRatePct),
			Action:      "Run a win-back offer for frozen members before they cancel outright.",
			ImpactValue: impact,
		})
	}

	switch {
	case in.RefundRate > highRefundRatePct:
		recs = append(recs, Recommendation{
			Priority: PriorityHigh,
			Title:    "Investigate refund volume",
			Description: fmt.Sprintf("Refunds are %.1f%% of membership revenue (threshold: %d%%).",
				in.RefundRate, highRefundRatePct),
			Action:      "Audit recent refunds for a common service, practitioner, or billing problem.",
			ImpactValue: in.RefundedAmount,
		})
	case in.RefundedAmount.GreaterThan(decimal.Zero):
		recs = append(recs, Recommendation{
			Priority:    PriorityLow,
			Title:       "Maintain service quality",
			Description: fmt.Sprintf("Refund rate is healthy at %.1f%%.", in.RefundRate),
			Action:      "Keep monitoring refund reasons to hold the current standard.",
			ImpactValue: decimal.Zero,
		})
	}

	if in.GapHours > gapHoursThreshold {
		recs = append(recs, Recommendation{
			Priority: PriorityMedium,
			Title:    "Tighten schedule gaps",
			Description: fmt.Sprintf("%.1f idle hours sit between appointments in this period.",
				in.GapHours),
			Action:      "Compact practitioner schedules or open the idle slots to online booking.",
			ImpactValue: in.GapCostToBusiness,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ImpactValue.GreaterThan(recs[j].ImpactValue)
	})

	return recs
}
