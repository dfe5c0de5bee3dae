package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findRec(recs []Recommendation, title string) *Recommendation {
	for i := range recs {
		if recs[i].Title == title {
			return &recs[i]
		}
	}
	return nil
}

func TestRecommendLowRetention(t *testing.T) {
	recs := Recommend(RecommendInputs{
		RetentionRate:       30,
		UniqueClients:       100,
		AvgRevenuePerClient: d(80),
		ProfitMargin:        50,
	})

	rec := findRec(recs, "Improve client retention")
	require.NotNil(t, rec)
	assert.Equal(t, PriorityHigh, rec.Priority)
	// 80 x 100 clients x 0.5 share.
	assertMoney(t, 4000, rec.ImpactValue)

	// Zero clients means there is nothing to retain yet.
	recs = Recommend(RecommendInputs{RetentionRate: 0, UniqueClients: 0, ProfitMargin: 50})
	assert.Nil(t, findRec(recs, "Improve client retention"))
}

func TestRecommendLowMargin(t *testing.T) {
	recs := Recommend(RecommendInputs{
		RetentionRate: 60,
		ProfitMargin:  15,
		TotalRevenue:  d(10000),
	})

	rec := findRec(recs, "Raise profit margin")
	require.NotNil(t, rec)
	assert.Equal(t, PriorityMedium, rec.Priority)
	// 10000 x (25 - 15) / 100.
	assertMoney(t, 1000, rec.ImpactValue)

	// No revenue means there is no margin to raise.
	recs = Recommend(RecommendInputs{RetentionRate: 60, ProfitMargin: 0})
	assert.Nil(t, findRec(recs, "Raise profit margin"))
}

func TestRecommendFrozenMemberships(t *testing.T) {
	recs := Recommend(RecommendInputs{
		RetentionRate: 60,
		ProfitMargin:  50,
		FrozenRate:    20,
		MRR:           d(5000),
	})

	rec := findRec(recs, "Reactivate frozen memberships")
	require.NotNil(t, rec)
	assertMoney(t, 1000, rec.ImpactValue)
}

func TestRecommendRefundBranch(t *testing.T) {
	// Over the threshold: high-priority investigation.
	recs := Recommend(RecommendInputs{
		RetentionRate:  60,
		ProfitMargin:   50,
		RefundRate:     8,
		RefundedAmount: d(320),
	})
	rec := findRec(recs, "Investigate refund volume")
	require.NotNil(t, rec)
	assert.Equal(t, PriorityHigh, rec.Priority)
	assertMoney(t, 320, rec.ImpactValue)
	assert.Nil(t, findRec(recs, "Maintain service quality"))

	// Some refunds but under the threshold: low-priority maintain.
	recs = Recommend(RecommendInputs{
		RetentionRate:  60,
		ProfitMargin:   50,
		RefundRate:     2,
		RefundedAmount: d(40),
	})
	rec = findRec(recs, "Maintain service quality")
	require.NotNil(t, rec)
	assert.Equal(t, PriorityLow, rec.Priority)
	assert.True(t, rec.ImpactValue.IsZero())

	// No refunds at all: neither branch fires.
	recs = Recommend(RecommendInputs{
		RetentionRate: 60,
		ProfitMargin:  50,
	})
	assert.Nil(t, findRec(recs, "Investigate refund volume"))
	assert.Nil(t, findRec(recs, "Maintain service quality"))
}

func TestRecommendGapHours(t *testing.T) {
	recs := Recommend(RecommendInputs{
		RetentionRate:     60,
		ProfitMargin:      50,
		GapHours:          12,
		GapCostToBusiness: d(900),
	})

	rec := findRec(recs, "Tighten schedule gaps")
	require.NotNil(t, rec)
	assertMoney(t, 900, rec.ImpactValue)

	// Exactly at the threshold does not fire.
	recs = Recommend(RecommendInputs{
		RetentionRate: 60,
		ProfitMargin:  50,
		GapHours:      10,
	})
	assert.Nil(t, findRec(recs, "Tighten schedule gaps"))
}

func TestRecommendSortedByImpact(t *testing.T) {
	recs := Recommend(RecommendInputs{
		RetentionRate:       30,
		UniqueClients:       10,
		AvgRevenuePerClient: d(50), // impact 250
		ProfitMargin:        20,
		TotalRevenue:        d(100000), // impact 5000
		GapHours:            12,
		GapCostToBusiness:   d(900),
	})

	require.Len(t, recs, 3)
	for i := 1; i < len(recs); i++ {
		assert.True(t, recs[i-1].ImpactValue.GreaterThanOrEqual(recs[i].ImpactValue))
	}
	assert.Equal(t, "Raise profit margin", recs[0].Title)
}

func TestRecommendHealthyStudioIsQuiet(t *testing.T) {
	recs := Recommend(RecommendInputs{
		RetentionRate: 65,
		ProfitMargin:  40,
		FrozenRate:    5,
		RefundRate:    0,
		GapHours:      2,
	})
	assert.Empty(t, recs)
}
