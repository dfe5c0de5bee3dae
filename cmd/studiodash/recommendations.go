package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/metrics"
	"github.com/franops/studiodash/internal/report"
)

func reportRecommendations(cfg *config.Config, args []string) {
	opts := mustOptions(args)
	ds := mustLoad(opts)

	r := report.Generate(ds, opts.spec, cfg, time.Now())

	fmt.Println(strings.Repeat("═", 78))
	fmt.Println("💡 RECOMMENDATIONS")
	fmt.Printf("   Period: %s\n", describeSpec(opts.spec))
	fmt.Println(strings.Repeat("═", 78))
	fmt.Println()

	if len(r.Recommendations) == 0 {
		fmt.Println("✅ No recommendations; every tracked metric is inside its threshold")
		return
	}

	for i, rec := range r.Recommendations {
		fmt.Printf("%d. %s [%s] %s\n", i+1,
			priorityIcon(rec.Priority), strings.ToUpper(string(rec.Priority)), rec.Title)
		fmt.Printf("   %s\n", rec.Description)
		fmt.Printf("   Action: %s\n", rec.Action)
		fmt.Printf("   Estimated impact: %s\n", report.FormatMoney(rec.ImpactValue))
		fmt.Println()
	}
}

func priorityIcon(p metrics.Priority) string {
	switch p {
	case metrics.PriorityHigh:
		return "🔴"
	case metrics.PriorityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}
