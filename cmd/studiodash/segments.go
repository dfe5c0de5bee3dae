package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/franops/studiodash/internal/config"
	"github.com/franops/studiodash/internal/filter"
	"github.com/franops/studiodash/internal/metrics"
	"github.com/franops/studiodash/internal/report"
)

func reportSegments(cfg *config.Config, args []string) {
	opts := mustOptions(args)
	ds := mustLoad(opts)

	rec := filter.Apply(ds, opts.spec)
	rec.Memberships = metrics.MarkLifecycle(rec.Memberships)

	leads := rec.Leads
	if len(rec.ConvertedLeads) > 0 {
		leads = rec.ConvertedLeads
	}
	tier := cfg.Tier()
	if opts.tier != "" {
		tier = config.TierByName(opts.tier)
	}

	profiles := metrics.BuildCustomerProfiles(rec.Appointments, rec.Memberships, leads)
	segments := metrics.ClassifySegments(profiles, tier, time.Now())

	fmt.Println(strings.Repeat("═", 78))
	fmt.Println("👥 CLIENT SEGMENTS")
	fmt.Printf("   Period: %s · LTV tier: %s\n", describeSpec(opts.spec), tier.Name)
	fmt.Println(strings.Repeat("═", 78))
	fmt.Println()

	lists := []struct {
		key      string
		label    string
		profiles []*metrics.CustomerProfile
	}{
		{"vip", "VIP", segments.VIP},
		{"inactive-members", "Inactive paid members", segments.InactivePaidMembers},
		{"at-risk", "At risk", segments.AtRisk},
		{"new", "New clients", segments.NewClients},
		{"high-frequency", "High frequency", segments.HighFrequency},
	}

	if opts.segment == "" {
		fmt.Printf("  %-28s %8s\n", "Segment", "Clients")
		fmt.Println(strings.Repeat("─", 78))
		for _, l := range lists {
			fmt.Printf("  %-28s %8d\n", l.label, len(l.profiles))
		}
		fmt.Println()

		fmt.Println("Visit Distribution")
		fmt.Println(strings.Repeat("─", 78))
		for _, b := range metrics.SegmentBuckets(profiles) {
			fmt.Printf("  %-8s %6d\n", b.Label, b.Count)
		}
		fmt.Println()

		fmt.Printf("LTV Distribution (%s tier)\n", tier.Name)
		fmt.Println(strings.Repeat("─", 78))
		for _, b := range metrics.LTVDistribution(profiles, tier) {
			fmt.Printf("  %-14s %6d\n", b.Label, b.Count)
		}
		fmt.Println()
		fmt.Println("Use --segment NAME to list one segment (vip, inactive-members, at-risk, new, high-frequency).")
		return
	}

	var selected []*metrics.CustomerProfile
	var label string
	for _, l := range lists {
		if strings.EqualFold(opts.segment, l.key) {
			selected, label = l.profiles, l.label
			break
		}
	}
	if label == "" {
		fmt.Printf("Unknown segment: %s\n", opts.segment)
		fmt.Println("Available segments: vip, inactive-members, at-risk, new, high-frequency")
		os.Exit(1)
	}

	fmt.Printf("%s (%d clients)\n", label, len(selected))
	fmt.Println(strings.Repeat("─", 78))
	fmt.Printf("  %-32s %8s %12s %12s %8s\n", "Client", "Visits", "Last Visit", "LTV", "Member")
	for _, p := range selected {
		last := "never"
		if p.LastVisit != nil {
			last = p.LastVisit.Format("2006-01-02")
		}
		name := p.Name
		if name == "" {
			name = p.Email
		}
		member := "no"
		if p.HasActiveMembership {
			member = "yes"
		}
		fmt.Printf("  %-32s %8d %12s %12s %8s\n",
			truncateName(name, 32), p.Visits, last, report.FormatMoney(p.LTV), member)
	}
	fmt.Println()

	if opts.export != "" {
		exportSegmentCSV(selected, opts.export)
	}
}

func exportSegmentCSV(profiles []*metrics.CustomerProfile, path string) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("Error creating export file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if err := report.ExportSegment(f, profiles); err != nil {
		fmt.Printf("Error writing export: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("📄 Exported %d clients to %s\n", len(profiles), path)
}
