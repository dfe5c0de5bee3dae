package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/franops/studiodash/internal/config"
)

const usage = `Studio Dashboard Analytics Tool

Usage:
  studiodash report summary         --data DIR|ZIP [filters] [--output FILE]
  studiodash report revenue         --data DIR|ZIP [filters]
  studiodash report retention       --data DIR|ZIP [filters]
  studiodash report segments        --data DIR|ZIP [filters] [--segment NAME] [--tier NAME] [--export FILE]
  studiodash report gaps            --data DIR|ZIP [filters] [--top N]
  studiodash report leads           --data DIR|ZIP [filters] [--export FILE]
  studiodash report memberships     --data DIR|ZIP [filters]
  studiodash report recommendations --data DIR|ZIP [filters]

Filters:
  --month YYYY-MM      Restrict to one calendar month ("all" disables)
  --from YYYY-MM-DD    Include records on or after this date
  --to YYYY-MM-DD      Include records on or before this date
  --location NAME      Restrict appointments to one location
  --practitioner NAME  Restrict to one practitioner
  --service NAME       Restrict to one service

Data:
  --data PATH          Directory of CSV exports, or a .zip bundle. Files are
                       routed by name: appointments*, memberships*,
                       *cancellations*, leads*, converted_leads*,
                       time_tracking*, commissions*.

Configuration (environment or .env):
  STUDIO_BASE_HOURLY_RATE      Base hourly rate for non-appointment hours (default 13)
  STUDIO_GAP_HOURLY_REVENUE    Assumed revenue per bookable hour (default 150)
  STUDIO_FRANCHISE_FEE_PCT     Franchise fee percent of revenue (default 0)
  STUDIO_BRAND_FUND_PCT        Brand fund percent of revenue (default 0)
  STUDIO_CC_FEES_PCT           Card fee percent of revenue (default 0)
  STUDIO_GOAL_MONTHLY_REVENUE  Monthly revenue goal (0 disables)
  STUDIO_GOAL_MONTHLY_APPOINTMENTS / STUDIO_GOAL_MONTHLY_INTROS
  STUDIO_LTV_TIER              LTV tier preset: standard, boutique, high-volume
  STUDIO_STAFF_FILE            JSON sidecar with salaried staff and name directory

Examples:
  studiodash report summary --data exports/ --month 2026-07 --output july.html
  studiodash report gaps --data exports.zip --practitioner "Dana R." --top 5
  studiodash report segments --data exports/ --segment vip --export vips.csv
`

func main() {
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})
	log.SetLevel(log.WarnLevel)
	if os.Getenv("STUDIO_VERBOSE") != "" {
		log.SetLevel(log.InfoLevel)
	}

	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	switch command := os.Args[1]; command {
	case "report":
		handleReport(cfg, os.Args[2:])
	case "help", "-h", "--help":
		fmt.Print(usage)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		fmt.Print(usage)
		os.Exit(1)
	}
}

func handleReport(cfg *config.Config, args []string) {
	if len(args) < 1 {
		fmt.Println("Error: report requires a report type")
		fmt.Println("Available reports: summary, revenue, retention, segments, gaps, leads, memberships, recommendations")
		os.Exit(1)
	}

	reportType := args[0]
	reportArgs := args[1:]

	switch reportType {
	case "summary":
		reportSummary(cfg, reportArgs)
	case "revenue":
		reportRevenue(cfg, reportArgs)
	case "retention":
		reportRetention(cfg, reportArgs)
	case "segments":
		reportSegments(cfg, reportArgs)
	case "gaps":
		reportGaps(cfg, reportArgs)
	case "leads":
		reportLeads(cfg, reportArgs)
	case "memberships":
		reportMemberships(cfg, reportArgs)
	case "recommendations":
		reportRecommendations(cfg, reportArgs)
	default:
		fmt.Printf("Unknown report type: %s\n", reportType)
		fmt.Println("Available reports: summary, revenue, retention, segments, gaps, leads, memberships, recommendations")
		os.Exit(1)
	}
}
