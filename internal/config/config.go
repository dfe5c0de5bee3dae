package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/franops/studiodash/internal/parser"
)

// Config carries the operator-tunable business constants. Every rate the
// dashboards assume ($13/h base labor, $150/h potential gap revenue, the
// franchise fee percentages) lives here rather than in the metrics code.
type Config struct {
	BaseHourlyRate   float64 `env:"STUDIO_BASE_HOURLY_RATE" envDefault:"13" validate:"gte=0"`
	GapHourlyRevenue float64 `env:"STUDIO_GAP_HOURLY_REVENUE" envDefault:"150" validate:"gte=0"`

	FranchiseFeePercent float64 `env:"STUDIO_FRANCHISE_FEE_PCT" envDefault:"0" validate:"gte=0,lte=100"`
	BrandFundPercent    float64 `env:"STUDIO_BRAND_FUND_PCT" envDefault:"0" validate:"gte=0,lte=100"`
	CCFeesPercent       float64 `env:"STUDIO_CC_FEES_PCT" envDefault:"0" validate:"gte=0,lte=100"`

	MonthlyRevenueGoal float64 `env:"STUDIO_GOAL_MONTHLY_REVENUE" envDefault:"0" validate:"gte=0"`
	MonthlyApptGoal    int     `env:"STUDIO_GOAL_MONTHLY_APPOINTMENTS" envDefault:"0" validate:"gte=0"`
	MonthlyIntroGoal   int     `env:"STUDIO_GOAL_MONTHLY_INTROS" envDefault:"0" validate:"gte=0"`

	LTVTierName string `env:"STUDIO_LTV_TIER" envDefault:"standard"`

	// StaffFile points at an optional JSON sidecar with the salaried roster
	// and the email → full name directory.
	StaffFile string `env:"STUDIO_STAFF_FILE"`

	Salaried       []SalariedEmployee `env:"-"`
	StaffDirectory map[string]string  `env:"-"`
}

// SalariedEmployee is a staff member paid an annual salary, prorated into the
// labor cost by days worked within the reporting period.
type SalariedEmployee struct {
	Name         string
	AnnualSalary decimal.Decimal
	StartDate    time.Time
}

// staffFile is the JSON shape of the sidecar.
type staffFile struct {
	Salaried []struct {
		Name         string  `json:"name"`
		AnnualSalary float64 `json:"annualSalary"`
		StartDate    string  `json:"startDate"`
	} `json:"salaried"`
	Names map[string]string `json:"names"`
}

// Load reads configuration from the environment, after a best-effort .env
// load, and validates it. A missing .env file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if cfg.StaffFile != "" {
		if err := cfg.loadStaffFile(cfg.StaffFile); err != nil {
			return nil, err
		}
	}
	if cfg.StaffDirectory == nil {
		cfg.StaffDirectory = map[string]string{}
	}

	return &cfg, nil
}

func (c *Config) loadStaffFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read staff file: %w", err)
	}

	var sf staffFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("failed to parse staff file %s: %w", path, err)
	}

	for _, s := range sf.Salaried {
		emp := SalariedEmployee{
			Name:         s.Name,
			AnnualSalary: decimal.NewFromFloat(s.AnnualSalary),
		}
		if t := parser.ParseFlexibleDate(s.StartDate); t != nil {
			emp.StartDate = *t
		}
		c.Salaried = append(c.Salaried, emp)
	}

	c.StaffDirectory = make(map[string]string, len(sf.Names))
	for email, name := range sf.Names {
		c.StaffDirectory[parser.NormalizeEmail(email)] = name
	}

	return nil
}

// Tier resolves the configured LTV tier preset.
func (c *Config) Tier() LTVTier {
	return TierByName(c.LTVTierName)
}
