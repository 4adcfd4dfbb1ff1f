package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"ad-token-ledger/internal/models"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type PlanConfig struct {
	Id                 string   `yaml:"id"`
	Name               string   `yaml:"name"`
	MonthlyFee         string   `yaml:"monthly_fee"`
	TokensIncluded     int64    `yaml:"tokens_included"`
	CostPerToken       string   `yaml:"cost_per_token"`
	AlaCarteTokenPrice string   `yaml:"ala_carte_token_price"`
	Features           []string `yaml:"features"`
	IsPopular          bool     `yaml:"is_popular"`
}

type PlansConfig struct {
	Plans []PlanConfig `yaml:"plans"`
}

// LoadFile builds a catalog from a plans.yaml file. An empty path yields the built-in plans.
func LoadFile(plansFile string) (*Catalog, error) {
	if plansFile == "" {
		return Default(), nil
	}

	var plansPath string
	if filepath.IsAbs(plansFile) {
		plansPath = plansFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		plansPath = filepath.Join(wd, plansFile)
	}

	data, err := os.ReadFile(plansPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", plansFile, err)
	}

	plans, err := ParsePlans(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", plansFile, err)
	}
	return New(plans)
}

// ParsePlans decodes a YAML plan table
func ParsePlans(data []byte) ([]models.SubscriptionPlan, error) {
	var config PlansConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	plans := make([]models.SubscriptionPlan, 0, len(config.Plans))
	for i, p := range config.Plans {
		monthlyFee, err := parseAmount(p.MonthlyFee)
		if err != nil {
			return nil, fmt.Errorf("plan at index %d: invalid monthly_fee: %w", i, err)
		}
		costPerToken, err := parseAmount(p.CostPerToken)
		if err != nil {
			return nil, fmt.Errorf("plan at index %d: invalid cost_per_token: %w", i, err)
		}
		alaCarte, err := parseAmount(p.AlaCarteTokenPrice)
		if err != nil {
			return nil, fmt.Errorf("plan at index %d: invalid ala_carte_token_price: %w", i, err)
		}

		plans = append(plans, models.SubscriptionPlan{
			Id:                 p.Id,
			Name:               p.Name,
			MonthlyFee:         monthlyFee,
			TokensIncluded:     p.TokensIncluded,
			CostPerToken:       costPerToken,
			AlaCarteTokenPrice: alaCarte,
			Features:           p.Features,
			IsPopular:          p.IsPopular,
		})
	}
	return plans, nil
}

// amounts are quoted strings so yaml never rounds them through float64
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
