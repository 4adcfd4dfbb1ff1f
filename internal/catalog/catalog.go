/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package catalog

import (
	"errors"
	"fmt"
	"slices"

	"ad-token-ledger/internal/models"

	"github.com/shopspring/decimal"
)

var ErrPlanNotFound = errors.New("subscription plan not found")

// Catalog is a read-only table of subscription plans
type Catalog struct {
	plans []models.SubscriptionPlan
	index map[string]int
}

// DefaultPlans returns the built-in plan table
func DefaultPlans() []models.SubscriptionPlan {
	return []models.SubscriptionPlan{
		{
			Id:                 "starter",
			Name:               "Starter",
			MonthlyFee:         decimal.NewFromInt(150),
			TokensIncluded:     15000,
			CostPerToken:       decimal.RequireFromString("0.01"),
			AlaCarteTokenPrice: decimal.RequireFromString("0.015"),
			Features: []string{
				"Perfect for single locations",
				"All-inclusive pricing",
				"Meta & Google Ads",
				"AI creative generation",
				"Basic analytics",
				"Email support",
			},
		},
		{
			Id:                 "growth",
			Name:               "Growth",
			MonthlyFee:         decimal.NewFromInt(275),
			TokensIncluded:     27500,
			CostPerToken:       decimal.RequireFromString("0.01"),
			AlaCarteTokenPrice: decimal.RequireFromString("0.012"),
			IsPopular:          true,
			Features: []string{
				"Most popular choice",
				"All-inclusive pricing",
				"Multi-platform advertising",
				"Advanced AI features",
				"A/B testing & optimization",
				"Priority support",
				"Advanced analytics",
			},
		},
		{
			Id:                 "pro",
			Name:               "Pro",
			MonthlyFee:         decimal.NewFromInt(500),
			TokensIncluded:     50000,
			CostPerToken:       decimal.RequireFromString("0.01"),
			AlaCarteTokenPrice: decimal.RequireFromString("0.010"),
			Features: []string{
				"For established franchises",
				"All-inclusive pricing",
				"Premium ad placements",
				"Custom creative templates",
				"Dedicated account manager",
				"Priority queue processing",
				"Custom reporting & API",
			},
		},
		{
			// Custom pricing, negotiated per contract
			Id:                 "enterprise",
			Name:               "Enterprise",
			MonthlyFee:         decimal.Zero,
			TokensIncluded:     0,
			CostPerToken:       decimal.Zero,
			AlaCarteTokenPrice: decimal.Zero,
			Features: []string{
				"Custom for 300+ locations",
				"Volume pricing discounts",
				"White-label platform",
				"Dedicated success team",
				"Custom integrations",
				"SLA guarantees",
				"Advanced security & compliance",
			},
		},
	}
}

// New builds a catalog from the given plans. Plan ids must be unique and non-empty.
func New(plans []models.SubscriptionPlan) (*Catalog, error) {
	if len(plans) == 0 {
		return nil, fmt.Errorf("catalog requires at least one plan")
	}

	c := &Catalog{
		plans: make([]models.SubscriptionPlan, 0, len(plans)),
		index: make(map[string]int, len(plans)),
	}
	for i, plan := range plans {
		if err := validatePlan(plan); err != nil {
			return nil, fmt.Errorf("plan at index %d: %w", i, err)
		}
		if _, exists := c.index[plan.Id]; exists {
			return nil, fmt.Errorf("duplicate plan id %q", plan.Id)
		}
		c.index[plan.Id] = len(c.plans)
		c.plans = append(c.plans, clonePlan(plan))
	}
	return c, nil
}

// Default returns the catalog of built-in plans
func Default() *Catalog {
	c, err := New(DefaultPlans())
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks up a plan by id
func (c *Catalog) Get(planId string) (models.SubscriptionPlan, error) {
	i, ok := c.index[planId]
	if !ok {
		return models.SubscriptionPlan{}, fmt.Errorf("%w: %s", ErrPlanNotFound, planId)
	}
	return clonePlan(c.plans[i]), nil
}

// List returns all plans in catalog order
func (c *Catalog) List() []models.SubscriptionPlan {
	plans := make([]models.SubscriptionPlan, len(c.plans))
	for i, plan := range c.plans {
		plans[i] = clonePlan(plan)
	}
	return plans
}

func validatePlan(plan models.SubscriptionPlan) error {
	if plan.Id == "" {
		return fmt.Errorf("missing id")
	}
	if plan.Name == "" {
		return fmt.Errorf("plan %q missing name", plan.Id)
	}
	if plan.TokensIncluded < 0 {
		return fmt.Errorf("plan %q has negative tokens_included", plan.Id)
	}
	if plan.MonthlyFee.IsNegative() || plan.CostPerToken.IsNegative() || plan.AlaCarteTokenPrice.IsNegative() {
		return fmt.Errorf("plan %q has a negative price", plan.Id)
	}
	return nil
}

func clonePlan(plan models.SubscriptionPlan) models.SubscriptionPlan {
	plan.Features = slices.Clone(plan.Features)
	return plan
}
