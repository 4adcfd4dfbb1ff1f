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

package pricing

import (
	"errors"
	"fmt"

	"ad-token-ledger/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var ErrInvalidArgument = errors.New("invalid argument")

var printer = message.NewPrinter(language.English)

// CalculateTokenCost prices a campaign in tokens. freeCreativesUsed is the
// number of free creative assets already consumed in the current cycle.
func CalculateTokenCost(params models.CampaignParams, freeCreativesUsed int64) (*models.TokenSpendCalculation, error) {
	if err := validateParams(params); err != nil {
		return nil, err
	}
	if freeCreativesUsed < 0 {
		return nil, fmt.Errorf("%w: free creatives used must be non-negative, got %d", ErrInvalidArgument, freeCreativesUsed)
	}

	mediaTokens := params.Impressions * MediaImpressionRate

	freeCreativesRemaining := max(0, FreeCreativeLimit-freeCreativesUsed)
	paidCreatives := max(0, params.CreativeAssets-freeCreativesRemaining)
	creativeTokens := paidCreatives*CreativeAssetMinRate + params.AbVariants*AbVariantRate

	var targetingTokens, priorityTokens int64
	if params.HasAdvancedTargeting {
		targetingTokens = AdvancedTargetingFlat
	}
	if params.HasPriorityQueue {
		priorityTokens = PriorityQueueFlat
	}

	calc := &models.TokenSpendCalculation{
		MediaTokens:          mediaTokens,
		CreativeTokens:       creativeTokens,
		TargetingTokens:      targetingTokens,
		PriorityTokens:       priorityTokens,
		TotalTokens:          mediaTokens + creativeTokens + targetingTokens + priorityTokens,
		EstimatedImpressions: params.Impressions,
		EstimatedMediaSpend:  MediaSpend(mediaTokens),
		CreativeAssets:       params.CreativeAssets,
		AbVariants:           params.AbVariants,
		FreeCreativesApplied: params.CreativeAssets - paidCreatives,
		Breakdown:            []models.BreakdownItem{},
	}

	if mediaTokens > 0 {
		calc.Breakdown = append(calc.Breakdown, models.BreakdownItem{
			Category:    models.CategoryMedia,
			Label:       "Media Impressions",
			Tokens:      mediaTokens,
			Description: printer.Sprintf("%d impressions", params.Impressions),
		})
	}
	if creativeTokens > 0 {
		calc.Breakdown = append(calc.Breakdown, models.BreakdownItem{
			Category:    models.CategoryCreative,
			Label:       "Creative Assets",
			Tokens:      creativeTokens,
			Description: fmt.Sprintf("%d assets + %d variants", params.CreativeAssets, params.AbVariants),
		})
	}
	if targetingTokens > 0 {
		calc.Breakdown = append(calc.Breakdown, models.BreakdownItem{
			Category:    models.CategoryTargeting,
			Label:       "Advanced Targeting",
			Tokens:      targetingTokens,
			Description: "Radius & demographic targeting",
		})
	}
	if priorityTokens > 0 {
		calc.Breakdown = append(calc.Breakdown, models.BreakdownItem{
			Category:    models.CategoryPriority,
			Label:       "Priority Queue",
			Tokens:      priorityTokens,
			Description: "Faster campaign processing",
		})
	}

	return calc, nil
}

func validateParams(params models.CampaignParams) error {
	if err := checkUnits("impressions", params.Impressions); err != nil {
		return err
	}
	if err := checkUnits("creative assets", params.CreativeAssets); err != nil {
		return err
	}
	return checkUnits("A/B variants", params.AbVariants)
}

func checkUnits(name string, n int64) error {
	if n < 0 {
		return fmt.Errorf("%w: %s must be non-negative, got %d", ErrInvalidArgument, name, n)
	}
	if n > MaxCampaignUnits {
		return fmt.Errorf("%w: %s must be at most %d, got %d", ErrInvalidArgument, name, MaxCampaignUnits, n)
	}
	return nil
}

// MediaSpend converts media tokens to the dollar amount they buy
func MediaSpend(mediaTokens int64) decimal.Decimal {
	return decimal.NewFromInt(mediaTokens).Div(decimal.NewFromInt(TokensPerDollar))
}

// ImpressionsForBudget estimates impressions for a monthly budget in dollars
func ImpressionsForBudget(budget decimal.Decimal) int64 {
	if !budget.IsPositive() {
		return 0
	}
	return budget.Mul(decimal.NewFromInt(ImpressionsPerBudgetDollar)).Floor().IntPart()
}

// SplitTokens divides an allocation into media and creative sub-balances.
// Media gets floor(80%); the remainder goes to creative so the parts always
// sum to amount.
func SplitTokens(amount int64) (media, creative int64) {
	media = amount * MediaSharePercent / 100
	return media, amount - media
}

// PurchaseCost is the informational dollar cost of buying tokens a la carte
func PurchaseCost(amount int64, plan models.SubscriptionPlan) decimal.Decimal {
	return decimal.NewFromInt(amount).Mul(plan.AlaCarteTokenPrice)
}

// FormatTokens renders a token count with thousands separators
func FormatTokens(tokens int64) string {
	return printer.Sprintf("%d", tokens)
}
