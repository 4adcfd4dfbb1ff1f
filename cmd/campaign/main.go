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

package main

import (
	"context"
	"flag"
	"fmt"

	"ad-token-ledger/internal/common"
	"ad-token-ledger/internal/config"
	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/pricing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func campaignParams(impressions int64, budget string, targeting, priority bool, assets, variants int64) (models.CampaignParams, error) {
	params := models.CampaignParams{
		Impressions:          impressions,
		HasAdvancedTargeting: targeting,
		HasPriorityQueue:     priority,
		CreativeAssets:       assets,
		AbVariants:           variants,
	}
	if budget != "" {
		amount, err := decimal.NewFromString(budget)
		if err != nil {
			return params, fmt.Errorf("invalid budget %q: %w", budget, err)
		}
		params.Impressions = pricing.ImpressionsForBudget(amount)
	}
	return params, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "User id")
	emailFlag := flag.String("email", "", "User email (alternative to --user)")
	impressionsFlag := flag.Int64("impressions", 1000, "Target impressions")
	budgetFlag := flag.String("budget", "", "Monthly budget in USD; overrides --impressions")
	targetingFlag := flag.Bool("targeting", false, "Advanced targeting")
	priorityFlag := flag.Bool("priority", false, "Priority queue")
	assetsFlag := flag.Int64("assets", 0, "Creative assets to produce")
	variantsFlag := flag.Int64("variants", 0, "A/B test variants")
	campaignFlag := flag.String("campaign", "", "Campaign id (default: generated)")
	launchFlag := flag.Bool("launch", false, "Spend the tokens and open a campaign order")
	flag.Parse()

	params, err := campaignParams(*impressionsFlag, *budgetFlag, *targetingFlag, *priorityFlag, *assetsFlag, *variantsFlag)
	if err != nil {
		zap.L().Fatal("Invalid campaign parameters", zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	userId, err := common.ResolveUserId(ctx, services.Store, *userFlag, *emailFlag)
	if err != nil {
		zap.L().Fatal("Failed to resolve user", zap.Error(err))
	}

	calc, err := services.Accounts.CalculateTokenCost(ctx, userId, params)
	if err != nil {
		zap.L().Fatal("Failed to price campaign", zap.Error(err))
	}

	balance, err := services.Accounts.GetTokenBalance(ctx, userId)
	if err != nil {
		zap.L().Fatal("Failed to read balance", zap.Error(err))
	}

	common.PrintHeader("CAMPAIGN QUOTE", common.DefaultWidth)
	common.PrintBreakdown(calc)
	fmt.Printf("\nEstimated media spend: $%s\n", calc.EstimatedMediaSpend.StringFixed(2))
	fmt.Printf("Wallet balance:        %s tokens\n", pricing.FormatTokens(balance))

	affordable, err := services.Accounts.CanAfford(ctx, userId, calc.TotalTokens)
	if err != nil {
		zap.L().Fatal("Failed to check balance", zap.Error(err))
	}
	if !affordable {
		fmt.Printf("Short by:              %s tokens\n", pricing.FormatTokens(calc.TotalTokens-balance))
	}

	if !*launchFlag {
		common.PrintFooter("Quote only; re-run with --launch to spend", common.DefaultWidth)
		return
	}

	campaignId := *campaignFlag
	if campaignId == "" {
		campaignId = "camp-" + uuid.New().String()[:8]
	}

	order, err := services.Accounts.SpendTokens(ctx, userId, *calc, campaignId)
	if err != nil {
		zap.L().Fatal("Campaign launch failed", zap.String("campaign_id", campaignId), zap.Error(err))
	}

	common.PrintFooter(fmt.Sprintf("LAUNCHED %s: order %s (%s)", order.CampaignId, order.Id, order.Status), common.DefaultWidth)
}
