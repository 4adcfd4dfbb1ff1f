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
	"strings"

	"ad-token-ledger/internal/common"
	"ad-token-ledger/internal/config"
	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/pricing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func fulfillmentFromFlags(spend string, impressions int64, platforms string, cpm string) (*models.FulfillmentData, error) {
	if spend == "" && impressions == 0 && platforms == "" && cpm == "" {
		return nil, nil
	}
	f := &models.FulfillmentData{ImpressionsDelivered: impressions}
	if spend != "" {
		d, err := decimal.NewFromString(spend)
		if err != nil {
			return nil, fmt.Errorf("invalid --spend %q: %w", spend, err)
		}
		f.MediaSpendAllocated = d
	}
	if cpm != "" {
		d, err := decimal.NewFromString(cpm)
		if err != nil {
			return nil, fmt.Errorf("invalid --cpm %q: %w", cpm, err)
		}
		f.CpmAchieved = d
	}
	if platforms != "" {
		f.PlatformsUsed = strings.Split(platforms, ",")
	}
	return f, nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "User id")
	emailFlag := flag.String("email", "", "User email (alternative to --user)")
	orderFlag := flag.String("order", "", "Order id to update")
	statusFlag := flag.String("status", "", "New status: processing, active, completed or failed")
	spendFlag := flag.String("spend", "", "Fulfillment: media spend allocated (USD)")
	impressionsFlag := flag.Int64("delivered", 0, "Fulfillment: impressions delivered")
	platformsFlag := flag.String("platforms", "", "Fulfillment: comma-separated platforms")
	cpmFlag := flag.String("cpm", "", "Fulfillment: CPM achieved (USD)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *orderFlag != "" {
		if *statusFlag == "" {
			zap.L().Fatal("--status is required with --order")
		}
		fulfillment, err := fulfillmentFromFlags(*spendFlag, *impressionsFlag, *platformsFlag, *cpmFlag)
		if err != nil {
			zap.L().Fatal("Invalid fulfillment data", zap.Error(err))
		}
		order, err := services.Accounts.UpdateOrderStatus(ctx, *orderFlag, models.OrderStatus(*statusFlag), fulfillment)
		if err != nil {
			zap.L().Fatal("Failed to update order", zap.Error(err))
		}
		fmt.Printf("✓ Order %s (%s) is now %s\n", order.Id, order.CampaignId, order.Status)
		return
	}

	userId, err := common.ResolveUserId(ctx, services.Store, *userFlag, *emailFlag)
	if err != nil {
		zap.L().Fatal("Failed to resolve user", zap.Error(err))
	}

	orders, err := services.Ledger.GetOrders(ctx, userId)
	if err != nil {
		zap.L().Fatal("Failed to load orders", zap.Error(err))
	}

	common.PrintHeader("CAMPAIGN ORDERS", common.WideWidth)
	for i, o := range orders {
		isLast := i == len(orders)-1
		fmt.Printf("%s%s  %-14s %-10s %10s tokens  %s\n",
			common.BoxPrefix(isLast),
			o.CreatedAt.Format("2006-01-02 15:04"),
			o.CampaignId,
			o.Status,
			pricing.FormatTokens(o.TokensSpent.TotalTokens),
			o.Id)
		if o.Fulfillment != nil {
			fmt.Printf("%s  delivered %s impressions at $%s CPM on %s\n",
				common.BoxDetailPrefix(isLast),
				pricing.FormatTokens(o.Fulfillment.ImpressionsDelivered),
				o.Fulfillment.CpmAchieved.StringFixed(2),
				strings.Join(o.Fulfillment.PlatformsUsed, ", "))
		}
	}
	common.PrintFooter(fmt.Sprintf("%d orders", len(orders)), common.WideWidth)
}
