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

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "User id")
	emailFlag := flag.String("email", "", "User email (alternative to --user)")
	planFlag := flag.String("plan", "", "Plan to subscribe to, effective immediately")
	changeFlag := flag.String("change", "", "Plan to switch to at the next renewal")
	cancelFlag := flag.Bool("cancel", false, "Cancel the subscription at the end of the period")
	flag.Parse()

	actions := 0
	for _, set := range []bool{*planFlag != "", *changeFlag != "", *cancelFlag} {
		if set {
			actions++
		}
	}
	if actions != 1 {
		zap.L().Fatal("Exactly one of --plan, --change or --cancel is required")
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

	var title string
	switch {
	case *planFlag != "":
		if current, err := services.Accounts.GetTokenBalance(ctx, userId); err == nil && current > 0 {
			fmt.Printf("Warning: %d unspent tokens will be forfeited\n", current)
		}
		_, err = services.Accounts.Subscribe(ctx, userId, *planFlag)
		title = "SUBSCRIBED"
	case *changeFlag != "":
		_, err = services.Accounts.SchedulePlanChange(ctx, userId, *changeFlag)
		title = "PLAN CHANGE SCHEDULED"
	default:
		_, err = services.Accounts.CancelSubscription(ctx, userId)
		title = "SUBSCRIPTION CANCELLED"
	}
	if err != nil {
		zap.L().Fatal("Subscription update failed", zap.String("user_id", userId), zap.Error(err))
	}

	summary, err := services.Ledger.GetWalletSummary(ctx, userId)
	if err != nil {
		zap.L().Fatal("Failed to load wallet", zap.Error(err))
	}

	common.PrintHeader(title, common.DefaultWidth)
	common.PrintWalletSummary(summary)
	if *changeFlag != "" {
		fmt.Printf("\nSwitching to %s on %s\n", *changeFlag, summary.NextBillingDate.Format("2006-01-02"))
	}
	common.PrintSeparator("=", common.DefaultWidth)
}
