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
	"ad-token-ledger/internal/pricing"

	"go.uber.org/zap"
)

func formatTransactionId(txId string) string {
	if len(txId) > 8 {
		return txId[:8] + "..."
	}
	return txId
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "User id")
	emailFlag := flag.String("email", "", "User email (alternative to --user)")
	limitFlag := flag.Int("limit", 20, "Maximum records (1-100)")
	offsetFlag := flag.Int("offset", 0, "Records to skip")
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

	userId, err := common.ResolveUserId(ctx, services.Store, *userFlag, *emailFlag)
	if err != nil {
		zap.L().Fatal("Failed to resolve user", zap.Error(err))
	}

	records, err := services.Ledger.GetTransactionHistory(ctx, userId, *limitFlag, *offsetFlag)
	if err != nil {
		zap.L().Fatal("Failed to load history", zap.Error(err))
	}

	common.PrintHeader("TRANSACTION HISTORY", common.WideWidth)
	for i, r := range records {
		fmt.Printf("%s%s  %-11s %-9s %10s  %-45s %s\n",
			common.BoxPrefix(i == len(records)-1),
			r.Timestamp.Format("2006-01-02 15:04"),
			formatTransactionId(r.Id),
			r.Type,
			pricing.FormatTokens(r.Amount),
			r.Description,
			r.CampaignId)
	}
	common.PrintFooter(fmt.Sprintf("%d transactions (offset %d)", len(records), *offsetFlag), common.WideWidth)
}
