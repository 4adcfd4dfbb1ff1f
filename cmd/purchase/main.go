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

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	userFlag := flag.String("user", "", "User id")
	emailFlag := flag.String("email", "", "User email (alternative to --user)")
	tokensFlag := flag.Int64("tokens", 0, "Number of tokens to buy (required)")
	flag.Parse()

	if *tokensFlag <= 0 {
		zap.L().Fatal("--tokens must be a positive number")
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

	receipt, err := services.Accounts.PurchaseTokens(ctx, userId, *tokensFlag)
	if err != nil {
		zap.L().Fatal("Token purchase failed", zap.Error(err))
	}

	common.PrintHeader("TOKEN PURCHASE", common.DefaultWidth)
	fmt.Printf("Transaction: %s\n", receipt.Transaction.Id)
	fmt.Printf("Description: %s\n", receipt.Transaction.Description)
	fmt.Printf("Cost:        $%s\n", receipt.Cost.StringFixed(2))
	fmt.Printf("Balance:     %s tokens (media %s / creative %s)\n",
		pricing.FormatTokens(receipt.Wallet.TotalTokens),
		pricing.FormatTokens(receipt.Wallet.MediaTokens),
		pricing.FormatTokens(receipt.Wallet.CreativeTokens))
	common.PrintSeparator("=", common.DefaultWidth)
}
