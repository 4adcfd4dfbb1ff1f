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
	"errors"
	"flag"
	"fmt"

	"ad-token-ledger/internal/accounting"
	"ad-token-ledger/internal/common"
	"ad-token-ledger/internal/config"
	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/store"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type seedCampaign struct {
	id     string
	params models.CampaignParams
}

var demoCampaigns = []seedCampaign{
	{id: "camp-1", params: models.CampaignParams{Impressions: 5000}},
	{id: "camp-2", params: models.CampaignParams{CreativeAssets: 3, AbVariants: 6}},
}

const demoPurchase int64 = 5000

func ensureUser(ctx context.Context, st store.AccountStore, name, email string) (*models.User, error) {
	user, err := st.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}
	return st.CreateUser(ctx, uuid.New().String(), name, email)
}

func seedAccount(ctx context.Context, accounts *accounting.Service, userId string) error {
	if _, err := accounts.Subscribe(ctx, userId, "growth"); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	for _, c := range demoCampaigns {
		calc, err := accounts.CalculateTokenCost(ctx, userId, c.params)
		if err != nil {
			return fmt.Errorf("price %s: %w", c.id, err)
		}
		if _, err := accounts.SpendTokens(ctx, userId, *calc, c.id); err != nil {
			return fmt.Errorf("launch %s: %w", c.id, err)
		}
	}
	if _, err := accounts.PurchaseTokens(ctx, userId, demoPurchase); err != nil {
		return fmt.Errorf("purchase: %w", err)
	}
	return nil
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	nameFlag := flag.String("name", "Demo Advertiser", "Demo user name")
	emailFlag := flag.String("email", "demo@example.com", "Demo user email")
	forceFlag := flag.Bool("force", false, "Reseed even if the user already has a wallet")
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

	user, err := ensureUser(ctx, services.Store, *nameFlag, *emailFlag)
	if err != nil {
		zap.L().Fatal("Failed to create demo user", zap.Error(err))
	}

	if _, err := services.Accounts.GetAccount(ctx, user.Id); err == nil && !*forceFlag {
		fmt.Printf("User %s already has a wallet; use --force to reseed\n", user.Email)
		return
	}

	if err := seedAccount(ctx, services.Accounts, user.Id); err != nil {
		zap.L().Fatal("Failed to seed demo account", zap.Error(err))
	}

	summary, err := services.Ledger.GetWalletSummary(ctx, user.Id)
	if err != nil {
		zap.L().Fatal("Failed to load wallet", zap.Error(err))
	}

	common.PrintHeader("DEMO ACCOUNT SEEDED", common.DefaultWidth)
	fmt.Printf("User: %s (%s)\n\n", user.Email, user.Id)
	common.PrintWalletSummary(summary)
	common.PrintSeparator("=", common.DefaultWidth)
}
