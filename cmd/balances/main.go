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

	"go.uber.org/zap"
)

type balanceStats struct {
	totalUsers      int
	usersWithWallet int
	failedChecks    int
}

func printUserHeader(user common.UserInfo) {
	fmt.Printf("\n┌─ User: %s (%s)\n", user.Name, user.Email)
	fmt.Printf("│  ID: %s\n", user.Id)
	common.PrintBoxSeparator(78)
}

// verifyUser runs every consistency check available for the configured backends
func verifyUser(ctx context.Context, services *common.Services, userId string) []error {
	var errs []error

	if err := services.Store.ReconcileWallet(ctx, userId); err != nil {
		errs = append(errs, fmt.Errorf("transaction history: %w", err))
	}
	if services.DbService != nil {
		if err := services.DbService.VerifyJournal(ctx, userId); err != nil {
			errs = append(errs, fmt.Errorf("journal: %w", err))
		}
	}
	if services.Journal != nil {
		acct, err := services.Accounts.GetAccount(ctx, userId)
		if err != nil {
			errs = append(errs, err)
		} else if err := services.Journal.Verify(ctx, acct.Wallet); err != nil {
			errs = append(errs, fmt.Errorf("formance: %w", err))
		}
	}
	return errs
}

func main() {
	ctx := context.Background()

	logger, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	emailFlag := flag.String("email", "", "Filter by specific user email (optional)")
	reconcileFlag := flag.Bool("reconcile", false, "Verify wallets against their transactions and journals")
	flag.Parse()

	logger.Info("Starting balance query")

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if err := services.Ledger.HealthCheck(ctx); err != nil {
		logger.Fatal("Store is not healthy", zap.Error(err))
	}

	users, err := common.InitializeUsers(ctx, services.Store, *emailFlag, logger)
	if err != nil {
		logger.Fatal("Failed to initialize users", zap.Error(err))
	}

	common.PrintHeader("TOKEN WALLET REPORT", common.DefaultWidth)

	stats := balanceStats{}
	for _, user := range users {
		stats.totalUsers++

		summary, err := services.Ledger.GetWalletSummary(ctx, user.Id)
		if err != nil {
			if !errors.Is(err, accounting.ErrNoSubscription) {
				logger.Error("Failed to process user", zap.String("user_id", user.Id), zap.Error(err))
			}
			continue
		}
		stats.usersWithWallet++

		printUserHeader(user)
		common.PrintWalletSummary(summary)

		if !*reconcileFlag {
			continue
		}
		if errs := verifyUser(ctx, services, user.Id); len(errs) > 0 {
			stats.failedChecks++
			for _, e := range errs {
				fmt.Printf("   ✗ %v\n", e)
			}
		} else {
			fmt.Println("   ✓ reconciled")
		}
	}

	summary := fmt.Sprintf("SUMMARY: %d users with wallets (%d users queried)", stats.usersWithWallet, stats.totalUsers)
	if *reconcileFlag {
		summary += fmt.Sprintf(", %d failed reconciliation", stats.failedChecks)
	}
	common.PrintFooter(summary, common.DefaultWidth)

	logger.Info("Balance query completed",
		zap.Int("users_queried", stats.totalUsers),
		zap.Int("users_with_wallet", stats.usersWithWallet),
		zap.Int("failed_checks", stats.failedChecks))
}
