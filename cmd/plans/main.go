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
	"flag"
	"fmt"
	"strings"

	"ad-token-ledger/internal/catalog"
	"ad-token-ledger/internal/common"
	"ad-token-ledger/internal/config"
	"ad-token-ledger/internal/pricing"

	"go.uber.org/zap"
)

func main() {
	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	plansFile := flag.String("file", "", "Plan table YAML (default: PLANS_FILE or built-in plans)")
	flag.Parse()

	path := *plansFile
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			zap.L().Fatal("Failed to load config", zap.Error(err))
		}
		path = cfg.Accounting.PlansFile
	}

	plans, err := catalog.LoadFile(path)
	if err != nil {
		zap.L().Fatal("Failed to load plans", zap.String("file", path), zap.Error(err))
	}

	common.PrintHeader("SUBSCRIPTION PLANS", common.DefaultWidth)
	list := plans.List()
	for i, plan := range list {
		isLast := i == len(list)-1
		name := plan.Name
		if plan.IsPopular {
			name += " *"
		}

		fmt.Printf("%s%-12s (%s)\n", common.BoxPrefix(isLast), name, plan.Id)
		detail := common.BoxDetailPrefix(isLast)
		if plan.IsCustom() {
			fmt.Printf("%s  Custom pricing\n", detail)
		} else {
			fmt.Printf("%s  $%s/month, %s tokens, extra tokens $%s each\n",
				detail,
				plan.MonthlyFee.StringFixed(2),
				pricing.FormatTokens(plan.TokensIncluded),
				plan.AlaCarteTokenPrice.StringFixed(3))
		}
		if len(plan.Features) > 0 {
			fmt.Printf("%s  %s\n", detail, strings.Join(plan.Features, ", "))
		}
	}
	common.PrintFooter(fmt.Sprintf("%d plans (* most popular)", len(list)), common.DefaultWidth)
}
