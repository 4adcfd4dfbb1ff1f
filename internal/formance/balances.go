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

package formance

import (
	"context"
	"fmt"
	"math/big"

	"ad-token-ledger/internal/models"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"go.uber.org/zap"
)

// Balances reads the mirrored media and creative balances of a user
func (s *Service) Balances(ctx context.Context, userId string) (media, creative int64, err error) {
	zap.L().Debug("Getting token balances from Formance", zap.String("user_id", userId))

	media, err = s.accountBalance(ctx, "users:"+userId+":media")
	if err != nil {
		return 0, 0, err
	}
	creative, err = s.accountBalance(ctx, "users:"+userId+":creative")
	if err != nil {
		return 0, 0, err
	}
	return media, creative, nil
}

// Verify compares the mirrored balances with the wallet
func (s *Service) Verify(ctx context.Context, wallet models.Wallet) error {
	media, creative, err := s.Balances(ctx, wallet.UserId)
	if err != nil {
		return err
	}
	if media != wallet.MediaTokens || creative != wallet.CreativeTokens {
		zap.L().Error("Formance mirror disagrees with wallet",
			zap.String("user_id", wallet.UserId),
			zap.Int64("ledger_media", media),
			zap.Int64("ledger_creative", creative),
			zap.Int64("wallet_media", wallet.MediaTokens),
			zap.Int64("wallet_creative", wallet.CreativeTokens))
		return fmt.Errorf("mirror mismatch: ledger=%d/%d, wallet=%d/%d",
			media, creative, wallet.MediaTokens, wallet.CreativeTokens)
	}
	return nil
}

// ---------- helpers ----------

func (s *Service) accountBalance(ctx context.Context, address string) (int64, error) {
	resp, err := s.client.Ledger.V2.GetAccount(ctx, operations.V2GetAccountRequest{
		Ledger:  s.ledger,
		Address: address,
		Expand:  v3.Pointer("volumes"),
	})
	if err != nil {
		zap.L().Warn("Failed to get account volumes", zap.String("address", address), zap.Error(err))
		return 0, fmt.Errorf("failed to get account %s: %w", address, err)
	}

	bal := volumeBalance(resp.V2AccountResponse.Data.Volumes, tokenAsset)
	if bal == nil {
		return 0, nil
	}
	if !bal.IsInt64() {
		return 0, fmt.Errorf("balance of %s overflows int64: %s", address, bal.String())
	}
	return bal.Int64(), nil
}

// volumeBalance extracts the balance for a specific asset from volumes.
func volumeBalance(vols map[string]shared.V2Volume, asset string) *big.Int {
	vol, ok := vols[asset]
	if !ok {
		return nil
	}
	if vol.Balance != nil {
		return vol.Balance
	}
	if vol.Input == nil {
		return nil
	}
	result := new(big.Int).Set(vol.Input)
	if vol.Output != nil {
		result.Sub(result, vol.Output)
	}
	return result
}
