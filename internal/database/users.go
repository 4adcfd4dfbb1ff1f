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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"ad-token-ledger/internal/models"
	"ad-token-ledger/internal/store"

	"go.uber.org/zap"
)

// normalizeEmail makes advertiser emails case-insensitive keys
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.Id, &user.Name, &user.Email, &user.CreatedAt, &user.UpdatedAt, &user.PlanId)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsers returns the active advertisers with the plan they are subscribed to
func (s *Service) GetUsers(ctx context.Context) ([]models.User, error) {
	zap.L().Debug("Querying active users")

	rows, err := s.db.QueryContext(ctx, queryGetActiveUsers)
	if err != nil {
		zap.L().Error("Failed to query users", zap.Error(err))
		return nil, fmt.Errorf("unable to query users: %w", err)
	}
	defer closeRows(rows)

	var users []models.User
	subscribed := 0
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			zap.L().Error("Failed to scan user row", zap.Error(err))
			return nil, fmt.Errorf("unable to scan user row: %w", err)
		}
		if user.HasAccount() {
			subscribed++
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during user row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	zap.L().Info("Retrieved users", zap.Int("count", len(users)), zap.Int("subscribed", subscribed))
	return users, nil
}

func (s *Service) GetUserById(ctx context.Context, userId string) (*models.User, error) {
	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserById, userId))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, userId)
		}
		zap.L().Error("Failed to query user by ID", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by ID: %w", err)
	}
	return user, nil
}

// GetUserByEmail looks the user up by email, ignoring case and surrounding spaces
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)

	user, err := scanUser(s.db.QueryRowContext(ctx, queryGetUserByEmail, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", store.ErrUserNotFound, email)
		}
		zap.L().Error("Failed to query user by email", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("unable to query user by email: %w", err)
	}
	return user, nil
}

// CreateUser registers an advertiser. A duplicate id or email fails with
// store.ErrUserExists, naming the plan the existing user is on.
func (s *Service) CreateUser(ctx context.Context, userId, name, email string) (*models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if userId == "" || name == "" || email == "" {
		return nil, fmt.Errorf("user id, name and email are required")
	}

	zap.L().Info("Creating user", zap.String("id", userId), zap.String("name", name), zap.String("email", email))

	result, err := s.db.ExecContext(ctx, queryInsertUser, userId, name, email)
	if err != nil {
		zap.L().Error("Failed to insert user", zap.String("email", email), zap.Error(err))
		return nil, fmt.Errorf("unable to insert user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("unable to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, s.existingUserError(ctx, userId, email)
	}

	zap.L().Info("User created successfully", zap.String("id", userId), zap.String("email", email))
	return s.GetUserById(ctx, userId)
}

func (s *Service) existingUserError(ctx context.Context, userId, email string) error {
	existing, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		existing, err = s.GetUserById(ctx, userId)
	}
	if err != nil {
		return fmt.Errorf("%w: id %s or email %s", store.ErrUserExists, userId, email)
	}
	if existing.HasAccount() {
		return fmt.Errorf("%w: %s (%s) is subscribed to %s", store.ErrUserExists, existing.Email, existing.Id, existing.PlanId)
	}
	return fmt.Errorf("%w: %s (%s) has no subscription", store.ErrUserExists, existing.Email, existing.Id)
}
