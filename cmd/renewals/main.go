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
	"os"
	"os/signal"
	"syscall"
	"time"

	"ad-token-ledger/internal/common"
	"ad-token-ledger/internal/config"
	"ad-token-ledger/internal/renewal"

	"go.uber.org/zap"
)

func main() {
	onceFlag := flag.Bool("once", false, "Run a single renewal pass and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		_, _ = zap.NewProduction()
		zap.L().Fatal("Failed to load configuration", zap.Error(err))
	}

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	if *onceFlag {
		renewed, err := services.Accounts.RenewDue(ctx)
		if err != nil {
			zap.L().Error("Renewal pass finished with errors", zap.Int("renewed", renewed), zap.Error(err))
			return
		}
		zap.L().Info("Renewal pass finished", zap.Int("renewed", renewed))
		return
	}

	worker := renewal.NewWorker(renewal.WorkerConfig{
		Renewer:      services.Accounts,
		PollInterval: cfg.Accounting.RenewalPollInterval,
	})
	if err := worker.Start(ctx); err != nil {
		zap.L().Fatal("Failed to start renewal worker", zap.Error(err))
	}

	zap.L().Info("Renewal worker running", zap.Duration("poll_interval", cfg.Accounting.RenewalPollInterval))
	zap.L().Info("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	zap.L().Info("Shutdown signal received, stopping renewal worker...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	done := make(chan struct{})
	go func() {
		worker.Stop()
		close(done)
	}()

	select {
	case <-done:
		zap.L().Info("Renewal worker stopped gracefully")
	case <-shutdownCtx.Done():
		zap.L().Warn("Forced shutdown after timeout")
	}
}
