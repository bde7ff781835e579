// Command ledger-mirror consumes transaction.recorded events and appends each
// transaction to a Google Sheet.
package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/sync/errgroup"

	"kakeibo/internal/amqp"
	"kakeibo/internal/cli"
	"kakeibo/internal/config"
	appLog "kakeibo/internal/log"
	"kakeibo/internal/sheets/google"
	"kakeibo/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(bootLogger, (*config.Config).ValidateMirror)
	logger := cli.SetupLogger(cfg.LogLevel).WithComponent(appLog.ComponentWorker)

	logger.Info("Starting ledger-mirror",
		appLog.FieldOperation, appLog.OpStartup,
		"queue", cfg.AMQPQueue,
		"sheet", cfg.GoogleSheetName)

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	sheet, err := google.New(ctx, google.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", appLog.FieldError, err)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", appLog.FieldError, err)
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", appLog.FieldError, err)
		}
	}()

	mirror := worker.NewMirrorWorker(sheet, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeTransactionRecorded(gctx, mirror.HandleTransactionRecorded)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", appLog.FieldError, err)
		_ = client.Close()
		os.Exit(1)
	}
	logger.Info("Worker shutdown complete", appLog.FieldOperation, appLog.OpShutdown)
}
