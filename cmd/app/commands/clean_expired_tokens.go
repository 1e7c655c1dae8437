package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/rotorlabs/rotor/internal/app"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
	"github.com/rotorlabs/rotor/internal/config"
)

// RunCleanExpiredTokens deletes session tokens whose expiry has passed.
// Supports both text and JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunCleanExpiredTokens(ctx context.Context, format string) error {
	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	tokenUseCase, err := container.TokenUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize token use case: %w", err)
	}

	return cleanExpiredTokens(ctx, tokenUseCase, logger, os.Stdout, format)
}

// cleanExpiredTokens performs the deletion against the provided use case.
func cleanExpiredTokens(
	ctx context.Context,
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
	writer io.Writer,
	format string,
) error {
	logger.Info("cleaning expired tokens")

	count, err := tokenUseCase.DeleteExpired(ctx)
	if err != nil {
		return fmt.Errorf("failed to clean expired tokens: %w", err)
	}

	if format == "json" {
		outputCleanExpiredJSON(count, writer)
	} else {
		outputCleanExpiredText(count, writer)
	}

	logger.Info("cleanup completed", slog.Int64("count", count))
	return nil
}

// outputCleanExpiredText outputs the result in human-readable text format.
func outputCleanExpiredText(count int64, writer io.Writer) {
	_, _ = fmt.Fprintf(writer, "Successfully deleted %d expired token(s)\n", count)
}

// outputCleanExpiredJSON outputs the result in JSON format for machine consumption.
func outputCleanExpiredJSON(count int64, writer io.Writer) {
	result := map[string]interface{}{
		"count": count,
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
