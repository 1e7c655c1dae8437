package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rotorlabs/rotor/internal/app"
	authUseCase "github.com/rotorlabs/rotor/internal/auth/usecase"
	"github.com/rotorlabs/rotor/internal/config"
)

// RunVerifyAuditLogs verifies cryptographic integrity of audit logs created at
// or after the cutoff date. Validates HMAC-SHA256 signatures against the
// derived signing key for tamper detection.
//
// Requirements: Database must be migrated and the root key available.
func RunVerifyAuditLogs(ctx context.Context, since string, format string) error {
	cutoff, err := parseDate(since)
	if err != nil {
		return fmt.Errorf("invalid cutoff date: %w", err)
	}

	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	auditLogUseCase, err := container.AuditLogUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize audit log use case: %w", err)
	}

	return verifyAuditLogs(ctx, auditLogUseCase, logger, os.Stdout, cutoff, format)
}

// verifyAuditLogs performs the verification sweep against the provided use case.
func verifyAuditLogs(
	ctx context.Context,
	auditLogUseCase authUseCase.AuditLogUseCase,
	logger *slog.Logger,
	writer io.Writer,
	cutoff time.Time,
	format string,
) error {
	logger.Info("verifying audit logs", slog.Time("cutoff", cutoff))

	result, err := auditLogUseCase.Verify(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to verify audit logs: %w", err)
	}

	if format == "json" {
		if err := outputVerifyJSON(writer, result); err != nil {
			return fmt.Errorf("failed to output JSON: %w", err)
		}
	} else {
		outputVerifyText(writer, result, cutoff)
	}

	logger.Info("verification completed",
		slog.Int("checked", result.Checked),
		slog.Int("invalid", result.Invalid),
	)

	// Exit with error code if integrity check failed
	if result.Invalid > 0 {
		return fmt.Errorf("integrity check failed: %d invalid signature(s)", result.Invalid)
	}

	return nil
}

// outputVerifyText outputs the verification result in human-readable text format.
func outputVerifyText(writer io.Writer, result *authUseCase.VerifyResult, cutoff time.Time) {
	_, _ = fmt.Fprintf(writer, "Audit Log Integrity Verification\n")
	_, _ = fmt.Fprintf(writer, "=================================\n\n")
	_, _ = fmt.Fprintf(writer, "Cutoff: %s\n\n", cutoff.Format("2006-01-02 15:04:05"))

	_, _ = fmt.Fprintf(writer, "Total Checked:  %d\n", result.Checked)
	_, _ = fmt.Fprintf(writer, "Invalid:        %d\n\n", result.Invalid)

	switch {
	case result.Invalid > 0:
		_, _ = fmt.Fprintf(writer, "WARNING: %d log(s) failed integrity check!\n\n", result.Invalid)
		_, _ = fmt.Fprintf(writer, "Tampered Log IDs:\n")
		for _, id := range result.Tampered {
			_, _ = fmt.Fprintf(writer, "  - %s\n", id)
		}
		_, _ = fmt.Fprintf(writer, "\nStatus: FAILED\n")
	case result.Checked == 0:
		_, _ = fmt.Fprintf(writer, "Status: No logs found after cutoff\n")
	default:
		_, _ = fmt.Fprintf(writer, "Status: PASSED\n")
	}
}

// outputVerifyJSON outputs the verification result in JSON format for machine consumption.
func outputVerifyJSON(writer io.Writer, result *authUseCase.VerifyResult) error {
	report := map[string]interface{}{
		"checked":  result.Checked,
		"invalid":  result.Invalid,
		"tampered": result.Tampered,
		"passed":   result.Invalid == 0,
	}

	jsonBytes, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
	return nil
}
