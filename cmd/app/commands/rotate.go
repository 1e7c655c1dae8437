package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rotorlabs/rotor/internal/app"
	authDomain "github.com/rotorlabs/rotor/internal/auth/domain"
	"github.com/rotorlabs/rotor/internal/config"
	rotationDomain "github.com/rotorlabs/rotor/internal/rotation/domain"
	rotationUseCase "github.com/rotorlabs/rotor/internal/rotation/usecase"
)

// rotateResult holds the terminal outcome of one path's rotation attempt.
type rotateResult struct {
	Path       string `json:"path"`
	State      string `json:"state"`
	NewVersion uint   `json:"new_version,omitempty"`
	Error      string `json:"error,omitempty"`
}

// RunRotate rotates the credentials stored at the given paths. Distinct paths
// rotate in parallel; the orchestrator serializes attempts on the same path.
// The process exits non-zero when any attempt fails to commit.
//
// Requirements: Database must be migrated and the target adapters configured.
func RunRotate(
	ctx context.Context,
	paths []string,
	secretClass string,
	requestedBy string,
	format string,
) error {
	if len(paths) == 0 {
		return fmt.Errorf("at least one path is required")
	}

	cfg := config.Load()
	container := app.NewContainer(cfg)
	logger := container.Logger()
	defer closeContainer(container, logger)

	rotationUC, err := container.RotationUseCase()
	if err != nil {
		return fmt.Errorf("failed to initialize rotation use case: %w", err)
	}

	return rotatePaths(ctx, rotationUC, logger, os.Stdout, paths, secretClass, requestedBy, format)
}

// rotatePaths fans rotation attempts out across distinct paths and reports
// every terminal outcome before returning the first failure.
func rotatePaths(
	ctx context.Context,
	rotationUC rotationUseCase.RotationUseCase,
	logger *slog.Logger,
	writer io.Writer,
	paths []string,
	secretClass string,
	requestedBy string,
	format string,
) error {
	// The CLI runs with operator privileges, not a stored role.
	operator := &authDomain.Role{
		Name:     requestedBy,
		IsActive: true,
		Policies: []authDomain.PolicyDocument{
			{Path: "*", Capabilities: []authDomain.Capability{authDomain.RotateCapability}},
		},
	}

	var mu sync.Mutex
	results := make([]rotateResult, 0, len(paths))

	group, groupCtx := errgroup.WithContext(ctx)
	for _, path := range paths {
		group.Go(func() error {
			record, err := rotationUC.Rotate(groupCtx, &rotationUseCase.RotateInput{
				Path:        path,
				SecretClass: secretClass,
				Role:        operator,
				RequestedBy: requestedBy,
			})

			result := rotateResult{Path: path}
			if record != nil {
				result.State = string(record.State)
				result.NewVersion = record.NewVersion
				result.Error = record.Error
			} else if err != nil {
				result.State = "not_started"
				result.Error = err.Error()
			}

			mu.Lock()
			results = append(results, result)
			mu.Unlock()

			if err != nil {
				return fmt.Errorf("rotation of %s failed: %w", path, err)
			}
			return nil
		})
	}

	rotateErr := group.Wait()

	if format == "json" {
		outputRotateJSON(results, writer)
	} else {
		outputRotateText(results, writer)
	}

	for _, result := range results {
		logger.Info("rotation finished",
			slog.String("path", result.Path),
			slog.String("state", result.State),
		)
	}

	return rotateErr
}

// outputRotateText outputs the results in human-readable text format.
func outputRotateText(results []rotateResult, writer io.Writer) {
	for _, result := range results {
		if result.State == string(rotationDomain.StateCommitted) {
			_, _ = fmt.Fprintf(writer, "%s: committed (version %d)\n", result.Path, result.NewVersion)
			continue
		}
		_, _ = fmt.Fprintf(writer, "%s: %s", result.Path, result.State)
		if result.Error != "" {
			_, _ = fmt.Fprintf(writer, " (%s)", result.Error)
		}
		_, _ = fmt.Fprintln(writer)
	}
}

// outputRotateJSON outputs the results in JSON format for machine consumption.
func outputRotateJSON(results []rotateResult, writer io.Writer) {
	jsonBytes, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to marshal JSON: %v\n", err)
		return
	}

	_, _ = fmt.Fprintln(writer, string(jsonBytes))
}
