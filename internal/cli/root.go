package cli

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"studymate-backend/internal/bootstrap"
	"studymate-backend/internal/shared/config"
	"studymate-backend/internal/shared/storage/db"
	"studymate-backend/internal/shared/telemetry"
)

var rootCmd = &cobra.Command{
	Use:           "studymate",
	Short:         "Manage StudyMate subjects, documents and uploads",
	Long:          `Command-line front end for the StudyMate backend. Uses the same configuration as the API server.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// newApp builds the dependencies commands run against. Tests replace it.
var newApp = func(ctx context.Context) (*bootstrap.App, error) {
	return bootstrap.Build(ctx, config.Load(), bootstrap.Options{
		DBProfile: db.ProfileCLI,
		Migrate:   true,
		Shared:    true,
	})
}

var (
	appMu  sync.Mutex
	appVal *bootstrap.App
)

func app(ctx context.Context) (*bootstrap.App, error) {
	appMu.Lock()
	defer appMu.Unlock()
	if appVal != nil {
		return appVal, nil
	}
	a, err := newApp(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize: %w", err)
	}
	appVal = a
	return a, nil
}

func closeApp() {
	appMu.Lock()
	defer appMu.Unlock()
	if appVal != nil {
		_ = appVal.Close()
		appVal = nil
	}
}

// Execute runs the root command. Log lines go to stderr so command output stays readable.
func Execute(ctx context.Context) error {
	restore := telemetry.SetOutput(os.Stderr)
	defer restore()
	defer closeApp()
	return rootCmd.ExecuteContext(ctx)
}
