// Package cli implements the emsctl command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"ems/internal/domain/audit"
	"ems/internal/domain/auth"
	"ems/internal/domain/drafts"
	"ems/internal/domain/notifications"
	"ems/internal/domain/webhooks"
	"ems/internal/platform/config"
	"ems/internal/platform/crypto"
	"ems/internal/platform/db"
	"ems/internal/platform/email"
	"ems/internal/platform/jobs"
)

// cmdContext holds the resources shared by commands that talk to Postgres.
type cmdContext struct {
	Config  config.Config
	Pool    *db.Pool
	Manager *drafts.Manager
	Audit   *audit.Service
}

func (c *cmdContext) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		exitError("DATABASE_URL is required")
	}
	return cfg
}

// initContext connects to the database and wires the draft manager with the
// same publishers the server uses. Webhook deliveries run inline so they
// finish before the command exits.
func initContext(ctx context.Context) *cmdContext {
	cfg := loadConfig()
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		exitError("failed to connect: %v", err)
	}

	sealer, err := crypto.New(cfg.DataEncryptionKey)
	if err != nil {
		pool.Close()
		exitError("invalid data encryption key: %v", err)
	}

	queue := inlineQueue{ctx: ctx, jobs: jobs.New(pool, 1)}
	notifier := notifications.NewDraftNotifier(
		notifications.New(notifications.NewStore(pool), email.New(cfg), cfg.EmailFrom),
		auth.NewStore(pool),
		auth.PermDraftsReview,
	)
	dispatcher := webhooks.NewDispatcher(webhooks.NewStore(pool), sealer, queue, cfg.WebhookTimeout, cfg.WebhookMaxRetries)

	return &cmdContext{
		Config:  cfg,
		Pool:    pool,
		Manager: drafts.NewManager(drafts.NewStore(pool), drafts.Publishers{notifier, dispatcher}),
		Audit:   audit.New(pool),
	}
}

type inlineQueue struct {
	ctx  context.Context
	jobs *jobs.Service
}

func (q inlineQueue) Enqueue(jobType, tenantID string, run func(context.Context) (any, error)) bool {
	if _, err := q.jobs.RunNow(q.ctx, jobType, tenantID, run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %s job failed: %v\n", jobType, err)
	}
	return true
}

var rootCmd = &cobra.Command{
	Use:   "emsctl",
	Short: "Employee profile draft tooling",
	Long: `emsctl compares employee profiles, reviews pending profile drafts and
manages the database schema of the EMS service.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(draftsCmd)
	rootCmd.AddCommand(migrateCmd)
}

// exitError prints an error and exits.
func exitError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
