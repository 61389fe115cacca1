package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/planbridge/boards-sync/internal/sync"
	"github.com/planbridge/boards-sync/pkg/config"
	"github.com/planbridge/boards-sync/pkg/github"
	"github.com/planbridge/boards-sync/pkg/identity"
	"github.com/planbridge/boards-sync/pkg/iteration"
	"github.com/planbridge/boards-sync/pkg/mapping"
	"github.com/planbridge/boards-sync/pkg/markup"
	"github.com/planbridge/boards-sync/pkg/patch"
	"github.com/planbridge/boards-sync/pkg/ratelimit"
	"github.com/planbridge/boards-sync/pkg/workitem"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync GitHub issues from an export to Azure Boards work items",
	Long: `Sync GitHub issues to Azure Boards work items with state, label, assignee
and sprint mapping.

This command reads issues from a YAML export file (including Projects v2
board fields), looks up the existing work item for each issue, and creates
or updates it. Work items are written to a snapshot file that persists
across runs, so re-running a sync updates existing items instead of
creating duplicates.

Mapping:
  States come from the mapping file's project tables (board column first,
  source state as fallback), labels become tags, the first mapped assignee
  is carried over, and sprint fields create matching iterations on demand.

Pacing:
  Writes are sequential with a fixed delay between records (default 500ms).
  Use --rate-limit to slow down for busy instances.`,
	Example: `  # Sync every issue in an export
  boards-sync sync --export=issues.yaml

  # Sync only open issues with a custom mapping file
  boards-sync sync --export=issues.yaml --state=open --mapping=team-mapping.yaml

  # Preview without writing anything
  boards-sync sync --export=issues.yaml --dry-run

  # Slow down for a busy instance and write a batch report
  boards-sync sync --export=issues.yaml --rate-limit=1s --report=sync-report.yaml`,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, args []string) error {
	exportPath, _ := cmd.Flags().GetString("export")
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	mappingPath, _ := cmd.Flags().GetString("mapping")
	stateFilter, _ := cmd.Flags().GetString("state")
	rateLimitArg, _ := cmd.Flags().GetString("rate-limit")
	envFile, _ := cmd.Flags().GetString("env-file")
	reportPath, _ := cmd.Flags().GetString("report")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if err := validateStateFilter(stateFilter); err != nil {
		return err
	}

	var rateLimitDuration time.Duration
	if rateLimitArg != "" {
		parsed, err := parseRateLimit(rateLimitArg)
		if err != nil {
			return fmt.Errorf("invalid rate limit: %w", err)
		}
		rateLimitDuration = parsed
	}

	// Step 1: Load configuration
	fmt.Println("📄 Loading configuration...")
	cfg, err := config.NewDotEnvLoader(envFile).Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if rateLimitDuration > 0 {
		cfg.RateLimitDelay = rateLimitDuration
	}
	if cmd.Flags().Changed("batch-size") {
		batchSize, _ := cmd.Flags().GetInt("batch-size")
		if batchSize < 1 {
			return fmt.Errorf("invalid batch size %d (must be at least 1)", batchSize)
		}
		cfg.BatchSize = batchSize
	}
	if cmd.Flags().Changed("continue-on-error") {
		cfg.ContinueOnError, _ = cmd.Flags().GetBool("continue-on-error")
	}
	if mappingPath == "" {
		mappingPath = cfg.MappingFile
	}

	// Step 2: Load mapping tables
	tables, err := mapping.LoadFile(mappingPath)
	if err != nil {
		return fmt.Errorf("failed to load mapping file: %w", err)
	}

	// Step 3: Open the issue export
	fmt.Printf("📂 Reading issue export from %s...\n", exportPath)
	reader, err := github.NewExportReader(exportPath)
	if err != nil {
		return fmt.Errorf("failed to open export: %w", err)
	}

	// Step 4: Open the work item snapshot
	store, err := workitem.LoadRecordingStore(snapshotPath)
	if err != nil {
		return fmt.Errorf("failed to load work item snapshot: %w", err)
	}

	// Step 5: Assemble the engine
	logger := newLogger(cmd)
	engine := sync.NewEngine(sync.Deps{
		Reader:   reader,
		Projects: reader,
		Store:    store,
		Builder: patch.NewBuilder(
			mapping.NewStateResolver(tables, logger),
			iteration.NewResolver(store.IterationClient(), cfg.TeamProject, logger),
			mapping.NewUserMap(tables.Users),
			markup.NewPassthrough(),
			cfg,
			tables,
			logger,
		),
		Identities: identity.NewResolver(store, cfg.MarkerTag, logger),
		Pacer:      ratelimit.NewFixedDelayPacer(cfg.RateLimitDelay),
		Metrics:    sync.NewMetrics(prometheus.NewRegistry()),
		DryRun:     dryRun,
	}, cfg, logger)

	// Step 6: Run the batch
	if dryRun {
		fmt.Printf("🧪 Dry run sync of %s issues to team project %s\n", stateFilter, cfg.TeamProject)
	} else {
		fmt.Printf("🚀 Syncing %s issues to team project %s\n", stateFilter, cfg.TeamProject)
	}

	started := time.Now()
	result, err := engine.SyncAll(context.Background(), github.ListFilter{
		State:    stateFilter,
		PageSize: cfg.BatchSize,
	})
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	// Step 7: Persist the snapshot and report
	if !dryRun {
		if err := store.Save(snapshotPath); err != nil {
			return fmt.Errorf("failed to save work item snapshot: %w", err)
		}
	}

	if reportPath == "" {
		reportPath = cfg.ReportFile
	}
	if reportPath != "" {
		report := &sync.Report{
			StartedAt:    started,
			FinishedAt:   time.Now(),
			Organization: cfg.Organization,
			Repository:   cfg.Repository,
			TeamProject:  cfg.TeamProject,
			DryRun:       dryRun,
			Result:       *result,
		}
		if err := sync.WriteReport(reportPath, report); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		fmt.Printf("📝 Report written to %s\n", reportPath)
	}

	displaySyncResults(result)
	return nil
}

// validateStateFilter checks the --state flag value.
func validateStateFilter(state string) error {
	switch state {
	case "open", "closed", "all":
		return nil
	}
	return fmt.Errorf("invalid state filter '%s' (expected open, closed or all)", state)
}

// parseRateLimit parses and validates a rate limit duration string
func parseRateLimit(rateLimitStr string) (time.Duration, error) {
	if rateLimitStr == "" {
		return 0, fmt.Errorf("rate limit cannot be empty")
	}

	duration, err := time.ParseDuration(rateLimitStr)
	if err != nil {
		return 0, fmt.Errorf("invalid duration format '%s': %w (expected format: 100ms, 1s, 2s, etc.)", rateLimitStr, err)
	}

	if duration < 0 {
		return 0, fmt.Errorf("rate limit delay must be non-negative, got %v", duration)
	}

	return duration, nil
}

// displaySyncResults shows the final results of the sync operation
func displaySyncResults(result *sync.BatchResult) {
	fmt.Printf("\n🎯 Sync completed in %v\n", result.Duration)
	fmt.Printf("📊 Results:\n")
	fmt.Printf("  • Total issues: %d\n", result.TotalIssues)
	fmt.Printf("  • Processed: %d\n", result.ProcessedIssues)
	fmt.Printf("  • Created: %d\n", result.Created)
	fmt.Printf("  • Updated: %d\n", result.Updated)
	fmt.Printf("  • Skipped: %d\n", result.Skipped)
	fmt.Printf("  • Failed: %d\n", result.Failed)

	if len(result.Errors) > 0 {
		fmt.Printf("\n❌ Errors:\n")
		for _, err := range result.Errors {
			fmt.Printf("  • %s (%s): %s\n", err.IssueKey, err.Step, err.Message)
		}
	}
}

func init() {
	rootCmd.AddCommand(syncCmd)

	// Sync command flags
	syncCmd.Flags().StringP("export", "e", "", "Issue export file to sync from (required)")
	syncCmd.Flags().StringP("snapshot", "s", "workitems.yaml", "Work item snapshot file, created on first run")
	syncCmd.Flags().StringP("mapping", "m", "", "Mapping file path (default: MAPPING_FILE from configuration)")
	syncCmd.Flags().String("state", "all", "Issue state filter (open, closed, all)")
	syncCmd.Flags().String("rate-limit", "", "Delay between work item writes (examples: 100ms, 1s) - overrides RATE_LIMIT_DELAY")
	syncCmd.Flags().Int("batch-size", 0, "Issues fetched per page - overrides BATCH_SIZE")
	syncCmd.Flags().Bool("continue-on-error", true, "Keep processing after a record fails - overrides CONTINUE_ON_ERROR")
	syncCmd.Flags().String("env-file", ".env", "Configuration .env file")
	syncCmd.Flags().String("report", "", "Write a YAML batch report to this file")
	syncCmd.Flags().Bool("dry-run", false, "Show what would be synced without writing anything")

	// Mark required flags
	_ = syncCmd.MarkFlagRequired("export")
}
