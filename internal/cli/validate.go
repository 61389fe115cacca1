package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/planbridge/boards-sync/pkg/config"
	"github.com/planbridge/boards-sync/pkg/github"
	"github.com/planbridge/boards-sync/pkg/mapping"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration, mapping tables and optionally an export file",
	Long: `Validate the environment configuration and the mapping file without
performing any sync.

Checks the required configuration values (organization, repository, team
project), the mapping file's state tables and priority rules, and, when
--export is given, that the export file parses.`,
	Example: `  # Validate configuration and mapping
  boards-sync validate

  # Also check an export file
  boards-sync validate --export=issues.yaml`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	exportPath, _ := cmd.Flags().GetString("export")
	mappingPath, _ := cmd.Flags().GetString("mapping")
	envFile, _ := cmd.Flags().GetString("env-file")

	fmt.Println("📄 Validating configuration...")
	cfg, err := config.NewDotEnvLoader(envFile).Load()
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}
	fmt.Printf("✅ Configuration valid (team project %s, %s/%s)\n",
		cfg.TeamProject, cfg.Organization, cfg.Repository)

	if mappingPath == "" {
		mappingPath = cfg.MappingFile
	}
	fmt.Printf("🗺️  Validating mapping file %s...\n", mappingPath)
	tables, err := mapping.LoadFile(mappingPath)
	if err != nil {
		return fmt.Errorf("mapping file invalid: %w", err)
	}
	fmt.Printf("✅ Mapping valid (%d project tables, %d users, %d priority rules)\n",
		len(tables.Projects), len(tables.Users), len(tables.PriorityLabels))

	if exportPath != "" {
		fmt.Printf("📂 Validating export file %s...\n", exportPath)
		if _, err := github.NewExportReader(exportPath); err != nil {
			return fmt.Errorf("export file invalid: %w", err)
		}
		fmt.Println("✅ Export file valid")
	}

	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("export", "e", "", "Issue export file to check")
	validateCmd.Flags().StringP("mapping", "m", "", "Mapping file path (default: MAPPING_FILE from configuration)")
	validateCmd.Flags().String("env-file", ".env", "Configuration .env file")
}
