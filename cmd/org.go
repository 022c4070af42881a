package cmd

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/frahmantamala/salesdesk/internal/orgchart"
	"github.com/frahmantamala/salesdesk/pkg/logger"
	"github.com/spf13/cobra"
)

var auditLimit int

var orgCmd = &cobra.Command{
	Use:   "org",
	Short: "Inspect a tenant's org hierarchy",
}

var orgTreeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the reporting hierarchy as an outline",
	Run: func(cmd *cobra.Command, args []string) {
		runWithOrgService(func(ctx context.Context, service *orgchart.Service) error {
			forest, err := service.Tree(ctx)
			if err != nil {
				return err
			}
			if len(forest) == 0 {
				fmt.Println("(no users)")
				return nil
			}
			return orgchart.RenderTree(os.Stdout, forest)
		})
	},
}

var orgAuditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Print the audit log, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		runWithOrgService(func(ctx context.Context, service *orgchart.Service) error {
			logs, err := service.AuditLogs(ctx, auditLimit)
			if err != nil {
				return err
			}
			for _, entry := range logs {
				fmt.Printf("%s  %-6s  %s\n", entry.Timestamp, entry.Action, entry.Details)
			}
			return nil
		})
	},
}

// runWithOrgService opens the database for one CLI command scoped to the
// --tenant flag.
func runWithOrgService(fn func(ctx context.Context, service *orgchart.Service) error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}
	defer db.Close()

	service, err := newOrgService(cfg, db, nil, logger.L())
	if err != nil {
		log.Fatalf("failed to init org service: %v", err)
	}

	if err := fn(tenantContext(cfg), service); err != nil {
		log.Fatalf("org command failed: %v", err)
	}
}

func init() {
	orgAuditCmd.Flags().IntVar(&auditLimit, "limit", orgchart.DefaultAuditLimit, "number of entries to print")

	orgCmd.AddCommand(orgTreeCmd)
	orgCmd.AddCommand(orgAuditCmd)
	rootCmd.AddCommand(orgCmd)
}
