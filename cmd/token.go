package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/frahmantamala/salesdesk/internal/auth"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenRole    string
	tokenTTL     time.Duration
)

// tokenCmd mints a bearer token for local development against the API.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print a signed bearer token for a tenant and role",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(configPath)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		tenant := tenantID
		if tenant == "" {
			tenant = cfg.Org.DefaultTenant
		}

		token, err := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, tokenTTL).GenerateToken(tokenSubject, tenant, tokenRole)
		if err != nil {
			log.Fatalf("failed to sign token: %v", err)
		}
		fmt.Println(token)
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "dev", "token subject")
	tokenCmd.Flags().StringVar(&tokenRole, "role", "Admin", "CRM role claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "token lifetime")

	rootCmd.AddCommand(tokenCmd)
}
