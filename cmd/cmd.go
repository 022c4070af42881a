package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/frahmantamala/salesdesk/internal"
	"github.com/frahmantamala/salesdesk/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	clearData  bool
	tenantID   string
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "salesdesk",
	Short: "Salesdesk org hierarchy",
	Long:  `Manages the reporting hierarchy of CRM users and its audit log.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*internal.Config, error) {
	// Check if we're running in Docker environment
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		configureLogger(cfg)
		return cfg, nil
	}

	// Load configuration from file (development)
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("ENV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setConfigDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	configureLogger(&cfg)
	return &cfg, nil
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("http_server.port", 8080)
	v.SetDefault("http_server.allowed_origins", "*")
	v.SetDefault("http_server.read_header_timeout", "5s")
	v.SetDefault("http_server.read_timeout", "15s")
	v.SetDefault("http_server.idle_timeout", "60s")
	v.SetDefault("http_server.write_timeout", "15s")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")
	v.SetDefault("security.editor_roles", []string{"Admin", "IT"})
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.path", "/metrics")
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "text")
	v.SetDefault("org.default_tenant", internal.DefaultTenantID)
	v.SetDefault("org.audit_time_format", internal.DefaultAuditTimeFormat)
	v.SetDefault("org.openapi_validation", true)
}

func configureLogger(cfg *internal.Config) {
	logger.Configure(os.Stdout, cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
}

// tenantContext scopes a CLI invocation to --tenant, falling back to the
// configured default tenant.
func tenantContext(cfg *internal.Config) context.Context {
	tenant := tenantID
	if tenant == "" {
		tenant = cfg.Org.DefaultTenant
	}
	ctx := internal.ContextWithPrincipal(context.Background(), &internal.Principal{
		Subject:  "cli",
		TenantID: tenant,
		Role:     "Admin",
	})
	return logger.WithTenant(ctx, tenant)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config-path", ".", "directory containing config.yml")
	rootCmd.PersistentFlags().StringVarP(&tenantID, "tenant", "t", "", "tenant scope (defaults to org.default_tenant)")
	seedCmd.Flags().BoolVar(&clearData, "clear", false, "Replace an existing hierarchy")

	rootCmd.AddCommand(httpServerCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
