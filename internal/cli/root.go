package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/triageflow/boardbot/internal/config"
	"github.com/triageflow/boardbot/internal/logger"
	"github.com/triageflow/boardbot/server"
)

var (
	port       string
	label      string
	logLevel   string
	logFile    string
	logConsole bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "boardbot",
	Short: "Boardbot - keeps bug project boards in sync with labels",
	Long: `Boardbot receives GitHub webhook deliveries for issue and pull-request
label changes and keeps a per-repository bug project board synchronized:
a card is added to the Backlog column when the target label is applied and
removed when the label is cleared.

Run 'boardbot' without arguments to start the webhook server.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}

		// CLI flags win over config file and environment
		if cmd.Flags().Changed("port") {
			cfg.Port = port
		}
		if cmd.Flags().Changed("label") {
			cfg.TargetLabel = label
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.LogLevel)
		logConfig.FilePath = cfg.LogFile
		logConfig.Console = cfg.LogConsole

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Close()
	},
}

func runServe() error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	srv, err := server.New(cfg)
	if err != nil {
		logger.Error("failed to create server", logger.F("error", err))
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	logger.Info("boardbot listening",
		logger.F("port", cfg.Port),
		logger.F("label", cfg.TargetLabel),
		logger.F("api", cfg.APIBaseURL))

	if err := srv.Start(":" + cfg.Port); err != nil {
		logger.Error("server stopped", logger.F("error", err))
		return err
	}
	return nil
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&port, "port", "", "HTTP listen port")
	rootCmd.PersistentFlags().StringVar(&label, "label", "", "Target label (default \"bug\")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", true, "Enable console logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}
