package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/cashbook/internal/cli"
	"github.com/Veraticus/cashbook/internal/common"
	"github.com/Veraticus/cashbook/internal/config"
)

var version = "dev"

// rootOptions is the state shared by every command of one invocation.
type rootOptions struct {
	v        *viper.Viper
	cfgFile  string
	settings config.Settings
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "cashbook",
		Short: "📒 Small-business cashbook with budgets",
		Long: `cashbook: record income and expenses for your businesses, set weekly,
monthly or yearly budgets, and see at a glance how much is left to spend.`,
		PersistentPreRunE: opts.initConfig,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: $HOME/.config/cashbook/config.yaml)")
	flags.String("db", "", "database path (default: $HOME/.local/share/cashbook/cashbook.db)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")

	_ = opts.v.BindPFlag(config.KeyDatabasePath, flags.Lookup("db"))
	_ = opts.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = opts.v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))

	rootCmd.AddCommand(businessCmd(opts))
	rootCmd.AddCommand(txCmd(opts))
	rootCmd.AddCommand(categoriesCmd(opts))
	rootCmd.AddCommand(budgetCmd(opts))
	rootCmd.AddCommand(importOFXCmd(opts))
	rootCmd.AddCommand(backupCmd(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// formatError shows user-facing errors without their internal cause.
func formatError(err error) string {
	var userErr *common.UserError
	if errors.As(err, &userErr) {
		return cli.FormatError(userErr.UserMessage)
	}
	return cli.FormatError(err.Error())
}

func (o *rootOptions) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.Init(o.v, o.cfgFile); err != nil {
		return err
	}
	o.settings = config.FromViper(o.v)

	level, err := common.ParseLevel(o.settings.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if err := common.SetupLogger(os.Stderr, level, o.settings.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cashbook %s\n", version)
		},
	}
}
