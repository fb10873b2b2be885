package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/atsfeed/internal/config"
	"github.com/amishk599/atsfeed/internal/notifier"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Notification subcommands",
}

var notifyTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Send a test run summary",
	Long:  "Sends a sample run summary using the configured notifier.",
	RunE:  runNotifyTest,
}

func init() {
	rootCmd.AddCommand(notifyCmd)
	notifyCmd.AddCommand(notifyTestCmd)
}

func runNotifyTest(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoadConfig(logger, config.WithSink(config.SinkLog), config.WithoutCompanySource())

	a := newApp(cfg, logger)
	defer a.Close()

	n := a.notifier()
	if n == nil {
		logger.Error("no notifier configured: set notification.type or SLACK_WEBHOOK_URL")
		os.Exit(1)
	}

	if err := notifier.SendTestMessage(context.Background(), n); err != nil {
		logger.Error("test notification failed", "error", err)
		os.Exit(1)
	}
	logger.Info("test notification sent successfully")
	return nil
}
