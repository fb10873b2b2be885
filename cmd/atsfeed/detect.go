package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/atsfeed/internal/config"
	"github.com/amishk599/atsfeed/internal/model"
)

var detectCmd = &cobra.Command{
	Use:   "detect DOMAIN...",
	Short: "Find the careers page of one or more domains",
	Long:  "Fetches each domain's home page and prints the first careers link found, with the ATS it points to.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoadConfig(logger, config.WithSink(config.SinkLog), config.WithoutCompanySource())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, logger)
	defer a.Close()

	d := a.detector()
	for _, domain := range args {
		careers, ok := d.Detect(ctx, domain)
		if !ok {
			fmt.Printf("%-30s no careers link found\n", domain)
			continue
		}
		ats := model.InferATS(careers)
		if ats == model.ATSUnknown {
			ats = model.ATSGeneric
		}
		fmt.Printf("%-30s %-10s %s\n", domain, ats, careers)
	}
	return nil
}
