package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amishk599/atsfeed/internal/config"
	"github.com/amishk599/atsfeed/internal/filter"
	"github.com/amishk599/atsfeed/internal/model"
)

const checkSampleSize = 5

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Extract one company per ATS, print kept jobs, exit",
	Long:  "Smoke test: extracts the first company of each ATS, applies the filters and prints a sample. Nothing is delivered.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoadConfig(logger, config.WithSink(config.SinkLog))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp(cfg, logger)
	defer a.Close()

	companies, err := a.source().Companies(ctx)
	if err != nil {
		return fmt.Errorf("loading companies: %w", err)
	}

	rt := a.router()
	f := a.filter()

	// Extract only one company per ATS
	seen := make(map[model.ATS]bool)
	for _, c := range companies {
		if ctx.Err() != nil {
			break
		}
		ats := c.ResolvedATS()
		if seen[ats] {
			logger.Debug("skipping (ATS already tested)", "company", c.Name, "ats", ats)
			continue
		}
		seen[ats] = true

		jobs := rt.Extract(ctx, c)
		kept := filter.Apply(f, jobs)
		logger.Info("checked company", "company", c.Name, "ats", ats, "extracted", len(jobs), "kept", len(kept))

		for _, j := range kept[:min(len(kept), checkSampleSize)] {
			fmt.Printf("  %-40.40s %-25.25s %s\n", j.Title, j.LocationName, j.URL)
		}
	}

	logger.Info("check complete", "ats_tested", len(seen))
	return nil
}
