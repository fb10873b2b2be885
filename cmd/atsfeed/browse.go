package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/amishk599/atsfeed/internal/browse"
	"github.com/amishk599/atsfeed/internal/config"
	"github.com/amishk599/atsfeed/internal/filter"
	"github.com/amishk599/atsfeed/internal/model"
)

const browseFetchTimeout = 2 * time.Minute

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse one company's jobs interactively (TUI)",
	Long:  "Shows the company picker, extracts the chosen company, then opens a split view of extracted and kept jobs.",
	RunE:  runBrowseCmd,
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowseCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg := mustLoadConfig(logger, config.WithSink(config.SinkLog))

	// Log output while the TUI owns the terminal corrupts the display.
	silent := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := newApp(cfg, silent)
	defer a.Close()

	companies, err := a.source().Companies(context.Background())
	if err != nil {
		logger.Error("failed to load companies", "error", err)
		os.Exit(1)
	}
	if len(companies) == 0 {
		fmt.Println("No companies to browse.")
		return nil
	}

	rt := a.router()
	f := a.filter()

	for {
		choice, err := browse.RunCompanyPicker(companies)
		if err != nil {
			return fmt.Errorf("picker: %w", err)
		}
		if choice < 0 {
			return nil
		}
		company := companies[choice]

		ats, extractor := rt.Route(company)
		if ats == model.ATSUnknown {
			fmt.Printf("No extractor for %s (unknown ATS)\n", company.Name)
			continue
		}

		jobs, err := browse.RunLoader(company.Name, browseFetchTimeout, func(ctx context.Context) ([]model.NormalizedJob, error) {
			return extractor.Extract(ctx, company)
		})
		if err != nil {
			fmt.Printf("Error extracting jobs: %v\n", err)
			continue
		}

		kept := filter.Apply(f, jobs)
		wantQuit, err := browse.Run(jobs, kept)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
	}
}
