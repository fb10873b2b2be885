package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/atsfeed/internal/config"
	"github.com/amishk599/atsfeed/internal/model"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List the companies a run would cover",
	Long:  "Loads the company source and prints each company with its resolved ATS and slug.",
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)
	cfg, err := loadConfig(cfgPath, config.WithSink(config.SinkLog))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	a := newApp(cfg, logger)
	defer a.Close()

	companies, err := a.source().Companies(context.Background())
	if err != nil {
		return fmt.Errorf("loading companies: %w", err)
	}

	fmt.Printf("%-25s %-12s %-20s %s\n", "Company", "ATS", "Slug", "Careers URL")
	fmt.Println(strings.Repeat("─", 80))

	perATS := make(map[model.ATS]int)
	for _, c := range companies {
		ats := c.ResolvedATS()
		perATS[ats]++
		fmt.Printf("%-25s %-12s %-20s %s\n", c.Name, ats, c.ProviderSlug(ats), c.CareersURL)
	}

	fmt.Printf("\nTotal: %d companies", len(companies))
	for _, ats := range model.KnownATS {
		if n := perATS[ats]; n > 0 {
			fmt.Printf(", %d %s", n, ats)
		}
	}
	if n := perATS[model.ATSUnknown]; n > 0 {
		fmt.Printf(", %d unroutable", n)
	}
	fmt.Println()
	return nil
}
