package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"jobwatch/internal/config"
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "List all configured boards",
	Long:  "Reads the companies file and prints a table of every configured board.",
	RunE:  runCompanies,
}

func init() {
	rootCmd.AddCommand(companiesCmd)
}

func runCompanies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	companies, err := config.LoadCompanies(cfg.CompaniesFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load companies: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%-30s %s\n", "Board", "Provider")
	fmt.Println(strings.Repeat("─", 41))

	for _, h := range companies.Greenhouse {
		fmt.Printf("%-30s %s\n", h, "greenhouse")
	}
	for _, h := range companies.Lever {
		fmt.Printf("%-30s %s\n", h, "lever")
	}
	for _, w := range companies.Workday {
		fmt.Printf("%-30s %s\n", w.Name, "workday")
	}

	fmt.Printf("\nTotal: %d boards (%d greenhouse, %d lever, %d workday)\n",
		companies.Total(), len(companies.Greenhouse), len(companies.Lever), len(companies.Workday))
	return nil
}
