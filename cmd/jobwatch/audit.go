package main

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"jobwatch/internal/adapter"
	"jobwatch/internal/audit"
	"jobwatch/internal/config"
	"jobwatch/internal/model"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Browse a board interactively (TUI)",
	Long:  "Shows the board picker, fetches every listing on the chosen board, and opens a split-pane view of all listings versus what the matcher keeps.",
	RunE:  runAuditCmd,
}

func init() {
	rootCmd.AddCommand(auditCmd)
}

func runAuditCmd(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	companies, err := config.LoadCompanies(cfg.CompaniesFile)
	if err != nil {
		logger.Error("failed to load companies", "path", cfg.CompaniesFile, "error", err)
		os.Exit(1)
	}

	// The TUI owns the terminal from here; anything logged mid-fetch would
	// corrupt the display.
	silent := slog.New(slog.NewTextHandler(io.Discard, nil))
	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout}

	boards := buildBoards(companies, httpClient, silent)
	if len(boards) == 0 {
		fmt.Println("No boards configured.")
		return nil
	}

	matcher := buildMatcher(cfg)

	for {
		choice, err := audit.RunBoardPicker(boards)
		if err != nil {
			fmt.Printf("Picker error: %v\n", err)
			return nil
		}
		if choice < 0 {
			return nil
		}
		jobs, err := audit.RunLoader(boards[choice])
		if err != nil {
			fmt.Printf("Error fetching listings: %v\n", err)
			continue
		}

		// The sweep matches against the full extracted description; here
		// only the stored snippet is available, which is close enough for
		// eyeballing the matcher.
		var matched []model.Job
		for _, j := range jobs {
			if matcher.Match(j.Title, j.Snippet, j.Location) {
				matched = append(matched, j)
			}
		}

		wantQuit, err := audit.RunAuditTUI(jobs, matched)
		if err != nil {
			fmt.Printf("TUI error: %v\n", err)
		}
		if wantQuit {
			return nil
		}
		// else: loop → back to picker
	}
}

// buildBoards flattens the provider → handles config into one pickable
// list. Every fetch uses a nil matcher so the full board is visible.
func buildBoards(companies config.Companies, httpClient *http.Client, logger *slog.Logger) []audit.Board {
	var boards []audit.Board
	for _, handle := range companies.Greenhouse {
		boards = append(boards, audit.Board{
			Provider: "greenhouse",
			Name:     handle,
			Fetch:    adapter.NewGreenhouseAdapter([]string{handle}, nil, httpClient, logger).FetchJobs,
		})
	}
	for _, handle := range companies.Lever {
		boards = append(boards, audit.Board{
			Provider: "lever",
			Name:     handle,
			Fetch:    adapter.NewLeverAdapter([]string{handle}, nil, httpClient, logger).FetchJobs,
		})
	}
	for _, w := range companies.Workday {
		boards = append(boards, audit.Board{
			Provider: "workday",
			Name:     w.Name,
			Fetch:    adapter.NewWorkdayAdapter([]adapter.WorkdayBoard{{Name: w.Name, URL: w.URL}}, nil, httpClient, logger).FetchJobs,
		})
	}
	return boards
}
