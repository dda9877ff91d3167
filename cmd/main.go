package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reportdesk/internal/api"
	"github.com/reportdesk/internal/auth"
	"github.com/reportdesk/internal/config"
	"github.com/reportdesk/internal/database"
	"github.com/reportdesk/internal/links"
	"github.com/reportdesk/internal/notify"
	"github.com/reportdesk/internal/report"
)

var rootCmd = &cobra.Command{
	Use:   "reportdesk",
	Short: "Report Desk - warehouse activity reports and spreadsheet directory",
	Long: `Report Desk serves two internal tools from one process: a form that
renders warehouse activity submissions into PDF reports, and a small
directory of spreadsheet links with an admin-gated add/import flow.`,
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

var importCmd = &cobra.Command{
	Use:   "import-links <file.csv>",
	Short: "Bulk-import directory links from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, store, err := setup()
		if err != nil {
			return err
		}
		defer database.Close()

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		rows, err := links.ReadCSV(f)
		if err != nil {
			return err
		}

		added, skipped, err := store.BulkAdd(rows)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d links, skipped %d invalid rows\n", added, skipped)
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the link table and seed example rows if it is empty",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, err := setup()
		if err != nil {
			return err
		}
		defer database.Close()
		fmt.Println("Database ready")
		return nil
	},
}

// setup loads config, opens the database and runs the idempotent
// startup check. Every subcommand starts here.
func setup() (*config.Config, *links.Store, error) {
	cfg := config.LoadConfig()

	if err := database.Initialize(cfg.Database.Path, cfg.Database.URL); err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	store := links.NewStore(database.GetDB())
	if err := store.EnsureSeeded(); err != nil {
		return nil, nil, fmt.Errorf("failed to seed database: %w", err)
	}

	return cfg, store, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, store, err := setup()
	if err != nil {
		return err
	}
	defer database.Close()

	if err := os.MkdirAll(cfg.Uploads.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}

	sessions, err := auth.NewManager(cfg.Admin.Username, cfg.Admin.Password)
	if err != nil {
		return err
	}

	composer := report.NewComposer(cfg.Report.BannerPath, cfg.Report.Descriptions, cfg.Uploads.Dir)

	notifier := notify.NewNotifier(&notify.Config{
		SlackToken:     cfg.Notify.Slack.Token,
		SlackChannel:   cfg.Notify.Slack.Channel,
		SMTPHost:       cfg.Notify.Email.SMTPHost,
		SMTPPort:       cfg.Notify.Email.SMTPPort,
		EmailFrom:      cfg.Notify.Email.From,
		EmailPassword:  cfg.Notify.Email.Password,
		EmailReceivers: cfg.Notify.Email.ToReceivers,
	})

	server := api.NewServer(cfg, store, sessions, composer, notifier)
	return server.Start(cfg.Server.Port)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
