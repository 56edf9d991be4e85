package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"timeat/internal/config"
	"timeat/internal/tui"
	"timeat/internal/utils"
	"timeat/recents"
)

// newSuggestCmd creates the 'suggest' subcommand
func newSuggestCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "suggest [query]",
		Short: "List suggested timer configurations",
		Long:  "Rank recently used timer configurations against an optional fuzzy query.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, appCfg, closer, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer closer()

			query := ""
			if len(args) > 0 {
				query = args[0]
			}
			limit, _ := cmd.Flags().GetInt("limit")
			if limit == 0 {
				limit = appCfg.Suggestions.Limit
			}

			entries, outcome := cache.Search(context.Background(), query, limit)
			if outcome.Degraded() {
				utils.Debugf("suggest: cache degraded (load recovered: %v)", outcome.LoadRecovered)
			}

			if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
				if entries == nil {
					entries = []recents.Entry{}
				}
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				_, _ = fmt.Fprintln(stdout, "No suggestions.")
				return nil
			}
			for _, e := range entries {
				_, _ = fmt.Fprintf(stdout, "%s  (used %d)\n", formatEntry(e), e.UsageCount)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntP("limit", "n", 0, "Maximum number of suggestions (default from config)")
	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}

// newStartCmd creates the 'start' subcommand
func newStartCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start <description>",
		Short: "Start a timer",
		Long:  "Start a running time entry and remember its configuration for future suggestions.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := args[0]
			projectID, err := projectIDFlag(cmd)
			if err != nil {
				return err
			}
			rawTags, _ := cmd.Flags().GetString("tags")
			tagIDs, err := parseTagIDs(rawTags)
			if err != nil {
				return err
			}

			cache, appCfg, closer, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer closer()

			if appCfg.API.WorkspaceID == 0 {
				return utils.ErrNoWorkspace()
			}
			client, err := apiClient(cfg, appCfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			ctx := context.Background()
			started, err := client.StartTimer(ctx, description, projectID, tagIDs)
			if err != nil {
				return err
			}

			// Remember the configuration under the server-assigned ID,
			// keeping any usage history it already accumulated.
			entry := started.Suggestion()
			current, _ := cache.Entries(ctx)
			if i := indexOfConfiguration(current, entry); i >= 0 {
				entry.UsageCount = current[i].UsageCount
			}
			cache.Add(ctx, entry)
			cache.IncrementUsage(ctx, entry.Description, entry.ProjectID, entry.TagIDs)

			_, _ = fmt.Fprintf(stdout, "Started timer %d: %s\n", started.ID, formatEntry(entry))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringP("project", "p", "", "Project ID")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tag IDs")
	return cmd
}

// indexOfConfiguration finds an entry with the same logical configuration
func indexOfConfiguration(entries []recents.Entry, probe recents.Entry) int {
	for i, e := range entries {
		if e.SameConfiguration(probe) {
			return i
		}
	}
	return -1
}

// newSyncCmd creates the 'sync' subcommand
func newSyncCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile suggestions with the server",
		Long:  "Fetch recent time entries from the time-tracking service and reconcile the local suggestion cache against them.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, appCfg, closer, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer closer()

			client, err := apiClient(cfg, appCfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			days, _ := cmd.Flags().GetInt("days")
			if days == 0 {
				days = appCfg.Sync.LookbackDays
			}
			since := time.Now().AddDate(0, 0, -days)

			ctx := context.Background()
			fetched, err := client.RecentEntries(ctx, since)
			if err != nil {
				return err
			}

			entries := make([]recents.Entry, len(fetched))
			for i, f := range fetched {
				entries[i] = f.Suggestion()
			}

			outcome := cache.Reconcile(ctx, entries)
			if outcome.Degraded() {
				_, _ = fmt.Fprintln(stdout, "Sync finished with a degraded cache (see warnings above).")
			}
			_, _ = fmt.Fprintf(stdout, "Reconciled %d time entries from the last %d days.\n", len(entries), days)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().IntP("days", "d", 0, "How many days of time entries to fetch (default from config)")
	return cmd
}

// newUseCmd creates the 'use' subcommand
func newUseCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "use <description>",
		Short: "Record a use of a cached timer configuration",
		Long:  "Increment the usage counter of the cached configuration matching the given description, project and tags. Unknown configurations are ignored.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID, err := projectIDFlag(cmd)
			if err != nil {
				return err
			}
			rawTags, _ := cmd.Flags().GetString("tags")
			tagIDs, err := parseTagIDs(rawTags)
			if err != nil {
				return err
			}

			cache, _, closer, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer closer()

			cache.IncrementUsage(context.Background(), args[0], projectID, tagIDs)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringP("project", "p", "", "Project ID")
	cmd.Flags().StringP("tags", "t", "", "Comma-separated tag IDs")
	return cmd
}

// newPickCmd creates the 'pick' subcommand
func newPickCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "pick",
		Short: "Pick a suggestion interactively",
		Long:  "Open an interactive picker over the suggestion list and print the chosen configuration.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, appCfg, closer, err := openCache(cfg)
			if err != nil {
				return err
			}
			defer closer()

			model := tui.New(cache, appCfg.Suggestions.Limit)
			p := tea.NewProgram(model)
			final, err := p.Run()
			if err != nil {
				return err
			}

			picker, ok := final.(*tui.Model)
			if !ok || picker.Selection() == nil {
				return nil
			}
			_, _ = fmt.Fprintln(stdout, formatEntry(*picker.Selection()))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newConfigCmd creates the 'config' subcommand
func newConfigCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.ConfigPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			_, _ = fmt.Fprintln(stdout, path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write a sample config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfg.ConfigPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("config file already exists at %s", path)
			}
			if err := config.WriteSample(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "Wrote sample config to %s\n", path)
			return nil
		},
	})

	return configCmd
}
