// Package cmd implements the timeat command-line interface.
package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"timeat/internal/config"
	"timeat/internal/credentials"
	"timeat/internal/track"
	"timeat/internal/utils"
	"timeat/recents"
	"timeat/recents/file"
	"timeat/recents/sqlite"
)

// Version is set at build time
var Version = "dev"

// Config holds application configuration
type Config struct {
	ConfigPath   string              // Path to config file (empty = default location)
	StoreBackend string              // Override store backend (for testing)
	StorePath    string              // Override store path (for testing)
	BaseURL      string              // Override API base URL (for testing)
	NoPrompt     bool                // Disable interactive prompts
	Verbose      bool                // Enable debug logging
	Keyring      credentials.Keyring // Override keyring (for testing; nil = system)
	Stdin        io.Reader           // Input for prompts (for testing; nil = os.Stdin)
}

// Execute runs the CLI with the given arguments and IO writers
func Execute(args []string, stdout, stderr io.Writer, cfg *Config) int {
	rootCmd := NewTimeAt(stdout, stderr, cfg)

	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// NewTimeAt creates the root command with injectable IO
func NewTimeAt(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	if cfg == nil {
		cfg = &Config{}
	}

	cmd := &cobra.Command{
		Use:     "timeat",
		Short:   "A time-tracking companion with recent-timer suggestions",
		Long:    "timeat starts timers against a time-tracking service and suggests recently used timer configurations as you type.",
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				cfg.Verbose = true
			}
			utils.SetVerboseMode(cfg.Verbose)
			if path, _ := cmd.Flags().GetString("config"); path != "" {
				cfg.ConfigPath = path
			}
			if noPrompt, _ := cmd.Flags().GetBool("no-prompt"); noPrompt {
				cfg.NoPrompt = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("config", "", "Path to config file")
	cmd.PersistentFlags().BoolP("verbose", "V", false, "Enable verbose/debug output")
	cmd.PersistentFlags().BoolP("no-prompt", "y", false, "Disable interactive prompts")

	cmd.AddCommand(newSuggestCmd(stdout, cfg))
	cmd.AddCommand(newStartCmd(stdout, cfg))
	cmd.AddCommand(newSyncCmd(stdout, cfg))
	cmd.AddCommand(newUseCmd(stdout, cfg))
	cmd.AddCommand(newPickCmd(stdout, cfg))
	cmd.AddCommand(newAuthCmd(stdout, stderr, cfg))
	cmd.AddCommand(newConfigCmd(stdout, cfg))

	return cmd
}

// loadConfig reads the application config, applying CLI-level overrides
func loadConfig(cfg *Config) (*config.Config, error) {
	appCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.StoreBackend != "" {
		appCfg.Store.Backend = cfg.StoreBackend
	}
	if cfg.StorePath != "" {
		appCfg.Store.Path = cfg.StorePath
	}
	if cfg.BaseURL != "" {
		appCfg.API.BaseURL = cfg.BaseURL
	}
	if err := appCfg.Validate(); err != nil {
		return nil, err
	}
	return appCfg, nil
}

// openCache builds the recents cache on the configured store backend.
// The returned closer must be called when done.
func openCache(cfg *Config) (*recents.Cache, *config.Config, func(), error) {
	appCfg, err := loadConfig(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	var store recents.Store
	switch appCfg.Store.Backend {
	case "file":
		store = file.New(appCfg.Store.Path)
	case "sqlite":
		store, err = sqlite.New(appCfg.Store.Path)
		if err != nil {
			return nil, nil, nil, err
		}
	default:
		return nil, nil, nil, utils.ErrUnknownStoreBackend(appCfg.Store.Backend)
	}

	utils.Debugf("using %s store at %s", appCfg.Store.Backend, appCfg.Store.Path)
	closer := func() { _ = store.Close() }
	return recents.New(store), appCfg, closer, nil
}

// apiClient builds an authenticated API client from config and keyring
func apiClient(cfg *Config, appCfg *config.Config) (*track.Client, error) {
	manager := credentials.NewManager(cfg.Keyring)
	info, err := manager.Token()
	if err != nil {
		return nil, err
	}
	if !info.Found {
		return nil, utils.ErrNoAPIToken()
	}

	return track.New(track.Config{
		APIToken:    info.Token,
		BaseURL:     appCfg.API.BaseURL,
		WorkspaceID: appCfg.API.WorkspaceID,
	})
}

// parseTagIDs parses a comma-separated tag ID list flag
func parseTagIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tag ID %q: must be an integer", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// projectIDFlag converts the --project flag to an optional project reference
func projectIDFlag(cmd *cobra.Command) (*int64, error) {
	raw, _ := cmd.Flags().GetString("project")
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid project ID %q: must be an integer", raw)
	}
	return &id, nil
}

// formatEntry renders one suggestion for text output
func formatEntry(e recents.Entry) string {
	parts := []string{e.Description}
	if e.ProjectID != nil {
		parts = append(parts, "@"+strconv.FormatInt(*e.ProjectID, 10))
	}
	for _, id := range e.TagIDs {
		parts = append(parts, "#"+strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, " ")
}
