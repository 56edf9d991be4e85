package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"timeat/internal/credentials"
	"timeat/internal/utils"
)

// newAuthCmd creates the 'auth' subcommand tree
func newAuthCmd(stdout, stderr io.Writer, cfg *Config) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the API token",
	}

	authCmd.AddCommand(newAuthSetCmd(stdout, cfg))
	authCmd.AddCommand(newAuthStatusCmd(stdout, cfg))
	authCmd.AddCommand(newAuthRemoveCmd(stdout, cfg))

	return authCmd
}

func stdinFor(cfg *Config) io.Reader {
	if cfg.Stdin != nil {
		return cfg.Stdin
	}
	return os.Stdin
}

// newAuthSetCmd creates the 'auth set' subcommand
func newAuthSetCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store the API token in the system keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			token, err := credentials.PromptToken(stdinFor(cfg), stdout)
			if err != nil {
				return err
			}
			if token == "" {
				return fmt.Errorf("no token entered")
			}

			manager := credentials.NewManager(cfg.Keyring)
			if err := manager.Store(token); err != nil {
				return utils.WrapWithSuggestion(err,
					"Your system keyring may be locked or unavailable; you can set TIMEAT_API_TOKEN instead")
			}
			_, _ = fmt.Fprintln(stdout, "API token stored.")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newAuthStatusCmd creates the 'auth status' subcommand
func newAuthStatusCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the API token comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := credentials.NewManager(cfg.Keyring)
			info, err := manager.Token()
			if err != nil {
				return err
			}
			if !info.Found {
				_, _ = fmt.Fprintln(stdout, "No API token configured.")
				return nil
			}
			_, _ = fmt.Fprintf(stdout, "API token configured (source: %s).\n", info.Source)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}

// newAuthRemoveCmd creates the 'auth remove' subcommand
func newAuthRemoveCmd(stdout io.Writer, cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Remove the API token from the system keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.NoPrompt {
				if !utils.PromptYesNoWithReader("Remove the stored API token?", stdinFor(cfg), stdout) {
					_, _ = fmt.Fprintln(stdout, "Cancelled.")
					return nil
				}
			}

			manager := credentials.NewManager(cfg.Keyring)
			if err := manager.Remove(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(stdout, "API token removed.")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
}
