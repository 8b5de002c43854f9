package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raiyan37/Centinel/internal/auth"
	"github.com/raiyan37/Centinel/internal/cli"
	"github.com/raiyan37/Centinel/internal/storage"
)

// newRootCommand creates the admin CLI with all subcommands registered.
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "centinelctl",
		Short: "Administer a Centinel ledger",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMigrateCommand(), newAccountCommand(), newTokenCommand())
	return rootCmd
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(false)
			if err != nil {
				return err
			}
			if err := storage.RunMigrations(cfg.SQLiteDBPath); err != nil {
				return err
			}
			version, dirty, err := storage.MigrationVersion(cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema at version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}
}

func newAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Provision and inspect accounts",
	}

	var userID string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create the account of a user, or return the existing one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(false)
			if err != nil {
				return err
			}
			store, err := cli.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			acc, err := store.EnsureAccount(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd, acc)
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the account of a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(false)
			if err != nil {
				return err
			}
			store, err := cli.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			acc, err := store.AccountByUser(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return printJSON(cmd, acc)
		},
	}

	for _, c := range []*cobra.Command{createCmd, showCmd} {
		c.Flags().StringVar(&userID, "user", "", "user ID that owns the account")
		_ = c.MarkFlagRequired("user")
		accountCmd.AddCommand(c)
	}
	return accountCmd
}

func newTokenCommand() *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Manage API bearer tokens",
	}

	var (
		userID string
		ttl    time.Duration
	)
	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Sign a bearer token for a user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(true)
			if err != nil {
				return err
			}
			authenticator, err := auth.NewAuthenticator(cfg.JWTSecret)
			if err != nil {
				return err
			}
			token, err := authenticator.IssueToken(userID, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	issueCmd.Flags().StringVar(&userID, "user", "", "user ID the token authenticates")
	issueCmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = issueCmd.MarkFlagRequired("user")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
