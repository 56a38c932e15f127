// linguacast serves real-time speech translation over HTTP and websockets.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/linguacast/app"
	"github.com/kbukum/linguacast/auth"
	"github.com/kbukum/linguacast/database"
	"github.com/kbukum/linguacast/database/migration"
	"github.com/kbukum/linguacast/history"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/version"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "linguacast",
		Short: "Real-time speech translation service",
		Long: `linguacast transcribes audio, splits it by speaker, translates each
segment and answers with synthesized speech.

Without a subcommand it runs the server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (default: ./cmd/linguacast/config.yml)")

	root.AddCommand(serveCmd(), tokenCmd(), migrateCmd(), versionCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := app.Load(configFile)
	if err != nil {
		return err
	}
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return a.Run(cmd.Context())
}

func tokenCmd() *cobra.Command {
	var (
		userID string
		email  string
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for local testing",
		Long: `Issue an HS256 access token signed with auth.jwt.secret.

Example:
  linguacast token --user 7f1c0e52-4b7a-4d2f-9a53-1c2b9d0e6f11 --email dev@example.com`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Load(configFile)
			if err != nil {
				return err
			}
			cfg.Auth.ApplyDefaults()
			identity, err := auth.NewIdentity(&cfg.Auth.JWT)
			if err != nil {
				return err
			}
			token, err := identity.IssueToken(userID, email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&userID, "user", "u", "", "User id placed in the sub claim")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func migrateCmd() *cobra.Command {
	var rollback int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the history schema to the sql database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Load(configFile)
			if err != nil {
				return err
			}
			cfg.Database.Enabled = true
			cfg.Database.ApplyDefaults()
			if err := cfg.Database.Validate(); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			db, err := database.Open(ctx, cfg.Database, logger.NewDefault(app.ServiceName))
			if err != nil {
				return err
			}
			defer db.Close()

			src := migration.Source{FS: history.Migrations, Dir: history.MigrationsDir}
			var st migration.Status
			if rollback > 0 {
				st, err = migration.Rollback(db.GormDB, src, rollback)
			} else {
				st, err = migration.Apply(db.GormDB, src)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema %s\n", st)
			return nil
		},
	}
	cmd.Flags().IntVar(&rollback, "rollback", 0, "revert this many migrations instead of applying")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
		},
	}
}
