package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	catalogx "github.com/ace139/healthmate/agent/catalog"
	llmx "github.com/ace139/healthmate/agent/llm"
	"github.com/ace139/healthmate/agent/orchestrator"
	runtimex "github.com/ace139/healthmate/agent/runtime"
	configx "github.com/ace139/healthmate/pkg/config"
	"github.com/ace139/healthmate/pkg/healthdb"
	_ "github.com/ace139/healthmate/pkg/logger/autoload"
	openaix "github.com/ace139/healthmate/pkg/openai"
)

func main() {
	root := &cobra.Command{
		Use:           "healthmate",
		Short:         "Multi-agent health assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(chatCmd(), seedCmd())

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive health assistant session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			llmCfg, err := configx.New[llmx.Config]("OPENAI")
			if err != nil {
				return fmt.Errorf("load llm config: %w", err)
			}
			if err := llmCfg.Validate(); err != nil {
				return err
			}

			cat := catalogx.New()
			if openaix.NewClient(llmCfg.ModelFor(cat.Entry())) == nil {
				return fmt.Errorf("openai client not configured, set OPENAI_API_KEY")
			}

			dbCfg, err := configx.New[healthdb.Config]("HEALTH_DB")
			if err != nil {
				return fmt.Errorf("load db config: %w", err)
			}
			db, err := healthdb.Open(*dbCfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.CreateSchema(ctx); err != nil {
				return err
			}

			rt, err := runtimex.New(ctx, cat, *llmCfg, db)
			if err != nil {
				return err
			}
			sess, err := orchestrator.New(ctx, cat, rt, db)
			if err != nil {
				return err
			}

			log.Info().Str("session_id", sess.SessionID()).Msg("session started")
			return sess.Run(ctx, os.Stdin, os.Stdout)
		},
	}
}

func seedCmd() *cobra.Command {
	var users int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the database schema and populate it with sample users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			dbCfg, err := configx.New[healthdb.Config]("HEALTH_DB")
			if err != nil {
				return fmt.Errorf("load db config: %w", err)
			}
			db, err := healthdb.Open(*dbCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.CreateSchema(ctx); err != nil {
				return err
			}
			n, err := db.Seed(ctx, users)
			if err != nil {
				return err
			}
			fmt.Printf("Seeded %d users into %s\n", n, dbCfg.Path)
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 0, "number of users to create (0 uses the default)")
	return cmd
}
