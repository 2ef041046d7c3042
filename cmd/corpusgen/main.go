package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danmuck/corpusgen/internal/config"
	"github.com/danmuck/corpusgen/internal/logging"
	"github.com/danmuck/corpusgen/internal/oracle"
	"github.com/danmuck/corpusgen/internal/pipeline"
)

const envAPIKey = "OPENAI_API_KEY"

func newRootCmd() *cobra.Command {
	var (
		protocol   string
		outputDir  string
		seedDir    string
		dictionary string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "corpusgen",
		Short: "Synthesize a protocol fuzzing corpus from a generative oracle",
		Long: `corpusgen asks a generative oracle for a protocol's message types,
per-type structures, and coverage-oriented message sequences, then
materializes them into raw corpus files and an AFL-style fuzzing
dictionary ready for a mutation fuzzer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.Init("corpusgen", logging.ProfileRuntime)

			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}

			token := os.Getenv(envAPIKey)
			if token == "" {
				return fmt.Errorf("%s is not set", envAPIKey)
			}

			client := oracle.NewClient(oracle.NewOpenAI(token, cfg.Model), cfg.MaxRetries, logger)
			runner := pipeline.New(cfg, client, logger)

			err := runner.Run(cmd.Context(), pipeline.Options{
				Protocol:   protocol,
				OutputDir:  outputDir,
				SeedDir:    seedDir,
				Dictionary: dictionary,
			})
			if errors.Is(err, pipeline.ErrNoCorpus) {
				logger.Error().Str("protocol", protocol).Msg("run finished with an empty corpus")
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&protocol, "protocol", "p", "", "protocol name to synthesize a corpus for")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "results", "output directory for corpus files and snapshots")
	cmd.Flags().StringVarP(&seedDir, "seeds", "s", "", "directory of captured raw seed messages")
	cmd.Flags().StringVarP(&dictionary, "dictionary", "d", "", "base dictionary file to enhance")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML configuration file")
	_ = cmd.MarkFlagRequired("protocol")

	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "corpusgen: %v\n", err)
		os.Exit(1)
	}
}
