// Package cli wires the translation pipeline into a command line tool.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"pptrans/internal/config"
	"pptrans/internal/lang"
	"pptrans/internal/logger"
	"pptrans/internal/pipeline"
	"pptrans/internal/translate"
	"pptrans/internal/types"
)

// Version is set at build time.
var Version = "dev"

// Flags holds all command line options.
type Flags struct {
	ConfigPath  string
	Range       string
	SourceLang  string
	TargetLang  string
	OutputPath  string
	Glossary    string
	APIKey      string
	BaseURL     string
	Model       string
	BatchSize   int
	Concurrency int
	MaxRetries  int
	Verbose     bool
}

// CreateRootCommand creates and configures the root cobra command.
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pptrans <file.pptx>",
		Short: "PowerPoint slide deck translator",
		Long: `pptrans translates the text of a PowerPoint presentation while
preserving run-level formatting (bold, italic, fonts, colors) and
paragraph layout. The translated deck is saved next to the input as
<name>_translated.pptx; the input file is never modified.

Examples:
  pptrans deck.pptx --target en                 # translate every slide
  pptrans deck.pptx --range 1,3,5-7 --target fr # translate selected slides
  pptrans deck.pptx --source de --target en --glossary terms.txt`,
		Args:    cobra.ExactArgs(1),
		Version: Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(cmd.Context(), flags, args[0])
		},
		SilenceUsage: true,
	}

	setupFlags(rootCmd, flags)
	rootCmd.AddCommand(createLanguagesCommand())
	rootCmd.AddCommand(createCheckCommand(flags))
	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "config file (default is $HOME/.config/pptrans/pptrans-config.json)")
	cmd.PersistentFlags().StringVar(&flags.APIKey, "api-key", "", "OpenAI API key (default from config or $OPENAI_API_KEY)")
	cmd.PersistentFlags().StringVar(&flags.BaseURL, "base-url", "", "OpenAI-compatible API base URL")
	cmd.PersistentFlags().StringVar(&flags.Model, "model", "", "chat model used for translation")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "log debug output")

	cmd.Flags().StringVarP(&flags.Range, "range", "r", "all", `slides to translate, e.g. "all", "5", "1,3,5-7"`)
	cmd.Flags().StringVarP(&flags.SourceLang, "source", "s", "auto", "source language code, or auto")
	cmd.Flags().StringVarP(&flags.TargetLang, "target", "t", "", "target language code (required)")
	cmd.Flags().StringVarP(&flags.OutputPath, "output", "o", "", "output file (default <name>_translated.pptx)")
	cmd.Flags().StringVar(&flags.Glossary, "glossary", "", `glossary file with "source = target" lines`)
	cmd.Flags().IntVar(&flags.BatchSize, "batch-size", 0, "text elements per translation request")
	cmd.Flags().IntVar(&flags.Concurrency, "concurrency", 0, "number of batches translated in parallel")
	cmd.Flags().IntVar(&flags.MaxRetries, "max-retries", 0, "retry budget per batch")
	cmd.MarkFlagRequired("target")
}

func createLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages [query]",
		Short: "List supported language codes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs := lang.Popular()
			if len(args) == 1 {
				pairs = lang.Search(args[0])
			}
			for _, p := range pairs {
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", p[0], p[1])
			}
			return nil
		},
	}
}

func createCheckCommand(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify API credentials and connectivity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			initLogging(flags)
			defer logger.Close()
			gateway, _, err := buildGateway(cmd.Context(), flags)
			if err != nil {
				return err
			}
			if err := gateway.TestConnection(cmd.Context()); err != nil {
				return fmt.Errorf("%s", types.UserMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "translation service is reachable")
			return nil
		},
	}
}

func initLogging(flags *Flags) {
	cfg := logger.DefaultConfig()
	if flags.Verbose {
		cfg.Level = logger.LevelDebug
		cfg.EnableConsole = true
	}
	if err := logger.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
}

// buildGateway assembles the translation gateway from config file and
// flag overrides.
func buildGateway(ctx context.Context, flags *Flags) (*translate.Gateway, *config.ConfigManager, error) {
	manager, err := config.NewConfigManager(flags.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if err := manager.Load(); err != nil {
		return nil, nil, err
	}

	apiKey := flags.APIKey
	if apiKey == "" {
		apiKey = manager.GetAPIKey()
	}
	baseURL := flags.BaseURL
	if baseURL == "" {
		baseURL = manager.GetBaseURL()
	}
	model := flags.Model
	if model == "" {
		model = manager.GetModel()
	}

	glossaryPath := flags.Glossary
	if glossaryPath == "" {
		glossaryPath = manager.GetGlossaryPath()
	}
	glossary, err := translate.LoadGlossary(glossaryPath)
	if err != nil {
		return nil, nil, err
	}

	batchSize := flags.BatchSize
	if batchSize <= 0 {
		batchSize = manager.GetBatchSize()
	}
	concurrency := flags.Concurrency
	if concurrency <= 0 {
		concurrency = manager.GetConcurrency()
	}
	maxRetries := flags.MaxRetries
	if maxRetries <= 0 {
		maxRetries = manager.GetMaxRetries()
	}

	factory := func() (translate.Client, error) {
		return translate.NewLLMClient(ctx, translate.LLMClientConfig{
			APIKey:  apiKey,
			BaseURL: baseURL,
			Model:   model,
		})
	}

	gateway := translate.NewGateway(translate.GatewayConfig{
		BatchSize:   batchSize,
		Concurrency: concurrency,
		MaxRetries:  maxRetries,
		Glossary:    glossary,
	}, factory)

	return gateway, manager, nil
}

func runTranslate(ctx context.Context, flags *Flags, inputPath string) error {
	initLogging(flags)
	defer logger.Close()

	gateway, manager, err := buildGateway(ctx, flags)
	if err != nil {
		return fmt.Errorf("%s", types.UserMessage(err))
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestrator := pipeline.NewOrchestrator(gateway)
	progress := func(current, total int, message string) {
		if total > 0 {
			fmt.Fprintf(os.Stderr, "\r%s (%d/%d)        ", message, current, total)
		}
	}

	result, err := orchestrator.Run(ctx, inputPath, flags.OutputPath, flags.Range, flags.SourceLang, flags.TargetLang, progress)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("%s", types.UserMessage(err))
	}

	manager.SetLastInput(inputPath)

	stats := result.Stats
	fmt.Printf("saved %s\n", result.OutputPath)
	fmt.Printf("slides: %d of %d, translated: %d, skipped: %d, errors: %d, took %s\n",
		stats.SlidesProcessed, stats.TotalSlides,
		stats.ElementsTranslated, stats.ElementsSkipped,
		stats.Errors, stats.ElapsedTime.Round(time.Millisecond))
	return nil
}
