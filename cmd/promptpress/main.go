package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"

	"promptpress/internal/cascade"
	"promptpress/internal/config"
	"promptpress/internal/gen"
	"promptpress/internal/graph"
	"promptpress/internal/spec"
	"promptpress/internal/store"
	"promptpress/internal/ui"
	"promptpress/internal/vcs"
	"promptpress/internal/watch"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "promptpress",
		Short: "Spec-graph and cascade engine for phased specification documents",
	}
	rootDir    string
	configPath string
	autoYes    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootDir, "root", "r", ".", "Workspace root containing the specs/ directory")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVarP(&autoYes, "yes", "y", false, "Run non-interactively, continuing past confirmations")

	rootCmd.AddCommand(cascadeCmd)
	rootCmd.AddCommand(tersifyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(watchCmd)
}

func initStore() (*store.Store, *graph.Graph) {
	s := store.New(rootDir)
	return s, graph.New(s)
}

func initUI() ui.UI {
	if autoYes {
		return ui.NewAuto()
	}
	return ui.NewConsole()
}

// initOrchestrator wires every collaborator the workflows need. A missing
// git repository downgrades the baseline source, it does not fail the run.
func initOrchestrator(ctx context.Context) (*cascade.Orchestrator, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.AI.APIKey == "" {
		return nil, fmt.Errorf("AI API key not configured")
	}

	generator, err := gen.NewGemini(ctx, cfg.AI.APIKey, cfg.AI.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to create generator: %w", err)
	}

	var versionControl vcs.VersionControl
	if git, err := vcs.Open(rootDir); err == nil {
		versionControl = git
	} else {
		fmt.Printf("⚠️  No git repository at %s; relying on the baseline cache.\n", rootDir)
	}

	s, g := initStore()
	prompts := promptsFromConfig(cfg)
	return cascade.NewOrchestrator(s, g, store.NewBaselineCache(rootDir), generator, versionControl, initUI(), prompts, cfg.AI.MaxTokens), nil
}

// promptsFromConfig overlays configured role templates on the defaults.
func promptsFromConfig(cfg *config.Config) *gen.PromptBuilder {
	prompts := gen.DefaultPrompts()
	if cfg.Prompts.RefineRequirement != "" {
		prompts.RefineRequirement = cfg.Prompts.RefineRequirement
	}
	if cfg.Prompts.RefineDesign != "" {
		prompts.RefineDesign = cfg.Prompts.RefineDesign
	}
	if cfg.Prompts.RefineImplementation != "" {
		prompts.RefineImplementation = cfg.Prompts.RefineImplementation
	}
	if cfg.Prompts.RegenerateDesign != "" {
		prompts.RegenerateDesign = cfg.Prompts.RegenerateDesign
	}
	if cfg.Prompts.RegenerateImplementation != "" {
		prompts.RegenerateImplementation = cfg.Prompts.RegenerateImplementation
	}
	if cfg.Prompts.Tersify != "" {
		prompts.Tersify = cfg.Prompts.Tersify
	}
	return prompts
}

func reportResult(res *cascade.Result) {
	for _, f := range res.UpdatedFiles {
		fmt.Printf("  updated: %s\n", f)
	}
	for _, e := range res.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	if !res.Success {
		os.Exit(1)
	}
}

var cascadeCmd = &cobra.Command{
	Use:   "cascade <file>",
	Short: "Propagate an edited document to the phases that depend on it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		orch, err := initOrchestrator(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		reportResult(orch.Run(ctx, args[0]))
	},
}

var tersifyCmd = &cobra.Command{
	Use:   "tersify <file>",
	Short: "Redistribute duplicated content between a document and its references and dependents",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		orch, err := initOrchestrator(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize: %v", err)
		}
		reportResult(orch.Tersify(ctx, args[0]))
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check reference and dependency consistency for one or all documents",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		s, g := initStore()

		var targets []store.StoredDoc
		if len(args) == 1 {
			text, err := s.Read(args[0])
			if err != nil {
				log.Fatalf("Failed to read %s: %v", args[0], err)
			}
			targets = []store.StoredDoc{{Path: args[0], Doc: spec.Parse(text)}}
		} else {
			var err error
			targets, err = s.List()
			if err != nil {
				log.Fatalf("Failed to list documents: %v", err)
			}
		}

		total := 0
		for _, t := range targets {
			if t.Doc.Meta == nil {
				continue
			}
			diags := g.Validate(t.Doc)
			if len(diags) == 0 {
				continue
			}
			fmt.Printf("❗ %s\n", filepath.Base(t.Path))
			for _, d := range diags {
				fmt.Printf("   %s\n", d)
			}
			total += len(diags)
		}
		if total == 0 {
			fmt.Println("✅ All documents valid.")
			return
		}
		fmt.Printf("Found %d issue(s).\n", total)
		os.Exit(1)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the specs tree and re-validate documents as they change",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s, g := initStore()
		w, err := watch.New(s, g)
		if err != nil {
			log.Fatalf("Failed to create watcher: %v", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			log.Fatalf("Watcher failed: %v", err)
		}
	},
}
