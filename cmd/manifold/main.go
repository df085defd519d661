// Command manifold is the CLI wrapper around the core library packages
// (§6 "Exit codes & CLI: not part of the core... if a CLI wrapper is
// provided, it exposes each component operation as a subcommand").
// Wiring follows the teacher's cmd/lci/main.go shape: one urfave/cli App,
// global --config/--root/--redis-addr flags, one subcommand per component
// operation, JSON where a result is structured, plain text otherwise.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/manifold/internal/chaos"
	"github.com/standardbeagle/manifold/internal/config"
	"github.com/standardbeagle/manifold/internal/depgraph"
	"github.com/standardbeagle/manifold/internal/ingest"
	"github.com/standardbeagle/manifold/internal/risk"
	"github.com/standardbeagle/manifold/internal/search"
	"github.com/standardbeagle/manifold/internal/signature"
	"github.com/standardbeagle/manifold/internal/store"
	"github.com/standardbeagle/manifold/internal/verify"
	"github.com/standardbeagle/manifold/internal/version"
	"github.com/standardbeagle/manifold/internal/watcher"
)

var depCache depgraph.Cache

func main() {
	app := &cli.App{
		Name:    "manifold",
		Usage:   "byte-stream structural index over a code repository",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file path"},
			&cli.StringFlag{Name: "root", Aliases: []string{"r"}, Usage: "project root (overrides config)"},
			&cli.StringFlag{Name: "redis-addr", Usage: "override redis.addr"},
		},
		Commands: []*cli.Command{
			ingestCommand,
			watchCommand,
			searchCommand,
			readCommand,
			signatureCommand,
			proximityCommand,
			sequenceCommand,
			chaosCommand,
			batchCommand,
			predictCommand,
			clusterCommand,
			trajectoryCommand,
			verifyCommand,
			depsCommand,
			riskCommand,
			statsCommand,
			clearCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	cfgPath := c.String("config")
	if cfgPath == "" {
		cfgPath = filepath.Join(absRoot, config.DefaultFileName)
	}

	cfg, err := config.Load(cfgPath, absRoot)
	if err != nil {
		return nil, err
	}
	if addr := c.String("redis-addr"); addr != "" {
		cfg.Redis.Addr = addr
	}
	return cfg, nil
}

func openStore(ctx context.Context, c *cli.Context) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	st, err := store.New(ctx, store.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to index store: %w", err)
	}
	return st, cfg, nil
}

func encodeConfig(cfg *config.Config) signature.Config {
	return signature.Config{
		WindowBytes:      cfg.Encode.WindowBytes,
		StrideBytes:      cfg.Encode.StrideBytes,
		Precision:        cfg.Encode.Precision,
		HazardPercentile: cfg.Encode.HazardPercentile,
	}
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

var ingestCommand = &cli.Command{
	Name:  "ingest",
	Usage: "walk the project root and (re)build the index store",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "clear-first", Usage: "wipe the namespace before ingesting"},
	},
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		st, cfg, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		opts := ingest.Options{
			Root: cfg.Project.Root,
			Recipe: ingest.Recipe{
				WindowBytes:      cfg.Encode.WindowBytes,
				StrideBytes:      cfg.Encode.StrideBytes,
				Precision:        cfg.Encode.Precision,
				HazardPercentile: cfg.Encode.HazardPercentile,
				ComputeChaos:     cfg.Ingest.ComputeChaos,
				Lite:             cfg.Ingest.Lite,
			},
			ClearFirst:      c.Bool("clear-first") || cfg.Ingest.ClearFirst,
			MaxBytesPerFile: cfg.Ingest.MaxBytesPerFile,
		}

		result, err := ingest.Run(ctx, st, opts)
		if err != nil {
			return err
		}
		if err := st.PutMeta(ctx, result.Meta); err != nil {
			return err
		}
		if err := st.InvalidateCachedIndex(ctx); err != nil {
			return err
		}
		return printJSON(result.Meta)
	},
}

var watchCommand = &cli.Command{
	Name:  "watch",
	Usage: "watch the project root and keep the index store in sync",
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		st, cfg, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		w, err := watcher.New(st, watcher.Options{
			Root: cfg.Project.Root,
			Recipe: ingest.Recipe{
				WindowBytes:      cfg.Encode.WindowBytes,
				StrideBytes:      cfg.Encode.StrideBytes,
				Precision:        cfg.Encode.Precision,
				HazardPercentile: cfg.Encode.HazardPercentile,
				ComputeChaos:     cfg.Ingest.ComputeChaos,
				Lite:             cfg.Ingest.Lite,
			},
			MaxBytes:   cfg.Ingest.MaxBytesPerFile,
			DebounceMs: cfg.Watch.DebounceMs,
		})
		if err != nil {
			return err
		}
		w.OnError = func(err error) { fmt.Fprintln(os.Stderr, "watch:", err) }
		w.Start()
		defer w.Stop()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		fmt.Fprintf(os.Stderr, "watching %s (ctrl-c to stop)\n", cfg.Project.Root)
		<-sigCh
		return nil
	},
}

var searchCommand = &cli.Command{
	Name:      "search",
	Usage:     "regex/literal search over indexed file bodies",
	ArgsUsage: "<query>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "glob", Usage: "restrict to files matching this glob"},
		&cli.IntFlag{Name: "max-results", Value: 100},
		&cli.BoolFlag{Name: "case-sensitive"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("search requires a query argument")
		}
		ctx := context.Background()
		st, cfg, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		max := c.Int("max-results")
		if max <= 0 {
			max = cfg.Search.MaxResults
		}
		results, err := search.Search(ctx, st, c.Args().First(), c.String("glob"), max, c.Bool("case-sensitive"))
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No matches")
			return nil
		}
		return printJSON(results)
	},
}

var readCommand = &cli.Command{
	Name:      "read",
	Usage:     "print a file's decompressed body, numbered",
	ArgsUsage: "<relpath>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("read requires a relpath argument")
		}
		ctx := context.Background()
		st, _, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		lines, suggestions, err := search.GetFile(ctx, st, c.Args().First())
		if err != nil {
			return err
		}
		if lines == nil {
			fmt.Println(search.FormatSuggestions(c.Args().First(), suggestions))
			return nil
		}
		for _, l := range lines {
			fmt.Printf("%6d  %s\n", l.Number, l.Text)
		}
		return nil
	},
}

var signatureCommand = &cli.Command{
	Name:      "signature",
	Usage:     "print a file's first-window structural signature",
	ArgsUsage: "<relpath>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("signature requires a relpath argument")
		}
		ctx := context.Background()
		st, cfg, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		sig, ok, err := search.SignatureOf(ctx, st, c.Args().First(), encodeConfig(cfg))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("no signature (file missing, binary, or too short)")
			return nil
		}
		fmt.Println(sig)
		return nil
	},
}

var proximityCommand = &cli.Command{
	Name:      "proximity",
	Usage:     "find files whose signature is within tolerance of a target",
	ArgsUsage: "<signature>",
	Flags: []cli.Flag{
		&cli.Float64Flag{Name: "tolerance", Value: 0.1},
		&cli.IntFlag{Name: "max-results", Value: 20},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("proximity requires a signature argument")
		}
		ctx := context.Background()
		st, _, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		matches, err := search.Proximity(ctx, st, c.Args().First(), c.Float64("tolerance"), c.Int("max-results"))
		if err != nil {
			return err
		}
		return printJSON(matches)
	},
}

var sequenceCommand = &cli.Command{
	Name:      "sequence",
	Usage:     "find the corpus file containing a candidate's window-signature run",
	ArgsUsage: "<file-with-candidate-bytes>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("sequence requires a file path argument")
		}
		ctx := context.Background()
		st, cfg, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		candidate, err := os.ReadFile(c.Args().First())
		if err != nil {
			return err
		}
		matches, err := search.Sequence(ctx, st, candidate, encodeConfig(cfg))
		if err != nil {
			return err
		}
		return printJSON(matches)
	},
}

var chaosCommand = &cli.Command{
	Name:      "chaos",
	Usage:     "report a single file's chaos/entropy/coherence",
	ArgsUsage: "<relpath>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("chaos requires a relpath argument")
		}
		ctx := context.Background()
		st, cfg, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		result, err := chaos.Of(ctx, st, c.Args().First(), encodeConfig(cfg))
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println("no chaos data (file missing or binary)")
			return nil
		}
		return printJSON(result)
	},
}

var batchCommand = &cli.Command{
	Name:  "batch",
	Usage: "rank files by chaos score, descending",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "glob"},
		&cli.IntFlag{Name: "max-files", Value: 20},
	},
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		st, _, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		ranked, err := chaos.Batch(ctx, st, c.String("glob"), c.Int("max-files"))
		if err != nil {
			return err
		}
		return printJSON(ranked)
	},
}

var predictCommand = &cli.Command{
	Name:      "predict",
	Usage:     "project ejection risk for one file against dynamic corpus thresholds",
	ArgsUsage: "<relpath>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "glob", Usage: "corpus scope used to compute dynamic thresholds"},
		&cli.IntFlag{Name: "horizon-days", Value: 30},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("predict requires a relpath argument")
		}
		ctx := context.Background()
		st, cfg, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		result, err := chaos.Of(ctx, st, c.Args().First(), encodeConfig(cfg))
		if err != nil {
			return err
		}
		if result == nil {
			fmt.Println("no chaos data (file missing or binary)")
			return nil
		}
		thresholds, err := chaos.CorpusThresholds(ctx, st, c.String("glob"))
		if err != nil {
			return err
		}
		prediction := chaos.Predict(result.ChaosScore, c.Int("horizon-days"), thresholds)
		return printJSON(prediction)
	},
}

var clusterCommand = &cli.Command{
	Name:  "cluster",
	Usage: "2-D k-means clustering over (coherence, entropy)",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "glob"},
		&cli.IntFlag{Name: "k", Value: 4},
	},
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		st, _, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		clusters, err := chaos.Clusters(ctx, st, c.String("glob"), c.Int("k"))
		if err != nil {
			return err
		}
		return printJSON(clusters)
	},
}

var trajectoryCommand = &cli.Command{
	Name:      "trajectory",
	Usage:     "per-window hazard/entropy/coherence series for one file",
	ArgsUsage: "<relpath>",
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("trajectory requires a relpath argument")
		}
		ctx := context.Background()
		st, cfg, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		trajectory, err := chaos.TrajectoryOf(ctx, st, c.Args().First(), encodeConfig(cfg))
		if err != nil {
			return err
		}
		if trajectory == nil {
			fmt.Println("no trajectory (file missing or binary)")
			return nil
		}
		return printJSON(trajectory)
	},
}

var verifyCommand = &cli.Command{
	Name:      "verify",
	Usage:     "check a snippet's coverage against the corpus-wide signature index",
	ArgsUsage: "<file-with-snippet-bytes>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "glob", Usage: "restrict the corpus index to this scope"},
		&cli.Float64Flag{Name: "threshold", Value: 0.5},
		&cli.BoolFlag{Name: "reconstruct"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() < 1 {
			return fmt.Errorf("verify requires a file path argument")
		}
		ctx := context.Background()
		st, cfg, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		text, err := os.ReadFile(c.Args().First())
		if err != nil {
			return err
		}
		threshold := c.Float64("threshold")
		if !c.IsSet("threshold") {
			threshold = cfg.Ingest.CoverageThreshold
		}
		result, err := verify.Verify(ctx, st, text, encodeConfig(cfg), verify.Options{
			ScopeGlob:   c.String("glob"),
			Threshold:   threshold,
			Reconstruct: c.Bool("reconstruct"),
		})
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

var depsCommand = &cli.Command{
	Name:  "deps",
	Usage: "Python import dependency graph: blast radius, depth, high-impact files",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "relpath", Usage: "show one file's dependency info"},
		&cli.IntFlag{Name: "min-blast-radius", Usage: "list files at or above this blast radius"},
		&cli.BoolFlag{Name: "invalidate", Usage: "force a graph rebuild before reading"},
	},
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		st, _, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		if c.Bool("invalidate") {
			depCache.Invalidate()
		}
		g, err := depCache.Get(ctx, st)
		if err != nil {
			return err
		}

		if rel := c.String("relpath"); rel != "" {
			info, ok := g.Info(rel)
			if !ok {
				fmt.Println("no dependency info (not a tracked Python file)")
				return nil
			}
			return printJSON(info)
		}
		return printJSON(g.HighImpact(c.Int("min-blast-radius")))
	},
}

var riskCommand = &cli.Command{
	Name:  "risk",
	Usage: "fuse chaos, blast radius, and optional churn into a combined risk score",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "relpath", Usage: "score one file"},
		&cli.StringFlag{Name: "glob", Usage: "score every file under this scope"},
		&cli.IntFlag{Name: "max-files", Value: 20},
		&cli.BoolFlag{Name: "with-churn", Usage: "include git commit-frequency as a third input"},
		&cli.StringFlag{Name: "churn-glob", Value: "*", Usage: "glob passed to the churn scan"},
	},
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		st, cfg, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		g, err := depCache.Get(ctx, st)
		if err != nil {
			return err
		}

		var lookup risk.ChurnLookup
		if c.Bool("with-churn") {
			lookup, err = risk.ChurnLookupFromRepo(ctx, cfg.Project.Root, c.String("churn-glob"))
			if err != nil {
				return err
			}
		}

		if rel := c.String("relpath"); rel != "" {
			score, err := risk.ForFile(ctx, st, rel, encodeConfig(cfg), g, lookup)
			if err != nil {
				return err
			}
			if score == nil {
				fmt.Println("no risk score (file missing or binary)")
				return nil
			}
			return printJSON(score)
		}

		scores, err := risk.Batch(ctx, st, c.String("glob"), c.Int("max-files"), encodeConfig(cfg), g, lookup)
		if err != nil {
			return err
		}
		return printJSON(scores)
	},
}

var statsCommand = &cli.Command{
	Name:  "stats",
	Usage: "summary counts over the indexed corpus",
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		st, _, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		meta, ok, err := st.GetMeta(ctx)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Indexed documents: 0")
			return nil
		}
		return printJSON(meta)
	},
}

var clearCommand = &cli.Command{
	Name:  "clear",
	Usage: "wipe the manifold:* namespace",
	Action: func(c *cli.Context) error {
		ctx := context.Background()
		st, _, err := openStore(ctx, c)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.ClearNamespace(ctx); err != nil {
			return err
		}
		fmt.Println("namespace cleared")
		return nil
	},
}
