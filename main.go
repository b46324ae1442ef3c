// funcseg splits Python files into canonical free-statement and function
// segments.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phobologic/funcseg/internal/batch"
	"github.com/phobologic/funcseg/internal/cache"
	"github.com/phobologic/funcseg/internal/config"
	"github.com/phobologic/funcseg/internal/discover"
	"github.com/phobologic/funcseg/internal/toon"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// app holds state shared by every command of one invocation.
type app struct {
	stdout, stderr io.Writer

	cfgFile string
	verbose bool
	cfg     *config.Config
	log     *slog.Logger
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	var (
		format      string
		cachePath   string
		workers     int
		maxFileSize int64
		noNormalize bool
		progress    bool
		showVersion bool
	)

	root := &cobra.Command{
		Use:   "funcseg [path...]",
		Short: "Split Python files into canonical code and function segments",
		Long: `funcseg rewrites each Python file into a canonical, comment-free form and
splits it into an ordered list of segments: runs of free statements ("code")
and function definitions ("function"). Line numbers refer to the canonical text.

Directories are searched for .py and .pyi files. A file that cannot be read or
parsed is reported on stderr and the remaining files are still processed.

Example usage:
  funcseg app.py                  # segment one file
  funcseg src/ --format json      # segment a tree as JSON
  funcseg --cache .funcseg.db .   # reuse results for unchanged files
  funcseg normalize app.py        # print the normalized canonical text
  funcseg serve                   # run the HTTP API`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				_, _ = fmt.Fprintf(a.stdout, "funcseg %s\n", version)
				return nil
			}

			flags := cmd.Flags()
			if flags.Changed("format") {
				a.cfg.Output.Format = format
			}
			if flags.Changed("cache") {
				a.cfg.Cache.Path = cachePath
			}
			if flags.Changed("workers") {
				a.cfg.Segment.Workers = workers
			}
			if flags.Changed("max-file-size") {
				a.cfg.Segment.MaxFileSize = maxFileSize
			}
			if noNormalize {
				a.cfg.Segment.Normalize = false
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			if len(args) == 0 {
				args = []string{"."}
			}
			return a.segment(cmd.Context(), args, progress)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./"+config.FileName+")")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	f := root.Flags()
	f.StringVarP(&format, "format", "f", "", "output format: "+strings.Join(toon.Formats, ", "))
	f.StringVar(&cachePath, "cache", "", "segment cache file path")
	f.IntVarP(&workers, "workers", "j", 0, "number of parallel workers (default GOMAXPROCS)")
	f.Int64Var(&maxFileSize, "max-file-size", 0, "skip files larger than this many bytes")
	f.BoolVar(&noNormalize, "no-normalize", false, "segment the canonical text without normalization rules")
	f.BoolVar(&progress, "progress", false, "show a progress bar on stderr")
	f.BoolVarP(&showVersion, "version", "V", false, "show version and exit")

	root.AddCommand(
		newNormalizeCmd(a),
		newServeCmd(a),
		newInitCmd(a),
	)
	return root
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	var err error
	if a.cfgFile != "" {
		a.cfg, err = config.Load(a.cfgFile)
	} else {
		a.cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(a.cfg.Logging.Level)); err != nil {
		return fmt.Errorf("logging level: %w", err)
	}
	if a.verbose {
		level = slog.LevelDebug
	}
	a.log = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	return nil
}

func (a *app) openCache() (*cache.Store, error) {
	if a.cfg.Cache.Path == "" {
		return nil, nil
	}
	store, err := cache.Open(a.cfg.Cache.Path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}
	return store, nil
}

func (a *app) segment(ctx context.Context, args []string, progress bool) error {
	paths, err := discover.Expand(args, discover.Options{
		Includes: a.cfg.Discover.Includes,
		Excludes: a.cfg.Discover.Excludes,
	})
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no Python files found")
	}

	store, err := a.openCache()
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	opts := batch.Options{
		Workers:     a.cfg.WorkerCount(),
		MaxFileSize: a.cfg.Segment.MaxFileSize,
		Raw:         !a.cfg.Segment.Normalize,
		Cache:       store,
		Logger:      a.log,
	}
	if progress {
		opts.Progress = a.stderr
	}

	a.log.Debug("segmenting", "files", len(paths), "workers", opts.Workers)
	results := batch.Run(ctx, paths, opts)
	if store != nil {
		if n, err := store.Len(); err != nil {
			a.log.Warn("counting cache entries", "error", err)
		} else {
			a.log.Debug("cache", "path", a.cfg.Cache.Path, "entries", n)
		}
	}

	for _, r := range results {
		if r.Err != nil {
			_, _ = fmt.Fprintf(a.stderr, "%s: %v\n", r.Path, r.Err)
		}
	}

	if err := toon.Write(a.stdout, a.cfg.Output.Format, results); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if n := batch.Failed(results); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(results))
	}
	return nil
}
