// Package batch segments many files concurrently. A failure on one file is
// recorded in its result and never stops the others.
package batch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/phobologic/funcseg/internal/cache"
	"github.com/phobologic/funcseg/internal/model"
	"github.com/phobologic/funcseg/internal/normalize"
	"github.com/phobologic/funcseg/internal/pyast"
	"github.com/phobologic/funcseg/internal/segment"
)

const defaultMaxFileSize = 1_000_000 // 1 MB

// Options configures a batch run.
type Options struct {
	Workers     int   // 0 = GOMAXPROCS
	MaxFileSize int64 // 0 = 1 MB
	// Raw skips normalization; the input is only canonicalized.
	Raw      bool
	Cache    *cache.Store // nil disables caching
	Logger   *slog.Logger // nil discards
	Progress io.Writer    // nil disables the progress bar
}

// Run segments every path and returns one result per path, in input order.
func Run(ctx context.Context, paths []string, opts Options) []model.FileResult {
	if len(paths) == 0 {
		return nil
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = defaultMaxFileSize
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}

	n, variant := normalizer(opts.Raw)
	opts.Logger.Debug("starting batch",
		"files", len(paths),
		"workers", numWorkers,
		"variant", variant,
		"rules", strings.Join(n.RuleNames(), ","),
	)

	type result struct {
		index int
		res   model.FileResult
	}

	work := make(chan int, len(paths))
	results := make(chan result, len(paths))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parser
			w := newWorker(opts)
			defer w.close()

			for idx := range work {
				results <- result{index: idx, res: w.process(ctx, paths[idx])}
			}
		}()
	}

	for i := range paths {
		work <- i
	}
	close(work)

	go func() {
		wg.Wait()
		close(results)
	}()

	var bar *progressbar.ProgressBar
	if opts.Progress != nil {
		bar = progressbar.NewOptions(len(paths),
			progressbar.OptionSetWriter(opts.Progress),
			progressbar.OptionSetDescription("Segmenting"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	// Collect results in original order
	ordered := make([]model.FileResult, len(paths))
	for r := range results {
		ordered[r.index] = r.res
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return ordered
}

type worker struct {
	opts    Options
	parser  *pyast.Parser
	seg     *segment.Segmenter
	variant string
}

// normalizer returns the rules for a run and the cache variant naming them.
func normalizer(raw bool) (*normalize.Normalizer, string) {
	if raw {
		return normalize.Identity(), "raw"
	}
	return normalize.New(), "normalized"
}

func newWorker(opts Options) *worker {
	n, variant := normalizer(opts.Raw)
	p := pyast.NewParser()
	return &worker{
		opts:    opts,
		parser:  p,
		seg:     segment.New(p, n),
		variant: variant,
	}
}

func (w *worker) close() {
	w.parser.Close()
}

func (w *worker) process(ctx context.Context, path string) model.FileResult {
	log := w.opts.Logger.With("path", path)
	res := model.FileResult{Path: path}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	info, err := os.Stat(path)
	if err != nil {
		res.Err = err
		return res
	}
	if info.IsDir() {
		res.Err = fmt.Errorf("is a directory")
		return res
	}
	if info.Size() > w.opts.MaxFileSize {
		res.Err = fmt.Errorf("skipped (>%d bytes)", w.opts.MaxFileSize)
		return res
	}

	src, err := os.ReadFile(path)
	if err != nil {
		res.Err = err
		return res
	}

	var key []byte
	if w.opts.Cache != nil {
		key = cache.Key(src, w.variant)
		segs, ok, err := w.opts.Cache.Get(key)
		if err != nil {
			log.Warn("cache lookup failed", "error", err)
		} else if ok {
			log.Debug("cache hit", "segments", len(segs))
			res.Segments, res.Cached = segs, true
			return res
		}
	}

	seq, err := w.seg.Source(ctx, src)
	if err != nil {
		res.Err = err
		return res
	}
	res.Segments = slices.Collect(seq)
	log.Debug("segmented file", "segments", len(res.Segments))

	if w.opts.Cache != nil {
		if err := w.opts.Cache.Put(key, res.Segments); err != nil {
			log.Warn("cache store failed", "error", err)
		}
	}
	return res
}

// Failed counts the results that carry an error.
func Failed(results []model.FileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
