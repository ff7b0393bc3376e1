// Package expand is the entry point for expanding extended dot notation in
// files, directories and in-memory sources.
package expand

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnoswap-labs/extdot/internal"
)

// Engine is the part of internal.Engine the processing helpers rely on.
type Engine interface {
	Run(filename string) (internal.Result, error)
	RunSource(source []byte) (internal.Result, error)
	Handles(filename string) bool
}

// New loads the configuration at configurationPath and builds an engine
// from it. A non-empty cacheDir enables the result cache, invalidated when
// the configuration file changes.
func New(configurationPath string, cacheDir string, logger *zap.Logger) (*internal.Engine, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, err
	}
	return NewFromConfig(config, configurationPath, cacheDir, logger)
}

// NewFromConfig builds an engine from an already loaded configuration.
func NewFromConfig(config Config, configurationPath string, cacheDir string, logger *zap.Logger) (*internal.Engine, error) {
	opts, err := config.EngineOptions()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	opts.Logger = logger
	opts.CacheDir = cacheDir
	if cacheDir != "" && configurationPath != "" {
		if _, err := os.Stat(configurationPath); err == nil {
			opts.CacheDependencies = []string{configurationPath}
		}
	}
	return internal.NewEngine(opts)
}

func ProcessSources(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	sources [][]byte,
	processor func(Engine, []byte) (internal.Result, error),
) ([]internal.Result, error) {
	results := make([]internal.Result, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, source := range sources {
		i, source := i, source
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := processor(engine, source)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing source", zap.Int("source", i), zap.Error(err))
				}
				return fmt.Errorf("source %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	paths []string,
	processor func(Engine, string) (internal.Result, error),
) ([]internal.Result, error) {
	var allResults []internal.Result
	for _, path := range paths {
		results, err := ProcessPath(ctx, logger, engine, path, processor)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return allResults, err
		}
		allResults = append(allResults, results...)
	}

	return allResults, nil
}

// ProcessPath expands a single file or every handled file below a
// directory. Files of a directory are processed by a bounded pool of
// workers; results keep the walk order. Files that fail are logged and
// reported together in the returned error, the other results are kept.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Engine,
	path string,
	processor func(Engine, string) (internal.Result, error),
) ([]internal.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	if !info.IsDir() {
		// explicitly named files are processed whatever their extension
		result, err := processor(engine, path)
		if err != nil {
			return nil, err
		}
		return []internal.Result{result}, nil
	}

	files, err := collectFiles(engine, path)
	if err != nil {
		return nil, err
	}

	results := make([]internal.Result, len(files))
	errs := make([]error, len(files))
	done := make([]bool, len(files))

	// limit the number of workers
	maxWorkers := runtime.NumCPU()
	sem := make(chan struct{}, maxWorkers)
	var wg sync.WaitGroup

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	var cancelled error
loop:
	for i, filePath := range files {
		if err := ctx.Err(); err != nil {
			cancelled = err
			break
		}
		select {
		case <-ctx.Done():
			cancelled = ctx.Err()
			break loop
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, fp string) {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := processor(engine, fp)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", fp), zap.Error(err))
				}
				errs[i] = fmt.Errorf("%s: %w", fp, err)
			} else {
				results[i] = result
				done[i] = true
			}
			_ = bar.Add(1)
		}(i, filePath)
	}
	wg.Wait()
	_ = bar.Finish()

	collected := make([]internal.Result, 0, len(files))
	for i := range files {
		if done[i] {
			collected = append(collected, results[i])
		}
	}

	if cancelled != nil {
		return collected, cancelled
	}
	return collected, errors.Join(errs...)
}

func collectFiles(engine Engine, root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(filePath string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && engine.Handles(filePath) {
			files = append(files, filePath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", root, err)
	}
	return files, nil
}

func ProcessFile(engine Engine, filePath string) (internal.Result, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine Engine, source []byte) (internal.Result, error) {
	return engine.RunSource(source)
}
