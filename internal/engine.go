package internal

import (
	"crypto/md5"
	"fmt"
	"go/token"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/gnoswap-labs/extdot/internal/extdot"
	"github.com/gnoswap-labs/extdot/internal/tokens"
	tt "github.com/gnoswap-labs/extdot/internal/types"
)

// Mode selects which entry point of the expander a file is fed to.
type Mode int

const (
	// ModeSites expands only the bodies of expr!/item! invocation sites.
	ModeSites Mode = iota
	// ModeExpr treats the whole input as one expression.
	ModeExpr
	// ModeItem treats the whole input as a sequence of declarations.
	ModeItem
)

func (m Mode) String() string {
	switch m {
	case ModeSites:
		return "sites"
	case ModeExpr:
		return "expr"
	case ModeItem:
		return "item"
	default:
		return "unknown"
	}
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sites":
		return ModeSites, nil
	case "expr":
		return ModeExpr, nil
	case "item":
		return ModeItem, nil
	default:
		return ModeSites, fmt.Errorf("unknown mode %q (want sites, expr or item)", s)
	}
}

// DefaultExtensions lists the file extensions handled when none are configured.
var DefaultExtensions = []string{".rs"}

// EngineOptions configures an Engine.
type EngineOptions struct {
	extdot.Options

	Mode Mode
	// Hygienic renders rewrite-introduced names with a unique spelling.
	Hygienic bool
	// Extensions filters the files picked up by the watcher.
	Extensions []string
	// OutputExtension marks generated files, which are never handled.
	OutputExtension string

	// CacheDir enables the result cache when non-empty.
	CacheDir    string
	CacheMaxAge time.Duration
	// CacheDependencies are files (usually the configuration) whose change
	// invalidates every cached result.
	CacheDependencies []string

	Logger *zap.Logger
}

// Result is the outcome of expanding one file or source.
type Result struct {
	Filename string
	Output   []byte
	Issues   []tt.Issue
}

// Engine manages the expansion process.
type Engine struct {
	expander   *extdot.Expander
	mode       Mode
	render     tokens.RenderOptions
	extensions []string
	generated  string
	cache      *Cache
	logger     *zap.Logger

	watchMu  sync.Mutex
	watcher  *fsnotify.Watcher
	done     chan struct{}
	pending  map[string]*time.Timer
	written  map[string]string
	onResult WatchHandler
}

// NewEngine creates a new expansion engine.
func NewEngine(opts EngineOptions) (*Engine, error) {
	expander, err := extdot.New(opts.Options)
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}

	engine := &Engine{
		expander:   expander,
		mode:       opts.Mode,
		render:     tokens.RenderOptions{Unhygienic: !opts.Hygienic},
		extensions: extensions,
		generated:  opts.OutputExtension,
		logger:     logger,
	}

	if opts.CacheDir != "" {
		cache, err := NewCache(opts.CacheDir)
		if err != nil {
			return nil, err
		}
		cache.SetFingerprint(optionsFingerprint(opts))
		if opts.CacheMaxAge > 0 {
			cache.SetMaxAge(opts.CacheMaxAge)
		}
		if err := cache.SetDependencies(opts.CacheDependencies...); err != nil {
			return nil, err
		}
		engine.cache = cache
	}

	return engine, nil
}

// optionsFingerprint hashes every option that changes the rendered output.
func optionsFingerprint(opts EngineOptions) string {
	o := opts.Options
	key := fmt.Sprintf("mode=%s hygienic=%t placeholder=%q crate=%q binding=%q assign=%q terminator=%q empty=%s",
		opts.Mode, opts.Hygienic, o.Placeholder, o.Crate, o.Binding, o.Assign, o.Terminator, o.EmptyBody)
	return fmt.Sprintf("%x", md5.Sum([]byte(key)))
}

// Mode returns the entry point the engine expands with.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Handles reports whether filename has one of the configured extensions
// and is not a generated output.
func (e *Engine) Handles(filename string) bool {
	if e.generated != "" && strings.HasSuffix(filename, e.generated) {
		return false
	}
	for _, ext := range e.extensions {
		if strings.HasSuffix(filename, ext) {
			return true
		}
	}
	return false
}

// Run expands the given file. Results are served from the cache when the
// file did not change since it was last expanded.
func (e *Engine) Run(filename string) (Result, error) {
	if e.cache != nil {
		if result, ok := e.cache.Get(filename); ok {
			e.logger.Debug("cache hit", zap.String("file", filename))
			return result, nil
		}
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return Result{}, fmt.Errorf("error reading file: %w", err)
	}

	result, err := e.run(filename, content)
	if err != nil {
		return Result{}, err
	}

	if e.cache != nil {
		if err := e.cache.Set(filename, result); err != nil {
			e.logger.Warn("failed to cache result", zap.String("file", filename), zap.Error(err))
		}
	}
	return result, nil
}

// RunSource expands the given source. The result has no filename.
func (e *Engine) RunSource(source []byte) (Result, error) {
	return e.run("", source)
}

func (e *Engine) run(filename string, source []byte) (Result, error) {
	name := filename
	if name == "" {
		name = "source"
	}

	ts, err := tokens.Lex(string(source))
	if err != nil {
		return Result{}, fmt.Errorf("error lexing %s: %w", name, err)
	}

	var (
		out      []tokens.Token
		warnings []extdot.Warning
	)
	switch e.mode {
	case ModeExpr:
		var block tokens.Token
		block, warnings, err = e.expander.Expr(ts)
		out = []tokens.Token{block}
	case ModeItem:
		out, warnings, err = e.expander.Item(ts)
	default:
		out, warnings, err = e.expander.Invocations(ts)
	}
	if err != nil {
		return Result{}, fmt.Errorf("error expanding %s: %w", name, err)
	}

	output := tokens.Render(out, e.render)
	if output != "" {
		output += "\n"
	}

	return Result{
		Filename: filename,
		Output:   []byte(output),
		Issues:   e.toIssues(filename, warnings),
	}, nil
}

func (e *Engine) toIssues(filename string, warnings []extdot.Warning) []tt.Issue {
	if len(warnings) == 0 {
		return nil
	}
	severity := e.expander.Options().EmptyBody
	issues := make([]tt.Issue, 0, len(warnings))
	for _, w := range warnings {
		issues = append(issues, tt.Issue{
			Rule:     w.Rule,
			Category: "style",
			Filename: filename,
			Message:  w.Message,
			Note:     "an empty body discards the receiver and expands to `{}`",
			Start:    position(filename, w.Pos),
			End:      position(filename, w.End),
			Severity: severity,
		})
	}
	return issues
}

func position(filename string, p tokens.Pos) token.Position {
	return token.Position{
		Filename: filename,
		Offset:   p.Offset,
		Line:     p.Line,
		Column:   p.Column,
	}
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}, nil
}
