// Package proc adapts an external analyzer process to the engine
// interface. The process is spawned per project, spoken to over stdio
// JSON-RPC, fed the virtual file system's contents through update
// notifications, and restarted with bounded exponential backoff when it
// crashes.
package proc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dshills/langbridge/internal/engine"
	"github.com/dshills/langbridge/internal/logging"
)

// Config describes how to run the analyzer process.
type Config struct {
	// Command is the analyzer executable.
	Command string

	// Args are passed to the executable.
	Args []string

	// Env entries are appended to the inherited environment.
	Env []string

	// MaxRestarts bounds crash recovery attempts per engine instance.
	MaxRestarts int

	// InitialBackoff is the delay before the first restart attempt; it
	// doubles per attempt up to MaxBackoff.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns the default process configuration for a
// command.
func DefaultConfig(command string, args ...string) Config {
	return Config{
		Command:        command,
		Args:           args,
		MaxRestarts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

// NewFactory returns an engine.Factory that spawns one analyzer process
// per project.
func NewFactory(cfg Config, logger *log.Logger) engine.Factory {
	if logger == nil {
		logger = logging.Default()
	}
	return func(opts engine.Options, fs engine.FileSystem) (engine.Engine, error) {
		e := &Engine{cfg: cfg, opts: opts, fs: fs, logger: logger, pushed: make(map[string]string)}
		if err := e.start(); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Engine runs analysis queries against an external analyzer process.
type Engine struct {
	cfg    Config
	opts   engine.Options
	fs     engine.FileSystem
	logger *log.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	tr       *transport
	waitDone chan struct{}     // closed once the reaper's Wait returns
	pushed   map[string]string // file -> last pushed version
	restarts int
	disposed bool
}

// initializeParams is sent once per process start.
type initializeParams struct {
	Options   json.RawMessage `json:"options"`
	FileNames []string        `json:"fileNames"`
}

// updateFileParams pushes one file's content to the analyzer.
type updateFileParams struct {
	FileName string `json:"fileName"`
	Version  string `json:"version"`
	Text     string `json:"text"`
}

// fileQueryParams identifies a file.
type fileQueryParams struct {
	File string `json:"file"`
}

// offsetQueryParams identifies a position in a file.
type offsetQueryParams struct {
	File   string `json:"file"`
	Offset int    `json:"offset"`
}

// fixQueryParams identifies a span and the error codes to fix.
type fixQueryParams struct {
	File  string `json:"file"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Codes []int  `json:"codes,omitempty"`
}

// start launches the process and initializes it. Callers hold e.mu or
// have exclusive access.
func (e *Engine) start() error {
	cmd := exec.Command(e.cfg.Command, e.cfg.Args...)
	if len(e.cfg.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.cfg.Env...)
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start analyzer %s: %w", e.cfg.Command, err)
	}

	tr := newTransport(stdout, stdin, stdin)
	tr.start()

	// Reap the process and shut the transport when it exits. Wait must
	// only be called here; Dispose observes waitDone instead.
	waitDone := make(chan struct{})
	go func() {
		cmd.Wait()
		tr.close()
		close(waitDone)
	}()

	params := initializeParams{
		Options:   json.RawMessage(rawOptions(e.opts)),
		FileNames: e.fs.ListFiles(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := tr.call(ctx, "engine/initialize", params, nil); err != nil {
		tr.close()
		cmd.Process.Kill()
		return fmt.Errorf("initialize analyzer: %w", err)
	}

	e.cmd = cmd
	e.tr = tr
	e.waitDone = waitDone
	e.pushed = make(map[string]string)
	return nil
}

func rawOptions(opts engine.Options) string {
	if opts.Raw != "" {
		return opts.Raw
	}
	return "{}"
}

// ensureAlive restarts a crashed process within the restart budget.
// Callers hold e.mu.
func (e *Engine) ensureAlive() error {
	if e.disposed {
		return ErrDisposed
	}
	if e.tr != nil && !e.tr.exited() {
		return nil
	}

	backoff := e.cfg.InitialBackoff
	for e.restarts < e.cfg.MaxRestarts {
		e.restarts++
		e.logger.Warn("analyzer exited, restarting",
			logging.FieldCommand, e.cfg.Command,
			"attempt", e.restarts)
		time.Sleep(backoff)
		if backoff *= 2; backoff > e.cfg.MaxBackoff {
			backoff = e.cfg.MaxBackoff
		}
		if err := e.start(); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrRestartsExhausted, e.cfg.Command)
}

// syncFiles pushes files whose version changed since the last push.
// Callers hold e.mu.
func (e *Engine) syncFiles() error {
	for _, file := range e.fs.ListFiles() {
		version := e.fs.VersionOf(file)
		if e.pushed[file] == version {
			continue
		}
		text, ok := e.fs.SnapshotOf(file)
		if !ok {
			continue
		}
		params := updateFileParams{FileName: file, Version: version, Text: text}
		if err := e.tr.notify("engine/updateFile", params); err != nil {
			return err
		}
		e.pushed[file] = version
	}
	return nil
}

// call runs one query against the live process, synchronizing file
// contents first.
func (e *Engine) call(ctx context.Context, method string, params, result any) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.ensureAlive(); err != nil {
		return err
	}
	if err := e.syncFiles(); err != nil {
		return err
	}
	err := e.tr.call(ctx, method, params, result)
	if errors.Is(err, ErrExited) {
		// One in-place retry after a crash mid-request.
		if err = e.ensureAlive(); err != nil {
			return err
		}
		if err = e.syncFiles(); err != nil {
			return err
		}
		return e.tr.call(ctx, method, params, result)
	}
	return err
}

// Diagnostics implements engine.Engine.
func (e *Engine) Diagnostics(ctx context.Context, file string) ([]engine.Diagnostic, error) {
	var out []engine.Diagnostic
	if err := e.call(ctx, "engine/diagnostics", fileQueryParams{File: file}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Suggestions implements engine.Engine.
func (e *Engine) Suggestions(ctx context.Context, file string) ([]engine.Diagnostic, error) {
	var out []engine.Diagnostic
	if err := e.call(ctx, "engine/suggestions", fileQueryParams{File: file}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SemanticIssues implements engine.Engine.
func (e *Engine) SemanticIssues(ctx context.Context, file string) ([]engine.Diagnostic, error) {
	var out []engine.Diagnostic
	if err := e.call(ctx, "engine/semanticIssues", fileQueryParams{File: file}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// QuickInfo implements engine.Engine.
func (e *Engine) QuickInfo(ctx context.Context, file string, offset int) (*engine.QuickInfo, error) {
	var out *engine.QuickInfo
	if err := e.call(ctx, "engine/quickInfo", offsetQueryParams{File: file, Offset: offset}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Completions implements engine.Engine.
func (e *Engine) Completions(ctx context.Context, file string, offset int) (*engine.CompletionList, error) {
	var out *engine.CompletionList
	if err := e.call(ctx, "engine/completions", offsetQueryParams{File: file, Offset: offset}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// NavigationTree implements engine.Engine.
func (e *Engine) NavigationTree(ctx context.Context, file string) (*engine.NavigationTree, error) {
	var out *engine.NavigationTree
	if err := e.call(ctx, "engine/navigationTree", fileQueryParams{File: file}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Definitions implements engine.Engine.
func (e *Engine) Definitions(ctx context.Context, file string, offset int) ([]engine.DefinitionInfo, error) {
	var out []engine.DefinitionInfo
	if err := e.call(ctx, "engine/definitions", offsetQueryParams{File: file, Offset: offset}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CodeFixes implements engine.Engine.
func (e *Engine) CodeFixes(ctx context.Context, file string, start, end int, codes []int) ([]engine.CodeFixAction, error) {
	var out []engine.CodeFixAction
	params := fixQueryParams{File: file, Start: start, End: end, Codes: codes}
	if err := e.call(ctx, "engine/codeFixes", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Dispose implements engine.Engine. The process gets a shutdown
// notification, then the pipes close; a process that lingers is killed.
func (e *Engine) Dispose() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.disposed {
		return
	}
	e.disposed = true

	if e.tr != nil {
		e.tr.notify("engine/shutdown", nil)
		e.tr.close()
	}
	if e.cmd != nil && e.cmd.Process != nil {
		select {
		case <-e.waitDone:
		case <-time.After(2 * time.Second):
			e.cmd.Process.Kill()
		}
	}
}
