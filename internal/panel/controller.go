// Package panel keeps the displayed checklist in step with the markdown file
// and the settings.
//
// A Controller owns the current line buffer and its parsed document as one
// generation-tagged snapshot. File reads and writes run as tea.Cmds; their
// results come back through Update, one message at a time, and any result
// whose generation is no longer current is dropped. A Controller is not safe
// for concurrent use: call it only from the bubbletea update loop.
package panel

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/magdy/fawkes/mdpanel/internal/checklist"
	"github.com/magdy/fawkes/mdpanel/internal/fileio"
	"github.com/magdy/fawkes/mdpanel/internal/settings"
	"github.com/magdy/fawkes/mdpanel/internal/view"
)

const defaultIOTimeout = 10 * time.Second

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateRendered
	StateWriting
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateRendered:
		return "rendered"
	case StateWriting:
		return "writing"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

type loadedMsg struct {
	generation uint64
	path       string
	data       []byte
	err        error
}

type writtenMsg struct {
	generation uint64
	path       string
	err        error
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// WithFS replaces the file system used for reads and writes.
func WithFS(fsys fileio.FS) Option {
	return func(c *Controller) {
		c.fs = fsys
	}
}

// WithIOTimeout bounds each read and write.
func WithIOTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.ioTimeout = d
	}
}

// Controller drives load → parse → project → render and the toggle write-back.
type Controller struct {
	store     settings.Store
	fs        fileio.FS
	logger    *slog.Logger
	ioTimeout time.Duration

	settings      settings.Settings
	gen           uint64
	state         State
	snap          checklist.Snapshot
	nodes         []view.Node
	err           error
	reloadPending bool
}

// New creates a controller reading settings from store. Call Start to load.
func New(store settings.Store, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		fs:        fileio.OS{},
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ioTimeout: defaultIOTimeout,
		settings:  settings.Default(),
		nodes:     view.Placeholder(view.MsgNoFile),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start performs the initial settings read and load.
func (c *Controller) Start() tea.Cmd {
	return c.SettingsChanged()
}

// SettingsChanged re-reads all settings and reloads. Any load or write still
// in flight for earlier settings is ignored when it completes.
func (c *Controller) SettingsChanged() tea.Cmd {
	s, err := c.store.Settings()
	if err != nil {
		c.logger.Warn("reading settings failed, using defaults", "error", err)
	}
	c.settings = s
	c.reloadPending = false
	if !s.Configured() {
		c.gen++
		c.state = StateIdle
		c.snap = checklist.Snapshot{}
		c.nodes = view.Placeholder(view.MsgNoFile)
		c.err = err
		c.logger.Info("no file configured", "generation", c.gen)
		return nil
	}
	c.err = err
	return c.beginLoad()
}

// Reload re-reads the file with the current settings. During a write the
// reload is deferred until the write has settled.
func (c *Controller) Reload() tea.Cmd {
	switch c.state {
	case StateIdle:
		return nil
	case StateWriting:
		c.reloadPending = true
		return nil
	}
	return c.beginLoad()
}

// Activate toggles it, which must come from the snapshot tagged gen. It is a
// no-op unless the controller is showing rendered content.
func (c *Controller) Activate(gen uint64, it checklist.Item) tea.Cmd {
	if c.state != StateRendered {
		c.logger.Debug("activation ignored", "state", c.state, "line", it.Line)
		return nil
	}
	if gen != c.snap.Generation {
		c.logger.Warn("activation from stale snapshot", "generation", gen, "current", c.snap.Generation)
		c.err = fmt.Errorf("line %d: %w", it.Line+1, checklist.ErrStaleLineReference)
		return c.beginLoad()
	}
	next, err := c.snap.Toggle(it)
	if err != nil {
		c.logger.Warn("toggle rejected, reloading", "line", it.Line, "error", err)
		c.err = err
		return c.beginLoad()
	}
	c.state = StateWriting
	c.err = nil
	return c.write(next)
}

// Update handles the results of commands issued by the controller. Other
// messages are ignored.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case loadedMsg:
		return c.handleLoaded(msg)
	case writtenMsg:
		return c.handleWritten(msg)
	}
	return nil
}

func (c *Controller) beginLoad() tea.Cmd {
	c.gen++
	c.state = StateLoading
	c.reloadPending = false
	gen, path := c.gen, c.settings.FilePath
	fsys, timeout := c.fs, c.ioTimeout
	c.logger.Debug("loading", "path", path, "generation", gen)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		data, err := fsys.ReadAll(ctx, path)
		return loadedMsg{generation: gen, path: path, data: data, err: err}
	}
}

func (c *Controller) write(b *checklist.Buffer) tea.Cmd {
	gen, path := c.gen, c.settings.FilePath
	fsys, timeout := c.fs, c.ioTimeout
	data := b.Bytes()
	c.logger.Debug("writing", "path", path, "generation", gen, "bytes", len(data))
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return writtenMsg{generation: gen, path: path, err: fsys.ReplaceAll(ctx, path, data)}
	}
}

func (c *Controller) handleLoaded(msg loadedMsg) tea.Cmd {
	if msg.generation != c.gen {
		c.logger.Debug("discarding stale load", "generation", msg.generation, "current", c.gen)
		return nil
	}
	if msg.err != nil {
		c.fail(msg.err)
		return nil
	}
	buf, err := checklist.NewBuffer(msg.data)
	if err != nil {
		c.fail(fmt.Errorf("decode %s: %w", msg.path, err))
		return nil
	}
	c.snap = checklist.NewSnapshot(msg.generation, buf)
	c.render()
	c.state = StateRendered
	c.err = nil
	c.logger.Info("rendered", "path", msg.path, "generation", msg.generation, "lines", buf.Len(), "nodes", len(c.nodes))
	return nil
}

func (c *Controller) handleWritten(msg writtenMsg) tea.Cmd {
	if msg.generation != c.gen {
		c.logger.Debug("discarding stale write result", "generation", msg.generation, "current", c.gen, "error", msg.err)
		return nil
	}
	if msg.err != nil {
		// The snapshot and nodes were never replaced, so the display
		// still shows the pre-toggle state.
		c.logger.Warn("write failed", "path", msg.path, "error", msg.err)
		c.state = StateRendered
		c.err = fmt.Errorf("saving %s: %w", msg.path, msg.err)
		if c.reloadPending {
			return c.beginLoad()
		}
		return nil
	}
	c.logger.Info("saved", "path", msg.path, "generation", msg.generation)
	return c.beginLoad()
}

func (c *Controller) fail(err error) {
	c.logger.Warn("load failed", "path", c.settings.FilePath, "error", err)
	c.state = StateFailed
	c.err = err
	c.snap = checklist.Snapshot{}
	c.nodes = view.Placeholder(view.MsgLoadError + ": " + Describe(err))
}

func (c *Controller) render() {
	nodes := view.Project(c.snap, c.settings)
	for i := range nodes {
		if nodes[i].Kind != view.KindCheckbox {
			continue
		}
		gen, it := nodes[i].Generation, nodes[i].Item
		nodes[i].OnActivate = func() tea.Cmd {
			return c.Activate(gen, it)
		}
	}
	c.nodes = nodes
}

// Nodes returns the rows to display. It is never empty.
func (c *Controller) Nodes() []view.Node {
	return c.nodes
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Err returns the most recent failure, or nil.
func (c *Controller) Err() error {
	return c.err
}

// Settings returns the settings the current view was built from.
func (c *Controller) Settings() settings.Settings {
	return c.settings
}

// Generation returns the generation of the most recently issued load.
func (c *Controller) Generation() uint64 {
	return c.gen
}

// Snapshot returns the buffer and document currently displayed.
func (c *Controller) Snapshot() checklist.Snapshot {
	return c.snap
}

// Stats counts open and completed items in the current document.
func (c *Controller) Stats() checklist.Stats {
	return c.snap.Document.Stats()
}
