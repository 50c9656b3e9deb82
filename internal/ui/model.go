// Package ui is the terminal menu that hosts a panel.Controller.
package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"

	"github.com/magdy/fawkes/mdpanel/internal/panel"
	"github.com/magdy/fawkes/mdpanel/internal/settings"
	"github.com/magdy/fawkes/mdpanel/internal/view"
	"github.com/magdy/fawkes/mdpanel/internal/watcher"
)

const (
	defaultWindowWidth = 80
	headerLines        = 2
	// cursor marker plus spacing
	rowPrefixWidth = 3
)

type settingsChangedMsg struct{}

type fileChangedMsg struct{}

type statusMsg string

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(fn func(string) error) Option {
	return func(m *Model) {
		if fn != nil {
			m.copy = fn
		}
	}
}

// WithWatcherOptions passes options to the watcher of the displayed file.
func WithWatcherOptions(opts ...watcher.Option) Option {
	return func(m *Model) {
		m.watchOpts = append(m.watchOpts, opts...)
	}
}

// WithoutFileWatch disables reloading on external edits of the displayed file.
func WithoutFileWatch() Option {
	return func(m *Model) {
		m.noWatch = true
	}
}

// Model is the bubbletea model for the panel menu.
type Model struct {
	panel  *panel.Controller
	logger *slog.Logger
	keys   keyMap
	help   help.Model
	copy   func(string) error

	cursor int
	offset int
	width  int
	height int
	status string

	settingsCh  chan struct{}
	fileCh      chan struct{}
	done        chan struct{}
	closeOnce   *sync.Once
	sub         settings.Subscription
	watch       *watcher.Watcher
	watchedPath string
	watchOpts   []watcher.Option
	noWatch     bool
}

// New builds the menu over c. The model subscribes to store so edits to the
// settings reach the controller.
func New(c *panel.Controller, store settings.Store, opts ...Option) Model {
	m := Model{
		panel:      c,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		keys:       keys,
		help:       help.New(),
		copy:       clipboard.WriteAll,
		width:      defaultWindowWidth,
		settingsCh: make(chan struct{}, 1),
		fileCh:     make(chan struct{}, 1),
		done:       make(chan struct{}),
		closeOnce:  new(sync.Once),
	}
	for _, opt := range opts {
		opt(&m)
	}
	settingsCh := m.settingsCh
	m.sub = store.Subscribe(func() { signal(settingsCh) })
	return m
}

// signal records a pending notification without blocking. Bursts collapse
// into one message.
func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// waitFor delivers msg once ch is signalled. It yields nil after Close.
func (m Model) waitFor(ch <-chan struct{}, msg tea.Msg) tea.Cmd {
	done := m.done
	return func() tea.Msg {
		select {
		case <-ch:
			return msg
		case <-done:
			return nil
		}
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.panel.Start(),
		m.waitFor(m.settingsCh, settingsChangedMsg{}),
		m.waitFor(m.fileCh, fileChangedMsg{}),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.logger.Debug("WindowSizeMsg received", "width", msg.Width, "height", msg.Height)
		if msg.Width > 0 {
			m.width = msg.Width
			m.help.Width = msg.Width
		}
		if msg.Height > 0 {
			m.height = msg.Height
		}
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		cmds = append(cmds, m.handleKey(msg))
	case settingsChangedMsg:
		m.logger.Info("settings changed")
		m.status = ""
		cmds = append(cmds, m.panel.SettingsChanged(), m.waitFor(m.settingsCh, settingsChangedMsg{}))
	case fileChangedMsg:
		m.logger.Info("file changed on disk", "path", m.watchedPath)
		cmds = append(cmds, m.panel.Reload(), m.waitFor(m.fileCh, fileChangedMsg{}))
	case statusMsg:
		m.status = string(msg)
	default:
		cmds = append(cmds, m.panel.Update(msg))
	}
	m.syncWatch()
	m.clampCursor()
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	nodes := m.panel.Nodes()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.cursor--
	case key.Matches(msg, m.keys.Down):
		m.cursor++
	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(nodes) - 1
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(nodes) && nodes[m.cursor].Selectable() {
			m.status = ""
			return nodes[m.cursor].OnActivate()
		}
	case key.Matches(msg, m.keys.Reload):
		m.status = "reloading"
		return m.panel.Reload()
	case key.Matches(msg, m.keys.Copy):
		if m.cursor < len(nodes) {
			return m.copyCmd(nodes[m.cursor].Label)
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return nil
}

func (m Model) copyCmd(text string) tea.Cmd {
	copyFn := m.copy
	logger := m.logger
	return func() tea.Msg {
		if err := copyFn(text); err != nil {
			logger.Warn("clipboard write failed", "error", err)
			return statusMsg("copy failed")
		}
		return statusMsg("copied")
	}
}

// syncWatch keeps the file watcher pointed at the displayed file.
func (m *Model) syncWatch() {
	if m.noWatch {
		return
	}
	path := m.panel.Settings().FilePath
	if m.panel.State() == panel.StateIdle {
		path = ""
	}
	if path == m.watchedPath {
		return
	}
	m.stopWatch()
	m.watchedPath = path
	if path == "" {
		return
	}
	fileCh := m.fileCh
	logger := m.logger
	opts := append([]watcher.Option{
		watcher.WithOnChange(func() { signal(fileCh) }),
		watcher.WithOnError(func(err error) {
			logger.Warn("file watch error", "path", path, "error", err)
		}),
	}, m.watchOpts...)
	w, err := watcher.New(path, opts...)
	if err != nil {
		logger.Warn("file watch unavailable", "path", path, "error", err)
		return
	}
	if err := w.Start(context.Background()); err != nil {
		logger.Warn("file watch unavailable", "path", path, "error", err)
		return
	}
	logger.Info("watching file", "path", w.Path(), "polling", w.IsPolling())
	m.watch = w
}

func (m *Model) stopWatch() {
	if m.watch != nil {
		m.watch.Stop()
		m.watch = nil
	}
}

// Close releases the settings subscription, the file watcher and any
// pending notification waiters. It is safe to call more than once.
func (m Model) Close() {
	m.closeOnce.Do(func() { close(m.done) })
	if m.sub != nil {
		m.sub.Cancel()
	}
	if m.watch != nil {
		m.watch.Stop()
	}
}

// Cursor returns the index of the highlighted row.
func (m Model) Cursor() int {
	return m.cursor
}

func (m *Model) clampCursor() {
	n := len(m.panel.Nodes())
	if n == 0 || m.cursor < 0 {
		m.cursor = 0
	} else if m.cursor >= n {
		m.cursor = n - 1
	}
	rows := m.listHeight()
	if rows <= 0 {
		m.offset = 0
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset > 0 && m.offset+rows > n {
		m.offset = max(0, n-rows)
	}
}

// listHeight is the number of rows that fit between header and footer, or
// zero when the window height is unknown.
func (m Model) listHeight() int {
	if m.height <= 0 {
		return 0
	}
	footer := strings.Count(m.renderFooter(), "\n")
	return max(1, m.height-headerLines-footer)
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	nodes := m.panel.Nodes()
	start, end := 0, len(nodes)
	if rows := m.listHeight(); rows > 0 {
		start = min(m.offset, len(nodes))
		end = min(start+rows, len(nodes))
	}
	placeholder := isPlaceholder(nodes)
	for i := start; i < end; i++ {
		b.WriteString(m.renderRow(nodes[i], i, placeholder))
	}
	b.WriteString(m.renderFooter())
	return m.padViewToWindow(b.String())
}

func (m Model) renderHeader() string {
	path := m.panel.Settings().FilePath
	if path == "" {
		return "mdpanel\n\n"
	}
	header := "mdpanel · " + filepath.Base(path)
	switch m.panel.State() {
	case panel.StateLoading:
		header += " (loading)"
	case panel.StateWriting:
		header += " (saving)"
	}
	return header + "\n\n"
}

func (m Model) renderRow(n view.Node, index int, placeholder bool) string {
	var body string
	switch n.Kind {
	case view.KindCheckbox:
		body = "[ ] " + n.Label
		if n.Checked {
			body = "[x] " + n.Label
		}
	default:
		body = n.Label
	}
	body = runewidth.Truncate(body, max(1, m.width-rowPrefixWidth), "…")

	if index == m.cursor {
		return cursorStyle.Render(fmt.Sprintf(">  %s", body)) + "\n"
	}
	switch {
	case placeholder:
		body = placeholderStyle.Render(body)
	case n.Kind == view.KindSeparator:
		body = sectionStyle.Render(body)
	case n.Kind == view.KindCheckbox && n.Checked:
		body = doneStyle.Render(body)
	}
	return "   " + body + "\n"
}

func (m Model) renderFooter() string {
	status := m.help.View(m.keys)
	switch m.panel.State() {
	case panel.StateRendered, panel.StateWriting:
		st := m.panel.Stats()
		status += fmt.Sprintf("\n%d open · %d completed", st.Open, st.Completed)
		if m.status != "" {
			status += " · " + m.status
		}
	default:
		if m.status != "" {
			status += "\n" + m.status
		}
	}
	if err := m.panel.Err(); err != nil {
		status += "\n" + errorStyle.Render("Error: "+err.Error())
	}
	return "\n" + statusStyle.Render(status) + "\n"
}

func (m Model) padViewToWindow(v string) string {
	if m.height <= 0 {
		return v
	}
	lines := strings.Count(v, "\n")
	if !strings.HasSuffix(v, "\n") {
		lines++
	}
	if lines >= m.height {
		return v
	}
	return v + strings.Repeat("\n", m.height-lines)
}

func isPlaceholder(nodes []view.Node) bool {
	if len(nodes) != 1 || nodes[0].Kind != view.KindText {
		return false
	}
	label := nodes[0].Label
	return label == view.MsgNoFile ||
		label == view.MsgEmptyRange ||
		label == view.MsgNoItems ||
		strings.HasPrefix(label, view.MsgLoadError)
}
