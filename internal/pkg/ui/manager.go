// Package ui renders lazycommit output for terminals and pipes.
package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/lazycommit/lazycommit/internal/pkg/message"
)

// Spinner provides loading animation functionality.
type Spinner interface {
	Start()
	Stop()
	UpdateText(text string)
}

// Manager defines the interface for UI operations.
type Manager interface {
	ShowSpinner(text string) Spinner
	DisplayMessage(msg *message.CommitMessage)
	CopyToClipboard(text string) error
	ShowWarning(text string)
	ShowSuccess(text string)
}

// IsTerminal reports whether f is an interactive terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewManager returns the styled manager when stdout is a terminal and the
// plain one otherwise.
func NewManager(colorEnabled bool) Manager {
	if IsTerminal(os.Stdout) {
		return NewDefaultManager(os.Stdout, os.Stderr, colorEnabled)
	}
	return NewPlainManager(os.Stdout, os.Stderr)
}

// styles holds the lipgloss styles for status lines.
type styles struct {
	success lipgloss.Style
	warning lipgloss.Style
}

func newStyles(colorEnabled bool) styles {
	if !colorEnabled {
		return styles{
			success: plainRenderer.NewStyle(),
			warning: plainRenderer.NewStyle(),
		}
	}
	return styles{
		success: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	}
}

// DefaultManager draws panels and a spinner for interactive terminals.
type DefaultManager struct {
	out          io.Writer
	errOut       io.Writer
	colorEnabled bool
	styles       styles
	clipboard    Clipboard
}

// NewDefaultManager creates a DefaultManager.
func NewDefaultManager(out, errOut io.Writer, colorEnabled bool) *DefaultManager {
	return &DefaultManager{
		out:          out,
		errOut:       errOut,
		colorEnabled: colorEnabled,
		styles:       newStyles(colorEnabled),
		clipboard:    SystemClipboard{},
	}
}

// SetClipboard replaces the clipboard backend.
func (m *DefaultManager) SetClipboard(c Clipboard) {
	m.clipboard = c
}

// ShowSpinner creates a spinner drawn on stderr.
func (m *DefaultManager) ShowSpinner(text string) Spinner {
	return newBubbleSpinner(text, m.errOut)
}

// DisplayMessage prints the message panel.
func (m *DefaultManager) DisplayMessage(msg *message.CommitMessage) {
	_, display := Render(msg, m.colorEnabled)
	fmt.Fprintln(m.out, display)
}

// CopyToClipboard copies text to the system clipboard.
func (m *DefaultManager) CopyToClipboard(text string) error {
	return m.clipboard.WriteAll(text)
}

// ShowWarning prints a warning to stderr.
func (m *DefaultManager) ShowWarning(text string) {
	fmt.Fprintln(m.errOut, m.styles.warning.Render("Warning: "+text))
}

// ShowSuccess prints a success line.
func (m *DefaultManager) ShowSuccess(text string) {
	fmt.Fprintln(m.out, m.styles.success.Render("✔ "+text))
}

// PlainManager writes unstyled text, for pipes and CI logs.
type PlainManager struct {
	out       io.Writer
	errOut    io.Writer
	clipboard Clipboard
}

// NewPlainManager creates a PlainManager.
func NewPlainManager(out, errOut io.Writer) *PlainManager {
	return &PlainManager{out: out, errOut: errOut, clipboard: SystemClipboard{}}
}

// SetClipboard replaces the clipboard backend.
func (m *PlainManager) SetClipboard(c Clipboard) {
	m.clipboard = c
}

// ShowSpinner returns a spinner that draws nothing.
func (m *PlainManager) ShowSpinner(string) Spinner {
	return noopSpinner{}
}

// DisplayMessage prints the git-ready message.
func (m *PlainManager) DisplayMessage(msg *message.CommitMessage) {
	gitString, _ := Render(msg, false)
	fmt.Fprintln(m.out, gitString)
}

// CopyToClipboard copies text to the system clipboard.
func (m *PlainManager) CopyToClipboard(text string) error {
	return m.clipboard.WriteAll(text)
}

// ShowWarning prints a warning to stderr.
func (m *PlainManager) ShowWarning(text string) {
	fmt.Fprintln(m.errOut, "Warning: "+text)
}

// ShowSuccess prints a status line to stderr so stdout carries only the message.
func (m *PlainManager) ShowSuccess(text string) {
	fmt.Fprintln(m.errOut, text)
}

// bubbleSpinner implements Spinner using Bubble Tea.
type bubbleSpinner struct {
	text    string
	out     io.Writer
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
}

// spinnerModel is the Bubble Tea model for the spinner.
type spinnerModel struct {
	spinner  spinner.Model
	text     string
	quitting bool
}

// spinnerTextMsg updates the spinner text from outside.
type spinnerTextMsg struct {
	text string
}

// spinnerQuitMsg signals the spinner to quit.
type spinnerQuitMsg struct{}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerTextMsg:
		m.text = msg.text
		return m, nil
	case spinnerQuitMsg:
		m.quitting = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.quitting {
		return ""
	}
	return fmt.Sprintf("%s %s", m.spinner.View(), m.text)
}

func newBubbleSpinner(text string, out io.Writer) *bubbleSpinner {
	return &bubbleSpinner{text: text, out: out}
}

func (s *bubbleSpinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.program != nil {
		return
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	s.program = tea.NewProgram(
		spinnerModel{spinner: sp, text: s.text},
		tea.WithOutput(s.out),
		tea.WithInput(nil),
		// Signals belong to the run context, not the spinner.
		tea.WithoutSignalHandler(),
	)
	s.done = make(chan struct{})
	go func(p *tea.Program, done chan struct{}) {
		defer close(done)
		_, _ = p.Run()
	}(s.program, s.done)
}

// Stop quits the program and waits until it has cleared its line.
func (s *bubbleSpinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.program == nil {
		return
	}

	s.program.Send(spinnerQuitMsg{})
	<-s.done
	s.program = nil
}

func (s *bubbleSpinner) UpdateText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	if s.program != nil {
		s.program.Send(spinnerTextMsg{text: text})
	}
}

// noopSpinner is a no-op implementation of Spinner.
type noopSpinner struct{}

func (noopSpinner) Start()            {}
func (noopSpinner) Stop()             {}
func (noopSpinner) UpdateText(string) {}
