package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lazycommit/lazycommit/internal/pkg/message"
)

// PanelTitle is the heading of the message panel.
const PanelTitle = "Generated Commit Message"

// TypeStyle is how one commit type is drawn.
type TypeStyle struct {
	Icon  string
	Color lipgloss.Color
	Label string
}

var typeStyles = map[string]TypeStyle{
	"feat":     {Icon: "✨", Color: lipgloss.Color("10"), Label: "Feature"},
	"fix":      {Icon: "🐛", Color: lipgloss.Color("9"), Label: "Bug Fix"},
	"docs":     {Icon: "📚", Color: lipgloss.Color("12"), Label: "Documentation"},
	"style":    {Icon: "💄", Color: lipgloss.Color("13"), Label: "Style"},
	"refactor": {Icon: "♻️", Color: lipgloss.Color("14"), Label: "Refactor"},
	"perf":     {Icon: "⚡", Color: lipgloss.Color("11"), Label: "Performance"},
	"test":     {Icon: "🧪", Color: lipgloss.Color("15"), Label: "Test"},
	"build":    {Icon: "📦", Color: lipgloss.Color("214"), Label: "Build"},
	"ci":       {Icon: "🔧", Color: lipgloss.Color("129"), Label: "CI"},
	"chore":    {Icon: "🔨", Color: lipgloss.Color("245"), Label: "Chore"},
	"revert":   {Icon: "⏪", Color: lipgloss.Color("1"), Label: "Revert"},
}

// StyleFor returns the style of commitType, or a neutral one for unknown types.
func StyleFor(commitType string) TypeStyle {
	if s, ok := typeStyles[strings.ToLower(commitType)]; ok {
		return s
	}
	return TypeStyle{Icon: "📝", Color: lipgloss.Color("7"), Label: commitType}
}

// plainRenderer never emits colour codes.
var plainRenderer = lipgloss.NewRenderer(io.Discard)

// Render returns the message as passed to git and as shown in the terminal.
// It has no side effects.
func Render(msg *message.CommitMessage, colorEnabled bool) (gitString, display string) {
	gitString = msg.GitString()

	r := plainRenderer
	if colorEnabled {
		r = lipgloss.DefaultRenderer()
	}
	style := StyleFor(msg.Type)

	title := r.NewStyle().Bold(true).Render("📋 " + PanelTitle)
	header := r.NewStyle().Bold(true).Foreground(style.Color).Render(style.Icon+" "+msg.Type) +
		r.NewStyle().Bold(true).Render(strings.TrimPrefix(msg.Header(), msg.Type))

	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n\n")
	sb.WriteString(header)
	if msg.HasBody() {
		sb.WriteString("\n\n")
		sb.WriteString(r.NewStyle().Faint(true).Render(msg.Body))
	}

	panel := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(style.Color).
		Padding(1, 2)

	return gitString, panel.Render(sb.String())
}
