// Package processor shrinks raw diffs into bounded prompts for lazycommit.
package processor

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lazycommit/lazycommit/internal/pkg/git"
)

const (
	// MinBudget is the smallest budget honoured; lower budgets are raised to it.
	MinBudget = 512
	// DefaultContextLines is how many lines of each hunk survive reduction.
	DefaultContextLines = 6
)

// level is how much of a file body made it into the output, richest first.
type level int

const (
	levelFull level = iota
	levelReduced
	levelHeaders
	levelStub
	levelNone
)

// Compressor implements git.Compressor. It is stateless and safe for reuse.
type Compressor struct {
	contextLines int
}

var _ git.Compressor = (*Compressor)(nil)

// NewCompressor creates a Compressor that keeps DefaultContextLines per hunk.
func NewCompressor() *Compressor {
	return &Compressor{contextLines: DefaultContextLines}
}

// NewCompressorWithContext creates a Compressor keeping n lines per hunk.
// Negative values fall back to DefaultContextLines.
func NewCompressorWithContext(n int) *Compressor {
	if n < 0 {
		n = DefaultContextLines
	}
	return &Compressor{contextLines: n}
}

// Compress returns a manifest of every file followed by as much of each file
// body as fits in budget bytes, and whether any body was cut. The output never
// exceeds budget unless the manifest alone does; the manifest is always kept
// whole so no path is ever dropped.
func (c *Compressor) Compress(rawDiff string, budget int) (string, bool) {
	if budget < MinBudget {
		budget = MinBudget
	}
	if rawDiff == "" {
		return "", false
	}

	files := git.ParseDiff(rawDiff)
	if len(files) == 0 {
		return truncateText(rawDiff, budget)
	}

	manifest := buildManifest(files)
	if len(manifest) >= budget {
		return manifest, true
	}
	remaining := budget - len(manifest) - 1 // blank separator line

	order := make([]int, 0, len(files))
	for i, f := range files {
		if skipReason(f) == "" {
			order = append(order, i)
		}
	}
	sizes := make([]int, len(files))
	for _, i := range order {
		sizes[i] = len(c.render(files[i], levelFull))
	}
	sort.SliceStable(order, func(a, b int) bool {
		if sizes[order[a]] != sizes[order[b]] {
			return sizes[order[a]] < sizes[order[b]]
		}
		return order[a] < order[b]
	})

	bodies := make([]string, len(files))
	truncated := false
	for _, i := range order {
		for lvl := levelFull; lvl <= levelNone; lvl++ {
			body := c.render(files[i], lvl)
			if len(body) <= remaining {
				bodies[i] = body
				remaining -= len(body)
				if lvl != levelFull {
					truncated = true
				}
				break
			}
		}
	}

	var sb strings.Builder
	sb.Grow(budget)
	sb.WriteString(manifest)
	sb.WriteByte('\n')
	for _, body := range bodies {
		sb.WriteString(body)
	}
	return sb.String(), truncated
}

// skipReason names why a file body is never sent, or "" if it may be.
func skipReason(f git.FileDiff) string {
	switch {
	case f.IsLockFile:
		return "lock file"
	case f.IsBinary:
		return "binary"
	default:
		return ""
	}
}

// buildManifest renders one "[M] path (+a -d)" line per file section.
func buildManifest(files []git.FileDiff) string {
	var sb strings.Builder
	for _, f := range files {
		fmt.Fprintf(&sb, "[%s] %s (+%d -%d)", f.ChangeType.Marker(), f.DisplayPath(), f.Additions, f.Deletions)
		if reason := skipReason(f); reason != "" {
			fmt.Fprintf(&sb, " [skipped: %s]", reason)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (c *Compressor) render(f git.FileDiff, lvl level) string {
	switch lvl {
	case levelFull:
		if strings.HasSuffix(f.Content, "\n") {
			return f.Content
		}
		return f.Content + "\n"

	case levelReduced:
		lines := append([]string(nil), f.Header...)
		for _, h := range f.Hunks {
			lines = append(lines, h.Header)
			kept := h.Lines
			if len(kept) > c.contextLines {
				kept = kept[:c.contextLines]
			}
			lines = append(lines, kept...)
			if dropped := len(h.Lines) - len(kept); dropped > 0 {
				lines = append(lines, truncationLine(dropped))
			}
		}
		return joinLines(lines)

	case levelHeaders:
		lines := append([]string(nil), f.Header...)
		for _, h := range f.Hunks {
			lines = append(lines, h.Header)
		}
		if n := f.BodyLineCount(); n > 0 {
			lines = append(lines, truncationLine(n))
		}
		return joinLines(lines)

	case levelStub:
		lines := []string{f.Header[0]}
		if n := len(f.Header) - 1 + len(f.Hunks) + f.BodyLineCount(); n > 0 {
			lines = append(lines, truncationLine(n))
		}
		return joinLines(lines)

	default:
		return ""
	}
}

func truncationLine(n int) string {
	return fmt.Sprintf("... %d more lines truncated", n)
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// truncateText cuts text that carries no file sections at all.
func truncateText(text string, budget int) (string, bool) {
	if len(text) <= budget {
		return text, false
	}
	marker := "\n... truncated\n"
	return CutUTF8(text, budget-len(marker)) + marker, true
}

// CutUTF8 returns at most n bytes of s without splitting a UTF-8 sequence.
func CutUTF8(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
