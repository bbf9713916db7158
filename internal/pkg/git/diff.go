package git

import (
	"path/filepath"
	"strconv"
	"strings"
)

// ChangeType represents the type of change in a diff.
type ChangeType int

const (
	ChangeTypeAdded ChangeType = iota
	ChangeTypeModified
	ChangeTypeDeleted
	ChangeTypeRenamed
)

// String returns the string representation of ChangeType.
func (c ChangeType) String() string {
	switch c {
	case ChangeTypeAdded:
		return "added"
	case ChangeTypeModified:
		return "modified"
	case ChangeTypeDeleted:
		return "deleted"
	case ChangeTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// Marker returns the one-letter manifest marker (A, M, D or R).
func (c ChangeType) Marker() string {
	switch c {
	case ChangeTypeAdded:
		return "A"
	case ChangeTypeDeleted:
		return "D"
	case ChangeTypeRenamed:
		return "R"
	default:
		return "M"
	}
}

// Hunk is one "@@" block of a file diff.
type Hunk struct {
	Header string
	Lines  []string
}

// FileDiff is one "diff --git" section of a unified diff.
type FileDiff struct {
	Path       string
	OldPath    string // For renames, the original file path
	ChangeType ChangeType
	Additions  int
	Deletions  int
	IsLockFile bool
	IsBinary   bool
	// Header holds the lines from "diff --git" up to the first hunk.
	Header []string
	Hunks  []Hunk
	// Content is the section text exactly as it appeared in the diff.
	Content string
}

// DisplayPath returns "old -> new" for renames and the path otherwise.
func (f FileDiff) DisplayPath() string {
	if f.ChangeType == ChangeTypeRenamed && f.OldPath != "" && f.OldPath != f.Path {
		return f.OldPath + " -> " + f.Path
	}
	return f.Path
}

// BodyLineCount returns the number of hunk lines, excluding hunk headers.
func (f FileDiff) BodyLineCount() int {
	n := 0
	for _, h := range f.Hunks {
		n += len(h.Lines)
	}
	return n
}

// lockFilePatterns contains file names whose diffs are noise to a reader.
var lockFilePatterns = []string{
	"package-lock.json",
	"yarn.lock",
	"pnpm-lock.yaml",
	"go.sum",
	"Cargo.lock",
	"Gemfile.lock",
	"composer.lock",
	"poetry.lock",
	"Pipfile.lock",
	"uv.lock",
}

// IsLockFile checks if a file path names a dependency lock file.
func IsLockFile(filePath string) bool {
	baseName := filepath.Base(filePath)
	for _, pattern := range lockFilePatterns {
		if baseName == pattern {
			return true
		}
	}
	return strings.HasSuffix(baseName, ".lock")
}

// ParseDiff splits a unified diff into per-file sections, in input order.
// Text before the first "diff --git" line is ignored.
func ParseDiff(raw string) []FileDiff {
	var files []FileDiff
	for _, section := range splitByFileDiff(raw) {
		files = append(files, parseFileDiff(section))
	}
	return files
}

// splitByFileDiff splits the diff at every line starting with "diff --git ".
func splitByFileDiff(raw string) []string {
	var sections []string
	start := -1
	offset := 0
	for offset < len(raw) {
		end := strings.IndexByte(raw[offset:], '\n')
		next := len(raw)
		if end >= 0 {
			next = offset + end + 1
		}
		if strings.HasPrefix(raw[offset:], "diff --git ") {
			if start >= 0 {
				sections = append(sections, raw[start:offset])
			}
			start = offset
		}
		offset = next
	}
	if start >= 0 {
		sections = append(sections, raw[start:])
	}
	return sections
}

func parseFileDiff(section string) FileDiff {
	fd := FileDiff{
		Content:    section,
		ChangeType: ChangeTypeModified,
	}

	lines := strings.Split(strings.TrimSuffix(section, "\n"), "\n")
	var current *Hunk
	for i, line := range lines {
		if current != nil {
			if strings.HasPrefix(line, "@@") {
				fd.Hunks = append(fd.Hunks, Hunk{Header: line})
				current = &fd.Hunks[len(fd.Hunks)-1]
				continue
			}
			current.Lines = append(current.Lines, line)
			switch {
			case strings.HasPrefix(line, "+"):
				fd.Additions++
			case strings.HasPrefix(line, "-"):
				fd.Deletions++
			}
			continue
		}

		if strings.HasPrefix(line, "@@") {
			fd.Hunks = append(fd.Hunks, Hunk{Header: line})
			current = &fd.Hunks[len(fd.Hunks)-1]
			continue
		}

		fd.Header = append(fd.Header, line)
		switch {
		case i == 0:
			fd.Path = extractFilePath(line)
		case strings.HasPrefix(line, "new file mode"):
			fd.ChangeType = ChangeTypeAdded
		case strings.HasPrefix(line, "deleted file mode"):
			fd.ChangeType = ChangeTypeDeleted
		case strings.HasPrefix(line, "rename from "):
			fd.OldPath = unquotePath(strings.TrimPrefix(line, "rename from "))
			fd.ChangeType = ChangeTypeRenamed
		case strings.HasPrefix(line, "rename to "):
			fd.Path = unquotePath(strings.TrimPrefix(line, "rename to "))
		case strings.HasPrefix(line, "+++ b/"), strings.HasPrefix(line, `+++ "b/`):
			// git appends a tab when the name contains a space.
			name := strings.TrimSuffix(strings.TrimPrefix(line, "+++ "), "\t")
			fd.Path = strings.TrimPrefix(unquotePath(name), "b/")
		case strings.HasPrefix(line, "Binary files"), strings.HasPrefix(line, "GIT binary patch"):
			fd.IsBinary = true
		}
	}

	fd.IsLockFile = IsLockFile(fd.Path)
	return fd
}

// extractFilePath extracts the new file path from a "diff --git a/x b/x" line.
func extractFilePath(line string) string {
	line = strings.TrimPrefix(line, "diff --git ")

	if strings.HasSuffix(line, `"`) {
		if idx := strings.LastIndex(line, ` "b/`); idx >= 0 {
			return strings.TrimPrefix(unquotePath(line[idx+1:]), "b/")
		}
	}
	if idx := strings.LastIndex(line, " b/"); idx >= 0 {
		return line[idx+len(" b/"):]
	}
	if strings.HasPrefix(line, "a/") {
		parts := strings.SplitN(line, " ", 2)
		return strings.TrimPrefix(parts[0], "a/")
	}
	return line
}

// unquotePath undoes git's C-style quoting of a path ("\"", "\\", octal
// escapes). Unquoted input is returned as is.
func unquotePath(p string) string {
	if len(p) < 2 || p[0] != '"' || p[len(p)-1] != '"' {
		return p
	}
	if s, err := strconv.Unquote(p); err == nil {
		return s
	}
	return p[1 : len(p)-1]
}
