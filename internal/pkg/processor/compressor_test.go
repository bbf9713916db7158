package processor

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fileDiff builds a modified-file section with one hunk of n added lines.
func fileDiff(path string, n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "diff --git a/%s b/%s\n", path, path)
	sb.WriteString("index 1111111..2222222 100644\n")
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)
	fmt.Fprintf(&sb, "@@ -0,0 +1,%d @@\n", n)
	for i := 0; i < n; i++ {
		fmt.Fprintf(&sb, "+line %d of %s\n", i, path)
	}
	return sb.String()
}

func TestCompress_SmallDiffKeptWhole(t *testing.T) {
	raw := fileDiff("main.go", 3)

	out, truncated := NewCompressor().Compress(raw, 4096)

	assert.False(t, truncated)
	assert.True(t, strings.HasPrefix(out, "[M] main.go (+3 -0)\n\n"))
	assert.Contains(t, out, raw)
}

func TestCompress_EmptyInput(t *testing.T) {
	out, truncated := NewCompressor().Compress("", 4096)

	assert.Empty(t, out)
	assert.False(t, truncated)
}

func TestCompress_RaisesBudgetToMinimum(t *testing.T) {
	raw := fileDiff("big.go", 200)

	out, truncated := NewCompressor().Compress(raw, 10)

	assert.True(t, truncated)
	assert.LessOrEqual(t, len(out), MinBudget)
	assert.Contains(t, out, "big.go")
}

func TestCompress_ReducesLargeFileToContextLines(t *testing.T) {
	raw := fileDiff("small.go", 2) + fileDiff("large.go", 400)

	out, truncated := NewCompressor().Compress(raw, 1500)

	require.True(t, truncated)
	assert.LessOrEqual(t, len(out), 1500)
	assert.Contains(t, out, fileDiff("small.go", 2), "smallest file is kept in full")
	assert.Contains(t, out, "@@ -0,0 +1,400 @@")
	assert.Contains(t, out, "+line 5 of large.go")
	assert.NotContains(t, out, "+line 6 of large.go")
	assert.Contains(t, out, "... 394 more lines truncated")
}

func TestCompress_FallsBackToHeadersAndStubs(t *testing.T) {
	var raw strings.Builder
	for i := 0; i < 12; i++ {
		raw.WriteString(fileDiff(fmt.Sprintf("pkg/file%02d.go", i), 50))
	}

	out, truncated := NewCompressor().Compress(raw.String(), 1200)

	require.True(t, truncated)
	assert.LessOrEqual(t, len(out), 1200)
	for i := 0; i < 12; i++ {
		assert.Contains(t, out, fmt.Sprintf("pkg/file%02d.go", i))
	}
	assert.Contains(t, out, "more lines truncated")
}

func TestCompress_BodiesKeepOriginalOrder(t *testing.T) {
	raw := fileDiff("b_large.go", 30) + fileDiff("a_small.go", 1)

	out, truncated := NewCompressor().Compress(raw, 8192)

	require.False(t, truncated)
	body := out[strings.Index(out, "\n\n")+2:]
	assert.Less(t, strings.Index(body, "b_large.go"), strings.Index(body, "a_small.go"))
}

func TestCompress_SkipsLockAndBinaryBodies(t *testing.T) {
	binary := "diff --git a/logo.png b/logo.png\n" +
		"new file mode 100644\n" +
		"index 0000000..3f4e2a1\n" +
		"Binary files /dev/null and b/logo.png differ\n"
	raw := fileDiff("go.sum", 20) + binary + fileDiff("main.go", 1)

	out, truncated := NewCompressor().Compress(raw, 8192)

	assert.False(t, truncated)
	assert.Contains(t, out, "[M] go.sum (+20 -0) [skipped: lock file]\n")
	assert.Contains(t, out, "[A] logo.png (+0 -0) [skipped: binary]\n")
	assert.NotContains(t, out, "+line 0 of go.sum")
	assert.NotContains(t, out, "Binary files")
	assert.Contains(t, out, "+line 0 of main.go")
}

func TestCompress_RenameManifest(t *testing.T) {
	raw := "diff --git a/old.go b/new.go\n" +
		"similarity index 100%\n" +
		"rename from old.go\n" +
		"rename to new.go\n"

	out, _ := NewCompressor().Compress(raw, 1024)

	assert.Contains(t, out, "[R] old.go -> new.go (+0 -0)\n")
}

func TestCompress_ManifestLargerThanBudget(t *testing.T) {
	var raw strings.Builder
	for i := 0; i < 40; i++ {
		raw.WriteString(fileDiff(fmt.Sprintf("a/very/deeply/nested/directory/structure/file_number_%03d.go", i), 1))
	}

	out, truncated := NewCompressor().Compress(raw.String(), MinBudget)

	assert.True(t, truncated)
	assert.Greater(t, len(out), MinBudget)
	assert.Equal(t, 40, strings.Count(out, "\n"), "only the manifest is emitted")
	assert.NotContains(t, out, "diff --git")
}

func TestCompress_TextWithoutFileSections(t *testing.T) {
	text := strings.Repeat("x", 2000)

	out, truncated := NewCompressor().Compress(text, 1000)

	assert.True(t, truncated)
	assert.Len(t, out, 1000)
}

func TestCompress_TextCutKeepsRunesWhole(t *testing.T) {
	text := strings.Repeat("é", 1500)

	out, truncated := NewCompressor().Compress(text, 1000)

	assert.True(t, truncated)
	assert.True(t, utf8.ValidString(out), "cut must not split a rune")
	assert.LessOrEqual(t, len(out), 1000)
	assert.True(t, strings.HasSuffix(out, "\n... truncated\n"))
}

func TestCutUTF8(t *testing.T) {
	assert.Equal(t, "ab", CutUTF8("abc", 2))
	assert.Equal(t, "abc", CutUTF8("abc", 10))
	assert.Equal(t, "a", CutUTF8("aé", 2), "backs off the leading byte of é")
	assert.Equal(t, "aé", CutUTF8("aéb", 3))
	assert.Equal(t, "", CutUTF8("日本", 2))
	assert.Equal(t, "", CutUTF8("abc", 0))
}

func TestNewCompressorWithContext(t *testing.T) {
	raw := fileDiff("small.go", 1) + fileDiff("large.go", 300)

	out, _ := NewCompressorWithContext(2).Compress(raw, 1200)

	assert.Contains(t, out, "+line 1 of large.go")
	assert.NotContains(t, out, "+line 2 of large.go")
	assert.Contains(t, out, "... 298 more lines truncated")
	assert.Equal(t, DefaultContextLines, NewCompressorWithContext(-1).contextLines)
}
