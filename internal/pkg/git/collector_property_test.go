package git

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// changedFile describes one file touched before a collection.
type changedFile struct {
	Name    string
	Content string
	Staged  bool
	IsNew   bool
}

func genChangedFiles() gopter.Gen {
	return gen.IntRange(1, 6).FlatMap(func(v interface{}) gopter.Gen {
		n := v.(int)
		return gen.SliceOfN(n, gen.Struct(reflect.TypeOf(changedFile{}), map[string]gopter.Gen{
			"Content": gen.AlphaString(),
			"Staged":  gen.Bool(),
			"IsNew":   gen.Bool(),
		})).Map(func(files []changedFile) []changedFile {
			// Unique, filesystem-safe names.
			for i := range files {
				files[i].Name = fmt.Sprintf("file_%d.txt", i)
			}
			return files
		})
	}, reflect.TypeOf([]changedFile{}))
}

func gitCmd(dir string, args ...string) error {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git %v: %v: %s", args, err, out)
	}
	return nil
}

func TestCollectIncludesEveryChangedFile_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 15
	parameters.Rng.Seed(42)

	properties := gopter.NewProperties(parameters)

	properties.Property("every staged, modified and untracked file appears in the bundle", prop.ForAll(
		func(files []changedFile) bool {
			dir := setupRepoWithCommit(t)

			for _, f := range files {
				path := filepath.Join(dir, f.Name)
				if !f.IsNew {
					if err := os.WriteFile(path, []byte("original\n"), 0644); err != nil {
						return false
					}
					if err := gitCmd(dir, "add", f.Name); err != nil {
						t.Log(err)
						return false
					}
					if err := gitCmd(dir, "commit", "-m", "add "+f.Name); err != nil {
						t.Log(err)
						return false
					}
				}
				if err := os.WriteFile(path, []byte("changed "+f.Content+"\n"), 0644); err != nil {
					return false
				}
				if f.Staged {
					if err := gitCmd(dir, "add", f.Name); err != nil {
						t.Log(err)
						return false
					}
				}
			}

			collector, _ := newTestCollector(t, dir, 1<<20)
			bundle, err := collector.Collect(context.Background(), true)
			if err != nil {
				t.Logf("collect failed: %v", err)
				return false
			}

			seen := make(map[string]bool, len(bundle.Files))
			for _, p := range bundle.Files {
				seen[p] = true
			}
			for _, f := range files {
				if !seen[f.Name] {
					t.Logf("missing %s in %v", f.Name, bundle.Files)
					return false
				}
			}
			return true
		},
		genChangedFiles(),
	))

	properties.TestingRun(t)
}
