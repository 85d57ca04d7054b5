package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/saeedalam/dramarec/internal/config"
	"github.com/saeedalam/dramarec/internal/recommend"
	"github.com/saeedalam/dramarec/internal/storage"
	"github.com/saeedalam/dramarec/internal/worker"
	"github.com/saeedalam/dramarec/pkg/types"
)

const testDataset = `Title,Genres,Mood Tags,Summary,Main Leads,Year,Personal rating (out of 10)
2gether,"Romance, Comedy, Youth","Sweet, Fluffy",A student fakes a relationship with a guitarist.,"Bright, Win",2020,9
Still 2gether,"Romance, Comedy",Sweet,The couple spends summer break apart.,"Bright, Win",2020,8
KinnPorsche,"Action, Crime, Romance","Dark, Intense",A bodyguard is drawn into a mafia family.,"Mile, Apo",2022,9
Bad Buddy,"Romance, Comedy, Youth","Funny, Sweet",Rival students fall for each other.,"Ohm, Nanon",2021,10
`

// resetFlags returns every flag to its default so commands can be executed
// repeatedly in one process.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	cfg = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func setupDataset(t *testing.T) (string, string) {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("DRAMAREC_CONFIG", "")
	t.Setenv("DRAMAREC_INDEX_DIR", filepath.Join(dir, "index"))
	t.Setenv("DRAMAREC_LOGGING__LEVEL", "error")

	path := filepath.Join(dir, "dramas.csv")
	if err := os.WriteFile(path, []byte(testDataset), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path, filepath.Join(dir, "index")
}

func TestRecommendCommand(t *testing.T) {
	dataset, _ := setupDataset(t)

	out, err := executeCommand(t, "recommend", "2gether", "-n", "2", "--dataset", dataset)
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}
	if !strings.Contains(out, "Because you liked 2gether") {
		t.Errorf("Expected subject line, got:\n%s", out)
	}
	if !strings.Contains(out, " 1. Still 2gether") {
		t.Errorf("Expected sequel first, got:\n%s", out)
	}
	if !strings.Contains(out, "❤ Romance") {
		t.Errorf("Expected decorated genres, got:\n%s", out)
	}
	if strings.Contains(out, " 3. ") {
		t.Errorf("Expected at most 2 results, got:\n%s", out)
	}
}

func TestRecommendCommandJSON(t *testing.T) {
	dataset, _ := setupDataset(t)

	out, err := executeCommand(t, "recommend", "bad budy", "--json", "--dataset", dataset)
	if err != nil {
		t.Fatalf("recommend failed: %v", err)
	}

	var result types.RecommendationResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Expected JSON output, got %q: %v", out, err)
	}
	if result.Subject.Title != "Bad Buddy" || result.Method != types.MatchFuzzy {
		t.Errorf("Unexpected subject %q via %s", result.Subject.Title, result.Method)
	}
	if len(result.Recommendations) != 3 {
		t.Errorf("Expected the 3 other dramas (default count 5), got %d", len(result.Recommendations))
	}
}

func TestRecommendCommandErrors(t *testing.T) {
	dataset, _ := setupDataset(t)

	_, err := executeCommand(t, "recommend", "2gether", "-n", "0", "--dataset", dataset)
	var invalid *recommend.InvalidCountError
	if !errors.As(err, &invalid) {
		t.Errorf("Expected InvalidCountError, got %v", err)
	}

	_, err = executeCommand(t, "recommend", "qwxzv", "--dataset", dataset)
	var noMatch *recommend.NoMatchError
	if !errors.As(err, &noMatch) {
		t.Errorf("Expected NoMatchError, got %v", err)
	}

	if _, err := executeCommand(t, "recommend", "2gether"); !errors.Is(err, errNoDataset) {
		t.Errorf("Expected errNoDataset, got %v", err)
	}
}

func TestTopCommand(t *testing.T) {
	dataset, _ := setupDataset(t)

	out, err := executeCommand(t, "top", "--size", "2", "--dataset", dataset)
	if err != nil {
		t.Fatalf("top failed: %v", err)
	}
	if !strings.Contains(out, "page 1 of 2") {
		t.Errorf("Expected page header, got:\n%s", out)
	}
	first := strings.Index(out, "Bad Buddy")
	second := strings.Index(out, "2gether")
	if first < 0 || second < 0 || first > second {
		t.Errorf("Expected Bad Buddy before 2gether, got:\n%s", out)
	}

	if _, err := executeCommand(t, "top", "--page", "0", "--dataset", dataset); !errors.Is(err, recommend.ErrInvalidPage) {
		t.Errorf("Expected ErrInvalidPage, got %v", err)
	}
}

func TestSearchAndResolveCommands(t *testing.T) {
	dataset, _ := setupDataset(t)

	out, err := executeCommand(t, "search", "comedy", "-n", "10", "--dataset", dataset)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(out, "Total: 3 results") {
		t.Errorf("Expected 3 results, got:\n%s", out)
	}

	out, err = executeCommand(t, "resolve", "kinporsche", "--dataset", dataset)
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if !strings.Contains(out, "KinnPorsche [id 2] via fuzzy") {
		t.Errorf("Unexpected resolve output:\n%s", out)
	}
}

func TestIndexThenAnswerFromSnapshot(t *testing.T) {
	dataset, indexDir := setupDataset(t)

	out, err := executeCommand(t, "index", "--dataset", dataset)
	if err != nil {
		t.Fatalf("index failed: %v", err)
	}
	if !strings.Contains(out, "Indexed 4 dramas") {
		t.Errorf("Unexpected index output:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(indexDir, "index.db")); err != nil {
		t.Fatalf("Expected index.db: %v", err)
	}

	out, err = executeCommand(t, "recommend", "2gether", "-n", "1", "--index")
	if err != nil {
		t.Fatalf("recommend --index failed: %v", err)
	}
	if !strings.Contains(out, " 1. Still 2gether") {
		t.Errorf("Expected snapshot answer, got:\n%s", out)
	}

	out, err = executeCommand(t, "stats", "--index")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(out, "Dramas:            4") {
		t.Errorf("Unexpected stats output:\n%s", out)
	}
}

func TestStatsReadsBuildInfo(t *testing.T) {
	dataset, indexDir := setupDataset(t)

	if _, err := executeCommand(t, "index", "--dataset", dataset); err != nil {
		t.Fatalf("index failed: %v", err)
	}
	saved, err := storage.NewJSONStore(indexDir).GetBuildInfo()
	if err != nil {
		t.Fatalf("GetBuildInfo failed: %v", err)
	}

	readBuild := func() *types.BuildInfo {
		t.Helper()
		out, err := executeCommand(t, "stats", "--json", "--dataset", dataset)
		if err != nil {
			t.Fatalf("stats failed: %v", err)
		}
		var result struct {
			LatestBuild *types.BuildInfo `json:"latest_build"`
		}
		if err := json.Unmarshal([]byte(out), &result); err != nil {
			t.Fatalf("Expected JSON output, got %q: %v", out, err)
		}
		return result.LatestBuild
	}

	if got := readBuild(); got == nil || got.ID != saved.ID {
		t.Errorf("latest_build = %+v, want id %s from build.json", got, saved.ID)
	}

	// Without build.json the builds table answers.
	if err := os.Remove(filepath.Join(indexDir, "build.json")); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if got := readBuild(); got == nil || got.ID != saved.ID {
		t.Errorf("latest_build = %+v, want id %s from index.db", got, saved.ID)
	}
}

func TestStatsWithoutSnapshotCreatesNothing(t *testing.T) {
	dataset, indexDir := setupDataset(t)

	out, err := executeCommand(t, "stats", "--dataset", dataset)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if !strings.Contains(out, "none (run 'dramarec index')") {
		t.Errorf("Expected no snapshot, got:\n%s", out)
	}
	if _, err := os.Stat(indexDir); !os.IsNotExist(err) {
		t.Errorf("Expected no index directory, stat returned %v", err)
	}
}

func setupServeConfig(t *testing.T, dataset, indexDir string) *recommend.Live {
	t.Helper()

	cfg = config.Default()
	cfg.Dataset = dataset
	cfg.IndexDir = indexDir
	t.Cleanup(func() { cfg = nil })

	engine, _, err := worker.BuildEngine(dataset, engineOptions())
	if err != nil {
		t.Fatalf("BuildEngine failed: %v", err)
	}
	return recommend.NewLive(engine)
}

func TestServeReloadWithoutWatchLeavesIndexAlone(t *testing.T) {
	dataset, indexDir := setupDataset(t)
	live := setupServeConfig(t, dataset, indexDir)

	watcher, stop, err := newDatasetWatcher(live, false)
	if err != nil {
		t.Fatalf("newDatasetWatcher failed: %v", err)
	}
	defer stop()
	if watcher == nil {
		t.Fatal("Expected a watcher when a dataset is configured")
	}
	if watcher.IsRunning() {
		t.Error("Watcher should not poll without --watch")
	}

	if err := watcher.Rebuild(); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	if live.Version() != 2 {
		t.Errorf("Version() = %d, want 2 after reload", live.Version())
	}
	if _, err := os.Stat(indexDir); !os.IsNotExist(err) {
		t.Errorf("Expected no index directory, stat returned %v", err)
	}
}

func TestServeWatchSavesSnapshot(t *testing.T) {
	dataset, indexDir := setupDataset(t)
	live := setupServeConfig(t, dataset, indexDir)

	watcher, stop, err := newDatasetWatcher(live, true)
	if err != nil {
		t.Fatalf("newDatasetWatcher failed: %v", err)
	}
	defer stop()
	if !watcher.IsRunning() {
		t.Error("Expected watcher to be polling")
	}

	if err := watcher.Rebuild(); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	for _, name := range []string{"index.db", "build.json"} {
		if _, err := os.Stat(filepath.Join(indexDir, name)); err != nil {
			t.Errorf("Expected %s after rebuild: %v", name, err)
		}
	}
}

func TestServeWatcherNeedsDataset(t *testing.T) {
	cfg = config.Default()
	t.Cleanup(func() { cfg = nil })

	watcher, stop, err := newDatasetWatcher(nil, true)
	if err != nil {
		t.Fatalf("newDatasetWatcher failed: %v", err)
	}
	stop()
	if watcher != nil {
		t.Error("Expected no watcher without a dataset")
	}
}

func TestIndexFlagWithoutSnapshot(t *testing.T) {
	setupDataset(t)

	if _, err := executeCommand(t, "top", "--index"); err == nil || !strings.Contains(err.Error(), "dramarec index") {
		t.Errorf("Expected hint to run index, got %v", err)
	}
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc", "today")
	defer SetVersionInfo("dev", "unknown", "unknown")

	out, err := executeCommand(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "dramarec 1.2.3 (commit: abc") {
		t.Errorf("Unexpected version output %q", out)
	}
}

func TestDecorateGenres(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{[]string{"Romance", "Comedy"}, "❤ Romance, 😂 Comedy"},
		{[]string{"BL", "Thriller"}, "BL, 😱 Thriller"},
		{nil, "Not specified"},
	}
	for _, tt := range tests {
		if got := decorateGenres(tt.in); got != tt.want {
			t.Errorf("decorateGenres(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
