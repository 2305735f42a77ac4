package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-overcode/pkg/config"
	"github.com/dd0wney/cluso-overcode/pkg/logging"
	"github.com/dd0wney/cluso-overcode/pkg/metrics"
	"github.com/dd0wney/cluso-overcode/pkg/output"
	"github.com/dd0wney/cluso-overcode/pkg/overcode"
)

// Two 5-cliques joined by a single edge.
const twoCliques = `# two communities
0 1
0 2
0 3
0 4
1 2
1 3
1 4
2 3
2 4
3 4
5 6
5 7
5 8
5 9
6 7
6 8
6 9
7 8
7 9
8 9
4 5
`

func smallParams(e *config.Experiment) {
	e.Params.Rounds = 12
	e.Params.Pushes = 4
	e.Params.PullSamples = 4
	e.Params.Runs = 6
	e.Params.Seed = 11
}

func TestParseFlags(t *testing.T) {
	exp, err := parseFlags([]string{
		"-mode", "ego",
		"-alpha", "0.7",
		"-overlaps", "4,2,1",
		"-workers", "3",
		"-seed", "42",
		"-window", "full",
		"-format", "yaml",
		"-out", "ego.txt",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, config.ModeEgo, exp.Mode)
	assert.Equal(t, 0.7, exp.Params.Alpha)
	assert.Equal(t, []int{4, 2, 1}, exp.Overlaps)
	assert.Equal(t, 3, exp.Params.MaxWorkers)
	assert.Equal(t, uint64(42), exp.Params.Seed)
	assert.Equal(t, overcode.WindowFull, exp.Params.Window)
	assert.Equal(t, output.FormatYAML, exp.Reports.Format)
	assert.Equal(t, "ego.txt", exp.Output)
	assert.Zero(t, exp.Params.Beta, "unset flags leave derivation to config")
}

func TestParseFlagsOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exp.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: ego\nruns: 4\n"), 0o644))

	exp, err := parseFlags([]string{"-config", path, "-runs", "2"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, config.ModeEgo, exp.Mode)
	assert.Equal(t, 2, exp.Runs)
}

func TestParseFlagsErrors(t *testing.T) {
	for _, args := range [][]string{
		{"-overlaps", "a,b"},
		{"-runs", "many"},
		{"stray"},
	} {
		_, err := parseFlags(args, io.Discard)
		assert.Error(t, err, "args %v", args)
	}
}

func TestRunnerFileMode(t *testing.T) {
	dir := t.TempDir()
	graphPath := filepath.Join(dir, "graph.txt")
	require.NoError(t, os.WriteFile(graphPath, []byte(twoCliques), 0o644))

	exp := config.Default()
	exp.Mode = config.ModeFile
	exp.Graph = graphPath
	exp.Output = filepath.Join(dir, "clusters.txt")
	exp.Runs = 2
	exp.History = true
	exp.Compress = true
	smallParams(exp)
	require.NoError(t, exp.Validate())

	reportDir := filepath.Join(dir, "reports")
	sink := &output.FileSink{Dir: reportDir, Format: output.FormatJSON}
	r := newRunner(exp, logging.NopLogger{}, metrics.NewRegistry(), sink)

	rows, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, rw := range rows {
		assert.Equal(t, 10, rw.Nodes)
		assert.Nil(t, rw.Eval, "file graphs have no ground truth")
	}

	data, err := os.ReadFile(exp.Output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "0 0\n"))
	assert.Contains(t, string(data), "0 1\n")

	_, err = os.Stat(exp.Output + "_truth")
	assert.True(t, os.IsNotExist(err))

	reports, err := os.ReadDir(reportDir)
	require.NoError(t, err)
	assert.Len(t, reports, 2)

	history, err := filepath.Glob(filepath.Join(exp.Output+"_history", "*"+output.SnappySuffix))
	require.NoError(t, err)
	assert.Len(t, history, 2)

	assert.Equal(t, 2, r.progress().Done)
	assert.Equal(t, 2, r.progress().Total)
}

func TestRunnerFileModeKeepsSparseIDs(t *testing.T) {
	const stride = 1_000_000_007
	var sparse strings.Builder
	for _, line := range strings.Split(twoCliques, "\n") {
		var u, v int
		if n, _ := fmt.Sscanf(line, "%d %d", &u, &v); n == 2 {
			fmt.Fprintf(&sparse, "%d %d\n", u*stride, v*stride)
		}
	}

	dir := t.TempDir()
	graphPath := filepath.Join(dir, "sparse.txt")
	require.NoError(t, os.WriteFile(graphPath, []byte(sparse.String()), 0o644))

	exp := config.Default()
	exp.Mode = config.ModeFile
	exp.Graph = graphPath
	exp.Output = filepath.Join(dir, "clusters.txt")
	exp.Runs = 1
	exp.History = true
	smallParams(exp)
	require.NoError(t, exp.Validate())

	r := newRunner(exp, logging.NopLogger{}, metrics.NewRegistry(), nil)
	rows, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 10, rows[0].Nodes)

	data, err := os.ReadFile(exp.Output)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	members := 0
	for i, line := range lines {
		if !strings.HasPrefix(line, "Cluster ") || i+1 >= len(lines) {
			continue
		}
		for _, field := range strings.Fields(lines[i+1]) {
			id, err := strconv.Atoi(field)
			require.NoError(t, err)
			assert.Zero(t, id%stride, "node %d is not a file id", id)
			members++
		}
	}
	assert.Positive(t, members)

	history, err := os.ReadFile(filepath.Join(exp.Output+"_history", "0_0.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(history), "0\n"))
	assert.Contains(t, string(history), fmt.Sprintf("\n%d\n", 9*stride))
}

func TestRunnerClusteredWritesTruth(t *testing.T) {
	dir := t.TempDir()
	exp := config.Default()
	exp.NodesPerCluster = 20
	exp.Overlaps = []int{2}
	exp.Output = filepath.Join(dir, "clusters.txt")
	exp.Graphs = 2
	smallParams(exp)

	r := newRunner(exp, logging.NopLogger{}, metrics.NewRegistry(), nil)
	rows, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, rw := range rows {
		assert.Equal(t, 38, rw.Nodes)
		require.NotNil(t, rw.Eval)
	}

	truth, err := os.ReadFile(exp.Output + "_truth")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(truth), "0 0\nCluster 1: \n"))
	assert.Contains(t, string(truth), "1 0\n")
}

func TestRunnerReplaysWithSeed(t *testing.T) {
	runOnce := func() string {
		dir := t.TempDir()
		exp := config.Default()
		exp.NodesPerCluster = 15
		exp.Overlaps = []int{3}
		exp.Output = filepath.Join(dir, "clusters.txt")
		smallParams(exp)

		_, err := newRunner(exp, logging.NopLogger{}, metrics.NewRegistry(), nil).Run(context.Background())
		require.NoError(t, err)
		data, err := os.ReadFile(exp.Output)
		require.NoError(t, err)
		return string(data)
	}
	assert.Equal(t, runOnce(), runOnce())
}

func TestRunnerCancelled(t *testing.T) {
	exp := config.Default()
	exp.NodesPerCluster = 15
	exp.Overlaps = []int{3}
	exp.Output = filepath.Join(t.TempDir(), "clusters.txt")
	smallParams(exp)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := newRunner(exp, logging.NopLogger{}, metrics.NewRegistry(), nil)
	_, err := r.Run(ctx)
	require.Error(t, err)
	assert.True(t, overcode.IsCancelled(err))
	assert.Equal(t, 1, r.progress().Failed)
}

func TestRunEndToEnd(t *testing.T) {
	dir := t.TempDir()
	var stdout bytes.Buffer
	err := run([]string{
		"-nodes", "12",
		"-overlaps", "2",
		"-rounds", "8",
		"-pushes", "3",
		"-pull", "3",
		"-ensemble-runs", "4",
		"-seed", "5",
		"-out", filepath.Join(dir, "out.txt"),
		"-report-dir", filepath.Join(dir, "reports"),
		"-log-level", "error",
	}, &stdout, io.Discard)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "OverCoDe")
	assert.Contains(t, stdout.String(), "Time taken")
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	err := run([]string{"-mode", "file"}, io.Discard, io.Discard)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "0h 0min 7s", formatElapsed(7*time.Second))
	assert.Equal(t, "1h 1min 1s", formatElapsed(time.Hour+time.Minute+time.Second+300*time.Millisecond))
}
