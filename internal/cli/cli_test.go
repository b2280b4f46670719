package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/YuminosukeSato/sleepq/heuristic"
	"github.com/YuminosukeSato/sleepq/predictor"
	"github.com/YuminosukeSato/sleepq/sleep"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--log-level", "disabled"}, args...))
	err := root.Execute()
	return out.String(), err
}

var activeArgs = []string{"predict", "--age", "30", "--gender", "male", "--steps", "10000", "--calories", "3000", "--activity", "high", "--diet", "healthy"}

func writeDataset(t *testing.T, dir string, n int) string {
	t.Helper()
	var sb strings.Builder
	sb.WriteString("Person ID,Age,Gender,Daily Steps,Calories Burned,Physical Activity Level,Dietary Habits,Sleep Quality\n")
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			fmt.Fprintf(&sb, "%d,%d,Male,%d,%d,High,Healthy,Excellent\n", i, 25+i%30, 10000+i*10, 3000+i)
		} else {
			fmt.Fprintf(&sb, "%d,%d,Female,%d,%d,Low,Poor,Poor\n", i, 25+i%30, 3000+i*10, 1600+i)
		}
	}
	path := filepath.Join(dir, "sleep.csv")
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))
	return path
}

func TestPredict_Text(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, append([]string{"--artifacts-dir", dir}, activeArgs...)...)
	require.NoError(t, err)

	assert.Contains(t, out, "Note: neural model unavailable, using simpler method")
	assert.Contains(t, out, "Note: linear model unavailable, using simpler method")
	assert.Contains(t, out, "Predicted sleep quality: Excellent")
	assert.Contains(t, out, "Method: rule_based")
	assert.Contains(t, out, "General recommendations:")
	assert.Contains(t, out, "Your Input")
	assert.Contains(t, out, "9900")
}

func TestPredict_JSON(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, append([]string{"--artifacts-dir", dir, "-o", "json"}, activeArgs...)...)
	require.NoError(t, err)

	var res PredictResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, sleep.Excellent, res.Outcome.Label)
	assert.Equal(t, predictor.SourceRuleBased, res.Outcome.Source)
	assert.Len(t, res.Outcome.Notices, 2)
	require.Len(t, res.Comparison, 4)
	assert.Equal(t, "Your Input", res.Comparison[3].Group)
	assert.Equal(t, 10000.0, res.Comparison[3].DailySteps)
}

func TestPredict_YAMLCoarse(t *testing.T) {
	dir := t.TempDir()
	out, err := run(t, append([]string{"--artifacts-dir", dir, "-o", "yaml", "--profile", "coarse"}, activeArgs...)...)
	require.NoError(t, err)

	var res map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &res))
	outcome := res["outcome"].(map[string]any)
	assert.Equal(t, "Good", outcome["label"])
	assert.Equal(t, "Good", outcome["coarse"])
	assert.Equal(t, "coarse_rule", outcome["source"])
}

func TestPredict_ComparisonUsesPersistedAverages(t *testing.T) {
	dir := t.TempDir()
	avg := "Sleep Quality,Age,Daily Steps,Calories Burned\nExcellent,30,20000,6000\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sleep_quality_avg_values.csv"), []byte(avg), 0o600))

	out, err := run(t, append([]string{"--artifacts-dir", dir, "-o", "json"}, activeArgs...)...)
	require.NoError(t, err)

	var res PredictResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Comparison, 2)
	assert.Equal(t, "Excellent", res.Comparison[0].Group)
	assert.Equal(t, 20000.0, res.Comparison[0].DailySteps)
	assert.Equal(t, sleep.Good, res.Outcome.Label)
}

func TestPredict_CorruptAveragesFallBackToDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sleep_quality_avg_values.csv"), []byte("Sleep Quality,Age\nExcellent,abc\n"), 0o600))

	out, err := run(t, append([]string{"--artifacts-dir", dir, "-o", "json"}, activeArgs...)...)
	require.NoError(t, err)

	var res PredictResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, profileRows(heuristic.DefaultProfile()), res.Comparison[:len(res.Comparison)-1])
	assert.Equal(t, sleep.Excellent, res.Outcome.Label)
}

func TestPredict_InvalidInput(t *testing.T) {
	_, err := run(t, "predict", "--age", "5", "--gender", "Male", "--steps", "1", "--calories", "1", "--activity", "Low", "--diet", "Poor")
	assert.ErrorContains(t, err, "age")

	_, err = run(t, "predict", "--age", "30", "--gender", "Other", "--steps", "1", "--calories", "1", "--activity", "Low", "--diet", "Poor")
	assert.ErrorContains(t, err, "gender")

	_, err = run(t, "predict", "--age", "30")
	assert.Error(t, err)
}

func TestAverages(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, 20)
	out := filepath.Join(dir, "avg.csv")

	stdout, err := run(t, "averages", "--data", data, "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Excellent")
	assert.Contains(t, stdout, "Saved "+out)

	p, err := heuristic.LoadProfile(out)
	require.NoError(t, err)
	assert.Len(t, p, 2)
	assert.InDelta(t, 10090, p[sleep.Excellent].DailySteps, 1e-9)
}

func TestTrainLinear_ThenPredict(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, 100)

	stdout, err := run(t, "--artifacts-dir", dir, "train", "linear", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Accuracy:")
	assert.FileExists(t, filepath.Join(dir, "sleep_model.json"))

	out, err := run(t, append([]string{"--artifacts-dir", dir, "--profile", "simple", "-o", "json"}, activeArgs...)...)
	require.NoError(t, err)
	var res PredictResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, predictor.SourceLinear, res.Outcome.Source)
	assert.Empty(t, res.Outcome.Notices)
	assert.NotNil(t, res.Outcome.Confidence)
}

func TestTrainNeural_WritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	data := writeDataset(t, dir, 60)
	plot := filepath.Join(dir, "loss.png")

	_, err := run(t, "--artifacts-dir", dir, "-o", "json", "train", "neural", "--data", data, "--epochs", "5", "--plot", plot)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "sleep_nn_model.json"))
	assert.FileExists(t, filepath.Join(dir, "encoders.json"))
	assert.FileExists(t, plot)
}

func TestPrintTable(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"A", "Long header"}, [][]string{{"value", "x"}})
	assert.Equal(t, "A      Long header\n-----  -----------\nvalue  x\n", buf.String())

	buf.Reset()
	printTable(&buf, []string{"A"}, nil)
	assert.Empty(t, buf.String())
}
