package main

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func executeCmd(t *testing.T, args ...string) (string, error) {
	system := &System{registry: DefaultRegistry(), clock: SystemClock}
	cmd := newRootCmd(time.Now(), system)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCmdThreeIterations(t *testing.T) {
	input := writeInput(t, "small fixed input\n")
	out, err := executeCmd(t, "test_functions", input, "3", "identity")
	require.Nil(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	for i, label := range []string{
		"Completion time: ",
		"Initialization overhead: ",
		"Computation time: ",
		"Average service time: ",
	} {
		require.True(t, strings.HasPrefix(lines[i], label), lines[i])
		require.NotContains(t, lines[i], "-")
	}
}

func TestCmdSingleIteration(t *testing.T) {
	input := writeInput(t, "data")
	out, err := executeCmd(t, "hash", input, "1", "sha256", "xxhash")
	require.Nil(t, err)
	require.Equal(t, 3, strings.Count(out, "\n"))
	require.NotContains(t, out, "Average service time")
}

func TestCmdStructuralIdempotence(t *testing.T) {
	input := writeInput(t, "one two three\n")
	labels := func(out string) []string {
		var result []string
		for _, line := range strings.Split(strings.TrimSuffix(out, "\n"), "\n") {
			result = append(result, strings.SplitN(line, ":", 2)[0])
		}
		return result
	}
	first, err := executeCmd(t, "test_functions", input, "4", "words", "reverse")
	require.Nil(t, err)
	second, err := executeCmd(t, "test_functions", input, "4", "words", "reverse")
	require.Nil(t, err)
	require.Equal(t, labels(first), labels(second))
}

func TestCmdUnknownFunction(t *testing.T) {
	input := writeInput(t, "data")
	out, err := executeCmd(t, "test_functions", input, "3", "identity", "missing")
	require.ErrorIs(t, err, ErrUnknownFunction)
	require.Empty(t, out)
}

func TestCmdMissingInput(t *testing.T) {
	out, err := executeCmd(t, "test_functions", filepath.Join(t.TempDir(), "missing.txt"), "3", "identity")
	require.ErrorContains(t, err, "iteration #1")
	require.Empty(t, out)
}

func TestCmdProfile(t *testing.T) {
	input := writeInput(t, "data")
	profile := writeProfile(t, "bench.toml", "warmup = 1\nlog_level = \"ERROR\"\n")
	out, err := executeCmd(t, "--config", profile, "test_functions", input, "2", "identity")
	require.Nil(t, err)
	require.Equal(t, 4, strings.Count(out, "\n"))

	_, err = executeCmd(t, "--config", writeProfile(t, "bench.toml", "unknown = 1\n"), "test_functions", input, "2", "identity")
	require.ErrorContains(t, err, "unknown keys")
}

func TestCmdList(t *testing.T) {
	out, err := executeCmd(t, "--list")
	require.Nil(t, err)
	require.Contains(t, out, "hash: crc32, fnv64, md5, sha256, xxhash\n")
	require.Contains(t, out, "test_functions: ")
	require.Contains(t, out, "text: fields, lower, title, upper\n")
}

func TestCmdResultsFailureAfterSummary(t *testing.T) {
	input := writeInput(t, "data")
	out, err := executeCmd(t, "--results", "http://127.0.0.1:1", "test_functions", input, "3", "identity")
	require.ErrorContains(t, err, "failed to save run")

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "Completion time: "))
	require.True(t, strings.HasPrefix(lines[3], "Average service time: "))
}

func TestCmdWorkers(t *testing.T) {
	input := writeInput(t, "one two three\n")
	out, err := executeCmd(t, "--workers", "3", "text", input, "4", "upper", "lower", "title")
	require.Nil(t, err)
	require.Equal(t, 4, strings.Count(out, "\n"))
	require.Contains(t, out, "Average service time: ")

	_, err = executeCmd(t, "--workers=-1", "text", input, "4", "upper")
	require.ErrorContains(t, err, "workers must be non-negative")
}
