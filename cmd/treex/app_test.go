package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func runForTest(args ...string) (int, string, string) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	code := run(args, stdout, stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Dump(t *testing.T) {
	testcases := []struct {
		name     string
		args     []string
		expected string
	}{
		{
			name: "keys",
			args: []string{"dump", "10", "20", "30"},
			expected: "└── 20(Black)\n" +
				"    ├── 10(Red)\n" +
				"    └── 30(Red)\n",
		},
		{
			name: "remove the root",
			args: []string{"dump", "--remove", "20", "10", "20", "30"},
			expected: "└── 30(Black)\n" +
				"    └── 10(Red)\n",
		},
		{
			name: "global flags",
			args: []string{"--log-level", "error", "--log-encoder", "json", "dump", "1"},
			expected: "└── 1(Black)\n",
		},
		{
			name:     "no keys",
			args:     []string{"dump"},
			expected: "",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			code, stdout, stderr := runForTest(tc.args...)
			require.Equal(tt, exitOK, code, stderr)
			require.Equal(tt, tc.expected, stdout)
		})
	}
}

func TestRun_DumpFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "keys.txt")
	require.NoError(t, os.WriteFile(file, []byte("52 47 3 35 24"), 0o644))

	code, stdout, stderr := runForTest("dump", "--file", file, "--remove", "24,47")
	require.Equal(t, exitOK, code, stderr)
	require.Equal(t, "└── 35(Black)\n"+
		"    ├── 3(Black)\n"+
		"    └── 52(Black)\n", stdout)

	code, _, _ = runForTest("dump", "--file", file, "1")
	require.Equal(t, exitUsage, code)

	code, _, _ = runForTest("dump", "--file", filepath.Join(dir, "missing.txt"))
	require.Equal(t, exitFailure, code)
}

func TestRun_LogFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "treex.log")
	code, stdout, stderr := runForTest("--log-level", "debug", "--log-file", file, "dump", "1", "2")
	require.Equal(t, exitOK, code, stderr)
	require.NotEmpty(t, stdout)

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	require.Contains(t, string(data), "dump")
	require.Contains(t, stderr, "dump")
}

func TestRun_Failures(t *testing.T) {
	testcases := []struct {
		name string
		args []string
		code int
	}{
		{name: "no command", args: nil, code: exitUsage},
		{name: "unknown command", args: []string{"balance"}, code: exitUsage},
		{name: "bad key", args: []string{"dump", "x"}, code: exitUsage},
		{name: "bad flag", args: []string{"check", "--trials", "zero"}, code: exitUsage},
		{name: "bad config", args: []string{"check", "--workers", "0"}, code: exitUsage},
		{name: "bad metrics", args: []string{"check", "--metrics", "statsd"}, code: exitUsage},
		{name: "bad log level", args: []string{"--log-level", "trace", "dump"}, code: exitUsage},
		{name: "bad log file", args: []string{"--log-file", "/", "dump"}, code: exitUsage},
		{name: "remove missing key", args: []string{"dump", "--remove", "9", "1"}, code: exitFailure},
		{name: "help", args: []string{"--help"}, code: exitOK},
		{name: "command help", args: []string{"check", "-h"}, code: exitOK},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			code, _, _ := runForTest(tc.args...)
			require.Equal(tt, tc.code, code)
		})
	}
}

func TestRun_Check(t *testing.T) {
	code, stdout, stderr := runForTest(
		"check",
		"--trials", "2",
		"--size", "200",
		"--remove-ratio", "0.5",
		"--workers", "2",
		"--seed", "99",
		"--check-every", "10",
	)
	require.Equal(t, exitOK, code, stderr)
	require.True(t, strings.HasPrefix(stdout, "trials=2 failed=0 inserted=400 removed=400 "), stdout)
	require.Contains(t, stdout, "seed=99")
}

func TestRun_CheckConsoleMetrics(t *testing.T) {
	code, stdout, stderr := runForTest(
		"--log-level", "error",
		"check",
		"--trials", "1",
		"--size", "50",
		"--seed", "3",
		"--metrics", "console",
	)
	require.Equal(t, exitOK, code, stderr)
	require.Contains(t, stdout, "failed=0")
	// The metrics are flushed into stderr when the command ends.
	require.Contains(t, stderr, "tree.insert.count")
	require.Contains(t, stderr, "app.core.goroutines")
}

func TestPrometheusHandlerServed(t *testing.T) {
	cmd := newCheckCommand()
	cmd.metrics, cmd.metricsAddr = metricsPrometheus, "127.0.0.1:0"
	stderr := &bytes.Buffer{}
	logger, closeLog, err := (&globalOptions{logLevel: "info", logEncoder: "json"}).newLogger(stderr)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, closeLog())
	}()
	env := &runEnv{stdout: io.Discard, stderr: stderr, logger: logger}

	shutdown, err := cmd.startMetrics(env)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, shutdown(context.Background()))
	}()

	addr := ""
	for _, line := range strings.Split(stderr.String(), "\n") {
		if i := strings.Index(line, `"addr":"`); i >= 0 {
			addr = line[i+len(`"addr":"`):]
			addr = addr[:strings.Index(addr, `"`)]
		}
	}
	require.NotEmpty(t, addr)
	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
