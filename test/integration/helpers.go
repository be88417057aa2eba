//go:build integration

package integration

import (
	"bytes"
	"os"
	"os/exec"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestConfig holds configuration for integration tests.
type TestConfig struct {
	URL        string
	APIKey     string
	AnyapiPath string
	Verbose    bool
}

// LoadTestConfig loads configuration from environment variables.
func LoadTestConfig() *TestConfig {
	return &TestConfig{
		URL:        os.Getenv("ANYTYPE_URL"),
		APIKey:     os.Getenv("ANYTYPE_KEY"),
		AnyapiPath: getAnyapiPath(),
		Verbose:    os.Getenv("ANYAPI_VERBOSE") == "true",
	}
}

func getAnyapiPath() string {
	if path := os.Getenv("ANYAPI_BINARY_PATH"); path != "" {
		return path
	}

	candidates := []string{
		"../../anyapi",
		"./anyapi",
		"../anyapi",
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return "anyapi"
}

// SkipIfMissingConfig skips the test unless a key and the binary are available.
func (config *TestConfig) SkipIfMissingConfig(t *testing.T) {
	t.Helper()

	if config.APIKey == "" {
		t.Skip("ANYTYPE_KEY not set, skipping integration test")
	}

	if _, err := exec.LookPath(config.AnyapiPath); err != nil {
		t.Skipf("anyapi binary not found at %s, skipping integration test", config.AnyapiPath)
	}
}

// CommandRunner runs the anyapi binary against the configured server.
type CommandRunner struct {
	config *TestConfig
	t      *testing.T
}

// NewCommandRunner creates a new command runner.
func NewCommandRunner(config *TestConfig, t *testing.T) *CommandRunner {
	return &CommandRunner{
		config: config,
		t:      t,
	}
}

// Run executes an anyapi command and returns its output.
func (runner *CommandRunner) Run(args ...string) (stdout, stderr string, err error) {
	if runner.config.URL != "" {
		args = append([]string{"--url", runner.config.URL}, args...)
	}

	cmd := exec.Command(runner.config.AnyapiPath, args...)

	var stdoutBuf, stderrBuf bytes.Buffer

	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf
	cmd.Env = append(os.Environ(), "ANYTYPE_KEY="+runner.config.APIKey)

	if runner.config.Verbose {
		runner.t.Logf("Running: %s %s", runner.config.AnyapiPath, strings.Join(args, " "))
	}

	err = cmd.Run()
	stdout = stdoutBuf.String()
	stderr = stderrBuf.String()

	if runner.config.Verbose && err != nil {
		runner.t.Logf("Command failed: %v\nStdout: %s\nStderr: %s", err, stdout, stderr)
	}

	return stdout, stderr, err
}

// RunJSON runs args with --output json and decodes the result into target.
func (runner *CommandRunner) RunJSON(target interface{}, args ...string) {
	runner.t.Helper()

	stdout, stderr, err := runner.Run(append(args, "--output", "json")...)
	require.NoError(runner.t, err, "anyapi %s failed: %s", strings.Join(args, " "), stderr)
	require.NoError(runner.t, json.Unmarshal([]byte(stdout), target), "output is not JSON: %s", stdout)
}

// AssertYAMLOutput verifies command output parses as YAML.
func AssertYAMLOutput(t *testing.T, output string) {
	t.Helper()

	var value interface{}
	require.NoError(t, yaml.Unmarshal([]byte(output), &value), "output is not YAML: %s", output)
	require.NotNil(t, value)
}
