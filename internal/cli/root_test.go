package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanglvm/workflow-hub/internal/config"
	"github.com/khanglvm/workflow-hub/internal/version"
)

// isolate points config and storage at a temporary home directory.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(config.EnvStorageDriver, config.DriverSQLite)
	t.Setenv(config.EnvDBPath, filepath.Join(home, "workflows.db"))
	t.Setenv(config.EnvLogLevel, "error")
	return home
}

// execute runs the root command with args and returns combined output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()

	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// mustExecute is execute that fails the test on error.
func mustExecute(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := execute(t, stdin, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

const testCatalog = `workflows:
  - id: wf-slack
    name: Slack Notification Bot
    description: Sends alerts to Slack channels
    category: notification
    tags: [slack, alerts]
    createdBy: alice
    isPublic: true
  - id: wf-csv
    name: CSV Cleaner
    description: Process and clean CSV data
    category: data-processing
    tags: [csv]
    createdBy: bob
    isPublic: true
  - id: wf-private
    name: Private slack relay
    category: notification
    createdBy: alice
`

// seed imports testCatalog into the isolated store.
func seed(t *testing.T) {
	t.Helper()
	mustExecute(t, testCatalog, "import", "-")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	want := []string{"search", "add", "import", "list", "remove", "serve", "serve-http", "verify", "benchmark", "analytics", "config", "version"}
	for _, name := range want {
		found := false
		for _, c := range root.Commands() {
			if c.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}

	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("persistent --config flag not registered")
	}
}

func TestRootCmd_HelpMentionsTransports(t *testing.T) {
	out := mustExecute(t, "", "--help")

	for _, expected := range []string{"workflow-hub", "MCP", "HTTP"} {
		if !strings.Contains(out, expected) {
			t.Errorf("Help output missing %q", expected)
		}
	}
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	isolate(t)
	t.Setenv(config.EnvMaxLimit, "500")

	if _, err := execute(t, "", "list"); err == nil {
		t.Error("expected configuration error for maxLimit above 50")
	}
}

func TestVersionCmd(t *testing.T) {
	out := mustExecute(t, "", "version")

	for _, expected := range []string{"Version:", "Commit:", "Built:"} {
		if !strings.Contains(out, expected) {
			t.Errorf("version output missing %q", expected)
		}
	}
}

func TestVersionCmd_JSON(t *testing.T) {
	out := mustExecute(t, "", "version", "--json")

	var info version.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if info.Name != "workflow-hub" || info.Version != version.Version {
		t.Errorf("unexpected version info: %+v", info)
	}
}
