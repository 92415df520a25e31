/*
Package version reports the workflow-hub build.

Values are injected with ldflags at release time:

	go build -ldflags "-X github.com/khanglvm/workflow-hub/internal/version.Version=v1.0.0 \
	  -X github.com/khanglvm/workflow-hub/internal/version.Commit=$(git rev-parse --short HEAD) \
	  -X github.com/khanglvm/workflow-hub/internal/version.Date=$(date -u +%Y-%m-%d)"

Local builds report "dev". The same values appear in `workflow-hub version`
and in the serverInfo returned to MCP clients.
*/
package version

// Build metadata (set via ldflags)
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Name identifies the binary to MCP clients and in version output.
const Name = "workflow-hub"

// Info is the build metadata in a form that can be printed as JSON.
type Info struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
	Dev     bool   `json:"dev"`
}

// Get returns the metadata of the running binary.
func Get() Info {
	return Info{
		Name:    Name,
		Version: Version,
		Commit:  Commit,
		Date:    Date,
		Dev:     Version == "dev",
	}
}

// GetVersion returns the one-line version shown by --version.
func GetVersion() string {
	return FormatVersion(Version, Commit, Date)
}

// FormatVersion formats version components into a display string
func FormatVersion(version, commit, date string) string {
	if version == "dev" {
		return version + " (development build)"
	}
	return version + " (commit: " + commit + ", built: " + date + ")"
}
