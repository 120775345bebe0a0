// Package version carries build metadata injected with -ldflags -X.
package version

import "strings"

var (
	Version = "dev"
	Commit  = ""
)

// String returns "v1.2.3 (abc1234)" or just the version when no commit is set.
func String() string {
	v := Version
	if v != "dev" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if Commit == "" {
		return v
	}
	c := Commit
	if len(c) > 7 {
		c = c[:7]
	}
	return v + " (" + c + ")"
}
