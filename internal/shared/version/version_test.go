package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	origVersion, origCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = origVersion, origCommit })

	tests := []struct {
		version, commit, want string
	}{
		{"dev", "", "dev"},
		{"1.2.3", "", "v1.2.3"},
		{"v1.2.3", "abc1234def", "v1.2.3 (abc1234)"},
		{"dev", "abc", "dev (abc)"},
	}
	for _, tt := range tests {
		Version, Commit = tt.version, tt.commit
		assert.Equal(t, tt.want, String())
	}
}
