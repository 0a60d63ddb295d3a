package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	orig := GitCommit
	t.Cleanup(func() { GitCommit = orig })

	GitCommit = "abc1234"
	assert.Contains(t, String(), Version)
	assert.Contains(t, String(), "abc1234")
}
