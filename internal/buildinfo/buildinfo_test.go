package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })
	Version = "v0.1.0"

	var buf bytes.Buffer
	PrintBuildData(&buf)
	assert.Equal(t, "Build version: v0.1.0\nBuild date: N/A\nBuild commit: N/A\n", buf.String())
}
