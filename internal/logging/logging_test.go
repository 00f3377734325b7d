package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "forge-install", false)
	log.Debug("hidden")
	log.Warn("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "component=forge-install")
	assert.Contains(t, out, "run_id=")

	buf.Reset()
	New(&buf, "forge-install", true).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}
