package applog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_PrefixesLevelAndName(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter("dispatch", &buf)

	lg.Infof("routed to %s", "anthropic")

	out := buf.String()
	assert.True(t, strings.Contains(out, "[INFO]"))
	assert.True(t, strings.Contains(out, "dispatch"))
	assert.True(t, strings.Contains(out, "routed to anthropic"))
}

func TestLogger_With_ScopesName(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter("dispatch", &buf).With("stream")

	lg.Errorf("boom")

	assert.Contains(t, buf.String(), "dispatch.stream")
}
