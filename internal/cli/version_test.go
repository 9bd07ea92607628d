package cli

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func withVersion(t *testing.T, v, c, d string) {
	t.Helper()
	ov, oc, od := version, commit, date
	t.Cleanup(func() { version, commit, date = ov, oc, od })
	version, commit, date = v, c, d
}

func TestWriteVersion(t *testing.T) {
	withVersion(t, "1.2.3", "abc1234", "2026-01-08T12:00:00Z")

	var buf bytes.Buffer
	writeVersion(&buf, false)
	out := buf.String()

	assert.Contains(t, out, "kpi v1.2.3")
	assert.Contains(t, out, "commit: abc1234")
	assert.Contains(t, out, "built: 2026-01-08T12:00:00Z")
	assert.Contains(t, out, "go: "+runtime.Version())
	assert.Contains(t, out, "os/arch: "+runtime.GOOS+"/"+runtime.GOARCH)
}

func TestWriteVersion_Short(t *testing.T) {
	withVersion(t, "1.2.3", "abc1234", "today")

	var buf bytes.Buffer
	writeVersion(&buf, true)
	assert.Equal(t, "1.2.3", strings.TrimSpace(buf.String()))
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "v1.0.0", formatVersion("1.0.0"))
	assert.Equal(t, "v1.0.0", formatVersion("v1.0.0"))
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "", formatVersion(""))
}
