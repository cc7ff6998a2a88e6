package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLevels(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{})
	require.NoError(t, err)
	l.Debug("hidden")
	l.Info("designing", "species", "Akk-muc", "genes", 5)
	l.Sync()

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "designing")
	assert.Contains(t, out, `"species": "Akk-muc"`)
}

func TestQuietKeepsWarnings(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Quiet: true})
	require.NoError(t, err)
	l.Info("chatty")
	l.Warn("skipped locus", "gene", "cds_1")
	assert.NotContains(t, buf.String(), "chatty")
	assert.Contains(t, buf.String(), "skipped locus")
}

func TestJSONWith(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Format: "json", Verbose: true})
	require.NoError(t, err)
	l.With("run", "r1").Debug("locus", "gene", "cds_2")

	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &m))
	assert.Equal(t, "debug", m["level"])
	assert.Equal(t, "r1", m["run"])
	assert.Equal(t, "cds_2", m["gene"])
}

func TestUnknownFormat(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Format: "xml"})
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	Nop().Error("nothing", "k", 1)
}
