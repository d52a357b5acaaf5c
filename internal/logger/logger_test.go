package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByEnv(t *testing.T) {
	var buf bytes.Buffer
	New(EnvProd, &buf).Debug("hidden")
	New(EnvProd, &buf).Info("shown", slog.String("k", "v"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "v", entry["k"])

	buf.Reset()
	New("unknown", &buf).Debug("text")
	assert.Contains(t, buf.String(), "msg=text")
}

func TestContextRoundTrip(t *testing.T) {
	l := Discard()
	ctx := ToContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.Same(t, slog.Default(), FromContext(context.Background()))
}
