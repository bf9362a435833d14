package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRedactsSecretKeys(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("access_token", "abc").Info("login", "user", "ada", "Password", "hunter2")

	entries := logs.All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "ada", fields["user"])
	assert.Equal(t, "[REDACTED]", fields["Password"])
	assert.Equal(t, "[REDACTED]", fields["access_token"])
}

func TestRedactLeavesInputUntouched(t *testing.T) {
	in := []interface{}{"secret", "x", "odd"}
	out := redact(in)
	assert.Equal(t, "x", in[1])
	assert.Equal(t, []interface{}{"secret", "[REDACTED]", "odd"}, out)
}
