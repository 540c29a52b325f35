package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestInit_Levels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		require.NoError(t, Init(level, "json", "stderr"), "level %s", level)
	}
	require.NoError(t, Init("info", "console", ""))
}

func TestHelpers_WriteStructuredFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	Set(zap.New(core))
	defer Set(zap.NewNop())

	Info("friend request sent", "sender", "u1", "receiver", "u2")
	Warn("slow query", "collection", "groups")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "friend request sent", entries[0].Message)
	assert.Equal(t, "u1", entries[0].ContextMap()["sender"])
	assert.Equal(t, zap.WarnLevel, entries[1].Level)
}
