// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLoggerRebinds(t *testing.T) {
	logger := WithContext("pkg", "test")

	var first bytes.Buffer
	SetDefault(NewLogger(NewJSONHandler(&first, LevelInfo)))
	logger.Info("hello", "k", 1)
	logger.Debug("filtered")

	var second bytes.Buffer
	SetDefault(NewLogger(NewJSONHandler(&second, LevelDebug)))
	logger.Debug("again")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(first.Bytes()), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "test", rec["pkg"])
	assert.Equal(t, float64(1), rec["k"])

	require.NoError(t, json.Unmarshal(bytes.TrimSpace(second.Bytes()), &rec))
	assert.Equal(t, "again", rec["msg"])
}

func TestFromVerbosity(t *testing.T) {
	assert.Equal(t, LevelInfo, FromVerbosity(3))
	assert.Equal(t, LevelTrace, FromVerbosity(5))
	assert.Equal(t, LevelCrit, FromVerbosity(0))
}

func TestLevelVar(t *testing.T) {
	var (
		buf   bytes.Buffer
		level slog.LevelVar
	)
	level.Set(LevelWarn)
	SetDefault(NewLogger(NewJSONHandler(&buf, &level)))
	logger := WithContext("pkg", "test")

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	level.Set(LevelInfo)
	logger.Info("kept")
	assert.Contains(t, buf.String(), "kept")
}
