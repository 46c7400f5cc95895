package logger

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitAndGetChain(t *testing.T) {
	var buf bytes.Buffer
	lg := Init(Options{Level: "debug", Output: &buf})
	require.NotNil(t, lg)

	// Level methods have pointer receivers; they must chain off both Init
	// and Get results without an intermediate variable.
	Init(Options{}).Info().Str("k", "v").Msg("from init")
	Get().Error().Msg("from get")

	assert.Same(t, Init(Options{}), Get(), "both accessors share the one instance")
	assert.Contains(t, buf.String(), "from init")
	assert.Contains(t, buf.String(), "from get")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" WARN "))
	assert.Equal(t, zerolog.ErrorLevel, parseLevel("error"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("nonsense"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
}
