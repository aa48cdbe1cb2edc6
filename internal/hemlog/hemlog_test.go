package hemlog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DefaultLevelIsInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	logger.Debug().Msg("should not appear")
	assert.Empty(t, buf.String())

	logger.Info().Msg("should appear")
	assert.Contains(t, buf.String(), "should appear")
}

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)

	logger.Debug().Msg("debug line")
	assert.Contains(t, buf.String(), "debug line")
}
