package logging

import (
	"bytes"
	"os"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// Setup mutates the global logger, so these tests do not run in parallel
func TestSetup(t *testing.T) {
	defer Setup(os.Stderr, "info", "text")

	var buf bytes.Buffer
	Setup(&buf, "debug", "json")
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	log.WithField("round", 1085).Info("hello")
	assert.Contains(t, buf.String(), `"round":1085`)

	buf.Reset()
	Setup(&buf, "loud", "text")
	assert.Equal(t, log.InfoLevel, log.GetLevel())
	assert.Contains(t, buf.String(), `Unknown log level`)
}
