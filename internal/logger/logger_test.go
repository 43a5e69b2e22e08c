package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New("scheduler").Output(&buf)

	l.Info().Msg("Scheduler started")
	assert.Contains(t, buf.String(), `"component":"scheduler"`)
	assert.Contains(t, buf.String(), `"message":"Scheduler started"`)
}
