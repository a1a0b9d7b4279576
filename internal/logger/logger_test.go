package logger

import (
	"bytes"
	"errors"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStdLogger(t *testing.T) {
	var buf bytes.Buffer
	l := New(log.New(&buf, "", 0), Options{})

	_, isStd := l.(*StdLogger)
	assert.True(t, isStd, "no rollbar token should give the plain logger")

	l.Error("list courses failed", errors.New("boom"))
	assert.Contains(t, buf.String(), "[ERROR] list courses failed")
	assert.Contains(t, buf.String(), "boom")
}
