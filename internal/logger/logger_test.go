package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestDebugAndInfoGatedByVerbose(t *testing.T) {
	buf := capture(t)

	SetVerbose(false)
	Debug("fetched %d page(s)", 3)
	Info("pass complete")
	assert.Zero(t, buf.Len())

	SetVerbose(true)
	Debug("fetched %d page(s)", 3)
	Info("pass complete")
	assert.Equal(t, "debug: fetched 3 page(s)\npass complete\n", buf.String())
}

func TestWarnAlwaysPrints(t *testing.T) {
	buf := capture(t)

	SetVerbose(false)
	Warn("cursor not advanced: %d write(s) failed", 2)
	assert.Equal(t, "warning: cursor not advanced: 2 write(s) failed\n", buf.String())
}

func TestConcurrentUse(t *testing.T) {
	capture(t)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			SetVerbose(n%2 == 0)
			Debug("worker %d", n)
			Warn("worker %d", n)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
