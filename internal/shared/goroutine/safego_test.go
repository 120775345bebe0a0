package goroutine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rolegate/rolegate/internal/shared/logger"
)

func TestSafeGo_RecoversPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(1)

	SafeGo(logger.NewNopLogger(), "panicker", func() {
		defer wg.Done()
		panic("boom")
	})

	wg.Wait()
}

func TestRun_ExecutesInline(t *testing.T) {
	called := false
	Run(logger.NewNopLogger(), "inline", func() { called = true })
	assert.True(t, called)

	assert.NotPanics(t, func() {
		Run(logger.NewNopLogger(), "inline-panic", func() { panic("x") })
	})
}
