package flags

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStore(t *testing.T) {
	s := NewStore(false)
	assert.False(t, s.GeminiEnabled())

	assert.True(t, s.Set(true))
	assert.True(t, s.GeminiEnabled())
	assert.False(t, s.Set(true), "setting the same value is not a change")

	assert.Equal(t, Flags{EnableGemini: true}, s.Snapshot())
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(false)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(v bool) {
			defer wg.Done()
			s.Set(v)
		}(i%2 == 0)
		go func() {
			defer wg.Done()
			_ = s.GeminiEnabled()
		}()
	}
	wg.Wait()
}
