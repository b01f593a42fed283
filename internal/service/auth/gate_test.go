package auth

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGate_Disabled(t *testing.T) {
	g := NewGate("")

	assert.False(t, g.Enabled())
	assert.True(t, g.Allowed("", ""))
	assert.NoError(t, g.Verify("anything", "s1"))
}

func TestGate_Verify(t *testing.T) {
	g := NewGate("default123")

	assert.ErrorIs(t, g.Verify("", "s1"), ErrMissingCredentials)
	assert.ErrorIs(t, g.Verify("default123", "  "), ErrMissingCredentials)
	assert.ErrorIs(t, g.Verify("nope", "s1"), ErrWrongPassword)
	assert.False(t, g.Allowed("s1", ""))

	require.NoError(t, g.Verify("default123", "s1"))
	assert.True(t, g.Allowed("s1", ""))
	assert.False(t, g.Allowed("s2", ""))
}

func TestGate_PasswordQuery(t *testing.T) {
	g := NewGate("default123")

	assert.True(t, g.Allowed("", "default123"))
	assert.False(t, g.Allowed("", "default12"))
	assert.False(t, g.Allowed("", ""))
}

func TestGate_ConcurrentVerify(t *testing.T) {
	g := NewGate("pw")

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i)
			assert.NoError(t, g.Verify("pw", id))
			assert.True(t, g.Allowed(id, ""))
		}()
	}
	wg.Wait()
}
