package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowIsPerKey(t *testing.T) {
	krl := New(1, 2, time.Minute)
	defer krl.Stop()

	assert.True(t, krl.Allow("a"))
	assert.True(t, krl.Allow("a"))
	assert.False(t, krl.Allow("a"), "burst exhausted")

	assert.True(t, krl.Allow("b"), "other keys keep their own bucket")
}

func TestSweepDropsIdleKeys(t *testing.T) {
	krl := New(1, 1, time.Minute)
	defer krl.Stop()

	krl.Allow("a")
	krl.Allow("b")
	assert.Equal(t, 2, krl.Len())

	assert.Equal(t, 0, krl.Sweep(time.Now()))
	assert.Equal(t, 2, krl.Sweep(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, krl.Len())
}
