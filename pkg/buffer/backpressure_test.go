package buffer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackpressureGateAllowsWithinBurst(t *testing.T) {
	g := newBackpressureGate(10, 5, 5*time.Second)
	allowed := 0
	for i := 0; i < 5; i++ {
		if g.AllowLow() {
			allowed++
		}
	}
	assert.Equal(t, 5, allowed)
}

func TestBackpressureGateRejectsDuringTripWindow(t *testing.T) {
	g := newBackpressureGate(100, 100, 50*time.Millisecond)
	g.Trip()
	assert.True(t, g.Active())
	assert.False(t, g.AllowLow())
}

func TestBackpressureGateResumesAfterWindowElapses(t *testing.T) {
	g := newBackpressureGate(100, 100, 10*time.Millisecond)
	g.Trip()
	time.Sleep(20 * time.Millisecond)
	assert.False(t, g.Active())
	assert.True(t, g.AllowLow())
}
