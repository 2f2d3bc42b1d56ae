package uploader_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Delyplott/DelyPlot-Web/internal/uploader"
)

func TestBackoff_DefaultSequence(t *testing.T) {
	b := uploader.DefaultBackoff()

	want := []int64{600, 690, 793, 911, 1047, 1204, 1384, 1591, 1829, 2103, 2200, 2200}
	for i, ms := range want {
		assert.Equal(t, time.Duration(ms)*time.Millisecond, b.Next(), "delay %d", i)
	}

	b.Reset()
	assert.Equal(t, 600*time.Millisecond, b.Next())
}

func TestBackoff_NeverDecreases(t *testing.T) {
	b := uploader.Backoff{Initial: 7 * time.Millisecond, Max: time.Second}

	prev := time.Duration(0)
	for i := 0; i < 100; i++ {
		d := b.Next()
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, time.Second)
		prev = d
	}
}

func TestBackoff_InitialAboveMax(t *testing.T) {
	b := uploader.Backoff{Initial: 5 * time.Second, Max: time.Second}

	assert.Equal(t, time.Second, b.Next())
}
