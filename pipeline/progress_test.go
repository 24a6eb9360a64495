package pipeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker(t *testing.T) {
	t.Run("reports at interval boundaries only", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Start()

		tracker.Increment(4)
		assert.Empty(t, buf.String(), "under the interval nothing is written")

		tracker.Increment(6)
		assert.Contains(t, buf.String(), "10/100")

		buf.Reset()
		tracker.Increment(3)
		assert.Empty(t, buf.String(), "partial progress toward the next boundary stays quiet")
	})

	t.Run("finish completes the line", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 80, 25)
		tracker.Start()
		tracker.Increment(30)
		tracker.Finish()

		out := buf.String()
		assert.Contains(t, out, "80/80")
		assert.Contains(t, out, "100.0%")
		assert.Contains(t, out, "embeddings/s")
		assert.Contains(t, out, "\n", "the final line is terminated")
	})

	t.Run("overshoot clamps to the total", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 50, 10)
		tracker.Start()
		tracker.Increment(75)
		assert.Contains(t, buf.String(), "50/50")
	})

	t.Run("zero total never divides", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 0, 10)
		tracker.Start()
		tracker.Finish()
		assert.Contains(t, buf.String(), "0/0 (0.0%)")
	})

	t.Run("silent before start", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 100, 10)
		tracker.Increment(50)
		tracker.Finish()
		assert.Empty(t, buf.String())
	})

	t.Run("start resets an earlier run", func(t *testing.T) {
		var buf bytes.Buffer
		tracker := NewProgressTracker(&buf, 20, 5)
		tracker.Start()
		tracker.Increment(20)
		tracker.Finish()

		buf.Reset()
		tracker.Start()
		tracker.Increment(5)
		assert.Contains(t, buf.String(), "5/20")
	})
}
