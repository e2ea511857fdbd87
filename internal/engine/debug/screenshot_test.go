package debug

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/internal/engine/gfx/gfxtest"
)

func fixedClock(sc *ScreenshotCapture) {
	sc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC) }
}

func TestGenerateFilename(t *testing.T) {
	sc := NewScreenshotCapture("shots", "roguelike")
	fixedClock(sc)
	assert.Equal(t, filepath.Join("shots", "roguelike_2024-03-01_12-30-45.000.webp"), sc.GenerateFilename())
}

func TestCaptureFromPixelsRejectsBadSize(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "x")
	_, err := sc.CaptureFromPixels(make([]byte, 10), 2, 2)
	assert.Error(t, err)
}

func TestCaptureWritesWebP(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	sc := NewScreenshotCapture(dir, "roguelike")
	fixedClock(sc)
	ctx := gfxtest.New()
	ctx.BindTarget(gfx.Target(7))

	path, err := sc.Capture(ctx, 4, 3)
	require.NoError(t, err)
	assert.Equal(t, gfx.DefaultTarget, ctx.Target)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))
}
