package monitor

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"gocv.io/x/gocv"

	"github.com/MDidoStar/blinkwell/internal/blink"
)

var (
	overlayGreen = color.RGBA{R: 0, G: 255, B: 0, A: 0}
	overlayGray  = color.RGBA{R: 200, G: 200, B: 200, A: 0}
	overlayWhite = color.RGBA{R: 255, G: 255, B: 255, A: 0}
)

// drawOverlay renders the session readout onto the mirrored frame: the
// current minute's count against the target at the bottom left, remaining
// session time at the top left, and the reminder glyph in the top-right
// corner while a reminder is visible.
func drawOverlay(frame *gocv.Mat, snap blink.Snapshot, reminder bool, now time.Time) {
	counter := fmt.Sprintf("Blinks/min: %d / %d", snap.Blinks, snap.Target)
	gocv.PutText(frame, counter,
		image.Pt(10, frame.Rows()-10),
		gocv.FontHersheySimplex, 0.6, overlayGreen, 2)

	gocv.PutText(frame, "Time left: "+formatClock(snap.RemainingSeconds),
		image.Pt(10, 30),
		gocv.FontHersheySimplex, 0.6, overlayGray, 2)

	if reminder {
		drawReminderGlyph(frame, now)
	}
}

// drawReminderGlyph draws the blinking-eye reminder: an eye outline whose
// pupil toggles at 2 Hz, with a "Blink" label underneath.
func drawReminderGlyph(frame *gocv.Mat, now time.Time) {
	cx := frame.Cols() - 60
	cy := 50

	gocv.Ellipse(frame, image.Pt(cx, cy), image.Pt(22, 11), 0, 0, 360, overlayWhite, 2)

	if (now.UnixMilli()/500)%2 == 0 {
		gocv.Circle(frame, image.Pt(cx, cy), 3, overlayWhite, -1)
	}

	gocv.PutText(frame, "Blink",
		image.Pt(cx-20, cy+25),
		gocv.FontHersheySimplex, 0.5, overlayWhite, 2)
}

// formatClock renders whole seconds as m:ss.
func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
