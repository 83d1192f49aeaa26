package app

import (
	"fmt"

	"gocv.io/x/gocv"

	"github.com/jmakovec/camsight/pkg/alert"
	"github.com/jmakovec/camsight/pkg/hand"
	"github.com/jmakovec/camsight/pkg/logging"
	"github.com/jmakovec/camsight/pkg/overlay"
	"github.com/jmakovec/camsight/pkg/proximity"
)

// HandDistDemo estimates the distance to each detected hand and raises the
// proximity alert when one is too close.
type HandDistDemo struct {
	detector     hand.Detector
	estimator    *proximity.Estimator
	alerter      alert.Alerter
	displayWidth int
	rgb          gocv.Mat
}

// NewHandDistDemo wires the hand detector, distance estimator, and alerter.
func NewHandDistDemo(detector hand.Detector, estimator *proximity.Estimator, alerter alert.Alerter, displayWidth int) *HandDistDemo {
	return &HandDistDemo{
		detector:     detector,
		estimator:    estimator,
		alerter:      alerter,
		displayWidth: displayWidth,
		rgb:          gocv.NewMat(),
	}
}

// Name implements Demo.
func (d *HandDistDemo) Name() string { return "Hand Distance Measurement" }

// DisplayWidth implements Demo.
func (d *HandDistDemo) DisplayWidth() int { return d.displayWidth }

// Process implements Demo.
func (d *HandDistDemo) Process(frame *gocv.Mat) error {
	// The landmark model expects RGB input; capture frames are BGR.
	gocv.CvtColor(*frame, &d.rgb, gocv.ColorBGRToRGB)

	hands, err := d.detector.Detect(&d.rgb)
	if err != nil {
		return err
	}

	if len(hands) == 0 {
		overlay.Banner(frame, "No hand detected", overlay.Red)
		return nil
	}

	width, height := frame.Cols(), frame.Rows()
	for i := range hands {
		h := &hands[i]

		perceived := proximity.PerceivedWidth(h.PixelXs(width))
		est := d.estimator.Estimate(perceived)
		if !est.Valid {
			logging.Warn("Perceived width is zero, cannot estimate distance")
		}

		box := h.BoundingBox(width, height)
		pts := h.PixelPoints(width, height)

		overlay.DrawBox(frame, box, overlay.Green)
		overlay.DrawLabel(frame, fmt.Sprintf("Distance: %.2f cm", est.DistanceCM), box, overlay.Green)
		overlay.DrawSkeleton(frame, pts, hand.Connections, overlay.Green)
		overlay.DrawLandmarks(frame, pts, overlay.Green)

		if d.estimator.ShouldAlert(est) {
			d.alerter.Alert(est.DistanceCM)
		}
	}

	return nil
}

// Close implements Demo.
func (d *HandDistDemo) Close() error {
	d.rgb.Close()
	return d.detector.Close()
}
