// Package app runs the per-demo frame loop: capture, process, overlay,
// display, until the quit key is pressed.
package app

import (
	"errors"

	"gocv.io/x/gocv"

	"github.com/jmakovec/camsight/pkg/camera"
	"github.com/jmakovec/camsight/pkg/logging"
	"github.com/jmakovec/camsight/pkg/overlay"
)

// Demo processes one frame at a time, drawing its overlay in place.
type Demo interface {
	// Name is the window title.
	Name() string

	// Process runs inference on the frame and draws the overlay onto it.
	// An error marks this frame as failed; the loop logs it and moves on.
	Process(frame *gocv.Mat) error

	// DisplayWidth is the width frames are scaled to before display.
	DisplayWidth() int

	// Close releases detector resources.
	Close() error
}

// quitKey stops the loop.
const quitKey = 'q'

// shouldQuit reports whether the pressed key ends the loop. WaitKey returns
// -1 when no key is pending.
func shouldQuit(key int) bool {
	return key == quitKey
}

// Run drives the demo until the camera stops yielding frames or the quit key
// is pressed. The camera must already be open.
func Run(cam camera.Camera, demo Demo) error {
	log := logging.WithField("demo", demo.Name())

	window := gocv.NewWindow(demo.Name())
	defer window.Close()

	frame := gocv.NewMat()
	defer frame.Close()
	display := gocv.NewMat()
	defer display.Close()

	log.Infof("Starting. Press '%c' to quit.", quitKey)

	for {
		if err := cam.Capture(&frame); err != nil {
			if errors.Is(err, camera.ErrNoFrame) {
				log.Warn("Failed to grab frame from camera. Exiting loop.")
				break
			}
			return err
		}

		// A failed frame is skipped, not fatal: the raw frame still gets
		// displayed so the window does not freeze.
		if err := demo.Process(&frame); err != nil {
			log.WithError(err).Warn("Frame processing failed")
		}

		overlay.ResizeToWidth(&frame, &display, demo.DisplayWidth())
		window.IMShow(display)

		if shouldQuit(window.WaitKey(1)) {
			log.Infof("'%c' pressed. Exiting.", quitKey)
			break
		}
	}

	return nil
}
