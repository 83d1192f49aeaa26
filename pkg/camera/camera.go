// Package camera provides camera access and frame capture functionality.
// It wraps an OpenCV VideoCapture behind a small interface so frame loops can
// run against a mock source in tests.
package camera

import (
	"errors"
	"fmt"

	"gocv.io/x/gocv"

	"github.com/jmakovec/camsight/pkg/logging"
)

// Camera defines the interface for camera operations.
type Camera interface {
	Open(device string) error
	Close() error
	// Capture reads the next frame into dst. Returns ErrNoFrame when the
	// source yields no frame (end of stream or transient read failure).
	Capture(dst *gocv.Mat) error
	SetResolution(width, height int) error
}

// ErrCameraNotFound is returned when the camera device cannot be opened.
var ErrCameraNotFound = errors.New("camera device not found")

// ErrCameraNotOpen is returned when trying to capture from a closed camera.
var ErrCameraNotOpen = errors.New("camera not open")

// ErrNoFrame is returned when no frame could be captured.
var ErrNoFrame = errors.New("failed to capture frame")

// Webcam is the gocv-backed Camera implementation.
type Webcam struct {
	cap    *gocv.VideoCapture
	device string
	open   bool
}

// NewWebcam creates an unopened Webcam.
func NewWebcam() *Webcam {
	return &Webcam{}
}

// Open opens the given device. The device may be a path like /dev/video0;
// OpenCV also accepts bare indices, which gocv parses from numeric strings.
func (w *Webcam) Open(device string) error {
	if w.open {
		return nil
	}

	cap, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCameraNotFound, device, err)
	}
	if !cap.IsOpened() {
		_ = cap.Close()
		return fmt.Errorf("%w: %s", ErrCameraNotFound, device)
	}

	w.cap = cap
	w.device = device
	w.open = true

	logging.Component("camera").Infof("Opened device %s", device)
	return nil
}

// Close releases the capture device.
func (w *Webcam) Close() error {
	if !w.open {
		return nil
	}
	w.open = false

	err := w.cap.Close()
	w.cap = nil

	logging.Component("camera").Infof("Closed device %s", w.device)
	return err
}

// Capture reads the next frame into dst.
func (w *Webcam) Capture(dst *gocv.Mat) error {
	if !w.open {
		return ErrCameraNotOpen
	}

	if ok := w.cap.Read(dst); !ok {
		return ErrNoFrame
	}
	if dst.Empty() {
		return ErrNoFrame
	}
	return nil
}

// SetResolution requests a capture resolution. Drivers are free to pick the
// nearest supported mode, so this is best effort.
func (w *Webcam) SetResolution(width, height int) error {
	if !w.open {
		return ErrCameraNotOpen
	}

	w.cap.Set(gocv.VideoCaptureFrameWidth, float64(width))
	w.cap.Set(gocv.VideoCaptureFrameHeight, float64(height))
	return nil
}

// SetFPS requests a capture frame rate, best effort like SetResolution.
func (w *Webcam) SetFPS(fps int) error {
	if !w.open {
		return ErrCameraNotOpen
	}
	w.cap.Set(gocv.VideoCaptureFPS, float64(fps))
	return nil
}
