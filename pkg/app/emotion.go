package app

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/jmakovec/camsight/pkg/emotion"
	"github.com/jmakovec/camsight/pkg/facemesh"
	"github.com/jmakovec/camsight/pkg/logging"
	"github.com/jmakovec/camsight/pkg/overlay"
)

// EmotionDemo finds a face, classifies its expression, and overlays the
// dominant emotion label.
type EmotionDemo struct {
	faces        *facemesh.Detector
	classifier   *emotion.NetClassifier
	displayWidth int
}

// NewEmotionDemo wires the face detector and emotion classifier.
func NewEmotionDemo(faces *facemesh.Detector, classifier *emotion.NetClassifier, displayWidth int) *EmotionDemo {
	return &EmotionDemo{faces: faces, classifier: classifier, displayWidth: displayWidth}
}

// Name implements Demo.
func (d *EmotionDemo) Name() string { return "Real-time Emotion Recognition" }

// DisplayWidth implements Demo.
func (d *EmotionDemo) DisplayWidth() int { return d.displayWidth }

// Process implements Demo.
func (d *EmotionDemo) Process(frame *gocv.Mat) error {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return err
	}
	defer buf.Close()

	face, err := d.faces.DetectSingleFace(buf.GetBytes())
	if err != nil {
		if errors.Is(err, facemesh.ErrNoFaceDetected) {
			logging.Debug("No face detected in frame")
			overlay.Banner(frame, "No face detected", overlay.Red)
			return nil
		}
		overlay.Banner(frame, "Analysis error", overlay.Red)
		return err
	}

	box := clampRect(face.BoundingBox, frame.Cols(), frame.Rows())
	if box.Empty() {
		overlay.Banner(frame, "No face detected", overlay.Red)
		return nil
	}

	crop := frame.Region(box)
	result, err := d.classifier.Classify(&crop)
	crop.Close()
	if err != nil {
		overlay.Banner(frame, "Analysis error", overlay.Red)
		return err
	}

	overlay.Banner(frame, fmt.Sprintf("Emotion: %s", result.Label), overlay.Green)
	return nil
}

// Close implements Demo.
func (d *EmotionDemo) Close() error {
	err := d.faces.Close()
	if cerr := d.classifier.Close(); err == nil {
		err = cerr
	}
	return err
}

// clampRect clips a rectangle to the frame bounds. Detectors may report
// boxes partially outside the frame near the edges.
func clampRect(r image.Rectangle, width, height int) image.Rectangle {
	return r.Intersect(image.Rect(0, 0, width, height))
}
