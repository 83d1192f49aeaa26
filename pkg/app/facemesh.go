package app

import (
	"errors"

	"gocv.io/x/gocv"

	"github.com/jmakovec/camsight/pkg/facemesh"
	"github.com/jmakovec/camsight/pkg/overlay"
)

// FaceMeshDemo draws the face landmark points on each frame.
type FaceMeshDemo struct {
	detector     *facemesh.Detector
	displayWidth int
}

// NewFaceMeshDemo creates the landmark overlay demo.
func NewFaceMeshDemo(detector *facemesh.Detector, displayWidth int) *FaceMeshDemo {
	return &FaceMeshDemo{detector: detector, displayWidth: displayWidth}
}

// Name implements Demo.
func (d *FaceMeshDemo) Name() string { return "Face Landmarks" }

// DisplayWidth implements Demo.
func (d *FaceMeshDemo) DisplayWidth() int { return d.displayWidth }

// Process implements Demo.
func (d *FaceMeshDemo) Process(frame *gocv.Mat) error {
	// dlib consumes encoded images, not raw Mats.
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return err
	}
	defer buf.Close()

	faces, err := d.detector.DetectFaces(buf.GetBytes())
	if err != nil {
		// A frame without a face is normal; show it unannotated.
		if errors.Is(err, facemesh.ErrNoFaceDetected) {
			return nil
		}
		return err
	}

	for _, f := range faces {
		overlay.DrawLandmarks(frame, f.Landmarks, overlay.Green)
	}

	return nil
}

// Close implements Demo.
func (d *FaceMeshDemo) Close() error {
	return d.detector.Close()
}
