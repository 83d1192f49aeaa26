// Package facemesh provides face detection and landmark extraction for the
// overlay demo. It uses dlib via go-face: the shape predictor supplies the
// landmark points drawn on each frame.
package facemesh

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/Kagami/go-face"

	"github.com/jmakovec/camsight/pkg/logging"
)

// Face is one detected face.
type Face struct {
	BoundingBox image.Rectangle
	Landmarks   []image.Point
}

// ErrNoFaceDetected is returned when no face is found in the image.
var ErrNoFaceDetected = errors.New("no face detected")

// ErrModelNotLoaded is returned when models are not loaded.
var ErrModelNotLoaded = errors.New("face landmark models not loaded")

// Engine is the subset of the dlib recognizer the detector needs. It exists
// so tests can substitute a mock.
type Engine interface {
	Recognize(imgData []byte) ([]face.Face, error)
	Close()
}

// EngineFactory constructs an Engine from a model directory.
type EngineFactory func(modelPath string) (Engine, error)

func dlibFactory(modelPath string) (Engine, error) {
	return face.NewRecognizer(modelPath)
}

// Detector detects faces and their landmark points in JPEG-encoded frames.
type Detector struct {
	engine    Engine
	factory   EngineFactory
	modelPath string
	maxFaces  int
	loaded    bool
	mu        sync.RWMutex
}

// NewDetector creates an unloaded Detector reporting at most maxFaces faces.
func NewDetector(maxFaces int) *Detector {
	if maxFaces <= 0 {
		maxFaces = 1
	}
	return &Detector{
		factory:  dlibFactory,
		maxFaces: maxFaces,
	}
}

// LoadModels loads the dlib models from the specified path. The path should
// contain:
// - shape_predictor_5_face_landmarks.dat
// - dlib_face_recognition_resnet_model_v1.dat
// - mmod_human_face_detector.dat (optional, for CNN detection)
func (d *Detector) LoadModels(modelPath string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.loaded {
		return nil
	}

	logging.Infof("Loading face landmark models from: %s", modelPath)

	engine, err := d.factory(modelPath)
	if err != nil {
		return fmt.Errorf("failed to load models: %w", err)
	}

	d.engine = engine
	d.modelPath = modelPath
	d.loaded = true

	logging.Info("Face landmark models loaded successfully")
	return nil
}

// IsLoaded returns true if models are loaded.
func (d *Detector) IsLoaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Close releases the engine resources.
func (d *Detector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.engine != nil {
		d.engine.Close()
		d.engine = nil
	}
	d.loaded = false
	return nil
}

// DetectFaces detects faces with landmarks in a JPEG-encoded image.
// Returns ErrNoFaceDetected when the frame contains no face.
func (d *Detector) DetectFaces(imgData []byte) ([]Face, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.loaded {
		return nil, ErrModelNotLoaded
	}

	detected, err := d.engine.Recognize(imgData)
	if err != nil {
		return nil, fmt.Errorf("face detection failed: %w", err)
	}

	if len(detected) == 0 {
		return nil, ErrNoFaceDetected
	}

	if len(detected) > d.maxFaces {
		detected = detected[:d.maxFaces]
	}

	result := make([]Face, len(detected))
	for i, f := range detected {
		result[i] = Face{
			BoundingBox: f.Rectangle,
			Landmarks:   append([]image.Point(nil), f.Shapes...),
		}
	}

	logging.Debugf("Detected %d face(s) in frame", len(result))
	return result, nil
}

// DetectSingleFace returns the first detected face.
func (d *Detector) DetectSingleFace(imgData []byte) (*Face, error) {
	faces, err := d.DetectFaces(imgData)
	if err != nil {
		return nil, err
	}
	return &faces[0], nil
}
