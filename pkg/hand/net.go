package hand

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/jmakovec/camsight/pkg/logging"
)

const (
	// netInputSize is the square input resolution of the landmark model.
	netInputSize = 224

	// landmarkValues is the raw output length: 21 landmarks * (x, y, z).
	landmarkValues = NumLandmarks * 3
)

// NetOutputs names the model's output layers.
type NetOutputs struct {
	Landmarks string
	Score     string
}

// DefaultNetOutputs matches the standard ONNX export of the MediaPipe
// hand landmark model.
func DefaultNetOutputs() NetOutputs {
	return NetOutputs{Landmarks: "Identity", Score: "Identity_1"}
}

// NetDetector runs a hand landmark network through the OpenCV DNN module.
// The model regresses 21 landmarks over the whole frame plus a presence
// score; frames below MinConfidence report no hands.
type NetDetector struct {
	net     gocv.Net
	outputs NetOutputs
	config  Config
	loaded  bool
}

// NewNetDetector loads the landmark model from an ONNX file.
func NewNetDetector(modelFile string, cfg Config) (*NetDetector, error) {
	if _, err := os.Stat(modelFile); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotLoaded, modelFile)
	}

	net := gocv.ReadNetFromONNX(modelFile)
	if net.Empty() {
		return nil, fmt.Errorf("%w: failed to read %s", ErrModelNotLoaded, modelFile)
	}

	logging.Component("hand").Infof("Loaded landmark model: %s", modelFile)

	return &NetDetector{
		net:     net,
		outputs: DefaultNetOutputs(),
		config:  cfg,
		loaded:  true,
	}, nil
}

// SetPreferences selects the DNN compute backend and target.
func (d *NetDetector) SetPreferences(backend gocv.NetBackendType, target gocv.NetTargetType) error {
	if !d.loaded {
		return ErrModelNotLoaded
	}
	if err := d.net.SetPreferableBackend(backend); err != nil {
		return err
	}
	return d.net.SetPreferableTarget(target)
}

// Detect runs the landmark network on one frame.
func (d *NetDetector) Detect(frame *gocv.Mat) ([]Landmarks, error) {
	if !d.loaded {
		return nil, ErrModelNotLoaded
	}

	blob := gocv.BlobFromImage(*frame, 1.0/255.0, image.Pt(netInputSize, netInputSize),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")

	outs := d.net.ForwardLayers([]string{d.outputs.Landmarks, d.outputs.Score})
	if len(outs) != 2 {
		for i := range outs {
			outs[i].Close()
		}
		return nil, fmt.Errorf("%w: expected 2 outputs, got %d", ErrInference, len(outs))
	}
	defer func() {
		for i := range outs {
			outs[i].Close()
		}
	}()

	raw, err := outs[0].DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}
	if len(raw) < landmarkValues {
		return nil, fmt.Errorf("%w: short landmark output (%d values)", ErrInference, len(raw))
	}

	scoreData, err := outs[1].DataPtrFloat32()
	if err != nil || len(scoreData) == 0 {
		return nil, fmt.Errorf("%w: missing score output", ErrInference)
	}
	score := float64(scoreData[0])

	if score < d.config.MinConfidence {
		return nil, nil
	}

	lm := parseLandmarks(raw, score)
	return []Landmarks{lm}, nil
}

// parseLandmarks converts the raw model output (coordinates in input-pixel
// space) into normalized landmarks.
func parseLandmarks(raw []float32, score float64) Landmarks {
	lm := Landmarks{Score: score}
	for i := 0; i < NumLandmarks; i++ {
		lm.Points[i] = Point{
			X: float64(raw[i*3]) / netInputSize,
			Y: float64(raw[i*3+1]) / netInputSize,
			Z: float64(raw[i*3+2]) / netInputSize,
		}
	}
	return lm
}

// Close releases the network.
func (d *NetDetector) Close() error {
	if !d.loaded {
		return nil
	}
	d.loaded = false
	return d.net.Close()
}
