package emotion

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"github.com/jmakovec/camsight/pkg/logging"
)

// netInputSize is the square grayscale input resolution of the FER+ model.
const netInputSize = 64

// NetClassifier runs an emotion classification network through the OpenCV
// DNN module. The expected model is the FER+ ONNX export: 1x1x64x64
// grayscale input, one logit per label.
type NetClassifier struct {
	net    gocv.Net
	labels []string
	loaded bool
}

// NewNetClassifier loads the emotion model from an ONNX file.
func NewNetClassifier(modelFile string, labels []string) (*NetClassifier, error) {
	if len(labels) == 0 {
		return nil, ErrLabelMismatch
	}
	if _, err := os.Stat(modelFile); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrModelNotLoaded, modelFile)
	}

	net := gocv.ReadNetFromONNX(modelFile)
	if net.Empty() {
		return nil, fmt.Errorf("%w: failed to read %s", ErrModelNotLoaded, modelFile)
	}

	logging.Component("emotion").Infof("Loaded emotion model: %s (%d labels)", modelFile, len(labels))

	return &NetClassifier{
		net:    net,
		labels: append([]string(nil), labels...),
		loaded: true,
	}, nil
}

// Labels returns the label list in model output order.
func (c *NetClassifier) Labels() []string {
	return c.labels
}

// SetPreferences selects the DNN compute backend and target.
func (c *NetClassifier) SetPreferences(backend gocv.NetBackendType, target gocv.NetTargetType) error {
	if !c.loaded {
		return ErrModelNotLoaded
	}
	if err := c.net.SetPreferableBackend(backend); err != nil {
		return err
	}
	return c.net.SetPreferableTarget(target)
}

// Classify labels the emotion on a face crop (BGR Mat of any size).
func (c *NetClassifier) Classify(faceCrop *gocv.Mat) (Result, error) {
	if !c.loaded {
		return Result{}, ErrModelNotLoaded
	}
	if faceCrop.Empty() {
		return Result{}, fmt.Errorf("%w: empty face crop", ErrInference)
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(*faceCrop, &gray, gocv.ColorBGRToGray)

	blob := gocv.BlobFromImage(gray, 1.0, image.Pt(netInputSize, netInputSize),
		gocv.NewScalar(0, 0, 0, 0), false, false)
	defer blob.Close()

	c.net.SetInput(blob, "")

	out := c.net.Forward("")
	defer out.Close()

	raw, err := out.DataPtrFloat32()
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInference, err)
	}
	if len(raw) != len(c.labels) {
		return Result{}, fmt.Errorf("%w: got %d outputs for %d labels", ErrLabelMismatch, len(raw), len(c.labels))
	}

	logits := make([]float64, len(raw))
	for i, v := range raw {
		logits[i] = float64(v)
	}

	probs := Softmax(logits)
	label, score, err := Dominant(probs, c.labels)
	if err != nil {
		return Result{}, err
	}

	return Result{Label: label, Score: score, Scores: probs}, nil
}

// Close releases the network.
func (c *NetClassifier) Close() error {
	if !c.loaded {
		return nil
	}
	c.loaded = false
	return c.net.Close()
}
