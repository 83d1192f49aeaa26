// Package emotion labels facial expressions on camera frames.
// Inference runs through an external DNN model; this package owns the
// pre/post-processing and the label mapping.
package emotion

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Result is the classification outcome for one face.
type Result struct {
	// Label is the dominant emotion.
	Label string

	// Score is the softmax probability of the dominant label.
	Score float64

	// Scores holds the full probability distribution, index-aligned with
	// the classifier's label list.
	Scores []float64
}

// ErrModelNotLoaded is returned when the emotion model is not loaded.
var ErrModelNotLoaded = errors.New("emotion model not loaded")

// ErrInference is returned when the network fails on a frame.
var ErrInference = errors.New("emotion inference failed")

// ErrLabelMismatch is returned when the model output size does not match the
// configured label list.
var ErrLabelMismatch = errors.New("model output size does not match label count")

// Softmax converts raw logits to a probability distribution. The max logit is
// subtracted first to keep the exponentials in range.
func Softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}

	max := floats.Max(logits)
	probs := make([]float64, len(logits))
	for i, v := range logits {
		probs[i] = math.Exp(v - max)
	}
	floats.Scale(1/floats.Sum(probs), probs)
	return probs
}

// Dominant picks the winning label from a probability distribution.
func Dominant(probs []float64, labels []string) (string, float64, error) {
	if len(probs) != len(labels) || len(probs) == 0 {
		return "", 0, ErrLabelMismatch
	}
	idx := floats.MaxIdx(probs)
	return labels[idx], probs[idx], nil
}
