// Package proximity estimates object distance from its perceived pixel width
// using the pinhole camera model, and decides when the object is close enough
// to warrant an alert.
package proximity

import (
	"errors"
	"fmt"
)

// Calibration holds the camera calibration constants.
// Both values are fixed at startup and never change during a session.
type Calibration struct {
	// KnownWidthCM is the real-world width of the reference object in
	// centimeters (an average adult palm is about 8 cm).
	KnownWidthCM float64 `json:"known_width_cm"`

	// FocalLengthPX is the camera focal length in pixels, determined
	// experimentally per camera.
	FocalLengthPX float64 `json:"focal_length_pixels"`
}

// Estimate is the result of a single distance measurement.
// Valid is false for a degenerate measurement (zero perceived width); in that
// case DistanceCM is 0 and must not be read as a real distance.
type Estimate struct {
	DistanceCM float64
	Valid      bool
}

// ErrInvalidCalibration is returned when calibration constants are not positive.
var ErrInvalidCalibration = errors.New("calibration constants must be positive")

// EstimateDistance computes the distance to an object from its perceived width
// in pixels. A perceived width of zero (or less) yields an invalid estimate
// rather than an error: a frame with no measurable width is expected during
// normal operation.
//
// Formula: distance = (known_width * focal_length) / perceived_width
func EstimateDistance(perceivedWidthPX int, cal Calibration) Estimate {
	if perceivedWidthPX <= 0 {
		return Estimate{DistanceCM: 0, Valid: false}
	}
	return Estimate{
		DistanceCM: (cal.KnownWidthCM * cal.FocalLengthPX) / float64(perceivedWidthPX),
		Valid:      true,
	}
}

// ShouldAlert reports whether an estimate warrants a proximity alert.
// Only valid estimates strictly between zero and the threshold alert;
// the threshold itself is excluded.
func ShouldAlert(e Estimate, thresholdCM float64) bool {
	return e.Valid && e.DistanceCM > 0 && e.DistanceCM < thresholdCM
}

// PerceivedWidth returns the pixel width of the bounding box spanned by the
// given x coordinates, i.e. max(x) - min(x). Returns 0 for fewer than two
// points, which downstream becomes an invalid estimate.
func PerceivedWidth(xs []int) int {
	if len(xs) < 2 {
		return 0
	}
	minX, maxX := xs[0], xs[0]
	for _, x := range xs[1:] {
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
	}
	return maxX - minX
}

// FocalLengthFromReference derives the focal length in pixels from a reference
// capture of an object with known width held at a known distance. This is the
// pinhole formula solved for F and backs the calibrate command.
func FocalLengthFromReference(perceivedWidthPX int, knownWidthCM, knownDistanceCM float64) (float64, error) {
	if perceivedWidthPX <= 0 {
		return 0, fmt.Errorf("perceived width must be positive, got %d", perceivedWidthPX)
	}
	if knownWidthCM <= 0 || knownDistanceCM <= 0 {
		return 0, ErrInvalidCalibration
	}
	return (float64(perceivedWidthPX) * knownDistanceCM) / knownWidthCM, nil
}

// Estimator binds a calibration and alert threshold so per-frame callers do
// not have to thread the constants through.
type Estimator struct {
	cal         Calibration
	thresholdCM float64
}

// NewEstimator creates an Estimator. Calibration constants and the threshold
// must be positive.
func NewEstimator(cal Calibration, thresholdCM float64) (*Estimator, error) {
	if cal.KnownWidthCM <= 0 || cal.FocalLengthPX <= 0 {
		return nil, ErrInvalidCalibration
	}
	if thresholdCM <= 0 {
		return nil, fmt.Errorf("alert threshold must be positive, got %f", thresholdCM)
	}
	return &Estimator{cal: cal, thresholdCM: thresholdCM}, nil
}

// Calibration returns the calibration in use.
func (e *Estimator) Calibration() Calibration {
	return e.cal
}

// Estimate computes the distance estimate for one perceived width.
func (e *Estimator) Estimate(perceivedWidthPX int) Estimate {
	return EstimateDistance(perceivedWidthPX, e.cal)
}

// ShouldAlert reports whether the estimate is inside the alert range.
func (e *Estimator) ShouldAlert(est Estimate) bool {
	return ShouldAlert(est, e.thresholdCM)
}
