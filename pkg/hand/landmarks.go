// Package hand provides hand landmark detection for the distance demo.
// Landmark layout follows the MediaPipe hand model convention of 21 points
// in normalized image coordinates.
package hand

import "image"

// Hand landmark indices.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point is a single landmark in normalized coordinates (0.0 to 1.0 spans the
// frame; values slightly outside that range occur when a finger leaves frame).
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Landmarks is one detected hand.
type Landmarks struct {
	Points [NumLandmarks]Point `json:"points"`
	Score  float64             `json:"score"`
}

// PixelPoints converts the normalized landmarks to pixel coordinates for a
// frame of the given size.
func (l *Landmarks) PixelPoints(width, height int) []image.Point {
	pts := make([]image.Point, NumLandmarks)
	for i, p := range l.Points {
		pts[i] = image.Pt(int(p.X*float64(width)), int(p.Y*float64(height)))
	}
	return pts
}

// PixelXs returns just the x coordinates in pixel space. The hand distance
// demo feeds these to the proximity estimator's perceived-width computation.
func (l *Landmarks) PixelXs(width int) []int {
	xs := make([]int, NumLandmarks)
	for i, p := range l.Points {
		xs[i] = int(p.X * float64(width))
	}
	return xs
}

// BoundingBox returns the pixel-space bounding box of the landmarks.
func (l *Landmarks) BoundingBox(width, height int) image.Rectangle {
	pts := l.PixelPoints(width, height)
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts[1:] {
		if p.X < minX {
			minX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	return image.Rect(minX, minY, maxX, maxY)
}

// Connections lists the landmark index pairs forming the hand skeleton,
// used when drawing the overlay.
var Connections = [][2]int{
	{Wrist, ThumbCMC}, {ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	{Wrist, IndexMCP}, {IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	{IndexMCP, MiddleMCP}, {MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	{MiddleMCP, RingMCP}, {RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	{RingMCP, PinkyMCP}, {Wrist, PinkyMCP}, {PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}
