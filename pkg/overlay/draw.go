// Package overlay draws detection results onto frames: bounding boxes,
// labels, landmark points, and status banners.
package overlay

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Colors used by the demos.
var (
	Green = color.RGBA{0, 255, 0, 0}
	Red   = color.RGBA{0, 0, 255, 0} // BGR frames: this renders red
)

const (
	boxThickness  = 2
	textThickness = 2
	landmarkDot   = 2
	labelScale    = 0.8
	bannerScale   = 1.0
)

// bannerOrigin is where status banners are placed, matching the demos'
// fixed (50,50) text position.
var bannerOrigin = image.Pt(50, 50)

// DrawBox draws a bounding box.
func DrawBox(frame *gocv.Mat, box image.Rectangle, c color.RGBA) {
	gocv.Rectangle(frame, box, c, boxThickness)
}

// DrawLabel writes a label just above the given box.
func DrawLabel(frame *gocv.Mat, text string, box image.Rectangle, c color.RGBA) {
	org := image.Pt(box.Min.X, box.Min.Y-10)
	if org.Y < 10 {
		org.Y = box.Max.Y + 20
	}
	gocv.PutText(frame, text, org, gocv.FontHersheySimplex, labelScale, c, textThickness)
}

// DrawLandmarks draws one dot per landmark point.
func DrawLandmarks(frame *gocv.Mat, points []image.Point, c color.RGBA) {
	for _, p := range points {
		gocv.Circle(frame, p, landmarkDot, c, -1)
	}
}

// DrawSkeleton draws lines between connected landmark points. Pairs with an
// index outside the point slice are skipped.
func DrawSkeleton(frame *gocv.Mat, points []image.Point, connections [][2]int, c color.RGBA) {
	for _, conn := range connections {
		a, b := conn[0], conn[1]
		if a >= len(points) || b >= len(points) {
			continue
		}
		gocv.Line(frame, points[a], points[b], c, 1)
	}
}

// Banner writes a status message in the top-left corner.
func Banner(frame *gocv.Mat, text string, c color.RGBA) {
	gocv.PutText(frame, text, bannerOrigin, gocv.FontHersheySimplex, bannerScale, c, textThickness)
}

// FitWidth computes the display size for a frame scaled to displayWidth with
// the aspect ratio preserved. Returns the zero point for degenerate input.
func FitWidth(frameWidth, frameHeight, displayWidth int) image.Point {
	if frameWidth <= 0 || frameHeight <= 0 || displayWidth <= 0 {
		return image.Point{}
	}
	displayHeight := int(float64(frameHeight) * (float64(displayWidth) / float64(frameWidth)))
	return image.Pt(displayWidth, displayHeight)
}

// ResizeToWidth scales frame into dst at the given display width, keeping the
// aspect ratio. Frames already at the target width are copied as-is.
func ResizeToWidth(frame *gocv.Mat, dst *gocv.Mat, displayWidth int) {
	size := FitWidth(frame.Cols(), frame.Rows(), displayWidth)
	if size.X == 0 || size.X == frame.Cols() {
		frame.CopyTo(dst)
		return
	}
	gocv.Resize(*frame, dst, size, 0, 0, gocv.InterpolationLinear)
}
