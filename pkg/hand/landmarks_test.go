package hand

import (
	"image"
	"testing"
)

// spreadLandmarks places the 21 points on a diagonal between two corners in
// normalized coordinates.
func spreadLandmarks(x0, y0, x1, y1 float64) Landmarks {
	var lm Landmarks
	for i := 0; i < NumLandmarks; i++ {
		t := float64(i) / float64(NumLandmarks-1)
		lm.Points[i] = Point{X: x0 + t*(x1-x0), Y: y0 + t*(y1-y0)}
	}
	return lm
}

func TestPixelPoints(t *testing.T) {
	lm := spreadLandmarks(0.0, 0.0, 1.0, 1.0)
	pts := lm.PixelPoints(640, 480)

	if len(pts) != NumLandmarks {
		t.Fatalf("expected %d points, got %d", NumLandmarks, len(pts))
	}
	if pts[0] != image.Pt(0, 0) {
		t.Errorf("expected first point (0,0), got %v", pts[0])
	}
	last := pts[NumLandmarks-1]
	if last != image.Pt(640, 480) {
		t.Errorf("expected last point (640,480), got %v", last)
	}
}

func TestPixelXs(t *testing.T) {
	lm := spreadLandmarks(0.25, 0.1, 0.75, 0.9)
	xs := lm.PixelXs(400)

	if len(xs) != NumLandmarks {
		t.Fatalf("expected %d values, got %d", NumLandmarks, len(xs))
	}
	if xs[0] != 100 {
		t.Errorf("expected first x 100, got %d", xs[0])
	}
	if xs[NumLandmarks-1] != 300 {
		t.Errorf("expected last x 300, got %d", xs[NumLandmarks-1])
	}
}

func TestBoundingBox(t *testing.T) {
	lm := spreadLandmarks(0.25, 0.25, 0.5, 0.75)
	box := lm.BoundingBox(400, 400)

	expected := image.Rect(100, 100, 200, 300)
	if box != expected {
		t.Errorf("expected box %v, got %v", expected, box)
	}
}

func TestBoundingBox_SinglePointCluster(t *testing.T) {
	var lm Landmarks
	for i := 0; i < NumLandmarks; i++ {
		lm.Points[i] = Point{X: 0.5, Y: 0.5}
	}
	box := lm.BoundingBox(200, 200)
	if box.Dx() != 0 || box.Dy() != 0 {
		t.Errorf("expected degenerate box, got %v", box)
	}
}

func TestParseLandmarks(t *testing.T) {
	raw := make([]float32, landmarkValues)
	for i := 0; i < NumLandmarks; i++ {
		raw[i*3] = float32(i)            // x in input-pixel space
		raw[i*3+1] = float32(i) * 2      // y
		raw[i*3+2] = -float32(i)         // z
	}

	lm := parseLandmarks(raw, 0.92)
	if lm.Score != 0.92 {
		t.Errorf("expected score 0.92, got %f", lm.Score)
	}
	// Pixel space 0..223 maps to 0..~1
	if lm.Points[0].X != 0 {
		t.Errorf("expected first x 0, got %f", lm.Points[0].X)
	}
	wantX := 10.0 / netInputSize
	if lm.Points[10].X != wantX {
		t.Errorf("expected x %f, got %f", wantX, lm.Points[10].X)
	}
	wantY := 20.0 / netInputSize
	if lm.Points[10].Y != wantY {
		t.Errorf("expected y %f, got %f", wantY, lm.Points[10].Y)
	}
}

func TestConnections_IndicesInRange(t *testing.T) {
	for _, c := range Connections {
		for _, idx := range c {
			if idx < 0 || idx >= NumLandmarks {
				t.Errorf("connection index %d out of range", idx)
			}
		}
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaxHands != 2 {
		t.Errorf("expected max hands 2, got %d", cfg.MaxHands)
	}
	if cfg.MinConfidence != 0.7 {
		t.Errorf("expected min confidence 0.7, got %f", cfg.MinConfidence)
	}
	if cfg.MinTrackingConf != 0.7 {
		t.Errorf("expected min tracking confidence 0.7, got %f", cfg.MinTrackingConf)
	}
}
