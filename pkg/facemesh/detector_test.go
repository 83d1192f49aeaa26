package facemesh

import (
	"errors"
	"image"
	"testing"

	"github.com/Kagami/go-face"
)

func mockDetector(engine Engine) *Detector {
	d := NewDetector(1)
	d.factory = func(path string) (Engine, error) {
		return engine, nil
	}
	return d
}

func TestNewDetector(t *testing.T) {
	d := NewDetector(2)
	if d == nil {
		t.Fatal("NewDetector returned nil")
	}
	if d.maxFaces != 2 {
		t.Errorf("expected max faces 2, got %d", d.maxFaces)
	}
	if d.IsLoaded() {
		t.Error("expected detector to start unloaded")
	}
}

func TestNewDetector_ClampsMaxFaces(t *testing.T) {
	d := NewDetector(0)
	if d.maxFaces != 1 {
		t.Errorf("expected max faces clamped to 1, got %d", d.maxFaces)
	}
}

func TestLoadModels(t *testing.T) {
	d := mockDetector(&MockEngine{})

	if err := d.LoadModels("/tmp/models"); err != nil {
		t.Errorf("LoadModels failed: %v", err)
	}
	if !d.IsLoaded() {
		t.Error("expected loaded to be true")
	}

	// Load again (should be no-op)
	if err := d.LoadModels("/tmp/models"); err != nil {
		t.Errorf("LoadModels failed on second call: %v", err)
	}
}

func TestLoadModels_Failure(t *testing.T) {
	d := NewDetector(1)
	d.factory = func(path string) (Engine, error) {
		return nil, errors.New("load failed")
	}

	if err := d.LoadModels("/tmp/models"); err == nil {
		t.Error("expected LoadModels to fail")
	}
	if d.IsLoaded() {
		t.Error("expected loaded to be false")
	}
}

func TestDetectFaces(t *testing.T) {
	engine := &MockEngine{
		RecognizeFunc: func(data []byte) ([]face.Face, error) {
			return []face.Face{
				{
					Rectangle: image.Rect(10, 20, 110, 140),
					Shapes:    []image.Point{{X: 30, Y: 50}, {X: 90, Y: 50}},
				},
			}, nil
		},
	}
	d := mockDetector(engine)
	_ = d.LoadModels("dummy")

	faces, err := d.DetectFaces([]byte("image"))
	if err != nil {
		t.Fatalf("DetectFaces failed: %v", err)
	}
	if len(faces) != 1 {
		t.Fatalf("expected 1 face, got %d", len(faces))
	}
	if faces[0].BoundingBox != image.Rect(10, 20, 110, 140) {
		t.Errorf("unexpected bounding box %v", faces[0].BoundingBox)
	}
	if len(faces[0].Landmarks) != 2 {
		t.Errorf("expected 2 landmarks, got %d", len(faces[0].Landmarks))
	}
}

func TestDetectFaces_NotLoaded(t *testing.T) {
	d := NewDetector(1)
	if _, err := d.DetectFaces([]byte("image")); !errors.Is(err, ErrModelNotLoaded) {
		t.Errorf("expected ErrModelNotLoaded, got %v", err)
	}
}

func TestDetectFaces_NoFace(t *testing.T) {
	d := mockDetector(&MockEngine{
		RecognizeFunc: func(data []byte) ([]face.Face, error) {
			return []face.Face{}, nil
		},
	})
	_ = d.LoadModels("dummy")

	if _, err := d.DetectFaces([]byte("image")); !errors.Is(err, ErrNoFaceDetected) {
		t.Errorf("expected ErrNoFaceDetected, got %v", err)
	}
}

func TestDetectFaces_Error(t *testing.T) {
	d := mockDetector(&MockEngine{
		RecognizeFunc: func(data []byte) ([]face.Face, error) {
			return nil, errors.New("engine error")
		},
	})
	_ = d.LoadModels("dummy")

	if _, err := d.DetectFaces([]byte("image")); err == nil {
		t.Error("expected error")
	}
}

func TestDetectFaces_MaxFaces(t *testing.T) {
	d := mockDetector(&MockEngine{
		RecognizeFunc: func(data []byte) ([]face.Face, error) {
			return []face.Face{
				{Rectangle: image.Rect(0, 0, 100, 100)},
				{Rectangle: image.Rect(100, 100, 200, 200)},
				{Rectangle: image.Rect(200, 200, 300, 300)},
			}, nil
		},
	})
	_ = d.LoadModels("dummy")

	faces, err := d.DetectFaces([]byte("image"))
	if err != nil {
		t.Fatalf("DetectFaces failed: %v", err)
	}
	if len(faces) != 1 {
		t.Errorf("expected faces truncated to 1, got %d", len(faces))
	}
}

func TestDetectSingleFace(t *testing.T) {
	d := mockDetector(&MockEngine{
		RecognizeFunc: func(data []byte) ([]face.Face, error) {
			return []face.Face{
				{Rectangle: image.Rect(0, 0, 100, 100)},
			}, nil
		},
	})
	_ = d.LoadModels("dummy")

	f, err := d.DetectSingleFace([]byte("image"))
	if err != nil {
		t.Fatalf("DetectSingleFace failed: %v", err)
	}
	if f == nil {
		t.Fatal("expected face, got nil")
	}
}

func TestClose(t *testing.T) {
	closed := false
	d := mockDetector(&MockEngine{
		CloseFunc: func() { closed = true },
	})
	_ = d.LoadModels("dummy")

	if err := d.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if !closed {
		t.Error("expected engine to be closed")
	}
	if d.IsLoaded() {
		t.Error("expected loaded to be false")
	}
}
