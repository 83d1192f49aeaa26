package app

import (
	"image"
	"testing"
)

func TestShouldQuit(t *testing.T) {
	tests := []struct {
		name     string
		key      int
		expected bool
	}{
		{"q quits", 'q', true},
		{"no key pending", -1, false},
		{"uppercase Q does not quit", 'Q', false},
		{"other key", 'x', false},
		{"escape", 27, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := shouldQuit(tt.key); got != tt.expected {
				t.Errorf("shouldQuit(%d) = %t, expected %t", tt.key, got, tt.expected)
			}
		})
	}
}

func TestClampRect(t *testing.T) {
	tests := []struct {
		name     string
		rect     image.Rectangle
		expected image.Rectangle
	}{
		{"fully inside", image.Rect(10, 10, 100, 100), image.Rect(10, 10, 100, 100)},
		{"spills right and bottom", image.Rect(500, 400, 700, 500), image.Rect(500, 400, 640, 480)},
		{"spills left and top", image.Rect(-20, -10, 50, 60), image.Rect(0, 0, 50, 60)},
		{"fully outside", image.Rect(700, 500, 800, 600), image.Rectangle{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clampRect(tt.rect, 640, 480)
			if tt.expected.Empty() {
				if !got.Empty() {
					t.Errorf("expected empty rect, got %v", got)
				}
				return
			}
			if got != tt.expected {
				t.Errorf("clampRect(%v) = %v, expected %v", tt.rect, got, tt.expected)
			}
		})
	}
}
