package ocr

import (
	"image"
	"testing"
)

func TestRunMidY(t *testing.T) {
	tests := []struct {
		name string
		poly []image.Point
		want float64
	}{
		{"quad", RectPolygon(image.Rect(0, 540, 100, 640)), 590},
		{"two points", []image.Point{{X: 0, Y: 10}, {X: 5, Y: 30}}, 20},
		{"one point", []image.Point{{X: 3, Y: 7}}, 7},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Run{Polygon: tt.poly}).MidY(); got != tt.want {
				t.Errorf("MidY() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	runs := []Run{{Text: "Choose "}, {Text: "if"}}
	if got := Join(runs); got != "Choose if" {
		t.Errorf("Join() = %q", got)
	}
	if Join(nil) != "" {
		t.Error("Join(nil) should be empty")
	}
}

func TestTooSmall(t *testing.T) {
	if !TooSmall(image.Rect(0, 0, 1, 1), 2) {
		t.Error("1x1 box should be below min size 2")
	}
	if TooSmall(image.Rect(0, 0, 1, 5), 2) {
		t.Error("box tall enough in one dimension should be kept")
	}
	if TooSmall(image.Rect(0, 0, 0, 0), 0) {
		t.Error("min size 0 keeps everything")
	}
}

func TestBounds(t *testing.T) {
	got := bounds([]image.Point{{X: 5, Y: 9}, {X: 1, Y: 12}, {X: 7, Y: 3}})
	if got != image.Rect(1, 3, 7, 12) {
		t.Errorf("bounds() = %v", got)
	}
}
