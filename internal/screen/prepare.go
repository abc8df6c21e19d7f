package screen

import (
	"image"

	"golang.org/x/image/draw"
)

// Grayscale converts img to single-channel luma with the origin at (0,0).
func Grayscale(img image.Image) *image.Gray {
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// Upscale enlarges a grayscale image by an integer factor with bilinear
// filtering. Short prompt words ("if", "at") are lost by OCR at native size.
func Upscale(src *image.Gray, factor int) *image.Gray {
	if factor <= 1 {
		return src
	}
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
