package detector

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"

	apperrors "github.com/GriffinCanCode/autoquiz/internal/errors"
)

// Fingerprint is a compact perceptual summary of a region.
type Fingerprint []uint8

// Fingerprinter computes and compares fingerprints.
type Fingerprinter interface {
	Fingerprint(img image.Image) (Fingerprint, error)
	// Changed reports whether curr differs meaningfully from prev, and by how much.
	Changed(prev, curr Fingerprint) (bool, float64)
}

// Grid fingerprints an image as a GridSize x GridSize luma thumbnail.
type Grid struct {
	Threshold float64
}

// NewGrid creates a grid fingerprinter; a non-positive threshold uses the default.
func NewGrid(threshold float64) Grid {
	if threshold <= 0 {
		threshold = DefaultNoiseThreshold
	}
	return Grid{Threshold: threshold}
}

// Fingerprint shrinks img with nearest-neighbour sampling and keeps one luma
// value per cell.
func (g Grid) Fingerprint(img image.Image) (Fingerprint, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, apperrors.New(apperrors.InvalidArgument, "empty image")
	}
	thumb := resize.Resize(GridSize, GridSize, img, resize.NearestNeighbor)
	b := thumb.Bounds()
	fp := make(Fingerprint, 0, GridSize*GridSize)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			fp = append(fp, color.GrayModel.Convert(thumb.At(x, y)).(color.Gray).Y)
		}
	}
	return fp, nil
}

// Changed compares by mean absolute per-cell difference.
func (g Grid) Changed(prev, curr Fingerprint) (bool, float64) {
	d := MeanAbsDiff(prev, curr)
	return d >= g.Threshold, d
}

// MeanAbsDiff is symmetric and zero for identical fingerprints. Fingerprints
// of different or zero length are maximally different.
func MeanAbsDiff(a, b Fingerprint) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return maxDistance
	}
	sum := 0
	for i := range a {
		d := int(a[i]) - int(b[i])
		if d < 0 {
			d = -d
		}
		sum += d
	}
	return float64(sum) / float64(len(a))
}

// Perceptual fingerprints an image with a 64-bit pHash.
type Perceptual struct {
	MaxDistance int
}

// NewPerceptual creates a pHash fingerprinter; a negative distance uses the default.
func NewPerceptual(maxDistance int) Perceptual {
	if maxDistance < 0 {
		maxDistance = DefaultMaxHashDistance
	}
	return Perceptual{MaxDistance: maxDistance}
}

func (p Perceptual) Fingerprint(img image.Image) (Fingerprint, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, apperrors.New(apperrors.InvalidArgument, "empty image")
	}
	hash, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "perception hash")
	}
	fp := make(Fingerprint, 8)
	binary.BigEndian.PutUint64(fp, hash.GetHash())
	return fp, nil
}

// Changed compares by Hamming distance between the two hashes.
func (p Perceptual) Changed(prev, curr Fingerprint) (bool, float64) {
	if len(prev) != 8 || len(curr) != 8 {
		return true, maxDistance
	}
	a := goimagehash.NewImageHash(binary.BigEndian.Uint64(prev), goimagehash.PHash)
	b := goimagehash.NewImageHash(binary.BigEndian.Uint64(curr), goimagehash.PHash)
	dist, err := a.Distance(b)
	if err != nil {
		return true, maxDistance
	}
	return dist > p.MaxDistance, float64(dist)
}
