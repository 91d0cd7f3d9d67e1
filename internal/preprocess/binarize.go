package preprocess

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Options controls binarization.
type Options struct {
	// BlurRadius is the Gaussian blur radius applied before thresholding.
	// Zero disables blurring.
	BlurRadius float64

	// Threshold is the fixed binarization level (1-255). Zero selects the
	// level per frame with Otsu's method.
	Threshold uint8

	// Invert flips foreground and background, for dark cards on light mats.
	Invert bool
}

// DefaultOptions blurs lightly and picks the threshold automatically.
func DefaultOptions() Options {
	return Options{BlurRadius: 2}
}

// Binarize converts img to a binary image with white foreground.
func Binarize(img image.Image, opts Options) *image.Gray {
	work := img
	if opts.BlurRadius > 0 {
		work = blur.Gaussian(work, opts.BlurRadius)
	}
	gray := effect.Grayscale(work)

	level := opts.Threshold
	if level == 0 {
		level = otsuLevel(gray)
	}

	bin := segment.Threshold(gray, level)
	if opts.Invert {
		for i := range bin.Pix {
			bin.Pix[i] = 255 - bin.Pix[i]
		}
	}
	return bin
}

// Luminance returns the perceptual lightness of a color in [0, 1], using
// the L* component of the CIE Lab space.
func Luminance(c color.Color) float64 {
	cf, ok := colorful.MakeColor(c)
	if !ok {
		return 0
	}
	l, _, _ := cf.Lab()
	if l < 0 {
		return 0
	}
	if l > 1 {
		return 1
	}
	return l
}

// otsuLevel picks the threshold that maximizes between-class variance of
// the image's lightness histogram.
func otsuLevel(img image.Image) uint8 {
	var hist [256]int
	total := 0

	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			bin := int(Luminance(img.At(x, y)) * 255)
			hist[bin]++
			total++
		}
	}
	if total == 0 {
		return 128
	}

	var sum float64
	for i, n := range hist {
		sum += float64(i) * float64(n)
	}

	var sumB, wB float64
	best := 128
	bestVar := -1.0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])

		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			best = t
		}
	}
	return uint8(best)
}
