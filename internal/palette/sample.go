package palette

import (
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

const (
	sampleStride   = 2
	minAlpha       = 128
	maxBrightness  = 250
	minBrightness  = 5
	minPixelSample = 10
)

// WeightedPixel is a sampled pixel with a spatial importance weight.
type WeightedPixel struct {
	R, G, B uint8
	Weight  float64
}

func (p WeightedPixel) channel(c int) uint8 {
	switch c {
	case 0:
		return p.R
	case 1:
		return p.G
	default:
		return p.B
	}
}

// toCanvas stretches img onto a size x size canvas, ignoring aspect ratio.
func toCanvas(img image.Image, size int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

// samplePixels walks the canvas at a fixed stride and returns the pixels that survive the alpha and
// brightness filters, weighted toward the center by centerBias.
func samplePixels(canvas *image.NRGBA, centerBias float64) []WeightedPixel {
	bounds := canvas.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	cx, cy := float64(width)/2, float64(height)/2
	maxDistance := math.Hypot(cx, cy)
	if maxDistance == 0 {
		maxDistance = 1
	}

	pixels := make([]WeightedPixel, 0, (width/sampleStride+1)*(height/sampleStride+1))
	for y := 0; y < height; y += sampleStride {
		row := y * canvas.Stride
		for x := 0; x < width; x += sampleStride {
			i := row + x*4
			r, g, b, a := canvas.Pix[i], canvas.Pix[i+1], canvas.Pix[i+2], canvas.Pix[i+3]
			if a < minAlpha {
				continue
			}

			brightness := float64(int(r)+int(g)+int(b)) / 3
			if brightness > maxBrightness || brightness < minBrightness {
				continue
			}

			d := math.Hypot(float64(x)-cx, float64(y)-cy) / maxDistance
			weight := 1 + (centerBias-1)*math.Exp(-2*d*d)

			pixels = append(pixels, WeightedPixel{R: r, G: g, B: b, Weight: weight})
		}
	}
	return pixels
}
