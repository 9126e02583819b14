package palette

import (
	"math"
	"sort"
)

// ColorCluster is a representative color produced by median cut, carrying the weight mass of its pixels.
type ColorCluster struct {
	Hex        string  `json:"hex"`
	RGB        RGB     `json:"rgb"`
	HSL        HSL     `json:"hsl"`
	LAB        LAB     `json:"lab"`
	Population float64 `json:"population"`
}

func newCluster(c RGB, population float64) ColorCluster {
	return ColorCluster{
		Hex:        c.Hex(),
		RGB:        c,
		HSL:        c.HSL(),
		LAB:        c.LAB(),
		Population: population,
	}
}

// withHSL returns a cluster re-derived from hsl, keeping population.
func (c ColorCluster) withHSL(hsl HSL, population float64) ColorCluster {
	rgb := hsl.RGB()
	return ColorCluster{
		Hex:        rgb.Hex(),
		RGB:        rgb,
		HSL:        hsl,
		LAB:        rgb.LAB(),
		Population: population,
	}
}

// splitDepth converts a target cluster count into a median cut recursion depth.
func splitDepth(clusterCount int) int {
	if clusterCount <= 1 {
		return 0
	}
	return int(math.Round(math.Log2(float64(clusterCount))))
}

// medianCut partitions pixels depth times along the widest channel and returns one cluster per leaf.
//
// A subset whose channels all have zero range is a leaf regardless of depth.
func medianCut(pixels []WeightedPixel, depth int) []ColorCluster {
	if len(pixels) == 0 {
		return nil
	}

	channel, spread := widestChannel(pixels)
	if depth <= 0 || len(pixels) < 2 || spread == 0 {
		return []ColorCluster{averageCluster(pixels)}
	}

	sort.SliceStable(pixels, func(i, j int) bool {
		return pixels[i].channel(channel) < pixels[j].channel(channel)
	})

	split := weightedMedian(pixels)
	left := medianCut(pixels[:split], depth-1)
	right := medianCut(pixels[split:], depth-1)
	return append(left, right...)
}

// widestChannel returns the channel index (0=R, 1=G, 2=B) with the largest value range and that range.
func widestChannel(pixels []WeightedPixel) (int, int) {
	var lo, hi [3]uint8
	lo = [3]uint8{255, 255, 255}

	for _, p := range pixels {
		for c := range 3 {
			v := p.channel(c)
			lo[c] = min(lo[c], v)
			hi[c] = max(hi[c], v)
		}
	}

	best, spread := 0, -1
	for c := range 3 {
		if r := int(hi[c]) - int(lo[c]); r > spread {
			best, spread = c, r
		}
	}
	return best, spread
}

// weightedMedian returns the split point just past the pixel where the accumulated weight first reaches
// half the total, so that pixel belongs to the lower half.
//
// The result is clamped to [1, len-1] so both halves are non-empty.
func weightedMedian(pixels []WeightedPixel) int {
	var total float64
	for _, p := range pixels {
		total += p.Weight
	}

	half := total / 2
	var acc float64
	idx := len(pixels) / 2
	for i, p := range pixels {
		acc += p.Weight
		if acc >= half {
			idx = i + 1
			break
		}
	}

	return max(1, min(idx, len(pixels)-1))
}

// averageCluster collapses pixels into their weight-weighted mean color.
func averageCluster(pixels []WeightedPixel) ColorCluster {
	var r, g, b, total float64
	for _, p := range pixels {
		r += float64(p.R) * p.Weight
		g += float64(p.G) * p.Weight
		b += float64(p.B) * p.Weight
		total += p.Weight
	}

	if total == 0 {
		return newCluster(RGB{}, 0)
	}

	mean := RGB{
		R: uint8(math.Round(r / total)),
		G: uint8(math.Round(g / total)),
		B: uint8(math.Round(b / total)),
	}
	return newCluster(mean, total)
}
