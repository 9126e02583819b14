package palette

import (
	"image"
	"image/color"
	"testing"
)

func repeat(p WeightedPixel, n int) []WeightedPixel {
	out := make([]WeightedPixel, n)
	for i := range out {
		out[i] = p
	}
	return out
}

func TestSamplePixels(t *testing.T) {
	t.Run("filters transparent and extreme pixels", func(t *testing.T) {
		canvas := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		canvas.Set(0, 0, color.NRGBA{255, 255, 255, 255})
		canvas.Set(2, 0, color.NRGBA{2, 2, 2, 255})
		canvas.Set(0, 2, color.NRGBA{100, 50, 50, 10})
		canvas.Set(2, 2, color.NRGBA{100, 50, 50, 255})

		got := samplePixels(canvas, 1)
		if len(got) != 1 {
			t.Fatalf("expected 1 pixel, got %d: %+v", len(got), got)
		}
		if got[0].R != 100 || got[0].G != 50 || got[0].B != 50 {
			t.Errorf("unexpected pixel %+v", got[0])
		}
		if got[0].Weight != 1 {
			t.Errorf("expected weight 1 without center bias, got %v", got[0].Weight)
		}
	})

	t.Run("weights center above corners", func(t *testing.T) {
		canvas := image.NewNRGBA(image.Rect(0, 0, 5, 5))
		for y := range 5 {
			for x := range 5 {
				canvas.Set(x, y, color.NRGBA{120, 80, 40, 255})
			}
		}

		pixels := samplePixels(canvas, 2)
		if len(pixels) != 9 {
			t.Fatalf("expected 9 samples at stride 2, got %d", len(pixels))
		}

		corner, center := pixels[0].Weight, pixels[4].Weight
		if center <= corner {
			t.Errorf("center weight %v should exceed corner weight %v", center, corner)
		}
		for _, p := range pixels {
			if p.Weight < 1 || p.Weight > 2 {
				t.Errorf("weight %v outside [1, centerBias]", p.Weight)
			}
		}
	})
}

func TestWeightedMedian(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		want    int
	}{
		{"uniform", []float64{1, 1, 1, 1}, 2},
		{"heavy head", []float64{10, 1, 1, 1}, 1},
		{"heavy tail", []float64{1, 1, 1, 10}, 3},
		{"two pixels", []float64{1, 1}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pixels := make([]WeightedPixel, len(tt.weights))
			for i, w := range tt.weights {
				pixels[i] = WeightedPixel{R: uint8(i), Weight: w}
			}

			if got := weightedMedian(pixels); got != tt.want {
				t.Errorf("weightedMedian() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMedianCut(t *testing.T) {
	t.Run("separates two colors", func(t *testing.T) {
		pixels := append(
			repeat(WeightedPixel{R: 200, G: 20, B: 30, Weight: 1}, 5),
			repeat(WeightedPixel{R: 10, G: 20, B: 30, Weight: 1}, 5)...,
		)

		clusters := medianCut(pixels, 1)
		if len(clusters) != 2 {
			t.Fatalf("expected 2 clusters, got %d", len(clusters))
		}

		byHex := map[string]ColorCluster{}
		for _, c := range clusters {
			byHex[c.Hex] = c
		}

		if c, ok := byHex["#0a141e"]; !ok || c.Population != 5 {
			t.Errorf("missing dark cluster with population 5: %+v", clusters)
		}
		if c, ok := byHex["#c8141e"]; !ok || c.Population != 5 {
			t.Errorf("missing red cluster with population 5: %+v", clusters)
		}
	})

	t.Run("uniform subset is a leaf", func(t *testing.T) {
		pixels := repeat(WeightedPixel{R: 48, G: 48, B: 48, Weight: 1}, 20)
		clusters := medianCut(pixels, 3)
		if len(clusters) != 1 {
			t.Fatalf("expected 1 cluster, got %d", len(clusters))
		}
		if clusters[0].Hex != "#303030" || clusters[0].Population != 20 {
			t.Errorf("unexpected cluster %+v", clusters[0])
		}
	})

	t.Run("leaf is weighted mean", func(t *testing.T) {
		pixels := []WeightedPixel{
			{R: 0, G: 0, B: 0, Weight: 1},
			{R: 100, G: 100, B: 100, Weight: 3},
		}
		clusters := medianCut(pixels, 0)
		if len(clusters) != 1 || clusters[0].RGB != (RGB{75, 75, 75}) {
			t.Errorf("unexpected clusters %+v", clusters)
		}
	})

	t.Run("depth bounds cluster count", func(t *testing.T) {
		var pixels []WeightedPixel
		for i := range 64 {
			pixels = append(pixels, WeightedPixel{R: uint8(i * 4), G: uint8(255 - i*4), B: uint8(i), Weight: 1})
		}
		if got := len(medianCut(pixels, splitDepth(8))); got != 8 {
			t.Errorf("expected 8 clusters, got %d", got)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := medianCut(nil, 3); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestSplitDepth(t *testing.T) {
	tests := []struct{ count, want int }{{0, 0}, {1, 0}, {2, 1}, {8, 3}, {16, 4}, {6, 3}}
	for _, tt := range tests {
		if got := splitDepth(tt.count); got != tt.want {
			t.Errorf("splitDepth(%d) = %d, want %d", tt.count, got, tt.want)
		}
	}
}
