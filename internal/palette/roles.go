package palette

import "math"

const singleClusterConfidence = 0.3

// roles is the result of assigning clusters to palette roles.
//
// The synthesized flags mark roles derived from the dominant color because no cluster qualified.
type roles struct {
	dominant ColorCluster
	vibrant  ColorCluster
	muted    ColorCluster
	dark     ColorCluster
	light    ColorCluster

	mutedSynthesized bool
	darkSynthesized  bool
	lightSynthesized bool
}

// assignRoles picks dominant, vibrant, muted, dark and light from clusters. clusters must be non-empty.
func assignRoles(clusters []ColorCluster, minSaturationVibrant float64) roles {
	dominant := clusters[0]
	for _, c := range clusters[1:] {
		if c.Population > dominant.Population {
			dominant = c
		}
	}

	r := roles{dominant: dominant, vibrant: dominant}

	if v, ok := pick(clusters, func(c ColorCluster) bool {
		return c.HSL.L > 0.15 && c.HSL.L < 0.85 && c.HSL.S >= minSaturationVibrant
	}, func(a, b ColorCluster) bool { return a.HSL.S > b.HSL.S }); ok {
		r.vibrant = v
	}

	if m, ok := pick(clusters, func(c ColorCluster) bool {
		return c.HSL.S < 0.5 && c.HSL.L > 0.25 && c.HSL.L < 0.75
	}, func(a, b ColorCluster) bool { return a.Population > b.Population }); ok {
		r.muted = m
	} else {
		hsl := dominant.HSL
		hsl.S *= 0.3
		r.muted = dominant.withHSL(hsl, dominant.Population/2)
		r.mutedSynthesized = true
	}

	if d, ok := pick(clusters, func(c ColorCluster) bool {
		return c.HSL.L < 0.4
	}, func(a, b ColorCluster) bool { return a.HSL.L < b.HSL.L }); ok {
		r.dark = d
	} else {
		hsl := dominant.HSL
		hsl.L = math.Max(hsl.L*0.4, 0.1)
		r.dark = dominant.withHSL(hsl, dominant.Population)
		r.darkSynthesized = true
	}

	if l, ok := pick(clusters, func(c ColorCluster) bool {
		return c.HSL.L > 0.6
	}, func(a, b ColorCluster) bool { return a.HSL.L > b.HSL.L }); ok {
		r.light = l
	} else {
		hsl := dominant.HSL
		hsl.L += (0.9 - hsl.L) * 0.6
		r.light = dominant.withHSL(hsl, dominant.Population)
		r.lightSynthesized = true
	}

	return r
}

// pick returns the best cluster satisfying keep, where better reports whether a beats b.
// Ties keep the earlier cluster.
func pick(clusters []ColorCluster, keep func(ColorCluster) bool, better func(a, b ColorCluster) bool) (ColorCluster, bool) {
	var (
		best  ColorCluster
		found bool
	)
	for _, c := range clusters {
		if !keep(c) {
			continue
		}
		if !found || better(c, best) {
			best, found = c, true
		}
	}
	return best, found
}

// confidence is the Shannon entropy of the population distribution normalized by log2(clusterCount).
func confidence(clusters []ColorCluster, clusterCount int) float64 {
	switch len(clusters) {
	case 0:
		return 0
	case 1:
		return singleClusterConfidence
	}

	var total float64
	for _, c := range clusters {
		total += c.Population
	}
	if total <= 0 {
		return 0
	}

	var entropy float64
	for _, c := range clusters {
		p := c.Population / total
		if p > 0 {
			entropy -= p * math.Log2(p)
		}
	}

	return clamp01(entropy / math.Log2(float64(max(clusterCount, 2))))
}
