package palette

const analogousShift = 0.083

// complementary rotates hue by half a turn, caps saturation at 0.7 and keeps lightness mid-range.
func complementary(base HSL) string {
	return HSL{
		H: wrapHue(base.H + 0.5),
		S: min(base.S*0.9, 0.7),
		L: clampFloat(base.L, 0.35, 0.65),
	}.Hex()
}

// analogous returns the two neighbors of base at -30 and +30 degrees.
func analogous(base HSL) [2]string {
	shift := func(delta float64) string {
		return HSL{
			H: wrapHue(base.H + delta),
			S: base.S * 0.85,
			L: clampFloat(base.L, 0.35, 0.65),
		}.Hex()
	}
	return [2]string{shift(-analogousShift), shift(analogousShift)}
}
