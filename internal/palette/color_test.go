package palette

import (
	"math"
	"testing"
)

func TestRGB(t *testing.T) {
	t.Run("Hex", func(t *testing.T) {
		tests := []struct {
			name string
			rgb  RGB
			want string
		}{
			{"black", RGB{0, 0, 0}, "#000000"},
			{"white", RGB{255, 255, 255}, "#ffffff"},
			{"brand", RGB{125, 86, 244}, "#7d56f4"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := tt.rgb.Hex(); got != tt.want {
					t.Errorf("Hex() = %q, want %q", got, tt.want)
				}
			})
		}
	})

	t.Run("HSL normalizes hue", func(t *testing.T) {
		tests := []struct {
			name    string
			rgb     RGB
			h, s, l float64
		}{
			{"red", RGB{255, 0, 0}, 0, 1, 0.5},
			{"green", RGB{0, 255, 0}, 1.0 / 3, 1, 0.5},
			{"blue", RGB{0, 0, 255}, 2.0 / 3, 1, 0.5},
			{"gray", RGB{128, 128, 128}, 0, 0, 128.0 / 255},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				got := tt.rgb.HSL()
				if !near(got.H, tt.h, 0.001) || !near(got.S, tt.s, 0.001) || !near(got.L, tt.l, 0.001) {
					t.Errorf("HSL() = %+v, want {%v %v %v}", got, tt.h, tt.s, tt.l)
				}
			})
		}
	})

	t.Run("LAB uses D65", func(t *testing.T) {
		white := RGB{255, 255, 255}.LAB()
		if !near(white.L, 100, 0.5) || !near(white.A, 0, 0.5) || !near(white.B, 0, 0.5) {
			t.Errorf("white LAB = %+v, want ~{100 0 0}", white)
		}

		red := RGB{255, 0, 0}.LAB()
		if !near(red.L, 53.24, 0.5) || !near(red.A, 80.09, 0.5) || !near(red.B, 67.20, 0.5) {
			t.Errorf("red LAB = %+v, want ~{53.24 80.09 67.20}", red)
		}
	})
}

func TestHSLRoundTrip(t *testing.T) {
	for _, hex := range []string{"#7d56f4", "#c83c28", "#1e1e1e", "#ece6ff", "#04b575"} {
		t.Run(hex, func(t *testing.T) {
			rgb, err := ParseHex(hex)
			if err != nil {
				t.Fatalf("ParseHex(%q) error: %v", hex, err)
			}

			if got := rgb.HSL().Hex(); got != hex {
				t.Errorf("HSL round trip = %q, want %q", got, hex)
			}
		})
	}

	t.Run("wraps hue", func(t *testing.T) {
		a := HSL{H: 1.25, S: 1, L: 0.5}.Hex()
		b := HSL{H: 0.25, S: 1, L: 0.5}.Hex()
		if a != b {
			t.Errorf("hue 1.25 = %q, hue 0.25 = %q", a, b)
		}
	})
}

func TestIsHexColor(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"#7d56f4", true},
		{"#ABCDEF", true},
		{"7d56f4", false},
		{"#7d56f", false},
		{"#7d56g4", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsHexColor(tt.in); got != tt.want {
			t.Errorf("IsHexColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseHexInvalid(t *testing.T) {
	if _, err := ParseHex("not-a-color"); err == nil {
		t.Error("expected error for invalid hex")
	}
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}
