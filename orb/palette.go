package orb

import "math"

// Base palette before hue rotation: violet and cyan blended around the rim,
// deep blue filling the interior.
var (
	baseColor1 = [3]float64{0.611765, 0.262745, 0.996078}
	baseColor2 = [3]float64{0.298039, 0.760784, 0.913725}
	baseColor3 = [3]float64{0.062745, 0.078431, 0.600000}
)

// hueRotate shifts a color's hue by deg degrees. The rotation happens in YIQ
// space so luma is preserved while chroma spins.
func hueRotate(c [3]float64, deg float64) [3]float64 {
	rad := deg * math.Pi / 180
	cosA := math.Cos(rad)
	sinA := math.Sin(rad)

	y := 0.299*c[0] + 0.587*c[1] + 0.114*c[2]
	i := 0.596*c[0] - 0.274*c[1] - 0.322*c[2]
	q := 0.211*c[0] - 0.523*c[1] + 0.312*c[2]

	i, q = i*cosA-q*sinA, i*sinA+q*cosA

	return [3]float64{
		y + 0.956*i + 0.621*q,
		y - 0.272*i - 0.647*q,
		y - 1.106*i + 1.703*q,
	}
}

// Luminance returns the perceptual brightness of an RGB color in [0, 1].
func Luminance(c [3]float64) float64 {
	return 0.299*c[0] + 0.587*c[1] + 0.114*c[2]
}

func mix3(a, b [3]float64, t float64) [3]float64 {
	return [3]float64{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}
