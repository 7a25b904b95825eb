package orb

import "math"

const (
	innerRadius = 0.6
	noiseScale  = 0.65
)

// Params is the per-frame snapshot the generator consumes. A Driver produces
// one on every tick; Pixel reads it without mutating anything, so a single
// Params value can be shared across goroutines rendering different rows.
type Params struct {
	Time       float64 // elapsed seconds, monotonically increasing
	Width      float64 // viewport width in pixels
	Height     float64 // viewport height in pixels
	Hue        float64 // palette hue rotation in degrees
	Activation float64 // eased activation level in [0, 1]
	Rotation   float64 // accumulated rotation in radians
	Distortion float64 // distortion strength while activated
	Background [3]float64
}

// RGBA is a premultiplied-inverse color sample: RGB holds the pure color and
// A the coverage, so compositing over any backdrop is mix(backdrop, RGB, A).
type RGBA struct {
	R, G, B, A float64
}

// intensity / (1 + dist * attenuation)
func falloffLinear(intensity, attenuation, dist float64) float64 {
	return intensity / (1 + dist*attenuation)
}

// intensity / (1 + dist^2 * attenuation)
func falloffSquare(intensity, attenuation, dist float64) float64 {
	return intensity / (1 + dist*dist*attenuation)
}

// Pixel evaluates the orb field at pixel coordinates (px, py). The function
// is total over the viewport: every coordinate yields a defined color, with
// fully transparent output outside the glow.
func Pixel(px, py float64, p Params) RGBA {
	half := math.Min(p.Width, p.Height) / 2
	if half <= 0 {
		return RGBA{}
	}

	// Center the viewport and scale so the shorter axis spans [-1, 1].
	x := (px - p.Width/2) / half
	y := (py - p.Height/2) / half

	cosR := math.Cos(p.Rotation)
	sinR := math.Sin(p.Rotation)
	x, y = x*cosR-y*sinR, x*sinR+y*cosR

	// Activation-scaled distortion. Each axis is displaced by a sinusoid of
	// the other axis so the wobble shears rather than breathes.
	d := p.Activation * p.Distortion * 0.1
	x += d * math.Sin(y*10+p.Time)
	y += d * math.Sin(x*10+p.Time)

	ang := math.Atan2(y, x)
	length := math.Hypot(x, y)
	invLen := 0.0
	if length > 0 {
		invLen = 1 / length
	}

	// Noise-perturbed edge radius between two fixed bounds.
	n0 := Snoise3(x*noiseScale, y*noiseScale, p.Time*0.5)*0.5 + 0.5
	rLo := innerRadius + (1-innerRadius)*0.4
	rHi := innerRadius + (1-innerRadius)*0.6
	r0 := rLo + (rHi-rLo)*n0

	// Distance from this point to the nearest point on the noisy rim.
	edgeX := r0 * invLen * x
	edgeY := r0 * invLen * y
	d0 := math.Hypot(x-edgeX, y-edgeY)

	v0 := falloffLinear(1, 10, d0)
	v0 *= smoothstep(r0*1.05, r0, length)

	// Highlight orbiting the rim at one radian per second, clockwise.
	a := -p.Time
	hx := math.Cos(a) * r0
	hy := math.Sin(a) * r0
	dh := math.Hypot(x-hx, y-hy)
	v1 := falloffSquare(1.5, 5, dh)
	v1 *= falloffLinear(1, 50, d0)

	v2 := smoothstep(1, innerRadius+(1-innerRadius)*n0*0.5, length)
	v3 := smoothstep(innerRadius, innerRadius+(1-innerRadius)*0.5, length)

	c1 := hueRotate(baseColor1, p.Hue)
	c2 := hueRotate(baseColor2, p.Hue)
	c3 := hueRotate(baseColor3, p.Hue)

	// Blend the rim colors by angular position, drifting over time.
	cl := math.Cos(ang+p.Time*2)*0.5 + 0.5
	col := mix3(c3, mix3(c1, c2, cl), v0)
	col[0] = clamp01((col[0] + v1) * v2 * v3)
	col[1] = clamp01((col[1] + v1) * v2 * v3)
	col[2] = clamp01((col[2] + v1) * v2 * v3)

	// Second composite leans toward the configured background so the orb
	// reads on light themes; the background's luminance picks the mix.
	light := mix3(col, p.Background, 0.3)
	lum := clamp01(Luminance(p.Background))
	col = mix3(col, light, lum)

	return extractAlpha(col)
}

// extractAlpha derives coverage from the brightest channel and divides it
// out, leaving un-premultiplied color plus alpha.
func extractAlpha(c [3]float64) RGBA {
	a := math.Max(c[0], math.Max(c[1], c[2]))
	if a <= 1e-5 {
		return RGBA{}
	}
	return RGBA{R: c[0] / a, G: c[1] / a, B: c[2] / a, A: a}
}
