package orb

import "time"

// Driver advances the orb's animation state between frames. It is not safe
// for concurrent use; the render loop owns it.
type Driver struct {
	hue        float64
	distortion float64
	background [3]float64

	width  float64
	height float64

	target  float64
	current float64

	rotation float64
	elapsed  float64
	last     time.Time
}

// NewDriver returns a Driver with the activation level at rest.
func NewDriver(hue, distortion float64, background [3]float64) *Driver {
	return &Driver{hue: hue, distortion: distortion, background: background}
}

// SetActive sets the activation target. The level eases toward it over the
// following frames rather than jumping.
func (d *Driver) SetActive(active bool) {
	if active {
		d.target = 1
	} else {
		d.target = 0
	}
}

// Resize records the viewport dimensions in pixels.
func (d *Driver) Resize(width, height int) {
	d.width = float64(width)
	d.height = float64(height)
}

// Advance steps the animation to now and returns the frame's parameters.
// The first call assumes a nominal 60fps interval since there is no prior
// frame to measure against.
func (d *Driver) Advance(now time.Time) Params {
	dt := 1.0 / 60.0
	if !d.last.IsZero() {
		dt = now.Sub(d.last).Seconds()
		if dt < 0 {
			dt = 0
		}
	}
	d.last = now
	d.elapsed += dt

	// Ease activation toward the target. The factor is capped at 1 so a
	// long stall between frames cannot overshoot.
	f := dt * 4
	if f > 1 {
		f = 1
	}
	d.current += (d.target - d.current) * f

	// The orb only spins while substantially activated.
	if d.current > 0.5 {
		d.rotation += dt * 0.3
	}

	return Params{
		Time:       d.elapsed,
		Width:      d.width,
		Height:     d.height,
		Hue:        d.hue,
		Activation: d.current,
		Rotation:   d.rotation,
		Distortion: d.distortion,
		Background: d.background,
	}
}

// Activation reports the current eased activation level.
func (d *Driver) Activation() float64 { return d.current }
