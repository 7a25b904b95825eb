package orb

import (
	"testing"
	"time"
)

func advanceFrames(d *Driver, start time.Time, n int, dt time.Duration) Params {
	var p Params
	now := start
	for i := 0; i < n; i++ {
		now = now.Add(dt)
		p = d.Advance(now)
	}
	return p
}

func TestDriverActivationEasesTowardTarget(t *testing.T) {
	d := NewDriver(0, 0.4, [3]float64{})
	d.Resize(100, 100)
	start := time.Now()

	p := d.Advance(start)
	if p.Activation != 0 {
		t.Fatalf("activation starts at %v, want 0", p.Activation)
	}

	d.SetActive(true)
	prev := 0.0
	now := start
	for i := 0; i < 30; i++ {
		now = now.Add(16 * time.Millisecond)
		p = d.Advance(now)
		if p.Activation < prev {
			t.Fatalf("activation moved away from target: %v -> %v", prev, p.Activation)
		}
		if p.Activation < 0 || p.Activation > 1 {
			t.Fatalf("activation %v out of [0,1]", p.Activation)
		}
		prev = p.Activation
	}
	if p.Activation < 0.8 {
		t.Errorf("activation %v should be near 1 after half a second", p.Activation)
	}

	d.SetActive(false)
	p = advanceFrames(d, now, 60, 16*time.Millisecond)
	if p.Activation > 0.1 {
		t.Errorf("activation %v should decay toward 0", p.Activation)
	}
}

func TestDriverLongStallDoesNotOvershoot(t *testing.T) {
	d := NewDriver(0, 0.4, [3]float64{})
	start := time.Now()
	d.Advance(start)

	d.SetActive(true)
	p := d.Advance(start.Add(5 * time.Second))
	if p.Activation > 1 {
		t.Errorf("activation overshot to %v", p.Activation)
	}
}

func TestDriverRotationOnlyWhileActivated(t *testing.T) {
	d := NewDriver(0, 0.4, [3]float64{})
	start := time.Now()
	d.Advance(start)

	p := advanceFrames(d, start, 30, 16*time.Millisecond)
	if p.Rotation != 0 {
		t.Errorf("rotation %v while idle, want 0", p.Rotation)
	}

	d.SetActive(true)
	p = advanceFrames(d, start.Add(480*time.Millisecond), 60, 16*time.Millisecond)
	if p.Rotation <= 0 {
		t.Error("rotation should accumulate while activated")
	}

	d.SetActive(false)
	frozen := advanceFrames(d, start.Add(2*time.Second), 120, 16*time.Millisecond)
	still := d.Advance(start.Add(5 * time.Second))
	if still.Rotation != frozen.Rotation {
		t.Errorf("rotation moved from %v to %v after deactivation", frozen.Rotation, still.Rotation)
	}
}

func TestDriverElapsedTimeMonotonic(t *testing.T) {
	d := NewDriver(0, 0.4, [3]float64{})
	start := time.Now()

	p1 := d.Advance(start)
	p2 := d.Advance(start.Add(100 * time.Millisecond))
	if p2.Time <= p1.Time {
		t.Errorf("time went from %v to %v", p1.Time, p2.Time)
	}

	// A clock step backwards must not rewind the animation.
	p3 := d.Advance(start.Add(50 * time.Millisecond))
	if p3.Time < p2.Time {
		t.Errorf("time went backwards: %v -> %v", p2.Time, p3.Time)
	}
}

func TestDriverFirstTickUsesNominalInterval(t *testing.T) {
	d := NewDriver(0, 0.4, [3]float64{})
	p := d.Advance(time.Now())
	if p.Time <= 0 || p.Time > 0.02 {
		t.Errorf("first tick elapsed %v, want one nominal 60fps frame", p.Time)
	}
}

func TestDriverCarriesConfiguredAppearance(t *testing.T) {
	bg := [3]float64{0.1, 0.2, 0.3}
	d := NewDriver(42, 0.7, bg)
	d.Resize(80, 40)

	p := d.Advance(time.Now())
	if p.Hue != 42 || p.Distortion != 0.7 || p.Background != bg {
		t.Errorf("params dropped configuration: %+v", p)
	}
	if p.Width != 80 || p.Height != 40 {
		t.Errorf("params size = %vx%v, want 80x40", p.Width, p.Height)
	}
}
