package main

import (
	"math"
	"testing"
)

func TestRotationAxisDecays(t *testing.T) {
	a := NewRotationAxis(60)
	a.Velocity = 1

	for range 240 {
		a.Update()
	}
	if math.Abs(a.Velocity) > 1e-3 {
		t.Errorf("velocity after 4s = %v, want ~0", a.Velocity)
	}
	if a.Position <= 1 {
		t.Errorf("position = %v, want it to have moved past the first step", a.Position)
	}
}

func TestRotationStateReset(t *testing.T) {
	r := NewRotationState(30)
	r.ApplyImpulse(1, 2, 3)
	r.Update()
	if e := r.Euler(); e.X != 1 || e.Y != 2 || e.Z != 3 {
		t.Errorf("Euler after one update = %v, want (1,2,3)", e)
	}

	r.Reset()
	if e := r.Euler(); e.X != 0 || e.Y != 0 || e.Z != 0 || r.Yaw.Velocity != 0 {
		t.Errorf("after reset: euler %v, yaw velocity %v", e, r.Yaw.Velocity)
	}
}

func TestTorqueDecays(t *testing.T) {
	r := NewRotationState(60)
	tq := torque{yaw: torqueStrength}
	tq.apply(r, 0.1)

	if math.Abs(r.Yaw.Velocity-0.3) > 1e-12 {
		t.Errorf("yaw velocity = %v, want 0.3", r.Yaw.Velocity)
	}
	if math.Abs(tq.yaw-2.7) > 1e-12 {
		t.Errorf("torque after decay = %v, want 2.7", tq.yaw)
	}
}
