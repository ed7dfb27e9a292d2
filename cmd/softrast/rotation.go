package main

import (
	"math/rand/v2"

	"github.com/charmbracelet/harmonica"

	"github.com/taigrr/softrast/pkg/math3d"
)

// RotationAxis tracks position and velocity for one rotation axis with spring decay
type RotationAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64 // internal spring velocity (for animating Velocity toward 0)
}

// NewRotationAxis creates an axis with harmonica spring for smooth velocity decay
func NewRotationAxis(fps int) RotationAxis {
	return RotationAxis{
		// Frequency 4.0 = moderate speed, damping 1.0 = critically damped (no overshoot)
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update applies velocity to position and decays velocity toward 0 using spring
func (a *RotationAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// RotationState holds model rotation with harmonica spring physics
type RotationState struct {
	Pitch, Yaw, Roll RotationAxis
	fps              int
}

func NewRotationState(fps int) *RotationState {
	return &RotationState{
		Pitch: NewRotationAxis(fps),
		Yaw:   NewRotationAxis(fps),
		Roll:  NewRotationAxis(fps),
		fps:   fps,
	}
}

func (r *RotationState) Update() {
	r.Pitch.Update()
	r.Yaw.Update()
	r.Roll.Update()
}

func (r *RotationState) ApplyImpulse(pitch, yaw, roll float64) {
	r.Pitch.Velocity += pitch
	r.Yaw.Velocity += yaw
	r.Roll.Velocity += roll
}

// RandomImpulse spins the model in a random direction.
func (r *RotationState) RandomImpulse() {
	r.ApplyImpulse(
		(rand.Float64()-0.5)*1.5,
		(rand.Float64()-0.5)*1.5,
		(rand.Float64()-0.5)*1.5,
	)
}

func (r *RotationState) Reset() {
	r.Pitch = NewRotationAxis(r.fps)
	r.Yaw = NewRotationAxis(r.fps)
	r.Roll = NewRotationAxis(r.fps)
}

// Euler returns the current rotation as X (pitch), Y (yaw), Z (roll) angles.
func (r *RotationState) Euler() math3d.Vec3 {
	return math3d.V3(r.Pitch.Position, r.Yaw.Position, r.Roll.Position)
}

// torque is held-key input that decays each frame because key release
// events are not reported by every terminal.
type torque struct {
	pitch, yaw, roll float64
}

const torqueStrength = 3.0

// apply feeds the torque into r scaled by dt and decays it.
func (t *torque) apply(r *RotationState, dt float64) {
	r.ApplyImpulse(t.pitch*dt, t.yaw*dt, t.roll*dt)
	t.pitch *= 0.9
	t.yaw *= 0.9
	t.roll *= 0.9
}
