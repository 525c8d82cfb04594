package physics

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Shape is the collision shape of a body. Sphere and Plane are the only kinds the world resolves.
type Shape interface {
	shape()
}

// Sphere is a ball of the given radius centered on the body position.
type Sphere struct {
	Radius float32
}

// Plane is an infinite plane through the body position. Its normal is local +Z rotated by the
// body quaternion, so a plane rotated 90° about -X faces +Y.
type Plane struct{}

func (Sphere) shape() {}
func (Plane) shape()  {}

// Material holds contact response coefficients.
type Material struct {
	Friction    float32
	Restitution float32
}

// DefaultMaterial matches what the demo expects when nothing is set: some friction, no bounce.
var DefaultMaterial = Material{Friction: 0.3, Restitution: 0}

const defaultDamping = 0.01

// Body is a 3D rigid body. Mass 0 makes the body static: it is not affected by gravity and does
// not move during a step.
type Body struct {
	Position        rl.Vector3
	Velocity        rl.Vector3
	Quaternion      rl.Quaternion
	AngularVelocity rl.Vector3
	Mass            float32
	Shape           Shape
	Material        Material
	LinearDamping   float32
	AngularDamping  float32

	// InterpolatedPosition is Position blended toward the previous internal step by the
	// leftover accumulator fraction. Renderers that want smooth motion between fixed steps read it.
	InterpolatedPosition rl.Vector3

	previousPosition rl.Vector3
}

// NewBody returns a body at position with the given mass and shape. Velocity is zero and the
// orientation is identity. A negative mass is treated as 0 (static).
func NewBody(mass float32, position rl.Vector3, shape Shape) *Body {
	if mass < 0 {
		mass = 0
	}
	return &Body{
		Position:             position,
		Quaternion:           rl.QuaternionIdentity(),
		Mass:                 mass,
		Shape:                shape,
		Material:             DefaultMaterial,
		LinearDamping:        defaultDamping,
		AngularDamping:       defaultDamping,
		InterpolatedPosition: position,
		previousPosition:     position,
	}
}

// Static reports whether the body is immovable.
func (b *Body) Static() bool {
	return b.Mass == 0
}

// SetAxisAngle sets the orientation to a rotation of angle radians about axis.
func (b *Body) SetAxisAngle(axis rl.Vector3, angle float32) {
	b.Quaternion = rl.QuaternionFromAxisAngle(rl.Vector3Normalize(axis), angle)
}

// inverseMass is 0 for static bodies.
func (b *Body) inverseMass() float32 {
	if b.Static() {
		return 0
	}
	return 1 / b.Mass
}

// planeNormal returns the world-space normal of a plane-shaped body.
func (b *Body) planeNormal() rl.Vector3 {
	return rl.Vector3Normalize(rl.Vector3RotateByQuaternion(rl.NewVector3(0, 0, 1), b.Quaternion))
}
