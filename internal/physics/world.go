package physics

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// World holds a set of bodies and advances them with a fixed-step integrator:
// gravity, damping, semi-implicit Euler, then sphere contacts.
type World struct {
	Gravity rl.Vector3
	Bodies  []*Body
	// Time is the total simulated time fed to Step, in seconds. Never decreases.
	Time float32

	accumulator float32
	steps       uint64
}

// NewWorld returns an empty world with the given gravity (e.g. (0, -9.82, 0) for Y-up).
func NewWorld(gravity rl.Vector3) *World {
	return &World{Gravity: gravity}
}

// AddBody appends a body to the world. Order is preserved and decides contact resolution order.
func (w *World) AddBody(b *Body) {
	w.Bodies = append(w.Bodies, b)
}

// Steps returns the number of internal fixed steps taken so far.
func (w *World) Steps() uint64 {
	return w.steps
}

// Step advances the world. With timeSinceLast == 0 it takes exactly one internal step of
// fixedDt. Otherwise timeSinceLast is added to an accumulator and as many fixed steps as fit are
// taken, at most maxSubSteps; leftover time carries to the next call and is used to compute
// InterpolatedPosition. Negative timeSinceLast is treated as 0.
func (w *World) Step(fixedDt, timeSinceLast float32, maxSubSteps int) {
	if fixedDt <= 0 {
		return
	}
	if timeSinceLast <= 0 {
		w.internalStep(fixedDt)
		w.Time += fixedDt
		w.interpolate(1)
		return
	}
	if maxSubSteps < 1 {
		maxSubSteps = 1
	}
	w.accumulator += timeSinceLast
	for sub := 0; w.accumulator >= fixedDt && sub < maxSubSteps; sub++ {
		w.internalStep(fixedDt)
		w.accumulator -= fixedDt
	}
	// Drop backlog we could not simulate so a long stall does not snowball.
	if w.accumulator > fixedDt {
		w.accumulator = math32.Mod(w.accumulator, fixedDt)
	}
	w.Time += timeSinceLast
	w.interpolate(w.accumulator / fixedDt)
}

// interpolate blends each body between its previous and current internal step; t=1 is current.
func (w *World) interpolate(t float32) {
	for _, b := range w.Bodies {
		b.InterpolatedPosition = rl.Vector3Lerp(b.previousPosition, b.Position, t)
	}
}

// internalStep integrates all dynamic bodies by dt and resolves contacts.
func (w *World) internalStep(dt float32) {
	for _, b := range w.Bodies {
		b.previousPosition = b.Position
		if b.Static() {
			continue
		}
		b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(w.Gravity, dt))
		b.Velocity = rl.Vector3Scale(b.Velocity, math32.Pow(1-b.LinearDamping, dt))
		b.AngularVelocity = rl.Vector3Scale(b.AngularVelocity, math32.Pow(1-b.AngularDamping, dt))
		b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(b.Velocity, dt))
		integrateOrientation(b, dt)
	}

	for i := 0; i < len(w.Bodies); i++ {
		for j := i + 1; j < len(w.Bodies); j++ {
			resolvePair(w.Bodies[i], w.Bodies[j])
		}
	}
	w.steps++
}

// integrateOrientation applies q' = q + 0.5 * (w, 0) * q * dt and renormalizes.
func integrateOrientation(b *Body, dt float32) {
	av := b.AngularVelocity
	if av.X == 0 && av.Y == 0 && av.Z == 0 {
		return
	}
	spin := rl.QuaternionMultiply(rl.NewQuaternion(av.X, av.Y, av.Z, 0), b.Quaternion)
	q := rl.QuaternionAdd(b.Quaternion, rl.QuaternionScale(spin, 0.5*dt))
	b.Quaternion = rl.QuaternionNormalize(q)
}

func resolvePair(a, b *Body) {
	if a.Static() && b.Static() {
		return
	}
	switch sa := a.Shape.(type) {
	case Sphere:
		switch sb := b.Shape.(type) {
		case Plane:
			spherePlane(a, sa, b)
		case Sphere:
			sphereSphere(a, sa, b, sb)
		}
	case Plane:
		if sb, ok := b.Shape.(Sphere); ok {
			spherePlane(b, sb, a)
		}
	}
}

// combine mixes two materials the same way for every contact: geometric mean for friction,
// max for restitution.
func combine(a, b Material) Material {
	return Material{
		Friction:    math32.Sqrt(a.Friction * b.Friction),
		Restitution: max(a.Restitution, b.Restitution),
	}
}

func spherePlane(s *Body, shape Sphere, p *Body) {
	n := p.planeNormal()
	dist := rl.Vector3DotProduct(rl.Vector3Subtract(s.Position, p.Position), n)
	depth := shape.Radius - dist
	if depth <= 0 {
		return
	}
	// Push the sphere out along the normal; the plane never moves.
	s.Position = rl.Vector3Add(s.Position, rl.Vector3Scale(n, depth))
	applyContactImpulse(s, n, combine(s.Material, p.Material), shape.Radius)
}

// applyContactImpulse removes the approaching normal velocity of a dynamic body touching a
// static surface with normal n, then applies Coulomb friction to the tangential velocity.
func applyContactImpulse(b *Body, n rl.Vector3, m Material, radius float32) {
	vn := rl.Vector3DotProduct(b.Velocity, n)
	if vn >= 0 {
		return
	}
	normalImpulse := -(1 + m.Restitution) * vn
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(n, normalImpulse))

	// Contact point velocity includes spin: v + w x (-r n).
	contactVel := rl.Vector3Add(b.Velocity, rl.Vector3CrossProduct(b.AngularVelocity, rl.Vector3Scale(n, -radius)))
	tangent := rl.Vector3Subtract(contactVel, rl.Vector3Scale(n, rl.Vector3DotProduct(contactVel, n)))
	speed := rl.Vector3Length(tangent)
	if speed < 1e-6 {
		return
	}
	dv := min(speed, m.Friction*normalImpulse)
	dir := rl.Vector3Scale(tangent, 1/speed)
	b.Velocity = rl.Vector3Subtract(b.Velocity, rl.Vector3Scale(dir, dv))
	if radius > 0 {
		// Solid sphere: friction torque spins the ball toward rolling.
		spin := rl.Vector3CrossProduct(rl.Vector3Scale(n, -radius), rl.Vector3Scale(dir, -dv))
		b.AngularVelocity = rl.Vector3Add(b.AngularVelocity, rl.Vector3Scale(spin, 2.5/(radius*radius)))
	}
}

func sphereSphere(a *Body, sa Sphere, b *Body, sb Sphere) {
	d := rl.Vector3Subtract(b.Position, a.Position)
	dist := rl.Vector3Length(d)
	depth := sa.Radius + sb.Radius - dist
	if depth <= 0 {
		return
	}
	n := rl.NewVector3(0, 1, 0)
	if dist > 1e-6 {
		n = rl.Vector3Scale(d, 1/dist)
	}
	ia, ib := a.inverseMass(), b.inverseMass()
	total := ia + ib
	// Split the correction by inverse mass so the lighter body moves more.
	a.Position = rl.Vector3Subtract(a.Position, rl.Vector3Scale(n, depth*ia/total))
	b.Position = rl.Vector3Add(b.Position, rl.Vector3Scale(n, depth*ib/total))

	rel := rl.Vector3DotProduct(rl.Vector3Subtract(b.Velocity, a.Velocity), n)
	if rel >= 0 {
		return
	}
	m := combine(a.Material, b.Material)
	j := -(1 + m.Restitution) * rel / total
	a.Velocity = rl.Vector3Subtract(a.Velocity, rl.Vector3Scale(n, j*ia))
	b.Velocity = rl.Vector3Add(b.Velocity, rl.Vector3Scale(n, j*ib))
}
