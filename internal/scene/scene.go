package scene

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// AmbientLight lights every surface equally.
type AmbientLight struct {
	Color     rl.Color
	Intensity float32
}

// ShadowCamera is the orthographic volume a directional light renders its shadow map from.
type ShadowCamera struct {
	Left, Right, Top, Bottom float32
	Near, Far                float32
}

// DirectionalLight shines from Position toward Target.
type DirectionalLight struct {
	Color      rl.Color
	Intensity  float32
	Position   rl.Vector3
	Target     rl.Vector3
	CastShadow bool
	ShadowSize int
	Shadow     ShadowCamera
}

// Direction returns the normalized direction from the surface toward the light.
func (l DirectionalLight) Direction() rl.Vector3 {
	return rl.Vector3Normalize(rl.Vector3Subtract(l.Position, l.Target))
}

// StandardMaterial is a metal/roughness surface description.
type StandardMaterial struct {
	Color     rl.Color
	Metalness float32
	Roughness float32
}

// Floor is a flat rectangle in the scene, drawn with a standard material.
type Floor struct {
	*Node
	Width, Depth  float32
	Material      StandardMaterial
	ReceiveShadow bool
}

// Scene is the root of everything drawn: the node tree plus lights and the floor.
type Scene struct {
	Root        *Node
	Ambient     AmbientLight
	Directional DirectionalLight
	Floor       *Floor
}

// New returns an empty scene with a black floor, dim ambient light, and a shadow-casting
// directional light at (5,5,5). shadowSize is the shadow map edge in texels.
func New(shadowSize int) *Scene {
	s := &Scene{Root: NewNode("scene")}

	floorNode := NewNode("floor")
	floorNode.Rotation.X = -math.Pi * 0.5
	s.Floor = &Floor{
		Node:  floorNode,
		Width: 5,
		Depth: 5,
		Material: StandardMaterial{
			Color:     rl.NewColor(0, 0, 0, 255),
			Metalness: 0.3,
			Roughness: 0.4,
		},
		ReceiveShadow: true,
	}
	s.Root.Add(floorNode)

	s.Ambient = AmbientLight{Color: rl.White, Intensity: 0.1}
	s.Directional = DirectionalLight{
		Color:      rl.White,
		Intensity:  0.1,
		Position:   rl.NewVector3(5, 5, 5),
		CastShadow: true,
		ShadowSize: shadowSize,
		Shadow:     ShadowCamera{Left: -7, Right: 7, Top: 7, Bottom: -7, Near: 0.5, Far: 15},
	}
	return s
}

// Add attaches n to the scene root.
func (s *Scene) Add(n *Node) {
	s.Root.Add(n)
}

// Drawables returns every visible node that references meshes, in depth-first order.
// Children of an invisible node are skipped.
func (s *Scene) Drawables() []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(n *Node) {
		if !n.Visible {
			return
		}
		if n.Mesh.Count > 0 {
			out = append(out, n)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(s.Root)
	return out
}
