package scene

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/jinzhu/copier"
)

// MeshRef points at a run of meshes in the loaded model, in the order raylib loads them
// (one mesh per glTF primitive). Count 0 means the node draws nothing itself.
// Bind undoes the node transform raylib bakes into vertices at load; the zero value means none.
type MeshRef struct {
	First int
	Count int
	Bind  rl.Matrix
}

// BindMatrix returns Bind, or identity when Bind was never set.
func (m MeshRef) BindMatrix() rl.Matrix {
	if m.Bind == (rl.Matrix{}) {
		return rl.MatrixIdentity()
	}
	return m.Bind
}

// Node is a transformable object in the scene graph. Rotation is Euler XYZ in radians
// (see RotationXYZ).
// A node owns its children; parent is set by Add and cleared by Remove.
type Node struct {
	Name     string
	Position rl.Vector3
	Rotation rl.Vector3
	Scale    rl.Vector3
	Visible  bool
	Mesh     MeshRef
	Children []*Node

	parent *Node
}

// NewNode returns a visible node at the origin with unit scale.
func NewNode(name string) *Node {
	return &Node{Name: name, Scale: rl.Vector3One(), Visible: true}
}

// NewGroup returns an empty node meant only to hold children.
func NewGroup(name string) *Node {
	return NewNode(name)
}

// Parent returns the owning node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Add attaches child to n, detaching it from any previous parent first.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	if child.parent != nil {
		child.parent.Remove(child)
	}
	child.parent = n
	n.Children = append(n.Children, child)
}

// Remove detaches child from n. Returns false if child was not a direct child.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.Children {
		if c == child {
			n.Children = append(n.Children[:i], n.Children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// Find returns the first direct child with the given name, or nil.
func (n *Node) Find(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindDeep searches the whole subtree depth-first, n included.
func (n *Node) FindDeep(name string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Name == name {
			found = c
			return false
		}
		return true
	})
	return found
}

// Walk visits n and its descendants depth-first until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.Children {
		if !c.Walk(fn) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the subtree rooted at n. The copy has no parent; children of
// the copy are copies too and point back at the copied parent.
func (n *Node) Clone() (*Node, error) {
	out := &Node{}
	if err := copier.Copy(out, n); err != nil {
		return nil, fmt.Errorf("scene: clone %q: %w", n.Name, err)
	}
	out.parent = nil
	out.Children = make([]*Node, 0, len(n.Children))
	for _, c := range n.Children {
		cc, err := c.Clone()
		if err != nil {
			return nil, err
		}
		out.Add(cc)
	}
	return out, nil
}

// LocalMatrix returns scale, then rotation, then translation.
func (n *Node) LocalMatrix() rl.Matrix {
	m := rl.MatrixScale(n.Scale.X, n.Scale.Y, n.Scale.Z)
	m = rl.MatrixMultiply(m, RotationXYZ(n.Rotation))
	return rl.MatrixMultiply(m, rl.MatrixTranslate(n.Position.X, n.Position.Y, n.Position.Z))
}

// WorldMatrix composes LocalMatrix with every ancestor's.
func (n *Node) WorldMatrix() rl.Matrix {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = rl.MatrixMultiply(m, p.LocalMatrix())
	}
	return m
}

// WorldPosition returns the node origin in world space.
func (n *Node) WorldPosition() rl.Vector3 {
	return rl.Vector3Transform(rl.Vector3Zero(), n.WorldMatrix())
}
