package scene

import (
	"errors"
	"fmt"
	"math"
)

// ErrNodeNotFound is returned when the loaded asset has no child with the requested name.
var ErrNodeNotFound = errors.New("scene: node not found")

// Noodles is the result of building the noodle group from a loaded asset. Primary is the node
// whose position follows the physics body; it is nil when the asset lacked the named child.
type Noodles struct {
	Primary *Node
	Clones  []*Node
	Group   *Node
}

// Loaded reports whether the tracked node exists.
func (n Noodles) Loaded() bool {
	return n.Primary != nil
}

// BuildNoodles finds the direct child called name under assetRoot, turns it -90° about Y, clones
// it once per entry in cloneZ with the clone's Z set to that offset, and groups the original
// and its clones. The group is attached to s.
//
// A missing child is not fatal: the returned Noodles has no Primary and the error wraps
// ErrNodeNotFound, and nothing is added to s. The frame loop decides what an unset node means.
func BuildNoodles(s *Scene, assetRoot *Node, name string, cloneZ []float32) (Noodles, error) {
	if assetRoot == nil {
		return Noodles{}, fmt.Errorf("%w: %q (no asset)", ErrNodeNotFound, name)
	}
	primary := assetRoot.Find(name)
	if primary == nil {
		return Noodles{}, fmt.Errorf("%w: %q", ErrNodeNotFound, name)
	}
	primary.Rotation.Y = -math.Pi * 0.5

	out := Noodles{Primary: primary, Group: NewGroup(name + "-group")}
	for _, z := range cloneZ {
		c, err := primary.Clone()
		if err != nil {
			return Noodles{}, err
		}
		c.Position.Z = z
		out.Clones = append(out.Clones, c)
	}

	out.Group.Add(primary)
	for _, c := range out.Clones {
		out.Group.Add(c)
	}
	s.Add(out.Group)
	return out, nil
}
