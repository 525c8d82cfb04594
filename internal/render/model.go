package render

import (
	"unsafe"

	rl "github.com/gen2brain/raylib-go/raylib"

	"noodle-demo/internal/asset"
	"noodle-demo/internal/primitives"
	"noodle-demo/internal/scene"
)

// drawItem is one mesh draw: which loaded mesh, and the model matrix to draw it with.
type drawItem struct {
	Mesh      int
	Transform rl.Matrix
}

// drawList walks the scene's visible mesh nodes and expands each MeshRef into per-mesh draws.
// The loaded vertices already carry the node's original world transform, so each draw undoes
// it with the bind matrix before applying the node's current world transform. Meshes at or
// past meshCount are skipped.
func drawList(s *scene.Scene, meshCount int) []drawItem {
	var out []drawItem
	for _, n := range s.Drawables() {
		world := rl.MatrixMultiply(n.Mesh.BindMatrix(), n.WorldMatrix())
		for i := n.Mesh.First; i < n.Mesh.First+n.Mesh.Count; i++ {
			if i < 0 || i >= meshCount {
				continue
			}
			out = append(out, drawItem{Mesh: i, Transform: world})
		}
	}
	return out
}

// model is the GPU side of a loaded asset. Meshes, materials and the mesh→material table are
// views into raylib-owned memory.
type model struct {
	path         string
	rl           rl.Model
	meshes       []rl.Mesh
	materials    []rl.Material
	meshMaterial []int32
	surfaces     []asset.Surface
}

// loadModel loads path through raylib and switches every material to the lit shader.
// Returns false when raylib produced no meshes.
func loadModel(path string, surfaces []asset.Surface, prims *primitives.Registry) (*model, bool) {
	m := rl.LoadModel(path)
	if m.MeshCount == 0 || m.Meshes == nil {
		rl.UnloadModel(m)
		return nil, false
	}
	out := &model{
		path:     path,
		rl:       m,
		meshes:   unsafe.Slice(m.Meshes, m.MeshCount),
		surfaces: surfaces,
	}
	if m.MaterialCount > 0 && m.Materials != nil {
		out.materials = unsafe.Slice(m.Materials, m.MaterialCount)
	}
	if m.MeshMaterial != nil {
		out.meshMaterial = unsafe.Slice(m.MeshMaterial, m.MeshCount)
	}
	for i := range out.materials {
		prims.Prepare(&out.materials[i])
	}
	return out, true
}

// rebind re-applies the lit shader and environment maps after the environment changes.
func (m *model) rebind(prims *primitives.Registry) {
	for i := range m.materials {
		prims.Prepare(&m.materials[i])
	}
}

func (m *model) material(mesh int) (rl.Material, bool) {
	if mesh >= len(m.meshMaterial) {
		return rl.Material{}, false
	}
	idx := int(m.meshMaterial[mesh])
	if idx < 0 || idx >= len(m.materials) {
		return rl.Material{}, false
	}
	return m.materials[idx], true
}

func (m *model) surface(mesh int) primitives.Material {
	s := asset.Surface{Metalness: 1, Roughness: 1}
	if mesh < len(m.surfaces) {
		s = m.surfaces[mesh]
	}
	return primitives.Material{Metalness: s.Metalness, Roughness: s.Roughness}
}

func (m *model) draw(s *scene.Scene, prims *primitives.Registry) {
	for _, item := range drawList(s, len(m.meshes)) {
		mtl, ok := m.material(item.Mesh)
		if !ok {
			continue
		}
		prims.DrawMesh(m.meshes[item.Mesh], mtl, item.Transform, m.surface(item.Mesh))
	}
}

func (m *model) unload() {
	rl.UnloadModel(m.rl)
	m.meshes, m.materials, m.meshMaterial = nil, nil, nil
}
