package loop

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"noodle-demo/internal/asset"
	"noodle-demo/internal/config"
	"noodle-demo/internal/physics"
	"noodle-demo/internal/scene"
)

// State is everything the asset completion handler and the tick share. Both get it by pointer;
// nothing else mutates it. Noodles.Loaded() is false until an asset with the tracked node has
// been applied.
type State struct {
	World   *physics.World
	Body    *physics.Body
	Floor   *physics.Body
	Scene   *scene.Scene
	Noodles scene.Noodles

	// Asset is the last applied load result, kept so the renderer can find the geometry path.
	Asset    *asset.Result
	AssetErr error
}

// NewState builds the physics world (falling sphere over a horizontal plane) and an empty scene
// from cfg. The noodles arrive later through Apply.
func NewState(cfg config.Demo) *State {
	p := cfg.Physics
	world := physics.NewWorld(rl.NewVector3(p.Gravity[0], p.Gravity[1], p.Gravity[2]))

	sphere := physics.NewBody(p.SphereMass, rl.NewVector3(p.SphereStart[0], p.SphereStart[1], p.SphereStart[2]), physics.Sphere{Radius: p.SphereRadius})
	sphere.Material = physics.Material{Friction: p.Friction, Restitution: p.Restitution}
	world.AddBody(sphere)

	floor := physics.NewBody(0, rl.Vector3Zero(), physics.Plane{})
	floor.SetAxisAngle(rl.NewVector3(-1, 0, 0), rl.Pi*0.5)
	floor.Material = sphere.Material
	world.AddBody(floor)

	return &State{
		World: world,
		Body:  sphere,
		Floor: floor,
		Scene: scene.New(cfg.Renderer.ShadowMapSize),
	}
}

// Apply handles a finished asset load. A failed load leaves the scene without the model; a
// model without the named node leaves Noodles unset. Neither is fatal here: the returned error
// describes what happened, and the tick decides whether an unset node halts the loop.
func (s *State) Apply(res asset.Result, node string, cloneZ []float32) error {
	s.Asset = &res
	if res.Err != nil {
		s.AssetErr = res.Err
		return fmt.Errorf("loop: asset load: %w", res.Err)
	}
	noodles, err := scene.BuildNoodles(s.Scene, res.Root, node, cloneZ)
	if err != nil {
		s.AssetErr = err
		return fmt.Errorf("loop: %w", err)
	}
	s.Noodles = noodles
	s.AssetErr = nil
	return nil
}
