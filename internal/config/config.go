package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strconv"

	"github.com/hack-pad/hackpadfs"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file path inside the working-directory filesystem.
const DefaultPath = "config/demo.yaml"

// Window holds the initial window setup. Size changes after startup go through viewport.Resize.
type Window struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	TargetFPS int    `yaml:"target_fps"`
	Antialias bool   `yaml:"antialias"`
	Resizable bool   `yaml:"resizable"`
}

// Model selects the asset and the node that gets cloned and tracked.
type Model struct {
	// Path is a path on the working-directory filesystem or an http(s) URL fetched once into CacheDir.
	Path     string    `yaml:"path"`
	CacheDir string    `yaml:"cache_dir"`
	Node     string    `yaml:"node"`
	CloneZ   []float32 `yaml:"clone_z"`
}

// Physics holds world and body parameters. Mass 0 makes a body static.
type Physics struct {
	Gravity      [3]float32 `yaml:"gravity"`
	FixedStep    float32    `yaml:"fixed_step"`
	MaxSubSteps  int        `yaml:"max_sub_steps"`
	SphereRadius float32    `yaml:"sphere_radius"`
	SphereMass   float32    `yaml:"sphere_mass"`
	SphereStart  [3]float32 `yaml:"sphere_start"`
	Friction     float32    `yaml:"friction"`
	Restitution  float32    `yaml:"restitution"`
}

// Camera holds the perspective camera and orbit control settings.
type Camera struct {
	Fov           float32    `yaml:"fov"`
	Near          float32    `yaml:"near"`
	Far           float32    `yaml:"far"`
	Position      [3]float32 `yaml:"position"`
	Target        [3]float32 `yaml:"target"`
	EnableDamping bool       `yaml:"enable_damping"`
	DampingFactor float32    `yaml:"damping_factor"`
}

// Renderer holds tone mapping and environment settings.
type Renderer struct {
	ToneMapping    string  `yaml:"tone_mapping"` // "aces" or "none"
	Exposure       float32 `yaml:"exposure"`
	OutputSRGB     bool    `yaml:"output_srgb"`
	MaxPixelRatio  float32 `yaml:"max_pixel_ratio"`
	EnvMapWidth    int     `yaml:"env_map_width"`
	EnvBlurRadius  float64 `yaml:"env_blur_radius"`
	ShadowMapSize  int     `yaml:"shadow_map_size"`
	BackgroundGray uint8   `yaml:"background_gray"`
	// ShowEnvironment draws the environment panorama as the background instead of a flat clear.
	ShowEnvironment bool `yaml:"show_environment"`
}

// Loop holds frame loop behavior.
type Loop struct {
	// OverrideX pins the tracked node's X every tick when OverrideXEnabled is set.
	OverrideX        float32 `yaml:"override_x"`
	OverrideXEnabled bool    `yaml:"override_x_enabled"`
	// StrictTracking makes a tick with no tracked node return an error and halt the loop.
	StrictTracking bool `yaml:"strict_tracking"`
}

// Debug holds overlay toggles.
type Debug struct {
	ShowFPS      bool `yaml:"show_fps"`
	ShowMemAlloc bool `yaml:"show_memalloc"`
	ShowPanel    bool `yaml:"show_panel"`
	ShowGrid     bool `yaml:"show_grid"`
	// ShowBody draws the physics sphere the tracked noodle follows.
	ShowBody bool `yaml:"show_body"`
}

// Demo is the full demo configuration. Persisted as YAML.
type Demo struct {
	LogPath  string   `yaml:"log_path"`
	Window   Window   `yaml:"window"`
	Model    Model    `yaml:"model"`
	Physics  Physics  `yaml:"physics"`
	Camera   Camera   `yaml:"camera"`
	Renderer Renderer `yaml:"renderer"`
	Loop     Loop     `yaml:"loop"`
	Debug    Debug    `yaml:"debug"`
}

// Default returns the scene as shipped: three noodles, a sphere dropped from y=3, camera at (3,2,0).
func Default() Demo {
	return Demo{
		LogPath: "logs/demo.txt",
		Window: Window{
			Width:     1280,
			Height:    720,
			Title:     "noodle demo",
			TargetFPS: 60,
			Antialias: true,
			Resizable: true,
		},
		Model: Model{
			Path:     "assets/beefNoodle1.glb",
			CacheDir: "assets/cache",
			Node:     "noodle",
			CloneZ:   []float32{0.7, -0.7},
		},
		Physics: Physics{
			Gravity:      [3]float32{0, -9.82, 0},
			FixedStep:    1.0 / 60.0,
			MaxSubSteps:  3,
			SphereRadius: 0.4,
			SphereMass:   1,
			SphereStart:  [3]float32{0, 3, 0},
			Friction:     0.3,
			Restitution:  0,
		},
		Camera: Camera{
			Fov:           45,
			Near:          0.1,
			Far:           100,
			Position:      [3]float32{3, 2, 0},
			EnableDamping: true,
			DampingFactor: 0.05,
		},
		Renderer: Renderer{
			ToneMapping:   "aces",
			Exposure:      1,
			OutputSRGB:    true,
			MaxPixelRatio: 2,
			EnvMapWidth:   256,
			EnvBlurRadius: 6,
			ShadowMapSize: 1024,
		},
		Loop: Loop{
			OverrideX:        1,
			OverrideXEnabled: true,
		},
	}
}

// Load reads the config from path on fsys, layered over Default(). A missing file returns
// Default() with no error; a malformed file is an error.
func Load(fsys hackpadfs.FS, p string) (Demo, error) {
	d := Default()
	data, err := fs.ReadFile(fsys, p)
	if errors.Is(err, fs.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return d, fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", p, err)
	}
	if err := d.Validate(); err != nil {
		return Default(), err
	}
	return d, nil
}

// Save writes the config as YAML to path on fsys, creating the parent directory if needed.
func Save(fsys hackpadfs.FS, p string, d Demo) error {
	if err := hackpadfs.MkdirAll(fsys, path.Dir(p), 0755); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := hackpadfs.WriteFullFile(fsys, p, data, 0644); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Validate rejects values the frame loop and renderer cannot work with.
func (d Demo) Validate() error {
	switch {
	case d.Window.Width <= 0 || d.Window.Height <= 0:
		return fmt.Errorf("config: window size must be positive, got %dx%d", d.Window.Width, d.Window.Height)
	case d.Physics.FixedStep <= 0:
		return fmt.Errorf("config: physics.fixed_step must be > 0, got %g", d.Physics.FixedStep)
	case d.Physics.MaxSubSteps < 1:
		return fmt.Errorf("config: physics.max_sub_steps must be >= 1, got %d", d.Physics.MaxSubSteps)
	case d.Physics.SphereRadius <= 0:
		return fmt.Errorf("config: physics.sphere_radius must be > 0, got %g", d.Physics.SphereRadius)
	case d.Camera.Near <= 0 || d.Camera.Far <= d.Camera.Near:
		return fmt.Errorf("config: camera near/far must satisfy 0 < near < far, got %g/%g", d.Camera.Near, d.Camera.Far)
	case d.Camera.Fov <= 0 || d.Camera.Fov >= 180:
		return fmt.Errorf("config: camera.fov out of range: %g", d.Camera.Fov)
	case d.Renderer.MaxPixelRatio <= 0:
		return fmt.Errorf("config: renderer.max_pixel_ratio must be > 0, got %g", d.Renderer.MaxPixelRatio)
	case d.Model.Node == "":
		return errors.New("config: model.node must not be empty")
	}
	return nil
}

// ApplyEnv overrides a few keys from NOODLE_* environment variables (see env.Load for .env files).
func (d *Demo) ApplyEnv() error {
	if v := os.Getenv("NOODLE_ASSET"); v != "" {
		d.Model.Path = v
	}
	if v := os.Getenv("NOODLE_NODE"); v != "" {
		d.Model.Node = v
	}
	if v := os.Getenv("NOODLE_EXPOSURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("config: NOODLE_EXPOSURE: %w", err)
		}
		d.Renderer.Exposure = float32(f)
	}
	if v := os.Getenv("NOODLE_STRICT_TRACKING"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: NOODLE_STRICT_TRACKING: %w", err)
		}
		d.Loop.StrictTracking = b
	}
	return nil
}
