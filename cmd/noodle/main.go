package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/hack-pad/hackpadfs"
	osfs "github.com/hack-pad/hackpadfs/os"

	"noodle-demo/internal/asset"
	"noodle-demo/internal/commands"
	"noodle-demo/internal/config"
	"noodle-demo/internal/debug"
	"noodle-demo/internal/env"
	"noodle-demo/internal/envmap"
	"noodle-demo/internal/graphics"
	"noodle-demo/internal/logger"
	"noodle-demo/internal/loop"
	"noodle-demo/internal/render"
	"noodle-demo/internal/viewport"
)

func main() {
	reg := commands.NewRegistry()
	reg.Default = "run"

	runFlags := flag.NewFlagSet("run", flag.ExitOnError)
	runConfig := runFlags.String("config", "", "config file (default $NOODLE_CONFIG or "+config.DefaultPath+")")
	reg.Register("run", "open the demo window", runFlags, func() error {
		return run(*runConfig)
	})

	fetchFlags := flag.NewFlagSet("fetch", flag.ExitOnError)
	fetchConfig := fetchFlags.String("config", "", "config file")
	reg.Register("fetch", "download and inspect the model (or the URL given)", fetchFlags, func() error {
		return fetch(*fetchConfig, fetchFlags.Arg(0))
	})

	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	initConfig := initFlags.String("config", config.DefaultPath, "where to write the config")
	initForce := initFlags.Bool("force", false, "overwrite an existing file")
	reg.Register("init", "write the default config", initFlags, func() error {
		return writeConfig(*initConfig, *initForce)
	})

	if err := reg.Execute(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "commands:")
		reg.PrintUsage(os.Stderr)
		os.Exit(1)
	}
}

// setup loads .env and the config from the working directory.
func setup(cfgPath string) (hackpadfs.FS, config.Demo, error) {
	fsys, err := workingDirFS()
	if err != nil {
		return nil, config.Demo{}, err
	}
	if _, err := env.Load(fsys, ".env"); err != nil {
		return nil, config.Demo{}, err
	}
	if cfgPath == "" {
		cfgPath = config.DefaultPath
		if v := os.Getenv("NOODLE_CONFIG"); v != "" {
			cfgPath = v
		}
	}
	cfg, err := config.Load(fsys, cfgPath)
	if err != nil {
		return nil, config.Demo{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, config.Demo{}, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, config.Demo{}, err
	}
	return fsys, cfg, nil
}

func run(cfgPath string) error {
	fsys, cfg, err := setup(cfgPath)
	if err != nil {
		return err
	}

	log := logger.NewAt(cfg.LogPath)
	log.Infof("noodle: asset %s, tracking %q", cfg.Model.Path, cfg.Model.Node)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state := loop.NewState(cfg)

	w, h := cfg.Window.Width, cfg.Window.Height
	cc := cfg.Camera
	cam := viewport.NewCamera(cc.Fov, float32(w)/float32(h), cc.Near, cc.Far, vec3(cc.Position))
	cam.Target = vec3(cc.Target)
	view := viewport.New(cam, w, h, 1, cfg.Renderer.MaxPixelRatio)
	controls := viewport.NewOrbitControls(cam, render.RaylibInput{})
	controls.EnableDamping = cc.EnableDamping
	controls.DampingFactor = cc.DampingFactor

	room := envmap.Generate(envmap.NeutralRoom(), cfg.Renderer.EnvMapWidth, cfg.Renderer.EnvBlurRadius)
	loader := asset.NewLoader(fsys, cfg.Model.CacheDir, log)

	dbg := debug.New()
	dbg.SetShowFPS(cfg.Debug.ShowFPS)
	dbg.SetShowMemAlloc(cfg.Debug.ShowMemAlloc)
	dbg.ShowPanel = cfg.Debug.ShowPanel

	err = graphics.Run(graphics.WindowFrom(cfg.Window), func(frames *graphics.Frames) error {
		r := render.New(render.SettingsFrom(cfg), w, h, log)
		defer r.Unload()
		r.SetEnvironment(room)
		if dbg.Enabled() {
			r.Overlay = dbg.Draw
		}
		r.Body = func() (rl.Vector3, float32) {
			return state.Body.Position, cfg.Physics.SphereRadius
		}

		frames.OnResize = func(w, h int, dpr float32) {
			if !view.Resize(w, h, dpr) {
				return
			}
			r.SetSize(w, h)
			r.SetPixelRatio(view.Surface.PixelRatio)
			controls.ViewportHeight = float32(h)
		}

		l := loop.New(cfg, state, cam, controls, r, log)
		l.Pending = loader.LoadAsync(ctx, cfg.Model.Path)
		l.OnAsset = func(res asset.Result, _ error) {
			for _, warning := range res.Warnings {
				log.Warnf("noodle: %v", warning)
			}
			r.SetAsset(res)
		}
		return l.Run(ctx, loop.NewWallClock(), frames)
	})
	if errors.Is(err, context.Canceled) {
		log.Infof("noodle: interrupted")
		return nil
	}
	if err != nil {
		return fmt.Errorf("noodle: %w", err)
	}
	log.Infof("noodle: window closed")
	return nil
}

// fetch resolves the model (downloading and unpacking as needed) without opening a window and
// prints what the frame loop would track.
func fetch(cfgPath, url string) error {
	fsys, cfg, err := setup(cfgPath)
	if err != nil {
		return err
	}
	if url == "" {
		url = cfg.Model.Path
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := logger.NewAt(cfg.LogPath)
	res := asset.NewLoader(fsys, cfg.Model.CacheDir, log).Load(ctx, url)
	if res.Err != nil {
		return res.Err
	}
	for _, w := range res.Warnings {
		fmt.Println("warning:", w)
	}
	fmt.Printf("%s: %d meshes\n", res.Path, res.MeshCount)
	if n := res.Root.Find(cfg.Model.Node); n != nil {
		p := n.WorldPosition()
		fmt.Printf("node %q at (%.3f, %.3f, %.3f)\n", n.Name, p.X, p.Y, p.Z)
	} else {
		fmt.Printf("node %q not found among %d top-level nodes\n", cfg.Model.Node, len(res.Root.Children))
	}
	return nil
}

// writeConfig saves the default config to p on the working directory filesystem.
func writeConfig(p string, force bool) error {
	fsys, err := workingDirFS()
	if err != nil {
		return err
	}
	if _, err := hackpadfs.Stat(fsys, p); err == nil && !force {
		return fmt.Errorf("noodle: %s exists (use -force)", p)
	}
	if err := config.Save(fsys, p, config.Default()); err != nil {
		return err
	}
	fmt.Println("wrote", p)
	return nil
}

// workingDirFS returns the OS filesystem rooted at the current directory, so config, asset and
// cache paths stay relative.
func workingDirFS() (hackpadfs.FS, error) {
	fsys := osfs.NewFS()
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("noodle: %w", err)
	}
	root, err := fsys.FromOSPath(wd)
	if err != nil {
		return nil, fmt.Errorf("noodle: %w", err)
	}
	sub, err := fsys.Sub(root)
	if err != nil {
		return nil, fmt.Errorf("noodle: %w", err)
	}
	return sub, nil
}

func vec3(v [3]float32) rl.Vector3 {
	return rl.NewVector3(v[0], v[1], v[2])
}
