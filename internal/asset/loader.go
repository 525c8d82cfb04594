package asset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/hack-pad/hackpadfs"
	"github.com/qmuntal/gltf"

	"noodle-demo/internal/archive"
	"noodle-demo/internal/download"
	"noodle-demo/internal/logger"
	"noodle-demo/internal/scene"
)

// dracoExtension marks meshes whose geometry needs Draco decompression.
const dracoExtension = "KHR_draco_mesh_compression"

// ErrDracoUnsupported is attached to a Result as a warning when the asset requires Draco.
// The node graph still decodes; the renderer may draw no geometry for those meshes.
var ErrDracoUnsupported = errors.New("asset: draco-compressed geometry is not decoded")

// ErrNoModel is returned when a zip bundle holds no .glb or .gltf file.
var ErrNoModel = errors.New("asset: bundle contains no glTF model")

// Result is delivered exactly once per LoadAsync call.
type Result struct {
	// Root holds the asset's top-level nodes as children. Nil when Err is set.
	Root *scene.Node
	// Path is the path on the loader's filesystem the asset was read from (after any download).
	Path string
	// MeshCount is the number of meshes the renderer will produce when loading Path.
	MeshCount int
	// Surfaces holds the metal/rough factors of each renderer mesh, indexed like MeshCount.
	Surfaces []Surface
	Warnings []error
	Err      error
}

// Surface is the PBR factor pair of one triangle primitive. glTF defaults both to 1.
type Surface struct {
	Metalness float32
	Roughness float32
}

// Loader decodes glTF/GLB node graphs from a filesystem. Remote paths are downloaded once into
// CacheDir on the same filesystem first.
type Loader struct {
	FS       hackpadfs.FS
	CacheDir string
	Client   *http.Client
	Log      *logger.Logger
}

// NewLoader returns a loader reading from fsys.
func NewLoader(fsys hackpadfs.FS, cacheDir string, log *logger.Logger) *Loader {
	return &Loader{FS: fsys, CacheDir: cacheDir, Log: log}
}

// LoadAsync starts decoding p on its own goroutine and returns a channel that receives one
// Result and is then closed. Cancelling ctx aborts a pending download; decode itself is not
// interruptible.
func (l *Loader) LoadAsync(ctx context.Context, p string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- l.Load(ctx, p)
	}()
	return out
}

// Load decodes p synchronously.
func (l *Loader) Load(ctx context.Context, p string) Result {
	if download.IsRemote(p) {
		saved, err := download.Download(ctx, l.Client, p, l.FS, l.CacheDir)
		if err != nil {
			l.errorf("asset: fetch %s: %v", p, err)
			return Result{Path: p, Err: fmt.Errorf("asset: %w", err)}
		}
		l.infof("asset: fetched %s -> %s", p, saved)
		p = saved
	}
	if err := ctx.Err(); err != nil {
		return Result{Path: p, Err: fmt.Errorf("asset: %w", err)}
	}
	if strings.EqualFold(path.Ext(p), ".zip") {
		model, err := l.unpack(p)
		if err != nil {
			l.errorf("%v", err)
			return Result{Path: p, Err: err}
		}
		p = model
	}

	doc, err := decode(l.FS, p)
	if err != nil {
		l.errorf("asset: %v", err)
		return Result{Path: p, Err: err}
	}
	res := Result{Path: p}
	if slices.Contains(doc.ExtensionsRequired, dracoExtension) {
		res.Warnings = append(res.Warnings, fmt.Errorf("%w: %s", ErrDracoUnsupported, p))
		l.warnf("asset: %s requires %s", p, dracoExtension)
	}
	res.Root, res.Surfaces = buildGraph(doc, path.Base(p))
	res.MeshCount = len(res.Surfaces)
	l.infof("asset: loaded %s (%d top-level nodes, %d meshes)", p, len(res.Root.Children), res.MeshCount)
	return res
}

// unpack extracts a zip bundle into CacheDir/<bundle name> and returns the model inside it.
func (l *Loader) unpack(p string) (string, error) {
	dest := path.Join(l.CacheDir, strings.TrimSuffix(path.Base(p), path.Ext(p)))
	files, err := archive.Unzip(l.FS, p, dest)
	if err != nil {
		return "", fmt.Errorf("asset: %w", err)
	}
	model, ok := archive.FindModel(files)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoModel, p)
	}
	l.infof("asset: unpacked %s (%d files) -> %s", p, len(files), model)
	return model, nil
}

func decode(fsys hackpadfs.FS, p string) (*gltf.Document, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, fmt.Errorf("asset: open %s: %w", p, err)
	}
	defer f.Close()

	dir, err := fs.Sub(fsys, path.Dir(p))
	if err != nil {
		return nil, fmt.Errorf("asset: %s: %w", p, err)
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(f, dir).Decode(doc); err != nil {
		return nil, fmt.Errorf("asset: decode %s: %w", p, err)
	}
	return doc, nil
}

// buildGraph converts the default scene of doc into a scene.Node tree under a root named name.
// Mesh references follow the renderer's load order: nodes in document order, one mesh per
// triangle primitive. The renderer bakes each node's world transform into its vertices, so every
// MeshRef carries the inverse of that transform.
func buildGraph(doc *gltf.Document, name string) (*scene.Node, []Surface) {
	refs, surfaces := meshRefs(doc)

	root := scene.NewGroup(name)
	var roots []int
	switch {
	case doc.Scene != nil && *doc.Scene < len(doc.Scenes):
		roots = doc.Scenes[*doc.Scene].Nodes
	case len(doc.Scenes) > 0:
		roots = doc.Scenes[0].Nodes
	default:
		roots = topLevelNodes(doc)
	}

	var visit func(idx int, parent *scene.Node, visiting []bool)
	visit = func(idx int, parent *scene.Node, visiting []bool) {
		if idx < 0 || idx >= len(doc.Nodes) || visiting[idx] {
			return
		}
		visiting[idx] = true
		defer func() { visiting[idx] = false }()

		gn := doc.Nodes[idx]
		n := scene.NewNode(gn.Name)
		t, r, s := gn.TranslationOrDefault(), gn.RotationOrDefault(), gn.ScaleOrDefault()
		n.Position = rl.NewVector3(float32(t[0]), float32(t[1]), float32(t[2]))
		n.Rotation = scene.QuaternionToEuler(rl.NewQuaternion(float32(r[0]), float32(r[1]), float32(r[2]), float32(r[3])))
		n.Scale = rl.NewVector3(float32(s[0]), float32(s[1]), float32(s[2]))
		parent.Add(n)
		for _, c := range gn.Children {
			visit(c, n, visiting)
		}
		if ref, ok := refs[idx]; ok {
			ref.Bind = rl.MatrixInvert(n.WorldMatrix())
			n.Mesh = ref
		}
	}
	visiting := make([]bool, len(doc.Nodes))
	for _, idx := range roots {
		visit(idx, root, visiting)
	}
	return root, surfaces
}

func meshRefs(doc *gltf.Document) (map[int]scene.MeshRef, []Surface) {
	refs := make(map[int]scene.MeshRef)
	var surfaces []Surface
	for i, n := range doc.Nodes {
		if n.Mesh == nil || *n.Mesh >= len(doc.Meshes) {
			continue
		}
		first := len(surfaces)
		for _, prim := range doc.Meshes[*n.Mesh].Primitives {
			if prim.Mode == gltf.PrimitiveTriangles {
				surfaces = append(surfaces, surfaceOf(doc, prim.Material))
			}
		}
		if count := len(surfaces) - first; count > 0 {
			refs[i] = scene.MeshRef{First: first, Count: count}
		}
	}
	return refs, surfaces
}

func surfaceOf(doc *gltf.Document, material *int) Surface {
	s := Surface{Metalness: 1, Roughness: 1}
	if material == nil || *material < 0 || *material >= len(doc.Materials) {
		return s
	}
	pbr := doc.Materials[*material].PBRMetallicRoughness
	if pbr == nil {
		return s
	}
	if pbr.MetallicFactor != nil {
		s.Metalness = float32(*pbr.MetallicFactor)
	}
	if pbr.RoughnessFactor != nil {
		s.Roughness = float32(*pbr.RoughnessFactor)
	}
	return s
}

// topLevelNodes returns nodes that are nobody's child, for documents without scenes.
func topLevelNodes(doc *gltf.Document) []int {
	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var out []int
	for i, child := range isChild {
		if !child {
			out = append(out, i)
		}
	}
	return out
}

func (l *Loader) infof(format string, args ...any) {
	if l.Log != nil {
		l.Log.Infof(format, args...)
	}
}

func (l *Loader) warnf(format string, args ...any) {
	if l.Log != nil {
		l.Log.Warnf(format, args...)
	}
}

func (l *Loader) errorf(format string, args ...any) {
	if l.Log != nil {
		l.Log.Errorf(format, args...)
	}
}
