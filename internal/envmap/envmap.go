// Package envmap builds the image-based lighting used by the renderer: a neutral procedural
// room rendered to an equirectangular panorama, plus a blurred irradiance copy.
package envmap

import (
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/blur"
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/image/draw"
)

// Panel is an emissive rectangle on one wall of the room. Axis is the wall: 0=±X, 1=±Y, 2=±Z,
// Sign picks the side. Min/Max bound the panel in the wall's two remaining coordinates, in
// increasing axis order.
type Panel struct {
	Axis      int
	Sign      float32
	Min, Max  [2]float32
	Intensity float32
}

// Room is a box interior seen from the origin.
type Room struct {
	HalfSize rl.Vector3
	// Wall is the radiance of non-emissive surfaces, Floor of the bottom face.
	Wall, Floor float32
	Panels      []Panel
}

// NeutralRoom returns a gray studio-like room: a large soft ceiling light and a few bright
// wall strips, so metallic surfaces pick up readable highlights from every side.
func NeutralRoom() Room {
	return Room{
		HalfSize: rl.NewVector3(14, 10, 14),
		Wall:     0.35,
		Floor:    0.2,
		Panels: []Panel{
			{Axis: 1, Sign: 1, Min: [2]float32{-6, -6}, Max: [2]float32{6, 6}, Intensity: 1},
			{Axis: 0, Sign: -1, Min: [2]float32{-2, -8}, Max: [2]float32{6, 8}, Intensity: 0.9},
			{Axis: 0, Sign: 1, Min: [2]float32{0, -4}, Max: [2]float32{5, 4}, Intensity: 0.8},
			{Axis: 2, Sign: -1, Min: [2]float32{-8, 1}, Max: [2]float32{8, 6}, Intensity: 0.7},
			{Axis: 2, Sign: 1, Min: [2]float32{-3, -1}, Max: [2]float32{3, 5}, Intensity: 0.6},
		},
	}
}

// Radiance returns the brightness seen looking along dir from the room center, in [0,1].
func (r Room) Radiance(dir rl.Vector3) float32 {
	d := rl.Vector3Normalize(dir)
	comps := [3]float32{d.X, d.Y, d.Z}
	half := [3]float32{r.HalfSize.X, r.HalfSize.Y, r.HalfSize.Z}

	// Distance to the first wall hit from inside the box.
	t := math32.Inf(1)
	axis := 0
	for i := 0; i < 3; i++ {
		if comps[i] == 0 {
			continue
		}
		ti := half[i] / math32.Abs(comps[i])
		if ti < t {
			t, axis = ti, i
		}
	}
	hit := [3]float32{comps[0] * t, comps[1] * t, comps[2] * t}
	sign := math32.Copysign(1, comps[axis])

	u, v := otherAxes(axis)
	for _, p := range r.Panels {
		if p.Axis != axis || p.Sign != sign {
			continue
		}
		if hit[u] >= p.Min[0] && hit[u] <= p.Max[0] && hit[v] >= p.Min[1] && hit[v] <= p.Max[1] {
			return p.Intensity
		}
	}
	if axis == 1 && sign < 0 {
		return r.Floor
	}
	// Walls darken slightly toward the floor.
	shade := 0.85 + 0.15*(hit[1]/half[1])
	return r.Wall * shade
}

func otherAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

// Direction returns the view direction for equirectangular coordinates u,v in [0,1].
// Matches the shader lookup: u = atan2(z, x)/2π + 0.5, v = 0.5 - asin(y)/π.
func Direction(u, v float32) rl.Vector3 {
	lon := (u - 0.5) * 2 * math32.Pi
	lat := (0.5 - v) * math32.Pi
	c := math32.Cos(lat)
	return rl.NewVector3(c*math32.Cos(lon), math32.Sin(lat), c*math32.Sin(lon))
}

// UV is the inverse of Direction.
func UV(dir rl.Vector3) (float32, float32) {
	d := rl.Vector3Normalize(dir)
	u := math32.Atan2(d.Z, d.X)/(2*math32.Pi) + 0.5
	v := 0.5 - math32.Asin(rl.Clamp(d.Y, -1, 1))/math32.Pi
	return u, v
}

// Equirect renders the room into a width×(width/2) panorama.
func Equirect(r Room, width int) *image.RGBA {
	if width < 2 {
		width = 2
	}
	height := width / 2
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		v := (float32(y) + 0.5) / float32(height)
		for x := 0; x < width; x++ {
			u := (float32(x) + 0.5) / float32(width)
			c := uint8(rl.Clamp(r.Radiance(Direction(u, v)), 0, 1)*255 + 0.5)
			img.SetRGBA(x, y, color.RGBA{R: c, G: c, B: c, A: 255})
		}
	}
	return img
}

// Prefilter blurs the panorama by radius pixels and scales it down by 4, giving a
// low-frequency map good enough for diffuse irradiance lookups.
func Prefilter(src image.Image, radius float64) *image.RGBA {
	blurred := blur.Gaussian(src, radius)
	b := blurred.Bounds()
	w, h := max(b.Dx()/4, 1), max(b.Dy()/4, 1)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), blurred, b, draw.Src, nil)
	return dst
}

// Map is the precomputed environment: Radiance for reflections, Irradiance for diffuse.
type Map struct {
	Radiance   *image.RGBA
	Irradiance *image.RGBA
}

// Generate renders the room once and prefilters it.
func Generate(r Room, width int, blurRadius float64) Map {
	rad := Equirect(r, width)
	return Map{Radiance: rad, Irradiance: Prefilter(rad, blurRadius)}
}

// Sample returns the nearest texel of img along dir.
func Sample(img *image.RGBA, dir rl.Vector3) color.RGBA {
	u, v := UV(dir)
	b := img.Bounds()
	x := min(int(u*float32(b.Dx())), b.Dx()-1)
	y := min(int(v*float32(b.Dy())), b.Dy()-1)
	return img.RGBAAt(b.Min.X+max(x, 0), b.Min.Y+max(y, 0))
}
