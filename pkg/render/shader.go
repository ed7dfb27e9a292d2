package render

import (
	"math"

	"github.com/taigrr/softrast/pkg/math3d"
)

// Lighting describes the single point light and the Blinn-Phong terms.
// Colors are 0..255 channel vectors.
type Lighting struct {
	Position  math3d.Vec3
	Intensity float64 // Flat shading only

	AmbientCoeff  float64 // Ka
	AmbientColor  math3d.Vec3
	DiffuseCoeff  float64 // Kd
	DiffuseColor  math3d.Vec3
	SpecularCoeff float64 // Ks
	SpecularColor math3d.Vec3
	Shininess     float64
}

// DefaultLighting returns a warm gold light at the origin.
func DefaultLighting() Lighting {
	gold := math3d.V3(0xD4, 0xAF, 0x37)
	return Lighting{
		Intensity:     1,
		AmbientCoeff:  0.1,
		AmbientColor:  gold,
		DiffuseCoeff:  1,
		DiffuseColor:  gold,
		SpecularCoeff: 2,
		SpecularColor: math3d.V3(0xFF, 0xCF, 0x42),
		Shininess:     512,
	}
}

// Material scales the lighting terms and carries optional texture maps.
type Material struct {
	AmbientIntensity  float64
	DiffuseIntensity  float64
	SpecularIntensity float64

	DiffuseMap *Texture // Textures mode
	NormalMap  *Texture // Textures mode, tangent-free
}

// DefaultMaterial leaves every lighting term unscaled.
func DefaultMaterial() Material {
	return Material{AmbientIntensity: 1, DiffuseIntensity: 1, SpecularIntensity: 1}
}

// FlatColor shades a whole triangle with one Lambert term against the light.
func FlatColor(tri *Triangle, base math3d.Vec3, light Lighting) uint32 {
	normal := math3d.Centroid(tri[0].Normal, tri[1].Normal, tri[2].Normal).Normalize()
	center := math3d.Centroid(tri[0].Position, tri[1].Position, tri[2].Position)
	toLight := light.Position.Sub(center).Normalize()

	ndotl := math.Max(0, -normal.Dot(toLight)) * light.Intensity
	return PackVec(base.Scale(ndotl))
}

// Fragment is one interpolated surface sample.
type Fragment struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	TexCoord math3d.Vec3
}

// PhongColor evaluates Blinn-Phong at a fragment. diffuse is the surface
// color fed into the diffuse term; it is usually light.DiffuseColor or a
// texel from the diffuse map.
func PhongColor(f Fragment, diffuse math3d.Vec3, eye math3d.Vec3, light Lighting, mat Material) uint32 {
	n := f.Normal.Normalize()
	toLight := light.Position.Sub(f.Position).Normalize()
	toEye := eye.Sub(f.Position).Normalize()
	half := toEye.Add(toLight).Normalize()

	ambient := light.AmbientColor.Scale(light.AmbientCoeff * mat.AmbientIntensity)
	lambert := math.Max(0, n.Dot(toLight))
	diff := diffuse.Scale(lambert * light.DiffuseCoeff * mat.DiffuseIntensity)
	spec := light.SpecularColor.Scale(
		math.Pow(math.Abs(n.Dot(half)), light.Shininess) * light.SpecularCoeff * mat.SpecularIntensity)

	return PackVec(ambient.Add(diff).Add(spec))
}

// interpolateFragment blends the triangle's attributes at screen point p.
// A triangle that is degenerate in 2D takes the attributes of the corner
// nearest to p.
func interpolateFragment(tri *Triangle, p math3d.Vec3) Fragment {
	pt := math3d.XY(p)
	w, ok := barycentric(
		math3d.XY(tri[0].Position), math3d.XY(tri[1].Position), math3d.XY(tri[2].Position), pt)
	if !ok {
		w = nearestCorner(tri, pt)
	}
	return Fragment{
		Position: p,
		Normal:   math3d.Weighted(tri[0].Normal, tri[1].Normal, tri[2].Normal, w).Normalize(),
		TexCoord: math3d.Weighted(tri[0].TexCoord, tri[1].TexCoord, tri[2].TexCoord, w),
	}
}

// shaderFor returns the fragment shader for tri under the scene's mode.
// base is the flat surface color. The triangle is captured by pointer and
// must not change while the shader is in use.
func shaderFor(tri *Triangle, scene *Scene, base math3d.Vec3) FragmentShader {
	switch scene.Mode {
	case Flat:
		c := FlatColor(tri, base, scene.Lighting)
		return func(math3d.Vec3) uint32 { return c }
	case Textures:
		return func(p math3d.Vec3) uint32 {
			f := interpolateFragment(tri, p)
			diffuse := scene.Lighting.DiffuseColor
			if scene.Material.DiffuseMap != nil {
				diffuse = scene.Material.DiffuseMap.GetColor(f.TexCoord.X, f.TexCoord.Y)
			}
			if scene.Material.NormalMap != nil {
				f.Normal = scene.Material.NormalMap.GetNormal(f.TexCoord.X, f.TexCoord.Y)
			}
			return PhongColor(f, diffuse, scene.Camera.Position, scene.Lighting, scene.Material)
		}
	default:
		return func(p math3d.Vec3) uint32 {
			f := interpolateFragment(tri, p)
			return PhongColor(f, scene.Lighting.DiffuseColor, scene.Camera.Position, scene.Lighting, scene.Material)
		}
	}
}
