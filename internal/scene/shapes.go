package scene

import (
	"fmt"
	"math"

	"github.com/unixpickle/model3d/model3d"

	pmath "github.com/Faultbox/depthmesh/pkg/math"
)

// Box returns the 12 triangles of an axis-aligned box.
func Box(min, max pmath.Vec3) []*model3d.Triangle {
	var c [8]model3d.Coord3D
	for i := range c {
		v := min
		if i&1 != 0 {
			v.X = max.X
		}
		if i&2 != 0 {
			v.Y = max.Y
		}
		if i&4 != 0 {
			v.Z = max.Z
		}
		c[i] = toCoord(v)
	}
	quads := [6][4]int{
		{0, 2, 3, 1}, // -z
		{4, 5, 7, 6}, // +z
		{0, 4, 6, 2}, // -x
		{1, 3, 7, 5}, // +x
		{0, 1, 5, 4}, // -y
		{2, 6, 7, 3}, // +y
	}
	tris := make([]*model3d.Triangle, 0, 12)
	for _, q := range quads {
		tris = append(tris,
			&model3d.Triangle{c[q[0]], c[q[1]], c[q[2]]},
			&model3d.Triangle{c[q[0]], c[q[2]], c[q[3]]},
		)
	}
	return tris
}

// BoxAt returns a box of the given size centered at center.
func BoxAt(center, size pmath.Vec3) []*model3d.Triangle {
	half := size.Scale(0.5)
	return Box(center.Sub(half), center.Add(half))
}

// Cylinder returns a closed y-aligned cylinder with the given number of sides.
func Cylinder(base pmath.Vec3, height, radius float64, sides int) []*model3d.Triangle {
	if sides < 3 {
		sides = 3
	}
	bottom := toCoord(base)
	top := toCoord(base.Add(pmath.Vec3{Y: height}))
	ring := func(i int, y float64) model3d.Coord3D {
		theta := 2 * math.Pi * float64(i%sides) / float64(sides)
		return model3d.XYZ(base.X+radius*math.Cos(theta), y, base.Z+radius*math.Sin(theta))
	}

	tris := make([]*model3d.Triangle, 0, 4*sides)
	for i := 0; i < sides; i++ {
		b0, b1 := ring(i, base.Y), ring(i+1, base.Y)
		t0, t1 := ring(i, base.Y+height), ring(i+1, base.Y+height)
		tris = append(tris,
			&model3d.Triangle{b0, t0, t1},
			&model3d.Triangle{b0, t1, b1},
			&model3d.Triangle{bottom, b0, b1},
			&model3d.Triangle{top, t1, t0},
		)
	}
	return tris
}

// Floor returns a fixed floor at y=0 covering at least a size*size square
// centered on the origin. It is a single triangle, so no interior edge can
// split a sensor ray.
func Floor(size float64) *Static {
	h := size / 2
	return NewStatic("floor", []*model3d.Triangle{{
		model3d.XYZ(-4*h, 0, -2*h),
		model3d.XYZ(0, 0, 4*h),
		model3d.XYZ(4*h, 0, -2*h),
	}})
}

// Table dimensions, in meters.
const (
	TableHeight   = 0.75
	TableWidth    = 1.0
	TableDepth    = 0.75
	TableTopThick = 0.1
	LegSize       = 0.1
	CupHeight     = 0.12
	CupRadius     = 0.03
	CupOffset     = 0.1875 // distance of each cup from the table center along x
)

// Table returns a floor slab with a four-legged table and two cups on it.
// Parts: floor, table, left_cup, right_cup.
func Table() *Composite {
	var table []*model3d.Triangle
	lx := TableWidth/2 - LegSize/2
	lz := TableDepth/2 - LegSize/2
	for _, sx := range []float64{-1, 1} {
		for _, sz := range []float64{-1, 1} {
			table = append(table, BoxAt(
				pmath.Vec3{X: sx * lx, Y: TableHeight / 2, Z: sz * lz},
				pmath.Vec3{X: LegSize, Y: TableHeight, Z: LegSize},
			)...)
		}
	}
	table = append(table, BoxAt(
		pmath.Vec3{Y: TableHeight - TableTopThick/2},
		pmath.Vec3{X: TableWidth, Y: TableTopThick, Z: TableDepth},
	)...)

	cupX := CupOffset
	parts := []*Part{
		{Name: "floor", Visible: true, Triangles: Box(pmath.Vec3{X: -5, Y: -0.1, Z: -5}, pmath.Vec3{X: 5, Y: 0, Z: 5})},
		{Name: "table", Visible: true, Triangles: table},
		{Name: "left_cup", Visible: true, Triangles: Cylinder(pmath.Vec3{X: -cupX, Y: TableHeight}, CupHeight, CupRadius, 24)},
		{Name: "right_cup", Visible: true, Triangles: Cylinder(pmath.Vec3{X: cupX, Y: TableHeight}, CupHeight, CupRadius, 24)},
	}
	c, err := NewComposite("table", parts...)
	if err != nil {
		// Part names above are fixed and unique.
		panic(err)
	}
	return c
}

// New returns a registered scene by name.
func New(name string) (Source, error) {
	switch name {
	case "floor":
		return Floor(10), nil
	case "table":
		return Table(), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownScene, name)
	}
}
