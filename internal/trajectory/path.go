// Package trajectory generates sensor poses for a simulation run.
package trajectory

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/depthmesh/internal/scene"
	"github.com/Faultbox/depthmesh/internal/sensor"
	pmath "github.com/Faultbox/depthmesh/pkg/math"
)

// ErrUnknownPath is returned by Named for unregistered path names.
var ErrUnknownPath = errors.New("unknown sensor path")

// defaultBounds is used when the scene reports no bounds.
var defaultBounds = [2]pmath.Vec3{{X: -2, Y: 0, Z: -2}, {X: 2, Y: 2, Z: 2}}

// Linspace returns n evenly spaced values in [0, 1]. A single value is 0.
func Linspace(n int) []float64 {
	t := make([]float64, n)
	if n == 1 {
		return t
	}
	for i := range t {
		t[i] = float64(i) / float64(n-1)
	}
	return t
}

// Line returns n points from start to end inclusive.
func Line(start, end pmath.Vec3, n int) []pmath.Vec3 {
	pts := make([]pmath.Vec3, n)
	for i, t := range Linspace(n) {
		pts[i] = start.Lerp(end, t)
	}
	return pts
}

// HelixParams describes an elliptical helix around the y axis.
type HelixParams struct {
	Spins     float64
	XDiameter float64
	ZDiameter float64
	YStart    float64
	YEnd      float64
}

// Helix returns n points along the helix, starting at +z.
func Helix(p HelixParams, n int) []pmath.Vec3 {
	pts := make([]pmath.Vec3, n)
	rx, rz := p.XDiameter/2, p.ZDiameter/2
	for i, t := range Linspace(n) {
		theta := 2 * math.Pi * p.Spins * t
		pts[i] = pmath.Vec3{
			X: rx * math.Sin(theta),
			Y: p.YStart + (p.YEnd-p.YStart)*t,
			Z: rz * math.Cos(theta),
		}
	}
	return pts
}

// Zip pairs positions with look-at points.
func Zip(positions, lookAts []pmath.Vec3) ([]sensor.Pose, error) {
	if len(positions) != len(lookAts) {
		return nil, fmt.Errorf("trajectory: %d positions, %d look-at points", len(positions), len(lookAts))
	}
	poses := make([]sensor.Pose, len(positions))
	for i := range positions {
		poses[i] = sensor.Pose{Position: positions[i], LookAt: lookAts[i]}
	}
	return poses, nil
}

// Names lists the registered paths.
func Names() []string {
	return []string{"static_floor", "line", "helix_table_ub", "helix_survey_ub"}
}

// Named builds a registered path. Names ending in "_ub" size themselves from
// the scene bounds with the floor hidden, when the scene can hide it.
// steps <= 0 selects the path's default length.
func Named(name string, steps int, src scene.Source) ([]sensor.Pose, error) {
	if steps <= 0 {
		steps = 20
	}

	lo, hi := defaultBounds[0], defaultBounds[1]
	if src != nil {
		if l, h, ok := scene.BoundsWithout(src, "floor"); ok {
			lo, hi = l, h
		}
	}
	// Margins around the object, in meters.
	xd := hi.X - lo.X + 3
	zd := hi.Z - lo.Z + 3

	switch name {
	case "static_floor":
		pos := make([]pmath.Vec3, steps)
		look := make([]pmath.Vec3, steps)
		for i := range pos {
			pos[i] = pmath.Vec3{Y: 2}
		}
		return Zip(pos, look)
	case "line":
		return Zip(
			Line(pmath.Vec3{X: -1.5, Y: 1, Z: 1.5}, pmath.Vec3{X: 1.5, Y: 1, Z: 1.5}, steps),
			Line(pmath.Vec3{}, pmath.Vec3{}, steps),
		)
	case "helix_table_ub":
		return Zip(
			Helix(HelixParams{Spins: 2, XDiameter: xd + 1.0, ZDiameter: zd + 0.5, YStart: 0.75, YEnd: 1.5}, steps),
			Line(pmath.Vec3{Y: 0.4}, pmath.Vec3{Y: 0.6}, steps),
		)
	case "helix_survey_ub":
		return Zip(
			Helix(HelixParams{Spins: 1, XDiameter: xd + 1.5, ZDiameter: zd + 1.0, YStart: 0.75, YEnd: 1.5}, steps),
			Line(pmath.Vec3{Y: 0.4}, pmath.Vec3{Y: 0.6}, steps),
		)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPath, name)
	}
}
