// Package math provides the vector and matrix types used for camera transforms.
package math

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a 3D point or direction. It shares its layout with gonum's r3.Vec
// so the two convert freely.
type Vec3 r3.Vec

// R3 returns v as a gonum vector.
func (v Vec3) R3() r3.Vec {
	return r3.Vec(v)
}

func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3(r3.Add(r3.Vec(v), r3.Vec(other)))
}

func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3(r3.Sub(r3.Vec(v), r3.Vec(other)))
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3(r3.Scale(s, r3.Vec(v)))
}

func (v Vec3) Dot(other Vec3) float64 {
	return r3.Dot(r3.Vec(v), r3.Vec(other))
}

// Cross returns the right-handed cross product v x other.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3(r3.Cross(r3.Vec(v), r3.Vec(other)))
}

// Length returns the Euclidean norm.
func (v Vec3) Length() float64 {
	return r3.Norm(r3.Vec(v))
}

// Normalize returns v scaled to unit length. The zero vector stays zero.
func (v Vec3) Normalize() Vec3 {
	if v == (Vec3{}) {
		return v
	}
	return Vec3(r3.Unit(r3.Vec(v)))
}

func (v Vec3) Distance(other Vec3) float64 {
	return r3.Norm(r3.Sub(r3.Vec(v), r3.Vec(other)))
}

// Min and Max are component-wise; they grow bounding boxes.
func (v Vec3) Min(other Vec3) Vec3 {
	return Vec3{X: math.Min(v.X, other.X), Y: math.Min(v.Y, other.Y), Z: math.Min(v.Z, other.Z)}
}

func (v Vec3) Max(other Vec3) Vec3 {
	return Vec3{X: math.Max(v.X, other.X), Y: math.Max(v.Y, other.Y), Z: math.Max(v.Z, other.Z)}
}

// Lerp returns v at t=0 and other at t=1.
func (v Vec3) Lerp(other Vec3, t float64) Vec3 {
	return v.Add(other.Sub(v).Scale(t))
}
