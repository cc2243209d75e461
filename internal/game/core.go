package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type Vec3 = mgl64.Vec3

var (
	Up      = Vec3{0, 1, 0}
	Forward = Vec3{0, 0, 1}
	Right   = Vec3{1, 0, 0}
)

// Transform is the pose of any body in the simulation.
type Transform struct {
	Pos Vec3
	Rot mgl64.Quat
}

func NewTransform(pos Vec3, rot mgl64.Quat) Transform {
	if rot.Len() < 1e-9 {
		rot = mgl64.QuatIdent()
	}
	return Transform{Pos: pos, Rot: rot}
}

// Forward returns the body's local +Z axis in world space.
func (t Transform) Forward() Vec3 {
	return t.Rot.Rotate(Forward)
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lerpVec interpolates with t clamped to [0,1]. For t == 0 the result is exactly a.
func lerpVec(a, b Vec3, t float64) Vec3 {
	t = Clamp(t, 0, 1)
	return Vec3{
		a[0] + (b[0]-a[0])*t,
		a[1] + (b[1]-a[1])*t,
		a[2] + (b[2]-a[2])*t,
	}
}

// normalizeOr returns v normalized, or fallback when v is too short to carry a direction.
func normalizeOr(v, fallback Vec3, minLenSqr float64) Vec3 {
	if v.LenSqr() <= minLenSqr {
		return fallback
	}
	return v.Mul(1 / v.Len())
}

// projectOnVector is the component of v along axis (axis need not be unit length).
func projectOnVector(v, axis Vec3) Vec3 {
	d := axis.LenSqr()
	if d < 1e-12 {
		return Vec3{}
	}
	return axis.Mul(v.Dot(axis) / d)
}

// projectOnPlane removes the component of v along the plane normal.
func projectOnPlane(v, normal Vec3) Vec3 {
	return v.Sub(projectOnVector(v, normal))
}

// lookRotation builds the orientation whose forward axis points along dir with +Y kept up.
func lookRotation(dir Vec3) mgl64.Quat {
	l := dir.Len()
	if l < 1e-9 {
		return mgl64.QuatIdent()
	}
	d := dir.Mul(1 / l)
	yaw := math.Atan2(d[0], d[2])
	pitch := -math.Asin(Clamp(d[1], -1, 1))
	return mgl64.QuatRotate(yaw, Up).Mul(mgl64.QuatRotate(pitch, Right)).Normalize()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v Vec3) bool {
	return finite(v[0]) && finite(v[1]) && finite(v[2])
}
