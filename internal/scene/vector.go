package scene

import "math"

// Vec3 is a position or direction in world space.
type Vec3 struct {
	X, Y, Z float64
}

var (
	// Zero is the origin.
	Zero = Vec3{}
	// One is the unit scale.
	One = Vec3{X: 1, Y: 1, Z: 1}
	// Up is the world up axis.
	Up = Vec3{Y: 1}
	// Forward is the axis a node faces under the identity rotation.
	Forward = Vec3{Z: 1}
)

// V builds a Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }

// Normalize returns v scaled to unit length, or Zero for a zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Zero
	}
	return v.Scale(1 / l)
}

func (v Vec3) cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Lerp interpolates between a and b; t is clamped to [0, 1].
func Lerp(a, b Vec3, t float64) Vec3 {
	t = Clamp01(t)
	return a.Add(b.Sub(a).Scale(t))
}

// Clamp01 clamps t to [0, 1].
func Clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}

// Quat is a unit quaternion orientation.
type Quat struct {
	X, Y, Z, W float64
}

// Identity is the no-rotation orientation.
func Identity() Quat {
	return Quat{W: 1}
}

// Mul composes q then o (o is applied first).
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// Rotate applies q to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.cross(t))
}

// LookRotation returns the orientation whose forward axis points along dir.
// A zero direction yields Identity.
func LookRotation(dir Vec3) Quat {
	d := dir.Normalize()
	if d == Zero {
		return Identity()
	}
	yaw := math.Atan2(d.X, d.Z)
	pitch := -math.Asin(d.Y)
	qy := Quat{Y: math.Sin(yaw / 2), W: math.Cos(yaw / 2)}
	qx := Quat{X: math.Sin(pitch / 2), W: math.Cos(pitch / 2)}
	return qy.Mul(qx)
}
