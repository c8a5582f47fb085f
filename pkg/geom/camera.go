package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultMargin is the extra framing space applied to the camera distance
// (1.0 = tight fit against the bounding sphere).
const DefaultMargin = 1.15

// IsometricViews are the four symmetric diagonal-downward view directions
// used for multi-angle renders of a structure. Each vector points from a
// high corner of the box toward its center.
var IsometricViews = [4]mgl64.Vec3{
	{-1, -0.8, -1}, // southeast
	{1, -0.8, -1},  // southwest
	{1, -0.8, 1},   // northwest
	{-1, -0.8, 1},  // northeast
}

// Camera holds a derived camera placement: a position and a yaw/pitch/roll
// orientation in degrees. Roll is always zero for standard framing.
type Camera struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
	Roll     float64
}

// ComputeCamera places a camera looking along view so that the whole box is
// inside the image frame at the given vertical field of view (degrees) and
// width/height aspect ratio. The placement frames the box's circumscribing
// sphere, which is exact for the sphere and conservative for the box itself,
// so no vertex ever clips.
//
// margin scales the computed distance; values below 1 are treated as
// DefaultMargin would be by callers passing 0.
func ComputeCamera(b BBox, view mgl64.Vec3, fovDegrees, aspect, margin float64) Camera {
	center := b.Center()

	s := b.Size()
	size := mgl64.Vec3{float64(s[0]), float64(s[1]), float64(s[2])}
	radius := size.Len() / 2
	if radius < 1 {
		// Degenerate framing for single blocks and tiny structures.
		radius = 1
	}

	fov := mgl64.DegToRad(fovDegrees)
	effective := fov
	switch {
	case aspect > 1:
		effective = 2 * math.Atan(math.Tan(fov/2)*aspect)
	case aspect < 1 && aspect > 0:
		effective = 2 * math.Atan(math.Tan(fov/2)/aspect)
	}

	distance := radius * 2 // fallback for degenerate FOV
	if sin := math.Sin(effective / 2); sin > 0 {
		distance = radius / sin
	}
	distance *= margin

	dir := view.Normalize()
	position := center.Sub(dir.Mul(distance))

	look := center.Sub(position)
	yaw := mgl64.RadToDeg(math.Atan2(look.Z(), look.X()))

	horizontal := math.Hypot(look.X(), look.Z())
	var pitch float64
	if horizontal > 0 {
		pitch = mgl64.RadToDeg(math.Atan2(look.Y(), horizontal))
	} else if look.Y() < 0 {
		pitch = -90 // looking straight down
	} else {
		pitch = 90
	}

	return Camera{Position: position, Yaw: yaw, Pitch: pitch, Roll: 0}
}
