// Package detector provides face-landmark extraction for blink monitoring.
package detector

import "math"

// Landmark indices following the MediaPipe face mesh convention.
// See: https://developers.google.com/mediapipe/solutions/vision/face_landmarker
//
// Only the right-eye vertical lid pair feeds blink detection; the left-eye
// pair is carried for renderers and future consumers of the mesh.
const (
	RightEyeUpperLid = 159
	RightEyeLowerLid = 145
	LeftEyeUpperLid  = 386
	LeftEyeLowerLid  = 374
	NumLandmarks     = 478
)

// Point3D is one landmark position in the normalized coordinate space the
// face-mesh model emits: x and y in [0,1] relative to frame width and height,
// z roughly proportional to depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// FaceLandmarks is the full set of mesh points for one detected face.
type FaceLandmarks struct {
	Points [NumLandmarks]Point3D `json:"points"`
	Score  float64               `json:"score"`
}

// EyeOpenness returns the eye-openness sample for the face: the absolute
// vertical distance between the upper and lower right-eye lid landmarks, in
// the model's normalized coordinate space. No unit conversion is applied;
// the adaptive baseline in the blink package absorbs face-size and
// camera-distance variation.
func (f *FaceLandmarks) EyeOpenness() float64 {
	upper := f.Points[RightEyeUpperLid]
	lower := f.Points[RightEyeLowerLid]
	return math.Abs(upper.Y - lower.Y)
}
