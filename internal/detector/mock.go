package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It either returns a fixed result for every frame or plays back a scripted
// per-frame sequence of results.
type MockDetector struct {
	face  *FaceLandmarks
	err   error
	queue []*FaceLandmarks
	index int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetFace sets the landmarks returned by every Detect call.
// Passing nil simulates "no face found".
func (m *MockDetector) SetFace(face *FaceLandmarks) {
	m.face = face
	m.queue = nil
	m.index = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// SetSequence scripts one result per frame. Nil entries simulate frames with
// no face. After the sequence is exhausted, Detect keeps returning the last
// entry.
func (m *MockDetector) SetSequence(faces []*FaceLandmarks) {
	m.queue = faces
	m.index = 0
	m.face = nil
}

// Detect returns the pre-configured face, sequence entry, or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*FaceLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	if len(m.queue) > 0 {
		if m.index >= len(m.queue) {
			return m.queue[len(m.queue)-1], nil
		}
		face := m.queue[m.index]
		m.index++
		return face, nil
	}
	return m.face, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// FaceWithOpenness returns a preset FaceLandmarks whose right-eye lid pair is
// separated vertically by exactly openness, in normalized coordinates. The
// rest of the mesh is left at the zero value; blink detection only reads the
// lid pair.
func FaceWithOpenness(openness float64) *FaceLandmarks {
	face := &FaceLandmarks{Score: 0.95}
	face.Points[RightEyeUpperLid] = Point3D{X: 0.6, Y: 0.40, Z: 0}
	face.Points[RightEyeLowerLid] = Point3D{X: 0.6, Y: 0.40 + openness, Z: 0}
	face.Points[LeftEyeUpperLid] = Point3D{X: 0.4, Y: 0.40, Z: 0}
	face.Points[LeftEyeLowerLid] = Point3D{X: 0.4, Y: 0.40 + openness, Z: 0}
	return face
}
