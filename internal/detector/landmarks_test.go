package detector

import (
	"math"
	"testing"
)

func TestFaceLandmarks_EyeOpenness(t *testing.T) {
	tests := []struct {
		name   string
		upperY float64
		lowerY float64
		want   float64
	}{
		{"open eye", 0.40, 0.47, 0.07},
		{"nearly closed", 0.44, 0.45, 0.01},
		{"coincident lids", 0.44, 0.44, 0},
		{"inverted order still positive", 0.47, 0.40, 0.07},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var face FaceLandmarks
			face.Points[RightEyeUpperLid] = Point3D{X: 0.6, Y: tt.upperY}
			face.Points[RightEyeLowerLid] = Point3D{X: 0.6, Y: tt.lowerY}

			got := face.EyeOpenness()
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("EyeOpenness() = %f, want %f", got, tt.want)
			}
			if got < 0 {
				t.Errorf("EyeOpenness() = %f, must be non-negative", got)
			}
		})
	}
}

func TestFaceWithOpenness(t *testing.T) {
	for _, openness := range []float64{0, 0.02, 0.08} {
		face := FaceWithOpenness(openness)
		if got := face.EyeOpenness(); math.Abs(got-openness) > 1e-12 {
			t.Errorf("FaceWithOpenness(%f).EyeOpenness() = %f", openness, got)
		}
	}
}

func TestMockDetector_Sequence(t *testing.T) {
	m := NewMockDetector()
	m.SetSequence([]*FaceLandmarks{
		FaceWithOpenness(0.08),
		nil, // frame with no face
		FaceWithOpenness(0.01),
	})

	first, err := m.Detect(nil)
	if err != nil || first == nil {
		t.Fatalf("Detect() = %v, %v, want face", first, err)
	}

	second, err := m.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if second != nil {
		t.Error("second frame should report no face")
	}

	third, _ := m.Detect(nil)
	if third == nil {
		t.Fatal("third frame should report a face")
	}
	if third.EyeOpenness() >= 0.02 {
		t.Errorf("third frame openness = %f, want < 0.02", third.EyeOpenness())
	}

	// Exhausted sequences repeat the last entry.
	again, _ := m.Detect(nil)
	if again != third {
		t.Error("exhausted sequence should repeat the last entry")
	}
}
