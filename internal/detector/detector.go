package detector

import "gocv.io/x/gocv"

// Detector defines the interface for face-landmark extraction implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the landmark set for at most
	// one face. A nil result with a nil error means no face was found in the
	// frame, which is a normal per-frame outcome, not a fault.
	Detect(frame *gocv.Mat) (*FaceLandmarks, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for face-landmark extraction.
type Config struct {
	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// RefineLandmarks enables the refined iris/lip landmarks, extending the
	// mesh from 468 to 478 points.
	RefineLandmarks bool
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
		RefineLandmarks: true,
	}
}
