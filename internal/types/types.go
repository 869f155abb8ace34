package types

import "github.com/andresmejia3/facecrypt/internal/face"

// ImageTask represents a single upload sent to an engine for processing
type ImageTask struct {
	Index int
	Path  string
}

// Artifacts is everything the pipeline produced for one upload, still in memory
type Artifacts struct {
	Token     string
	Faces     face.DetectionResult
	Edge      []byte // PNG
	Blur      []byte // PNG
	Container []byte // KF1 container holding the original upload bytes
}

// Report summarizes one processed upload for the command output
type Report struct {
	Input         string `json:"input"`
	Token         string `json:"token,omitempty"`
	FaceCount     int    `json:"face_count"`
	EdgePath      string `json:"edge_path,omitempty"`
	BlurPath      string `json:"blur_path,omitempty"`
	ContainerPath string `json:"container_path,omitempty"`
	Error         string `json:"error,omitempty"`
}
