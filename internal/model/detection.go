package model

// BoundingBox locates a detection inside the image, in pixels
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Detection is one identified item within an image. Every classifier source is
// normalized to this shape at its adapter boundary.
type Detection struct {
	Name        string        `json:"name"`                   // Raw label as reported by the source
	Category    WasteCategory `json:"category"`               // Fine-grained category
	Confidence  int           `json:"confidence"`             // 0-100
	BoundingBox *BoundingBox  `json:"bounding_box,omitempty"` // Only set by the detector
	Source      SourceTag     `json:"source"`                 // Which source produced it
}

// SourceTag identifies which classifier produced a detection or verdict
type SourceTag string

const (
	SourceDetector   SourceTag = "detector"
	SourceClassifier SourceTag = "classifier"
	SourceFallback   SourceTag = "fallback"
	SourceNone       SourceTag = "none" // Exhausted pipeline, synthetic "Unknown" result
)

// Verdict is the reconciled result of one classification request
type Verdict struct {
	Primary        Detection       `json:"primary"`
	AllDetections  []Detection     `json:"all_detections"` // Non-increasing by confidence
	SourceTag      SourceTag       `json:"source"`
	SourceChain    []SourceTag     `json:"source_chain"` // Sources that produced results, in priority order
	Outward        OutwardCategory `json:"outward_category"`
	Points         int             `json:"points"`
	RecyclableRate int             `json:"recyclable_rate"`
	Description    string          `json:"description"`
	DisposalMethod string          `json:"disposal_method"`
	Tips           []string        `json:"tips"`
	Cached         bool            `json:"cached,omitempty"`
}

// ClampConfidence bounds a confidence value to [0,100]
func ClampConfidence(c int) int {
	if c < 0 {
		return 0
	}
	if c > 100 {
		return 100
	}
	return c
}
