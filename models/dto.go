package models

// FetchSegmentRequest is the body of POST /api/fetch-segment.
type FetchSegmentRequest struct {
	URL       string `json:"url"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// FetchSegmentResponse reports where the extracted segment can be previewed.
type FetchSegmentResponse struct {
	Success  bool   `json:"success"`
	VideoURL string `json:"videoUrl"`
	Filename string `json:"filename"`
}

// ProcessCropRequest is the body of POST /api/process-crop.
type ProcessCropRequest struct {
	Filename    string  `json:"filename"`
	AspectRatio string  `json:"aspectRatio"`
	Position    float64 `json:"position"`
}
