package models

// PreviewFrame matches the JSON body of GET /api/camera/preview.
// Image is either a data URI or a URL the frame can be fetched from.
type PreviewFrame struct {
	Status CameraStatus `json:"status"`
	Image  string       `json:"image"`
}

// CommandResponse is the body returned by the /api/camera/* command endpoints.
type CommandResponse map[string]any
