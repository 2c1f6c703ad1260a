package screenshot

// CaptureResult is the service's answer to a capture request.
type CaptureResult struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

type captureRequest struct {
	URL      string          `json:"url"`
	Storage  storageOptions  `json:"storage"`
	Viewport viewport        `json:"viewport"`
	Format   string          `json:"format"`
	Options  captureOptions  `json:"options"`
	Metadata captureMetadata `json:"metadata"`
}

type storageOptions struct {
	Provider string `json:"provider"`
	Bucket   string `json:"bucket"`
	Region   string `json:"region"`
	Key      string `json:"key"`
}

type viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type captureOptions struct {
	WaitUntil string `json:"waitUntil"`
	Timeout   int64  `json:"timeout"` // milliseconds
}

type captureMetadata struct {
	App          string `json:"app"`
	ResourceID   string `json:"resourceId"`
	ResourceType string `json:"resourceType"`
	RequestID    string `json:"requestId"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
