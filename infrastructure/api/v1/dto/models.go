package dto

// ModelResponse represents one discovered GGUF model file.
type ModelResponse struct {
	Key       string `json:"key"`
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
	Loaded    bool   `json:"loaded"`
}

// ModelListResponse represents the list of available models.
type ModelListResponse struct {
	Models []ModelResponse `json:"models"`
}
