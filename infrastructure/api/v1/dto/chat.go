package dto

// ChatRequest represents a chat API request. DocumentIDs scopes retrieval;
// when empty the question is answered without document context.
type ChatRequest struct {
	Question    string  `json:"question"`
	ModelID     string  `json:"model_id,omitempty"`
	ModelName   string  `json:"model_name,omitempty"`
	DocumentIDs []int64 `json:"document_ids,omitempty"`
	TopK        int     `json:"top_k,omitempty"`
}

// SourceResponse represents one retrieved chunk backing an answer.
type SourceResponse struct {
	ChunkID    int64   `json:"chunk_id"`
	DocumentID int64   `json:"document_id"`
	Page       int     `json:"page"`
	Title      string  `json:"title"`
	Excerpt    string  `json:"excerpt"`
	Score      float64 `json:"score"`
}

// ChatResponse represents a chat API response.
type ChatResponse struct {
	Answer    string           `json:"answer"`
	Sources   []SourceResponse `json:"sources"`
	ModelFile string           `json:"model_file"`
	Strategy  string           `json:"strategy"`
	CacheHit  bool             `json:"cache_hit"`
}
