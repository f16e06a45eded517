package dto

type IndexDocumentsRequest struct {
	// Paths under the documents directory; empty means the whole directory.
	Paths []string `json:"paths" validate:"omitempty,dive,required"`
}

type IndexDocumentsResponse struct {
	Queued  []string `json:"queued"`
	Skipped []string `json:"skipped,omitempty"`
}

type DocumentSourceResponse struct {
	Source string `json:"source"`
	Chunks int64  `json:"chunks"`
}

type PublishIndexDocumentMessage struct {
	Path string `json:"path"`
}

type ListChunksRequest struct {
	Source string `query:"source"`
	Query  string `query:"q" validate:"max=200"`
	Limit  int    `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int    `query:"offset" validate:"omitempty,min=0"`
}

type DocumentChunkResponse struct {
	Id         string `json:"id"`
	Source     string `json:"source"`
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
}
