package commonModels

import "time"

// Document describes one uploaded file.
type Document struct {
	Id                  string    `json:"source_doc_id"`
	Name                string    `json:"doc_name"`
	LastIngestTimestamp time.Time `json:"ingested_at"`
	ContentType         DocType   `json:"contentType"`
}

// Page is the extracted text of a single PDF page. Number is 1-based.
type Page struct {
	Number  int    `json:"page_num"`
	Source  string `json:"source"`
	Content string `json:"content"`
}

type DocChunk struct {
	Doc            Document `json:"doc"`
	ChunkId        string   `json:"chunk_id"`
	Chunk          string   `json:"content"`
	PageNum        int      `json:"page_num"`
	ChunkPageOrder int      `json:"chunk_order"`
}

// ScoredChunk is a search hit, Similarity is cosine similarity in [-1, 1].
type ScoredChunk struct {
	DocChunk
	Similarity float32 `json:"similarity"`
}

type DocType string

var PDF DocType = "PDF"
var ERR DocType = "ERROR"
