package domain

// Confidence labels how well the selected chunks matched a question.
type Confidence string

// Available confidence labels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// HighConfidenceThreshold is the top score above which an answer is "high".
const HighConfidenceThreshold = 0.5

// NoRelevantMatchAnswer is returned when no chunk qualifies for a question.
const NoRelevantMatchAnswer = "I couldn't find relevant information in the documents to answer this question."

// ConfidenceForScore maps the top-scoring chunk's score to a label.
func ConfidenceForScore(top float64) Confidence {
	if top > HighConfidenceThreshold {
		return ConfidenceHigh
	}
	return ConfidenceMedium
}

// String returns the string representation.
func (c Confidence) String() string {
	return string(c)
}

// Citation identifies one chunk that was placed in an assembled context.
type Citation struct {
	// Document is the source document name.
	Document string `json:"document"`

	// ChunkIndex is the chunk's sequence index within the document.
	ChunkIndex int `json:"chunk_index"`

	// Score is the chunk's relevance score.
	Score float64 `json:"relevance_score"`

	// Preview is the start of the chunk content for display.
	Preview string `json:"preview"`
}

// AssembledContext is the bounded text block built for one query.
type AssembledContext struct {
	// Block is the tagged, separator-joined chunk text.
	Block string

	// Citations parallels the chunks placed in Block.
	Citations []Citation

	// Chunks are the selected chunks in rank order.
	Chunks []ScoredChunk
}

// Empty returns true if no chunk qualified for the query.
func (a *AssembledContext) Empty() bool {
	return len(a.Chunks) == 0
}

// Answer is the result of asking a question in document mode.
type Answer struct {
	// Question is the question that was asked.
	Question string `json:"question"`

	// Answer is the generated answer or the fallback text.
	Answer string `json:"answer"`

	// Confidence labels the quality of the match.
	Confidence Confidence `json:"confidence"`

	// Sources lists the chunks the answer was grounded on.
	Sources []Citation `json:"sources"`

	// ChunksUsed is the number of chunks placed in the context.
	ChunksUsed int `json:"chunks_used"`

	// DocumentsSearched is the number of loaded documents.
	DocumentsSearched int `json:"documents_searched"`
}
