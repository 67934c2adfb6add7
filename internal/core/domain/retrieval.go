package domain

// DefaultK is the default number of evidence chunks retrieved per query.
const DefaultK = 4

// DefaultMaxContextTokens is the default prompt assembly budget.
const DefaultMaxContextTokens = 2048

// RetrievalOptions configures a retrieval query.
type RetrievalOptions struct {
	// K is the number of evidence chunks to return (default 4).
	K int

	// Category optionally restricts results to one document category.
	// Filtering happens after similarity search and never changes the
	// metric; it only excludes non-matching entries.
	Category Category
}

// Evidence is a retrieved chunk with its similarity score.
type Evidence struct {
	// Chunk is the retrieved text segment.
	Chunk Chunk

	// Score is the similarity score in (0, 1], derived from squared L2
	// distance as 1/(1+distance). Higher is more similar.
	Score float64
}

// RetrievalResult is the ordered evidence returned for one query.
// It is produced fresh per query and carries no identity of its own:
// the query and parameters fully determine it against an immutable index.
type RetrievalResult struct {
	// Query is the query text that was embedded and searched.
	Query string

	// K is the requested result count.
	K int

	// Category is the category filter applied, if any.
	Category Category

	// Evidence is ranked by descending score; ties break by ascending
	// chunk ID so results are deterministic.
	Evidence []Evidence
}

// Len returns the number of evidence entries.
func (r *RetrievalResult) Len() int {
	return len(r.Evidence)
}

// ChunkIDs returns the ranked chunk IDs.
func (r *RetrievalResult) ChunkIDs() []string {
	ids := make([]string, len(r.Evidence))
	for i := range r.Evidence {
		ids[i] = r.Evidence[i].Chunk.ID
	}
	return ids
}
