package domain

// Retrieval defaults.
const (
	DefaultQueryLimit     = 1
	DefaultQueryThreshold = 0.90
)

// QueryOptions configures a thresholded similarity query.
type QueryOptions struct {
	// Field is the vector field searched.
	Field VectorField

	// Limit is the number of candidates requested from the index.
	// Zero returns no results.
	Limit int

	// Threshold is the minimum similarity kept (inclusive).
	Threshold float64
}

// DefaultQueryOptions searches section titles for the single best match at 0.90.
func DefaultQueryOptions() QueryOptions {
	return QueryOptions{
		Field:     FieldSectionTitle,
		Limit:     DefaultQueryLimit,
		Threshold: DefaultQueryThreshold,
	}
}

// QueryResult is one hit that cleared the threshold.
type QueryResult struct {
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// Default sections looked up for every corpus.
const (
	SectionAbstract     = "Abstract"
	SectionIntroduction = "Introduction"
	SectionMethodology  = "Methodology"
	SectionResults      = "Results"
	SectionConclusion   = "Conclusion"
	SectionReferences   = "References"
)

// DefaultSections returns the curated section names in reading order.
func DefaultSections() []string {
	return []string{
		SectionAbstract,
		SectionIntroduction,
		SectionMethodology,
		SectionResults,
		SectionConclusion,
		SectionReferences,
	}
}

// FallbackResultCount is how many user-based hits stand in for an empty section.
const FallbackResultCount = 4

// Corpus groups query results for downstream prompt construction.
type Corpus struct {
	// DefaultResults maps a curated section name to its matches.
	DefaultResults map[string][]QueryResult `json:"default_results"`

	// UserBasedSearch maps a user query to its matches.
	UserBasedSearch map[string][]QueryResult `json:"user_based_search"`

	// UserQueries preserves the order user queries were added.
	UserQueries []string `json:"-"`
}

// NewCorpus returns an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		DefaultResults:  make(map[string][]QueryResult),
		UserBasedSearch: make(map[string][]QueryResult),
	}
}

// AddUserResults records results for a user query, keeping insertion order.
func (c *Corpus) AddUserResults(query string, results []QueryResult) {
	if _, ok := c.UserBasedSearch[query]; !ok {
		c.UserQueries = append(c.UserQueries, query)
	}
	c.UserBasedSearch[query] = results
}

// UserResults returns the first n user-based hits across queries in insertion order.
func (c *Corpus) UserResults(n int) []QueryResult {
	out := make([]QueryResult, 0, n)
	for _, q := range c.UserQueries {
		for _, r := range c.UserBasedSearch[q] {
			if len(out) >= n {
				return out
			}
			out = append(out, r)
		}
	}
	return out
}

// ForSection returns the curated results for a section, falling back to the
// first FallbackResultCount user-based hits when the section found nothing.
func (c *Corpus) ForSection(name string) []QueryResult {
	if results := c.DefaultResults[name]; len(results) > 0 {
		return results
	}
	return c.UserResults(FallbackResultCount)
}

// IngestReport summarises one ingest run.
type IngestReport struct {
	// BatchID identifies the run in logs.
	BatchID string `json:"batch_id"`

	// Name is the ingested document name or path.
	Name string `json:"name"`

	// Collection is the collection written to.
	Collection string `json:"collection"`

	// Sections is the number of sections segmented.
	Sections int `json:"sections"`

	// IDs are the row ids assigned by the store.
	IDs []int64 `json:"ids"`

	// CollectionCreated is true when this run created the collection.
	CollectionCreated bool `json:"collection_created"`
}
