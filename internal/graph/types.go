package graph

// ExtractedNode is one entity produced by LLM extraction, after
// post-processing. Label is validated against the known label set before
// it is spliced into a statement; Props ride as bind parameters.
type ExtractedNode struct {
	ID    string
	Label string
	Props map[string]any
}

// ExtractedRel is one relationship produced by LLM extraction.
type ExtractedRel struct {
	SourceID string
	TargetID string
	Type     string
}

// Counts summarizes the graph after a build pass.
type Counts struct {
	Languages  int64
	Countries  int64
	Families   int64
	LocatedIn  int64
	BelongsTo  int64
	TotalNodes int64
}

// FamilyCount and CountryCount back the statistics views.
type FamilyCount struct {
	Family string
	Count  int64
}

type CountryCount struct {
	Country string
	Count   int64
}
