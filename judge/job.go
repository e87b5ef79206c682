package judge

// SelectionJob is one solution to review against a reference query.
type SelectionJob struct {
	SubmissionID      string
	Solution          string
	ReferenceSolution string
	// ReferenceKey caches the reference result; empty disables caching.
	ReferenceKey string
	SchemaName   string
	CheckOrder   bool
	SortBy       []string
	Restrictions []string
}
