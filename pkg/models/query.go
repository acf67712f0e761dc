package models

// QueryResult is the raw column/row output of the structured-query agent.
// Values are normalized to JSON-safe scalars before they land here. An empty
// Columns/Rows pair means "no answer"; execution failures are surfaced as a
// single diagnostic row rather than an error.
type QueryResult struct {
	Query   string   `json:"query"`
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}
