/*
Package server implements msgpack IPC for HSN validation and suggestion services.

The server package provides a minimal request/response interface over
stdin/stdout using binary msgpack encoding. Clients send one structured
message per operation and receive one response; messages are processed
synchronously with timing info included where retrieval work happens.

# IPC

Each request carries an ID the response echoes back, an op selector, and the
fields that op needs:

	{"id": "v1", "op": "validate", "code": "01011010"}
	{"id": "b1", "op": "validate", "codes": ["01", "0101", "abc"]}
	{"id": "s1", "op": "suggest", "q": "pure-bred breeding horses", "l": 5}
	{"id": "e1", "op": "explain", "q": "breeding horses", "l": 5}
	{"id": "c1", "op": "children", "code": "0101"}
	{"id": "m1", "op": "summary"}
	{"id": "h1", "op": "health"}

Validation responses carry the full verdict per code; suggestion responses
carry ranked candidates with scores, confidence buckets and the retrieval
method that produced each one. Malformed requests produce an error payload
with the offending ID, never a dropped connection.
*/
package server

// Request is an incoming IPC message. Unused fields stay at zero values.
type Request struct {
	ID    string   `msgpack:"id"`
	Op    string   `msgpack:"op"`
	Code  string   `msgpack:"code,omitempty"`
	Codes []string `msgpack:"codes,omitempty"`
	Query string   `msgpack:"q,omitempty"`
	Limit int      `msgpack:"l,omitempty"`
}

// ValidationPayload is one code's verdict on the wire.
type ValidationPayload struct {
	InputCode      string   `msgpack:"input"`
	CleanedCode    string   `msgpack:"cleaned"`
	FormatValid    bool     `msgpack:"format_valid"`
	Exists         bool     `msgpack:"exists"`
	Description    string   `msgpack:"description,omitempty"`
	HierarchyValid bool     `msgpack:"hierarchy_valid"`
	ParentCodes    []string `msgpack:"parents,omitempty"`
	ValidParents   []string `msgpack:"valid_parents,omitempty"`
	MissingParents []string `msgpack:"missing_parents,omitempty"`
	OverallValid   bool     `msgpack:"valid"`
	Error          string   `msgpack:"error,omitempty"`
}

// ValidateResponse answers single and batch validation requests.
type ValidateResponse struct {
	ID        string              `msgpack:"id"`
	Results   []ValidationPayload `msgpack:"results"`
	Count     int                 `msgpack:"c"`
	TimeTaken int64               `msgpack:"t"`
}

// SuggestionPayload is one ranked candidate on the wire.
type SuggestionPayload struct {
	Code        string  `msgpack:"code"`
	Description string  `msgpack:"description"`
	Score       float64 `msgpack:"score"`
	Confidence  string  `msgpack:"confidence"`
	Method      string  `msgpack:"method"`
}

// SuggestResponse answers suggestion requests.
type SuggestResponse struct {
	ID          string              `msgpack:"id"`
	Query       string              `msgpack:"q"`
	Suggestions []SuggestionPayload `msgpack:"s"`
	Count       int                 `msgpack:"c"`
	TimeTaken   int64               `msgpack:"t"`
}

// ExplainResponse answers suggestion-with-explanation requests.
type ExplainResponse struct {
	ID          string              `msgpack:"id"`
	Query       string              `msgpack:"q"`
	Suggestions []SuggestionPayload `msgpack:"s"`
	KeyTerms    []string            `msgpack:"key_terms,omitempty"`
	Methods     []string            `msgpack:"methods,omitempty"`
	Count       int                 `msgpack:"c"`
	TimeTaken   int64               `msgpack:"t"`
}

// EntryPayload is one catalog entry on the wire.
type EntryPayload struct {
	Code        string `msgpack:"code"`
	Description string `msgpack:"description"`
}

// ChildrenResponse lists the codes nested under a prefix.
type ChildrenResponse struct {
	ID      string         `msgpack:"id"`
	Code    string         `msgpack:"code"`
	Entries []EntryPayload `msgpack:"entries"`
	Count   int            `msgpack:"c"`
}

// SummaryResponse reports catalog shape.
type SummaryResponse struct {
	ID           string      `msgpack:"id"`
	TotalCodes   int         `msgpack:"total_codes"`
	LengthCounts map[int]int `msgpack:"length_counts"`
}

// HealthResponse reports component status.
type HealthResponse struct {
	ID         string `msgpack:"id"`
	Status     string `msgpack:"status"`
	DataLoaded bool   `msgpack:"data_loaded"`
	VocabTerms int    `msgpack:"vocab_terms"`
}

// ErrorResponse represents an IPC error
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
