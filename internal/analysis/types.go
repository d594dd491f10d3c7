package analysis

// SummarizeRequest is the body of POST /api/summarize.
type SummarizeRequest struct {
	Text string `json:"text"`
}

// SummarizeResponse is returned by POST /api/summarize.
type SummarizeResponse struct {
	Summary string `json:"summary"`
}

// CompareRequest is the body of POST /api/compare.
type CompareRequest struct {
	Clause1 string `json:"clause1"`
	Clause2 string `json:"clause2"`
}

// CompareResponse is returned by POST /api/compare.
type CompareResponse struct {
	Comparison      string   `json:"comparison"`
	Differences     []string `json:"differences"`
	Recommendations []string `json:"recommendations"`
}

// RedraftRequest is the body of POST /api/redraft.
type RedraftRequest struct {
	Text         string `json:"text"`
	Instructions string `json:"instructions,omitempty"`
}

// RedraftResponse is returned by POST /api/redraft.
type RedraftResponse struct {
	RedraftedText string   `json:"redraftedText"`
	Changes       []string `json:"changes"`
}

// AnalyzeRequest is the body of POST /api/analyze.
type AnalyzeRequest struct {
	Text    string `json:"text"`
	Prompt  string `json:"prompt"`
	Context string `json:"context,omitempty"`
}

// AnalyzeResponse is returned by POST /api/analyze.
type AnalyzeResponse struct {
	Response    string   `json:"response"`
	Suggestions []string `json:"suggestions,omitempty"`
}
