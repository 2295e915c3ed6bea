// Package qa answers outline questions against the indexed law corpus:
// prompt construction, the Claude client, verdict parsing and latency stats.
package qa

// Result is the review of one outline leaf.
type Result struct {
	Question  string   `json:"question"`
	Path      []string `json:"path"`
	Answer    string   `json:"answer"`
	Verdict   Verdict  `json:"verdict"`
	Documents []string `json:"documents"`
	Error     string   `json:"error,omitempty"`
}
