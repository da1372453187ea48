package model

// Source is a citation from a generated answer back to a document passage.
type Source struct {
	Document string `json:"document"`
	Snippet  string `json:"snippet,omitempty"`
}
