package filesearch

// Store is a hosted file search store. Its ID is the resource name assigned
// by the API (e.g. "fileSearchStores/abc123") and doubles as the channel's
// external reference.
type Store struct {
	ID          string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Operation is a long-running ingestion operation for an uploaded file.
type Operation struct {
	Name   string `json:"name"`
	Done   bool   `json:"done"`
	FileID string `json:"file_id,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SourceRef is a grounding citation returned with a generated answer.
type SourceRef struct {
	Document string `json:"document"`
	Snippet  string `json:"snippet,omitempty"`
}

type QueryResult struct {
	Answer  string      `json:"answer"`
	Sources []SourceRef `json:"sources"`
}

type Summary struct {
	SummaryType string `json:"summary_type"`
	Summary     string `json:"summary"`
}

type TimelineEvent struct {
	Date        string `json:"date"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
}

type Timeline struct {
	Events []TimelineEvent `json:"events"`
}

type BriefingSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Briefing struct {
	Title            string            `json:"title"`
	ExecutiveSummary string            `json:"executive_summary"`
	Sections         []BriefingSection `json:"sections"`
	KeyPoints        []string          `json:"key_points"`
}

// ScriptLine is one turn of a generated two-host dialogue.
type ScriptLine struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// DialogueScript is a podcast-style overview of a store's documents.
type DialogueScript struct {
	Title                    string       `json:"title"`
	Introduction             string       `json:"introduction"`
	Dialogue                 []ScriptLine `json:"dialogue"`
	Conclusion               string       `json:"conclusion"`
	EstimatedDurationSeconds int          `json:"estimated_duration_seconds"`
}
