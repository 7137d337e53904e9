package domain

// UnknownEntityType labels entities found without an NLP model.
const UnknownEntityType = "UNKNOWN"

// Entity is a named referent aggregated over a batch of headlines.
type Entity struct {
	Text      string `json:"text"`
	Type      string `json:"type"`
	Frequency int    `json:"frequency"`
}

// Mention is a single entity occurrence reported by an NLP model.
type Mention struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}
