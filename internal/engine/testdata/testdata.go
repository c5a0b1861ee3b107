package testdata

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed corpus.json
var corpusJSON []byte

// CorpusEntry is a labeled payload with its expected canonical JSON and CSV.
type CorpusEntry struct {
	Raw           string `json:"raw"`
	ExpectedShape string `json:"expected_shape"`
	ExpectedJSON  string `json:"expected_json"`
	ExpectedCSV   string `json:"expected_csv"`
	Description   string `json:"description"`
}

// LoadCorpus parses the embedded corpus.json and returns all entries.
func LoadCorpus() ([]CorpusEntry, error) {
	var entries []CorpusEntry
	if err := json.Unmarshal(corpusJSON, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus.json: %w", err)
	}
	return entries, nil
}
