package search

import (
	"os"
	"path/filepath"
	"strings"
)

// snippetRadius is how many characters of context surround a match.
const snippetRadius = 50

// Match is one search hit inside a recording's text artifacts.
type Match struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Type  string `json:"type"`
	Match string `json:"match"`
}

// Service performs plain substring search across transcripts and notes.
type Service struct {
	outputDir string
}

// NewService creates a search service over the output tree.
func NewService(outputDir string) *Service {
	return &Service{outputDir: outputDir}
}

// Search scans every recording folder's transcript and notes for the query,
// case-insensitively, and returns a snippet per matching document.
func (s *Service) Search(query string) []Match {
	query = strings.ToLower(query)
	results := []Match{}

	entries, err := os.ReadDir(s.outputDir)
	if err != nil {
		return results
	}

	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == "videos" {
			continue
		}

		title := entry.Name()
		if _, rest, ok := strings.Cut(title, "_"); ok {
			title = strings.ReplaceAll(rest, "_", " ")
		}

		folder := filepath.Join(s.outputDir, entry.Name())
		for file, docType := range map[string]string{
			"transcript.txt":   "transcript",
			"lecture_notes.md": "notes",
		} {
			if m, ok := searchFile(filepath.Join(folder, file), query); ok {
				results = append(results, Match{
					ID:    entry.Name(),
					Title: title,
					Type:  docType,
					Match: m,
				})
			}
		}
	}
	return results
}

func searchFile(path, query string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	content := string(data)
	idx := strings.Index(strings.ToLower(content), query)
	if idx < 0 {
		return "", false
	}

	start := idx - snippetRadius
	if start < 0 {
		start = 0
	}
	end := idx + len(query) + snippetRadius
	if end > len(content) {
		end = len(content)
	}

	snippet := strings.TrimSpace(strings.ReplaceAll(content[start:end], "\n", " "))
	return "..." + snippet + "...", true
}
