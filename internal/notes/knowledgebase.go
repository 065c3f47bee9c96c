package notes

import (
	"context"
	"fmt"
	"strings"
)

const (
	// chunkThreshold is the transcript length above which note synthesis
	// goes through intermediate knowledge extracts instead of a single pass.
	chunkThreshold = 20000

	// chunkSize is the target size of one transcript chunk.
	chunkSize = 20000

	// chunkOverlap is carried from the end of one chunk into the next so
	// sentences cut at a boundary keep their context.
	chunkOverlap = 200

	// sentenceLookback is how far back from a chunk boundary to search for
	// a sentence terminator to snap the cut to.
	sentenceLookback = 500
)

// SplitTranscript segments a long transcript into overlapping chunks. Chunk
// boundaries prefer the last sentence terminator within the lookback window;
// a transcript at or below the threshold comes back as a single chunk.
func SplitTranscript(text string) []string {
	if len(text) <= chunkThreshold {
		return []string{text}
	}

	var chunks []string
	pos := 0
	for pos < len(text) {
		end := pos + chunkSize
		if end >= len(text) {
			chunks = append(chunks, text[pos:])
			break
		}

		cut := end
		windowStart := end - sentenceLookback
		if idx := strings.LastIndexAny(text[windowStart:end], ".!?"); idx >= 0 {
			cut = windowStart + idx + 1
		}

		chunks = append(chunks, text[pos:cut])
		pos = cut - chunkOverlap
	}
	return chunks
}

// BuildKnowledgeBase condenses each transcript chunk into an intermediate
// knowledge extract and concatenates the extracts. This bounds the input
// handed to the final synthesis pass regardless of source length. progress is
// called after each chunk with (done, total).
func (s *Service) BuildKnowledgeBase(ctx context.Context, model, transcript string, progress func(done, total int)) (string, error) {
	chunks := SplitTranscript(transcript)
	if len(chunks) == 1 {
		return transcript, nil
	}

	sections := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		extract, err := s.client.Generate(ctx, model, extractPrompt(chunk, i+1, len(chunks)))
		if err != nil {
			return "", fmt.Errorf("knowledge extract %d/%d: %w", i+1, len(chunks), err)
		}
		sections = append(sections, fmt.Sprintf("## Part %d\n\n%s", i+1, strings.TrimSpace(extract)))
		if progress != nil {
			progress(i+1, len(chunks))
		}
	}
	return strings.Join(sections, "\n\n"), nil
}
