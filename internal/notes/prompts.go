package notes

import "fmt"

const systemPreamble = `You are an expert teaching assistant. Your goal is to create comprehensive, structured lecture notes based on the provided transcript and slide text. Format the output using Markdown.`

func notesPrompt(transcript, slidesContext string) string {
	return fmt.Sprintf(`%s

Create detailed lecture notes from the following transcript.
- Use clear headings and subheadings.
- Capture all key concepts, definitions, and examples.
- If code is mentioned, format it as code blocks.
- Incorporate relevant details from the slides context provided below.

Slides Context:
%s

Transcript:
%s`, systemPreamble, slidesContext, transcript)
}

func summaryPrompt(transcript string) string {
	return fmt.Sprintf(`%s

Create a concise 3-5 paragraph executive summary of the lecture.
Focus on the "Big Picture" takeaways.

Transcript:
%s`, systemPreamble, transcript)
}

func qaPrompt(transcript string) string {
	return fmt.Sprintf(`%s

Create 10-15 Q&A flashcards based on the lecture.
Format as:
Q: [Question]
A: [Answer]

Transcript:
%s`, systemPreamble, transcript)
}

func announcementsPrompt(transcript string) string {
	return fmt.Sprintf(`%s

List any administrative announcements from the lecture (deadlines, exams,
assignments, schedule changes) as Markdown bullet points.
If there are no announcements, reply with exactly: NONE

Transcript:
%s`, systemPreamble, transcript)
}

func extractPrompt(chunk string, part, total int) string {
	return fmt.Sprintf(`%s

This is part %d of %d of a long lecture transcript. Condense this part into a
dense knowledge extract: every concept, definition, example, and announcement
it contains, as Markdown bullet points. Do not editorialize or summarize away
detail.

Transcript part:
%s`, systemPreamble, part, total, chunk)
}
