package domain

// StreamInfo carries the locator for a segmented stream: the base URL the
// chunk names are appended to, the CDN auth triple passed as query parameters
// on every chunk request, and an optional hint for the highest chunk the
// capture side observed.
type StreamInfo struct {
	BaseURL       string `json:"baseUrl" validate:"required,safe_url"`
	StreamURL     string `json:"streamUrl,omitempty"`
	KeyPairID     string `json:"keyPairId,omitempty"`
	Policy        string `json:"policy,omitempty"`
	Signature     string `json:"signature,omitempty"`
	DetectedChunk int    `json:"detectedChunk,omitempty"`
}

// DownloadRequest is the body of POST /download. Start and end times are in
// seconds and optional; chunk indices are derived from them.
type DownloadRequest struct {
	Title      string     `json:"title" validate:"required"`
	URL        string     `json:"url"`
	StreamInfo StreamInfo `json:"streamInfo" validate:"required"`
	StartTime  *int       `json:"startTime,omitempty" validate:"omitempty,min=0"`
	EndTime    *int       `json:"endTime,omitempty" validate:"omitempty,min=0"`
}

// DownloadResponse acknowledges an accepted download request.
type DownloadResponse struct {
	DownloadID string `json:"downloadId"`
	Message    string `json:"message"`
}

// ProcessRequest is the body of POST /process. The video path must already
// exist on disk; it is checked before the job is enqueued.
type ProcessRequest struct {
	Title             string `json:"title" validate:"required"`
	VideoPath         string `json:"videoPath" validate:"required"`
	WhisperModel      string `json:"whisperModel,omitempty"`
	OllamaModel       string `json:"ollamaModel,omitempty"`
	SkipTranscription bool   `json:"skipTranscription,omitempty"`
	SkipFrames        bool   `json:"skipFrames,omitempty"`
	SkipNotes         bool   `json:"skipNotes,omitempty"`
	SkipSlideAnalysis bool   `json:"skipSlideAnalysis,omitempty"`
}

// ProcessResponse acknowledges an enqueued processing request. Position is the
// 1-based queue position at enqueue time, informational only.
type ProcessResponse struct {
	ProcessID string `json:"processId"`
	Message   string `json:"message"`
	Position  int    `json:"position"`
}

// QueueItem is one queued entry in the GET /queue response.
type QueueItem struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Status ProcessStatus `json:"status"`
}

// QueueResponse lists pending entries plus every process job known to the
// status store (in-progress and terminal).
type QueueResponse struct {
	Queue   []QueueItem  `json:"queue"`
	History []ProcessJob `json:"history"`
}
