package domain

// DownloadStatus is the lifecycle state of a download job.
type DownloadStatus string

const (
	DownloadPending     DownloadStatus = "pending"
	DownloadDownloading DownloadStatus = "downloading"
	DownloadComplete    DownloadStatus = "complete"
	DownloadError       DownloadStatus = "error"
)

// ProcessStatus is the lifecycle state of a processing job.
// Transitions are queued -> processing -> complete|error; terminal states are
// never left.
type ProcessStatus string

const (
	ProcessQueued     ProcessStatus = "queued"
	ProcessProcessing ProcessStatus = "processing"
	ProcessComplete   ProcessStatus = "complete"
	ProcessError      ProcessStatus = "error"
)

// DownloadJob is the mutable status record for one stream download. It is
// created on request acceptance and mutated only by the download service that
// owns the transfer.
type DownloadJob struct {
	ID       string         `json:"downloadId"`
	Title    string         `json:"title,omitempty"`
	Status   DownloadStatus `json:"status"`
	Progress float64        `json:"progress"`
	Message  string         `json:"message,omitempty"`
	Path     string         `json:"path,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ProcessJob is the mutable status record for one pipeline run. Status
// transitions are owned exclusively by the worker while the job executes.
type ProcessJob struct {
	ID        string        `json:"processId"`
	Title     string        `json:"title,omitempty"`
	Status    ProcessStatus `json:"status"`
	Stage     string        `json:"stage,omitempty"`
	Progress  float64       `json:"progress"`
	Message   string        `json:"message,omitempty"`
	OutputDir string        `json:"outputDir,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// QueueEntry pairs a process job identifier with its original request payload.
// Entries leave the queue the instant the worker picks them up, so "queued"
// and "processing" are mutually exclusive.
type QueueEntry struct {
	ID      string
	Request ProcessRequest
}
