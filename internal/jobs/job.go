// Package jobs models conversion jobs and the in-memory registry that tracks
// them for the duration of their retention window.
package jobs

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle of a conversion job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusFailed     Status = "failed"
)

var allStatuses = []Status{StatusPending, StatusProcessing, StatusComplete, StatusFailed}

// Terminal reports whether a status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == normalized {
			return status, true
		}
	}
	return "", false
}

// OutputFiles holds published artifact URLs, each set only once its stage
// succeeded.
type OutputFiles struct {
	GLB       string
	USDZ      string
	Thumbnail string
}

// Metadata captures extracted model statistics plus degradation markers for
// placeholder artifacts.
type Metadata struct {
	FileSizeBytes     int64  `json:"fileSize"`
	Vertices          int    `json:"vertices"`
	Triangles         int    `json:"triangles"`
	Textures          int    `json:"textures"`
	Format            string `json:"format"`
	DegradedUSDZ      bool   `json:"degradedUsdz,omitempty"`
	DegradedThumbnail bool   `json:"degradedThumbnail,omitempty"`
}

// Snapshot is an immutable copy of a job's state safe to hand to callers.
type Snapshot struct {
	ID        string
	ModelID   string
	Status    Status
	InputFile string
	Outputs   OutputFiles
	ShortLink string
	QRCodeURL string
	Logs      []string
	StartedAt time.Time
	EndedAt   time.Time
	Error     string
	Metadata  *Metadata
}

// Job tracks one conversion attempt. All mutation goes through methods so the
// pipeline workers and CLI readers can share it safely.
type Job struct {
	mu sync.Mutex

	id        string
	modelID   string
	inputFile string
	status    Status
	outputs   OutputFiles
	shortLink string
	qrCodeURL string
	logs      []string
	startedAt time.Time
	endedAt   time.Time
	errMsg    string
	metadata  *Metadata
}

// New constructs a pending job for the given model and input file.
func New(modelID, inputFile string) *Job {
	return &Job{
		id:        uuid.NewString(),
		modelID:   modelID,
		inputFile: inputFile,
		status:    StatusPending,
		startedAt: time.Now().UTC(),
	}
}

// ID returns the job identifier.
func (j *Job) ID() string { return j.id }

// ModelID returns the model record this job converts.
func (j *Job) ModelID() string { return j.modelID }

// InputFile returns the uploaded source file path.
func (j *Job) InputFile() string { return j.inputFile }

// AppendLog adds a timestamped line to the job log and returns it.
func (j *Job) AppendLog(format string, args ...any) string {
	line := fmt.Sprintf("%s: %s", time.Now().UTC().Format(time.RFC3339), fmt.Sprintf(format, args...))
	j.mu.Lock()
	j.logs = append(j.logs, line)
	j.mu.Unlock()
	return line
}

// MarkProcessing transitions pending to processing. It reports whether the
// transition happened; terminal jobs are left untouched.
func (j *Job) MarkProcessing() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status != StatusPending {
		return false
	}
	j.status = StatusProcessing
	return true
}

// MarkComplete records outputs and metadata and moves the job to its terminal
// complete state. Late completions of an already-terminal job are ignored.
func (j *Job) MarkComplete(outputs OutputFiles, shortLink, qrCodeURL string, meta *Metadata) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return false
	}
	j.status = StatusComplete
	j.outputs = outputs
	j.shortLink = shortLink
	j.qrCodeURL = qrCodeURL
	j.metadata = meta
	j.endedAt = time.Now().UTC()
	return true
}

// MarkFailed moves the job to its terminal failed state with an error message.
// Late failures of an already-terminal job are ignored.
func (j *Job) MarkFailed(message string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.status.Terminal() {
		return false
	}
	j.status = StatusFailed
	j.errMsg = message
	j.endedAt = time.Now().UTC()
	return true
}

// Status returns the current lifecycle state.
func (j *Job) Status() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status
}

// Terminal reports whether the job has reached a terminal state.
func (j *Job) Terminal() bool {
	return j.Status().Terminal()
}

// EndedAt returns the terminal transition time, zero while non-terminal.
func (j *Job) EndedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.endedAt
}

// Snapshot copies the job state, including a defensive copy of the log.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()

	logs := make([]string, len(j.logs))
	copy(logs, j.logs)

	var meta *Metadata
	if j.metadata != nil {
		cp := *j.metadata
		meta = &cp
	}

	return Snapshot{
		ID:        j.id,
		ModelID:   j.modelID,
		Status:    j.status,
		InputFile: j.inputFile,
		Outputs:   j.outputs,
		ShortLink: j.shortLink,
		QRCodeURL: j.qrCodeURL,
		Logs:      logs,
		StartedAt: j.startedAt,
		EndedAt:   j.endedAt,
		Error:     j.errMsg,
		Metadata:  meta,
	}
}
