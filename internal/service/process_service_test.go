package service

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/veranemoloko/lecture-companion/internal/domain"
	apperrors "github.com/veranemoloko/lecture-companion/internal/errors"
	"github.com/veranemoloko/lecture-companion/internal/queue"
	"github.com/veranemoloko/lecture-companion/internal/status"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcessService_Enqueue(t *testing.T) {
	video := filepath.Join(t.TempDir(), "full_video.mp4")
	require.NoError(t, os.WriteFile(video, []byte("v"), 0o644))

	store := status.NewStore()
	q := queue.New()
	svc := NewProcessService(store, q, discardLogger())

	id, position, err := svc.Enqueue(domain.ProcessRequest{Title: "L1", VideoPath: video})
	require.NoError(t, err)
	assert.Equal(t, 1, position)

	job, err := store.GetProcess(id)
	require.NoError(t, err)
	assert.Equal(t, domain.ProcessQueued, job.Status)
	assert.Equal(t, "L1", job.Title)
	assert.Equal(t, 1, q.Len())

	_, position, err = svc.Enqueue(domain.ProcessRequest{Title: "L2", VideoPath: video})
	require.NoError(t, err)
	assert.Equal(t, 2, position)
}

func TestProcessService_Enqueue_MissingVideo(t *testing.T) {
	store := status.NewStore()
	q := queue.New()
	svc := NewProcessService(store, q, discardLogger())

	_, _, err := svc.Enqueue(domain.ProcessRequest{Title: "L", VideoPath: "/nope.mp4"})
	assert.ErrorIs(t, err, apperrors.ErrVideoNotFound)

	// Rejection happens before any state is created.
	assert.Equal(t, 0, q.Len())
	assert.Empty(t, store.Processes())
}

func TestProcessService_QueueState(t *testing.T) {
	video := filepath.Join(t.TempDir(), "full_video.mp4")
	require.NoError(t, os.WriteFile(video, []byte("v"), 0o644))

	store := status.NewStore()
	q := queue.New()
	svc := NewProcessService(store, q, discardLogger())

	idA, _, err := svc.Enqueue(domain.ProcessRequest{Title: "A", VideoPath: video})
	require.NoError(t, err)
	_, _, err = svc.Enqueue(domain.ProcessRequest{Title: "B", VideoPath: video})
	require.NoError(t, err)

	state := svc.QueueState()
	require.Len(t, state.Queue, 2)
	assert.Equal(t, idA, state.Queue[0].ID)
	assert.Equal(t, domain.ProcessQueued, state.Queue[0].Status)
	assert.Len(t, state.History, 2)
}
