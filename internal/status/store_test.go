package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/veranemoloko/lecture-companion/internal/domain"
	apperrors "github.com/veranemoloko/lecture-companion/internal/errors"
)

func TestStore_DownloadLifecycle(t *testing.T) {
	s := NewStore()
	s.PutDownload(domain.DownloadJob{ID: "d1", Status: domain.DownloadPending, Progress: 0})

	s.UpdateDownload("d1", func(j *domain.DownloadJob) {
		j.Status = domain.DownloadDownloading
		j.Progress = 45
	})

	job, err := s.GetDownload("d1")
	assert.NoError(t, err)
	assert.Equal(t, domain.DownloadDownloading, job.Status)
	assert.Equal(t, 45.0, job.Progress)
}

func TestStore_GetDownload_NotFound(t *testing.T) {
	s := NewStore()

	_, err := s.GetDownload("missing")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}

func TestStore_ProgressNeverRegresses(t *testing.T) {
	s := NewStore()
	s.PutProcess(domain.ProcessJob{ID: "p1", Progress: 60})

	// A stale callback delivering an older value must be discarded.
	s.UpdateProcess("p1", func(j *domain.ProcessJob) {
		j.Progress = 30
		j.Message = "stale update"
	})

	job, err := s.GetProcess("p1")
	assert.NoError(t, err)
	assert.Equal(t, 60.0, job.Progress)
	assert.Equal(t, "stale update", job.Message)
}

func TestStore_ProgressClampedAt100(t *testing.T) {
	s := NewStore()
	s.PutProcess(domain.ProcessJob{ID: "p1", Progress: 95})

	s.UpdateProcess("p1", func(j *domain.ProcessJob) {
		j.Progress = 120
	})

	job, _ := s.GetProcess("p1")
	assert.Equal(t, 100.0, job.Progress)
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	s.PutDownload(domain.DownloadJob{ID: "d1", Message: "original"})

	job, _ := s.GetDownload("d1")
	job.Message = "mutated"

	again, _ := s.GetDownload("d1")
	assert.Equal(t, "original", again.Message)
}

func TestStore_Processes_ListsAll(t *testing.T) {
	s := NewStore()
	s.PutProcess(domain.ProcessJob{ID: "p1"})
	s.PutProcess(domain.ProcessJob{ID: "p2"})

	assert.Len(t, s.Processes(), 2)
}

func TestStore_UpdateUnknownID_NoOp(t *testing.T) {
	s := NewStore()

	s.UpdateDownload("ghost", func(j *domain.DownloadJob) {
		j.Progress = 50
	})

	_, err := s.GetDownload("ghost")
	assert.ErrorIs(t, err, apperrors.ErrJobNotFound)
}
