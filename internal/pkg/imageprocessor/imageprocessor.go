package imageprocessor

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/yatube/yatube/internal/pkg/storage"
)

const (
	MaxWorkers   = 3
	QueueSize    = 100
	ThumbnailDir = "thumbs"
)

// ThumbnailSink records a generated thumbnail on its post. It reports false
// when the post no longer carries imageKey.
type ThumbnailSink interface {
	SetThumbnail(postID uint, imageKey, thumbKey string) (bool, error)
}

// ImageProcessor generates thumbnails for uploaded post images with a
// fixed pool of workers.
type ImageProcessor struct {
	store   storage.Storage
	sink    ThumbnailSink
	workers int

	jobs            chan *ProcessJob
	wg              sync.WaitGroup
	started         bool
	mutex           sync.Mutex
	activeProcesses int32
}

// ProcessJob is a single post image waiting for its thumbnail.
type ProcessJob struct {
	PostID   uint
	ImageKey string
}

// New creates a processor; call Start before enqueueing.
func New(store storage.Storage, sink ThumbnailSink, workers int) *ImageProcessor {
	if workers <= 0 {
		workers = MaxWorkers
	}
	return &ImageProcessor{
		store:   store,
		sink:    sink,
		workers: workers,
		jobs:    make(chan *ProcessJob, QueueSize),
	}
}

// Start initializes the worker pool
func (p *ImageProcessor) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started {
		return
	}

	p.started = true
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	log.Infof("[ImageProcessor] Started worker pool with %d workers", p.workers)
}

// Stop drains the queue and waits for the workers.
func (p *ImageProcessor) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started {
		return
	}

	close(p.jobs)
	p.wg.Wait()
	p.started = false
	log.Info("[ImageProcessor] Worker pool stopped")
}

func (p *ImageProcessor) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobs {
		atomic.AddInt32(&p.activeProcesses, 1)
		SetPostImageStatus(job.PostID, STATUS_PROCESSING)

		err := p.process(job)

		atomic.AddInt32(&p.activeProcesses, -1)

		if err != nil {
			SetPostImageStatus(job.PostID, STATUS_FAILED)
			log.Errorf("[ImageProcessor] Worker %d failed on post %d: %v", id, job.PostID, err)
		} else {
			SetPostImageStatus(job.PostID, STATUS_COMPLETED)
			log.Debugf("[ImageProcessor] Worker %d finished post %d", id, job.PostID)
		}
	}
}

// Enqueue queues a job. It never blocks the request: a full queue drops
// the job and the post keeps showing its original image.
func (p *ImageProcessor) Enqueue(postID uint, imageKey string) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started || imageKey == "" {
		return false
	}

	select {
	case p.jobs <- &ProcessJob{PostID: postID, ImageKey: imageKey}:
		SetPostImageStatus(postID, STATUS_PENDING)
		return true
	default:
		log.Warnf("[ImageProcessor] Queue full, skipping thumbnail for post %d", postID)
		return false
	}
}

// Active returns the number of jobs currently being processed.
func (p *ImageProcessor) Active() int {
	return int(atomic.LoadInt32(&p.activeProcesses))
}

func (p *ImageProcessor) process(job *ProcessJob) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rc, err := p.store.Open(ctx, job.ImageKey)
	if err != nil {
		return fmt.Errorf("open %s: %w", job.ImageKey, err)
	}
	data, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("read %s: %w", job.ImageKey, err)
	}

	thumb, err := MakeThumbnail(data)
	if err != nil {
		return err
	}

	key := ThumbnailKey(job.ImageKey)
	if err := p.store.Save(ctx, key, thumb, "image/webp"); err != nil {
		return err
	}
	applied, err := p.sink.SetThumbnail(job.PostID, job.ImageKey, key)
	if err != nil || !applied {
		// image replaced or cleared meanwhile
		if derr := p.store.Delete(ctx, key); derr != nil {
			log.Warnf("[ImageProcessor] Failed to remove stale thumbnail %s: %v", key, derr)
		}
	}
	return err
}

// ThumbnailKey maps posts/2024/05/x.png to thumbs/posts/2024/05/x.webp.
func ThumbnailKey(imageKey string) string {
	base := strings.TrimSuffix(imageKey, path.Ext(imageKey))
	return path.Join(ThumbnailDir, base+".webp")
}

var (
	processor   *ImageProcessor
	processorMu sync.RWMutex
)

// SetProcessor installs the process-wide processor; nil disables thumbnails.
func SetProcessor(p *ImageProcessor) {
	processorMu.Lock()
	defer processorMu.Unlock()
	processor = p
}

// GetProcessor returns the installed processor or nil.
func GetProcessor() *ImageProcessor {
	processorMu.RLock()
	defer processorMu.RUnlock()
	return processor
}

// ProcessPostImage queues a thumbnail for the post if processing is enabled.
func ProcessPostImage(postID uint, imageKey string) {
	if p := GetProcessor(); p != nil {
		p.Enqueue(postID, imageKey)
	}
}
