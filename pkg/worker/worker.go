package worker

import (
	"bytes"
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/robinjoseph08/golib/pointerutil"
	"github.com/segmentio/encoding/json"
	"github.com/shishobooks/circulation/pkg/config"
	"github.com/shishobooks/circulation/pkg/importer"
	"github.com/shishobooks/circulation/pkg/joblogs"
	"github.com/shishobooks/circulation/pkg/jobs"
	"github.com/shishobooks/circulation/pkg/models"
	"github.com/uptrace/bun"
)

var processID = randStringBytes(8)

type Worker struct {
	config *config.Config
	log    logger.Logger

	processFuncs map[string]func(ctx context.Context, job *models.Job, jl *joblogs.JobLogger) error

	importService *importer.Service
	jobService    *jobs.Service
	jobLogService *joblogs.Service

	queue          chan *models.Job
	shutdown       chan struct{}
	doneFetching   chan struct{}
	doneProcessing chan struct{}
}

func New(cfg *config.Config, db *bun.DB) *Worker {
	w := &Worker{
		config: cfg,
		log:    logger.New(),

		importService: importer.NewService(db),
		jobService:    jobs.NewService(db),
		jobLogService: joblogs.NewService(db),

		queue:          make(chan *models.Job, cfg.WorkerProcesses),
		shutdown:       make(chan struct{}),
		doneFetching:   make(chan struct{}),
		doneProcessing: make(chan struct{}, cfg.WorkerProcesses),
	}

	w.processFuncs = map[string]func(ctx context.Context, job *models.Job, jl *joblogs.JobLogger) error{
		models.JobTypeImport: w.ProcessImportJob,
	}

	return w
}

func (w *Worker) Start() {
	go w.fetchJobs()
	for i := 0; i < w.config.WorkerProcesses; i++ {
		go w.processJobs()
	}
}

func (w *Worker) fetchJobs() {
	duration := w.config.WorkerPollInterval
	timer := time.NewTimer(duration)

	for {
		select {
		case <-w.shutdown:
			// We're shutting down, so stop adding more jobs to the queue.
			timer.Stop()
			w.doneFetching <- struct{}{}
			return
		case <-timer.C:
			j, err := w.jobService.ListJobs(context.Background(), jobs.ListJobsOptions{
				Limit:    pointerutil.Int(w.config.WorkerProcesses),
				Statuses: []string{models.JobStatusPending},
			})
			if err != nil {
				w.log.Err(err).Error("list jobs error")
				timer.Reset(duration)
				continue
			}
			for _, job := range j {
				select {
				case w.queue <- job:
				case <-w.shutdown:
					w.doneFetching <- struct{}{}
					return
				}
			}
			timer.Reset(duration)
		}
	}
}

func (w *Worker) processJobs() {
	for {
		select {
		case <-w.shutdown:
			w.doneProcessing <- struct{}{}
			return
		case job := <-w.queue:
			w.processJob(job)
		}
	}
}

// processJob claims the job, runs it and records the outcome. A job another
// process already claimed is skipped.
func (w *Worker) processJob(job *models.Job) {
	// Prep the context to be passed down to the process function.
	id, err := uuid.NewRandom()
	if err != nil {
		w.log.Err(err).Error("new uuid error")
		return
	}
	log := w.log.ID(id.String()).Root(logger.Data{"job_id": job.ID, "type": job.Type, "process_id": processID})
	ctx := log.WithContext(context.Background())

	claimed, err := w.jobService.ClaimJob(ctx, job, processID)
	if err != nil {
		log.Err(err).Error("claim job error")
		return
	}
	if !claimed {
		return
	}

	jl := w.jobLogService.NewJobLogger(ctx, job.ID, log)

	err = w.runProcessFunc(ctx, job, jl)

	job.Status = models.JobStatusCompleted
	if err != nil {
		jl.Error("job failed", err, nil)
		job.Status = models.JobStatusFailed
	}
	job.Progress = 100

	err = w.jobService.UpdateJob(ctx, job, jobs.UpdateJobOptions{
		Columns: []string{"status", "progress", "data"},
	})
	if err != nil {
		log.Err(err).Error("update job error")
	}
}

// runProcessFunc invokes the process function for the job type. A panic is
// returned as an error so the job still ends up failed.
func (w *Worker) runProcessFunc(ctx context.Context, job *models.Job, jl *joblogs.JobLogger) (err error) {
	fn, ok := w.processFuncs[job.Type]
	if !ok {
		return errors.Errorf("no process function for job type %q", job.Type)
	}

	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("job panicked: %v", r)
		}
	}()

	return fn(ctx, job, jl)
}

// ProcessImportJob imports the books carried by the job and stores the
// counts back on the job data.
func (w *Worker) ProcessImportJob(ctx context.Context, job *models.Job, jl *joblogs.JobLogger) error {
	data, ok := job.DataParsed.(*models.JobImportData)
	if !ok {
		return errors.Errorf("unexpected data for import job: %T", job.DataParsed)
	}

	result, err := w.importService.ImportFile(ctx, bytes.NewReader(data.Books), jl)
	if err != nil {
		return errors.WithStack(err)
	}

	data.Imported = result.Imported
	data.Failed = result.Failed
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.WithStack(err)
	}
	job.Data = string(raw)

	return nil
}

func (w *Worker) Shutdown() {
	close(w.shutdown)

	<-w.doneFetching
	for i := 0; i < w.config.WorkerProcesses; i++ {
		<-w.doneProcessing
	}
}

const letterBytes = "abcdef0123456789"

func randStringBytes(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}
