package tunas

import (
	"bytes"
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	grape "github.com/SynthesisLab/grape"
	"github.com/SynthesisLab/grape/internal/dslfile"
	"github.com/SynthesisLab/grape/internal/serialize"
	"github.com/SynthesisLab/grape/server/dao"
	"github.com/SynthesisLab/grape/server/serr"
)

// defaultSampleCount and defaultSeed are used when a Service is constructed
// with its zero value for those fields, the same defaults config.Config
// fills in for the CLI.
const (
	defaultSampleCount = 50
	defaultSeed        = 1
)

// SubmitJob creates a pending job row for pruning the given DSL down to
// returnType at maxSize, then immediately starts the run in the background.
// The returned Job has status JobPending; poll GetJob for progress.
//
// The returned error, if non-nil, will match serr.ErrBadArgument if any
// argument is invalid, serr.ErrNotFound if the DSL does not exist, and
// serr.ErrDB for unexpected persistence failures.
func (svc Service) SubmitJob(ctx context.Context, userID uuid.UUID, dslID, returnType string, maxSize int) (dao.Job, error) {
	if returnType == "" {
		return dao.Job{}, serr.New("return type cannot be blank", serr.ErrBadArgument)
	}
	if maxSize < 1 {
		return dao.Job{}, serr.New("max size must be at least 1", serr.ErrBadArgument)
	}

	uuidDSLID, err := uuid.Parse(dslID)
	if err != nil {
		return dao.Job{}, serr.New("DSL ID is not valid", serr.ErrBadArgument)
	}

	d, err := svc.DB.DSLs().GetByID(ctx, uuidDSLID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Job{}, serr.ErrNotFound
		}
		return dao.Job{}, serr.WrapDB("could not get DSL", err)
	}

	job := dao.Job{
		UserID:     userID,
		DSLID:      uuidDSLID,
		ReturnType: returnType,
		MaxSize:    maxSize,
		Status:     dao.JobPending,
	}

	created, err := svc.DB.Jobs().Create(ctx, job)
	if err != nil {
		return dao.Job{}, serr.WrapDB("could not create job", err)
	}

	go svc.runJob(created.ID, d)

	return created, nil
}

// runJob performs the actual pruning run for a job that has already been
// persisted in JobPending state, and records the outcome. It uses a
// background context since it outlives the HTTP request that started it.
func (svc Service) runJob(jobID uuid.UUID, d dao.DSL) {
	ctx := context.Background()

	job, err := svc.DB.Jobs().GetByID(ctx, jobID)
	if err != nil {
		log.Printf("tunas: run job %s: could not reload job: %v", jobID, err)
		return
	}

	job.Status = dao.JobRunning
	if job, err = svc.DB.Jobs().Update(ctx, jobID, job); err != nil {
		log.Printf("tunas: run job %s: could not mark running: %v", jobID, err)
		return
	}

	def, err := dslfile.Parse([]byte(d.Manifest))
	if err != nil {
		svc.failJob(ctx, job, "could not parse DSL manifest: "+err.Error())
		return
	}

	sampleCount := defaultSampleCount
	seed := int64(defaultSeed)

	eng := grape.New(def.DSL, def.BaseInputs, sampleCount, seed, nil)

	result, err := eng.Prune(job.ReturnType, job.MaxSize, nil)
	if err != nil {
		svc.failJob(ctx, job, "pruning failed: "+err.Error())
		return
	}

	var buf bytes.Buffer
	if err := serialize.WriteNative(&buf, result.Despecialized); err != nil {
		svc.failJob(ctx, job, "could not serialize result: "+err.Error())
		return
	}

	job.Status = dao.JobSucceeded
	job.Automaton = buf.String()
	if _, err := svc.DB.Jobs().Update(ctx, jobID, job); err != nil {
		log.Printf("tunas: run job %s: could not record success: %v", jobID, err)
	}
}

// failJob marks job as failed with the given message, logging if the update
// itself cannot be persisted.
func (svc Service) failJob(ctx context.Context, job dao.Job, msg string) {
	job.Status = dao.JobFailed
	job.Error = msg
	if _, err := svc.DB.Jobs().Update(ctx, job.ID, job); err != nil {
		log.Printf("tunas: run job %s: could not record failure: %v", job.ID, err)
	}
}

// GetJob returns the job with the given ID.
func (svc Service) GetJob(ctx context.Context, id string) (dao.Job, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Job{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	job, err := svc.DB.Jobs().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Job{}, serr.ErrNotFound
		}
		return dao.Job{}, serr.WrapDB("could not get job", err)
	}

	return job, nil
}

// GetAllJobsByUser returns every job submitted by the given user.
func (svc Service) GetAllJobsByUser(ctx context.Context, userID uuid.UUID) ([]dao.Job, error) {
	jobs, err := svc.DB.Jobs().GetAllByUser(ctx, userID)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return jobs, nil
}

// GetAllJobs returns every job in persistence, regardless of owner.
func (svc Service) GetAllJobs(ctx context.Context) ([]dao.Job, error) {
	jobs, err := svc.DB.Jobs().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return jobs, nil
}

// DeleteJob deletes the job with the given ID. It returns the deleted job.
func (svc Service) DeleteJob(ctx context.Context, id string) (dao.Job, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.Job{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	job, err := svc.DB.Jobs().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.Job{}, serr.ErrNotFound
		}
		return dao.Job{}, serr.WrapDB("could not delete job", err)
	}

	return job, nil
}
