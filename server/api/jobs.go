package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/SynthesisLab/grape/server/dao"
	"github.com/SynthesisLab/grape/server/middle"
	"github.com/SynthesisLab/grape/server/result"
	"github.com/SynthesisLab/grape/server/serr"
)

// HTTPCreateJob returns a HandlerFunc that submits a new pruning job for
// the logged-in user and starts it running in the background.
func (api API) HTTPCreateJob() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateJob)
}

func (api API) epCreateJob(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	var submitReq JobSubmitRequest
	if err := parseJSON(req, &submitReq); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	job, err := api.Backend.SubmitJob(req.Context(), user.ID, submitReq.DSLID, submitReq.ReturnType, submitReq.MaxSize)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.BadRequest("no DSL with that ID exists", "DSL %s: not found", submitReq.DSLID)
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(jobToModel(job), "user '%s' submitted job %s", user.Username, job.ID)
}

// HTTPGetAllJobs returns a HandlerFunc that lists jobs. Non-admin users only
// see their own jobs; admin users see every job.
func (api API) HTTPGetAllJobs() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllJobs)
}

func (api API) epGetAllJobs(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	var jobs []dao.Job
	var err error
	if user.Role == dao.Admin {
		jobs, err = api.Backend.GetAllJobs(req.Context())
	} else {
		jobs, err = api.Backend.GetAllJobsByUser(req.Context(), user.ID)
	}
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]JobModel, len(jobs))
	for i := range jobs {
		resp[i] = jobToModel(jobs[i])
	}

	return result.OK(resp, "user '%s' got all jobs", user.Username)
}

// HTTPGetJob returns a HandlerFunc that retrieves a single job's current
// status and, once complete, its result. All users may retrieve their own
// jobs, but only an admin user may retrieve jobs submitted by others.
func (api API) HTTPGetJob() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetJob)
}

func (api API) epGetJob(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)
	id := requireIDParam(req)

	job, err := api.Backend.GetJob(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if job.UserID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) get job %s: forbidden", user.Username, user.Role, id)
	}

	return result.OK(jobToModel(job), "user '%s' got job %s", user.Username, id)
}

// HTTPDeleteJob returns a HandlerFunc that deletes a job. All users may
// delete their own jobs, but only an admin user may delete jobs submitted by
// others.
func (api API) HTTPDeleteJob() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteJob)
}

func (api API) epDeleteJob(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)
	id := requireIDParam(req)

	existing, err := api.Backend.GetJob(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if existing.UserID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) delete job %s: forbidden", user.Username, user.Role, id)
	}

	deleted, err := api.Backend.DeleteJob(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not delete job: " + err.Error())
	}

	return result.NoContent("user '%s' deleted job %s", user.Username, deleted.ID)
}

func jobToModel(j dao.Job) JobModel {
	return JobModel{
		URI:        PathPrefix + "/jobs/" + j.ID.String(),
		ID:         j.ID.String(),
		DSLID:      j.DSLID.String(),
		ReturnType: j.ReturnType,
		MaxSize:    j.MaxSize,
		Status:     j.Status.String(),
		Automaton:  j.Automaton,
		Error:      j.Error,
		Created:    j.Created.Format(time.RFC3339),
		Modified:   j.Modified.Format(time.RFC3339),
	}
}
