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

// HTTPCreateDSL returns a HandlerFunc that registers a new DSL manifest
// under the logged-in user's ownership.
func (api API) HTTPCreateDSL() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateDSL)
}

func (api API) epCreateDSL(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	var createReq DSLCreateRequest
	if err := parseJSON(req, &createReq); err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	d, err := api.Backend.CreateDSL(req.Context(), user.ID, createReq.Name, createReq.Manifest)
	if err != nil {
		if errors.Is(err, serr.ErrAlreadyExists) {
			return result.Conflict("DSL with that name already exists", "DSL '%s' already exists", createReq.Name)
		} else if errors.Is(err, serr.ErrBadArgument) {
			return result.BadRequest(err.Error(), err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return result.Created(dslToModel(d), "user '%s' registered DSL '%s'", user.Username, d.Name)
}

// HTTPGetAllDSLs returns a HandlerFunc that lists all registered DSLs.
func (api API) HTTPGetAllDSLs() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetAllDSLs)
}

func (api API) epGetAllDSLs(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)

	dsls, err := api.Backend.GetAllDSLs(req.Context())
	if err != nil {
		return result.InternalServerError(err.Error())
	}

	resp := make([]DSLModel, len(dsls))
	for i := range dsls {
		resp[i] = dslToModel(dsls[i])
	}

	return result.OK(resp, "user '%s' got all DSLs", user.Username)
}

// HTTPGetDSL returns a HandlerFunc that retrieves a single registered DSL.
func (api API) HTTPGetDSL() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epGetDSL)
}

func (api API) epGetDSL(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)
	id := requireIDParam(req)

	d, err := api.Backend.GetDSL(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	return result.OK(dslToModel(d), "user '%s' got DSL '%s'", user.Username, d.Name)
}

// HTTPDeleteDSL returns a HandlerFunc that deletes a registered DSL. Only an
// admin or the DSL's owner may delete it.
func (api API) HTTPDeleteDSL() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteDSL)
}

func (api API) epDeleteDSL(req *http.Request) result.Result {
	user := req.Context().Value(middle.AuthUser).(dao.User)
	id := requireIDParam(req)

	existing, err := api.Backend.GetDSL(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError(err.Error())
	}

	if existing.OwnerID != user.ID && user.Role != dao.Admin {
		return result.Forbidden("user '%s' (role %s) delete DSL '%s': forbidden", user.Username, user.Role, existing.Name)
	}

	deleted, err := api.Backend.DeleteDSL(req.Context(), id.String())
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not delete DSL: " + err.Error())
	}

	return result.NoContent("user '%s' deleted DSL '%s'", user.Username, deleted.Name)
}

func dslToModel(d dao.DSL) DSLModel {
	return DSLModel{
		URI:      PathPrefix + "/dsls/" + d.ID.String(),
		ID:       d.ID.String(),
		Name:     d.Name,
		OwnerID:  d.OwnerID.String(),
		Manifest: d.Manifest,
		Created:  d.Created.Format(time.RFC3339),
		Modified: d.Modified.Format(time.RFC3339),
	}
}
