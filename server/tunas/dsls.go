package tunas

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/SynthesisLab/grape/internal/dslfile"
	"github.com/SynthesisLab/grape/server/dao"
	"github.com/SynthesisLab/grape/server/serr"
)

// CreateDSL registers a new named DSL manifest owned by ownerID. The
// manifest text is validated by parsing it before it is persisted.
//
// The returned error, if non-nil, will match serr.ErrBadArgument if name is
// blank or manifest fails to parse, serr.ErrAlreadyExists if a DSL with that
// name is already registered, and serr.ErrDB for unexpected persistence
// failures.
func (svc Service) CreateDSL(ctx context.Context, ownerID uuid.UUID, name, manifest string) (dao.DSL, error) {
	if name == "" {
		return dao.DSL{}, serr.New("name cannot be blank", serr.ErrBadArgument)
	}

	if _, err := dslfile.Parse([]byte(manifest)); err != nil {
		return dao.DSL{}, serr.New("manifest: "+err.Error(), err, serr.ErrBadArgument)
	}

	_, err := svc.DB.DSLs().GetByName(ctx, name)
	if err == nil {
		return dao.DSL{}, serr.New("a DSL with that name already exists", serr.ErrAlreadyExists)
	} else if !errors.Is(err, dao.ErrNotFound) {
		return dao.DSL{}, serr.WrapDB("", err)
	}

	newDSL := dao.DSL{
		Name:     name,
		OwnerID:  ownerID,
		Manifest: manifest,
	}

	created, err := svc.DB.DSLs().Create(ctx, newDSL)
	if err != nil {
		if errors.Is(err, dao.ErrConstraintViolation) {
			return dao.DSL{}, serr.ErrAlreadyExists
		}
		return dao.DSL{}, serr.WrapDB("could not create DSL", err)
	}

	return created, nil
}

// GetDSL returns the DSL with the given ID.
func (svc Service) GetDSL(ctx context.Context, id string) (dao.DSL, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.DSL{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	d, err := svc.DB.DSLs().GetByID(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.DSL{}, serr.ErrNotFound
		}
		return dao.DSL{}, serr.WrapDB("could not get DSL", err)
	}

	return d, nil
}

// GetAllDSLs returns every DSL currently registered.
func (svc Service) GetAllDSLs(ctx context.Context) ([]dao.DSL, error) {
	dsls, err := svc.DB.DSLs().GetAll(ctx)
	if err != nil {
		return nil, serr.WrapDB("", err)
	}
	return dsls, nil
}

// DeleteDSL deletes the DSL with the given ID. It returns the deleted DSL.
func (svc Service) DeleteDSL(ctx context.Context, id string) (dao.DSL, error) {
	uuidID, err := uuid.Parse(id)
	if err != nil {
		return dao.DSL{}, serr.New("ID is not valid", serr.ErrBadArgument)
	}

	d, err := svc.DB.DSLs().Delete(ctx, uuidID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.DSL{}, serr.ErrNotFound
		}
		return dao.DSL{}, serr.WrapDB("could not delete DSL", err)
	}

	return d, nil
}
