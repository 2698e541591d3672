// Package dao provides data access objects for use in the grape pruning
// server.
package dao

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrConstraintViolation = errors.New("a uniqueness constraint was violated")
	ErrNotFound            = errors.New("the requested resource was not found")
	ErrDecodingFailure     = errors.New("field could not be decoded from DB storage format to model format")
)

// Store holds all the repositories.
type Store interface {
	Users() UserRepository
	DSLs() DSLRepository
	Jobs() JobRepository
	Close() error
}

// DSLRepository persists named DSL manifests that jobs are submitted
// against.
type DSLRepository interface {
	Create(ctx context.Context, d DSL) (DSL, error)
	GetByID(ctx context.Context, id uuid.UUID) (DSL, error)
	GetByName(ctx context.Context, name string) (DSL, error)
	GetAll(ctx context.Context) ([]DSL, error)
	Delete(ctx context.Context, id uuid.UUID) (DSL, error)
	Close() error
}

// DSL is a registered, named TOML manifest (see internal/dslfile) along with
// the sample pools a pruning run against it should draw from.
type DSL struct {
	ID       uuid.UUID
	Name     string // UNIQUE, NOT NULL
	OwnerID  uuid.UUID
	Manifest string // raw TOML text, parsed on demand via internal/dslfile
	Created  time.Time
	Modified time.Time
}

// JobStatus is the lifecycle state of an asynchronous pruning job.
type JobStatus int

const (
	JobPending JobStatus = iota
	JobRunning
	JobSucceeded
	JobFailed
)

func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	default:
		return fmt.Sprintf("JobStatus(%d)", s)
	}
}

// ParseJobStatus parses one of the strings returned by JobStatus.String().
func ParseJobStatus(s string) (JobStatus, error) {
	switch strings.ToLower(s) {
	case "pending":
		return JobPending, nil
	case "running":
		return JobRunning, nil
	case "succeeded":
		return JobSucceeded, nil
	case "failed":
		return JobFailed, nil
	default:
		return JobPending, fmt.Errorf("must be one of 'pending', 'running', 'succeeded', or 'failed'")
	}
}

// JobRepository persists pruning jobs and their eventual results.
type JobRepository interface {
	Create(ctx context.Context, j Job) (Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (Job, error)
	GetAllByUser(ctx context.Context, userID uuid.UUID) ([]Job, error)
	GetAll(ctx context.Context) ([]Job, error)
	Update(ctx context.Context, id uuid.UUID, j Job) (Job, error)
	Delete(ctx context.Context, id uuid.UUID) (Job, error)
	Close() error
}

// Job is a single request to prune a DSL down to a compact grammar for one
// return type and max size, along with whatever result or failure message
// the run produced.
type Job struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	DSLID      uuid.UUID
	ReturnType string
	MaxSize    int
	Status     JobStatus
	Automaton  string // native-format text of the despecialized grammar, set on success
	Error      string // failure message, set on failure
	Created    time.Time
	Modified   time.Time
}

type UserRepository interface {

	// Create creates a new User. All attributes except for auto-generated
	// fields are taken from the provided User.
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	Update(ctx context.Context, id uuid.UUID, user User) (User, error)

	// Close closes the connection.
	Close() error
}

type Role int

const (
	Guest Role = iota
	Unverified
	Normal

	Admin Role = 100
)

func (r Role) String() string {
	switch r {
	case Guest:
		return "guest"
	case Unverified:
		return "unverified"
	case Normal:
		return "normal"
	case Admin:
		return "admin"
	default:
		return fmt.Sprintf("Role(%d)", r)
	}
}

func ParseRole(s string) (Role, error) {
	check := strings.ToLower(s)
	switch check {
	case "guest":
		return Guest, nil
	case "unverified":
		return Unverified, nil
	case "normal":
		return Normal, nil
	case "admin":
		return Admin, nil
	default:
		return Guest, fmt.Errorf("must be one of 'guest', 'unverified', 'normal', or 'admin'")
	}
}

type User struct {
	ID             uuid.UUID     // PK, NOT NULL
	Username       string        // UNIQUE, NOT NULL
	Password       string        // NOT NULL
	Email          *mail.Address // NOT NULL
	Role           Role          // NOT NULL
	Created        time.Time     // NOT NULL
	Modified       time.Time
	LastLogoutTime time.Time // NOT NULL DEFAULT NOW()
	LastLoginTime  time.Time // NOT NULL
}
