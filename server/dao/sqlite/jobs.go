package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SynthesisLab/grape/server/dao"
	"github.com/google/uuid"
)

type JobsDB struct {
	db *sql.DB
}

func (repo *JobsDB) init(fk bool) error {
	stmt := `CREATE TABLE IF NOT EXISTS jobs (
		id TEXT NOT NULL PRIMARY KEY,
		user_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES users(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		dsl_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES dsls(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		return_type TEXT NOT NULL,
		max_size INTEGER NOT NULL,
		status INTEGER NOT NULL,
		automaton TEXT NOT NULL,
		error TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *JobsDB) Create(ctx context.Context, j dao.Job) (dao.Job, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.Job{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO jobs
		(id, user_id, dsl_id, return_type, max_size, status, automaton, error, created, modified)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.Job{}, wrapDBError(err)
	}

	now := time.Now()

	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		convertToDB_UUID(j.UserID),
		convertToDB_UUID(j.DSLID),
		j.ReturnType,
		j.MaxSize,
		int(j.Status),
		j.Automaton,
		j.Error,
		convertToDB_Time(now),
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.Job{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *JobsDB) GetAll(ctx context.Context) ([]dao.Job, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, dsl_id, return_type, max_size, status, automaton, error, created, modified FROM jobs;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Job

	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return all, err
		}
		all = append(all, j)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *JobsDB) GetAllByUser(ctx context.Context, userID uuid.UUID) ([]dao.Job, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, user_id, dsl_id, return_type, max_size, status, automaton, error, created, modified FROM jobs WHERE user_id = ?;`,
		convertToDB_UUID(userID),
	)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.Job

	for rows.Next() {
		j, err := scanJob(rows.Scan)
		if err != nil {
			return all, err
		}
		all = append(all, j)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *JobsDB) Update(ctx context.Context, id uuid.UUID, j dao.Job) (dao.Job, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE jobs SET
		id=?, user_id=?, dsl_id=?, return_type=?, max_size=?, status=?, automaton=?, error=?, modified=?
		WHERE id=?;`,
		convertToDB_UUID(j.ID),
		convertToDB_UUID(j.UserID),
		convertToDB_UUID(j.DSLID),
		j.ReturnType,
		j.MaxSize,
		int(j.Status),
		j.Automaton,
		j.Error,
		convertToDB_Time(time.Now()),
		convertToDB_UUID(id),
	)
	if err != nil {
		return dao.Job{}, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return dao.Job{}, wrapDBError(err)
	}
	if rowsAff < 1 {
		return dao.Job{}, dao.ErrNotFound
	}

	return repo.GetByID(ctx, j.ID)
}

func (repo *JobsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.Job, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, user_id, dsl_id, return_type, max_size, status, automaton, error, created, modified FROM jobs WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	j, err := scanJob(row.Scan)
	if err != nil {
		return dao.Job{}, err
	}
	return j, nil
}

func (repo *JobsDB) Delete(ctx context.Context, id uuid.UUID) (dao.Job, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, convertToDB_UUID(id))
	if err != nil {
		return curVal, wrapDBError(err)
	}
	rowsAff, err := res.RowsAffected()
	if err != nil {
		return curVal, wrapDBError(err)
	}
	if rowsAff < 1 {
		return curVal, dao.ErrNotFound
	}

	return curVal, nil
}

func (repo *JobsDB) Close() error {
	return wrapDBError(repo.db.Close())
}

// scanJob reads a row in the canonical jobs column order (id, user_id,
// dsl_id, return_type, max_size, status, automaton, error, created,
// modified) using the given scan func, which may come from either a
// *sql.Row or a *sql.Rows.
func scanJob(scan func(dest ...any) error) (dao.Job, error) {
	var j dao.Job
	var id string
	var userID string
	var dslID string
	var status int
	var created int64
	var modified int64

	err := scan(&id, &userID, &dslID, &j.ReturnType, &j.MaxSize, &status, &j.Automaton, &j.Error, &created, &modified)
	if err != nil {
		return dao.Job{}, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &j.ID); err != nil {
		return j, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	if err := convertFromDB_UUID(userID, &j.UserID); err != nil {
		return j, fmt.Errorf("stored user ID %q is invalid: %w", userID, err)
	}
	if err := convertFromDB_UUID(dslID, &j.DSLID); err != nil {
		return j, fmt.Errorf("stored DSL ID %q is invalid: %w", dslID, err)
	}
	j.Status = dao.JobStatus(status)
	if err := convertFromDB_Time(created, &j.Created); err != nil {
		return j, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}
	if err := convertFromDB_Time(modified, &j.Modified); err != nil {
		return j, fmt.Errorf("stored modified time %d is invalid: %w", modified, err)
	}

	return j, nil
}
