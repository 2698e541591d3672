package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SynthesisLab/grape/server/dao"
	"github.com/google/uuid"
)

type DSLsDB struct {
	db *sql.DB
}

func (repo *DSLsDB) init(fk bool) error {
	stmt := `CREATE TABLE IF NOT EXISTS dsls (
		id TEXT NOT NULL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		owner_id TEXT NOT NULL`

	if fk {
		stmt += ` REFERENCES users(id) ON DELETE CASCADE ON UPDATE CASCADE`
	}

	stmt += `,
		manifest TEXT NOT NULL,
		created INTEGER NOT NULL,
		modified INTEGER NOT NULL
	);`
	_, err := repo.db.Exec(stmt)
	if err != nil {
		return wrapDBError(err)
	}
	return nil
}

func (repo *DSLsDB) Create(ctx context.Context, d dao.DSL) (dao.DSL, error) {
	newUUID, err := uuid.NewRandom()
	if err != nil {
		return dao.DSL{}, fmt.Errorf("could not generate ID: %w", err)
	}

	stmt, err := repo.db.Prepare(`INSERT INTO dsls (id, name, owner_id, manifest, created, modified) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return dao.DSL{}, wrapDBError(err)
	}

	now := time.Now()

	_, err = stmt.ExecContext(
		ctx,
		convertToDB_UUID(newUUID),
		d.Name,
		convertToDB_UUID(d.OwnerID),
		d.Manifest,
		convertToDB_Time(now),
		convertToDB_Time(now),
	)
	if err != nil {
		return dao.DSL{}, wrapDBError(err)
	}

	return repo.GetByID(ctx, newUUID)
}

func (repo *DSLsDB) GetAll(ctx context.Context) ([]dao.DSL, error) {
	rows, err := repo.db.QueryContext(ctx, `SELECT id, name, owner_id, manifest, created, modified FROM dsls;`)
	if err != nil {
		return nil, wrapDBError(err)
	}
	defer rows.Close()

	var all []dao.DSL

	for rows.Next() {
		d, err := scanDSL(rows.Scan)
		if err != nil {
			return all, err
		}
		all = append(all, d)
	}

	if err := rows.Err(); err != nil {
		return all, wrapDBError(err)
	}

	return all, nil
}

func (repo *DSLsDB) GetByID(ctx context.Context, id uuid.UUID) (dao.DSL, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, name, owner_id, manifest, created, modified FROM dsls WHERE id = ?;`,
		convertToDB_UUID(id),
	)
	d, err := scanDSL(row.Scan)
	if err != nil {
		return dao.DSL{}, err
	}
	return d, nil
}

func (repo *DSLsDB) GetByName(ctx context.Context, name string) (dao.DSL, error) {
	row := repo.db.QueryRowContext(ctx, `SELECT id, name, owner_id, manifest, created, modified FROM dsls WHERE name = ?;`,
		name,
	)
	d, err := scanDSL(row.Scan)
	if err != nil {
		return dao.DSL{}, err
	}
	return d, nil
}

func (repo *DSLsDB) Delete(ctx context.Context, id uuid.UUID) (dao.DSL, error) {
	curVal, err := repo.GetByID(ctx, id)
	if err != nil {
		return curVal, err
	}

	res, err := repo.db.ExecContext(ctx, `DELETE FROM dsls WHERE id = ?`, convertToDB_UUID(id))
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

func (repo *DSLsDB) Close() error {
	return wrapDBError(repo.db.Close())
}

// scanDSL reads a row in the canonical dsls column order (id, name, owner_id,
// manifest, created, modified) using the given scan func, which may come
// from either a *sql.Row or a *sql.Rows.
func scanDSL(scan func(dest ...any) error) (dao.DSL, error) {
	var d dao.DSL
	var id string
	var ownerID string
	var created int64
	var modified int64

	err := scan(&id, &d.Name, &ownerID, &d.Manifest, &created, &modified)
	if err != nil {
		return dao.DSL{}, wrapDBError(err)
	}

	if err := convertFromDB_UUID(id, &d.ID); err != nil {
		return d, fmt.Errorf("stored UUID %q is invalid: %w", id, err)
	}
	if err := convertFromDB_UUID(ownerID, &d.OwnerID); err != nil {
		return d, fmt.Errorf("stored owner ID %q is invalid: %w", ownerID, err)
	}
	if err := convertFromDB_Time(created, &d.Created); err != nil {
		return d, fmt.Errorf("stored created time %d is invalid: %w", created, err)
	}
	if err := convertFromDB_Time(modified, &d.Modified); err != nil {
		return d, fmt.Errorf("stored modified time %d is invalid: %w", modified, err)
	}

	return d, nil
}
