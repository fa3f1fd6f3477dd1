package location

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/jobscout/internal/domain"
	domloc "github.com/kailas-cloud/jobscout/internal/domain/location"
)

// querier is the consumer interface over a pgx pool or connection (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo reads the externally owned location tables. It never writes.
type Repo struct {
	q querier
}

// New creates a Postgres-backed location catalog.
func New(q querier) *Repo {
	return &Repo{q: q}
}

// entityRow is the common projection of all four location tables.
type entityRow struct {
	ID        int64  `db:"id"`
	Name      string `db:"name"`
	ParentID  int64  `db:"parent_id"`
	CountryID int64  `db:"country_id"`
}

func (r entityRow) entity(level domloc.Level) domloc.Entity {
	return domloc.Entity{Level: level, ID: r.ID, Name: r.Name, ParentID: r.ParentID, CountryID: r.CountryID}
}

// tableSpec maps a level to its table and the columns projected as parent_id / country_id.
type tableSpec struct {
	table   string
	parent  string
	country string
}

var tables = map[domloc.Level]tableSpec{
	domloc.LevelCountry: {table: "countries", parent: "0::bigint", country: "0::bigint"},
	domloc.LevelState:   {table: "states", parent: "country_id", country: "country_id"},
	domloc.LevelCity:    {table: "cities", parent: "state_id", country: "country_id"},
	domloc.LevelArea:    {table: "areas", parent: "city_id", country: "0::bigint"},
}

// normalizedName mirrors domloc.NormalizeName in SQL.
const normalizedName = `lower(regexp_replace(btrim(name), '[\s_-]+', ' ', 'g'))`

func lookupTable(level domloc.Level) (tableSpec, error) {
	spec, ok := tables[level]
	if !ok {
		return tableSpec{}, fmt.Errorf("unknown level %q: %w", level, domain.ErrInvalidRequest)
	}
	return spec, nil
}

func selectClause(spec tableSpec) string {
	return fmt.Sprintf("SELECT id, name, %s AS parent_id, %s AS country_id FROM %s",
		spec.parent, spec.country, spec.table)
}

// listQuery builds the paged listing statement. Scoped queries bind the parent id as $1.
func listQuery(spec tableSpec, scoped bool) string {
	if scoped {
		return selectClause(spec) + fmt.Sprintf(" WHERE %s = $1 ORDER BY id LIMIT $2 OFFSET $3", spec.parent)
	}
	return selectClause(spec) + " ORDER BY id LIMIT $1 OFFSET $2"
}

func findByNameQuery(spec tableSpec) string {
	return selectClause(spec) + " WHERE " + normalizedName + " = $1 ORDER BY id LIMIT $2"
}

func getQuery(spec tableSpec) string {
	return selectClause(spec) + " WHERE id = $1"
}

// List returns one page of entries at level, optionally scoped to parentID.
func (r *Repo) List(
	ctx context.Context, level domloc.Level, parentID int64, offset, limit int,
) ([]domloc.Entity, error) {
	spec, err := lookupTable(level)
	if err != nil {
		return nil, err
	}

	scoped := parentID != 0 && level != domloc.LevelCountry
	var rows pgx.Rows
	if scoped {
		rows, err = r.q.Query(ctx, listQuery(spec, true), parentID, limit, offset)
	} else {
		rows, err = r.q.Query(ctx, listQuery(spec, false), limit, offset)
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", spec.table, err)
	}
	return collectEntities(rows, level)
}

// FindByName returns entries at level whose normalized name equals name.
func (r *Repo) FindByName(
	ctx context.Context, level domloc.Level, name string, limit int,
) ([]domloc.Entity, error) {
	spec, err := lookupTable(level)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.Query(ctx, findByNameQuery(spec), domloc.NormalizeName(name), limit)
	if err != nil {
		return nil, fmt.Errorf("find %s by name: %w", spec.table, err)
	}
	return collectEntities(rows, level)
}

// Get returns a single entry or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, level domloc.Level, id int64) (domloc.Entity, error) {
	spec, err := lookupTable(level)
	if err != nil {
		return domloc.Entity{}, err
	}
	var row entityRow
	err = r.q.QueryRow(ctx, getQuery(spec), id).Scan(&row.ID, &row.Name, &row.ParentID, &row.CountryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domloc.Entity{}, fmt.Errorf("%s %d: %w", level, id, domain.ErrNotFound)
		}
		return domloc.Entity{}, fmt.Errorf("get %s %d: %w", spec.table, id, err)
	}
	return row.entity(level), nil
}

func collectEntities(rows pgx.Rows, level domloc.Level) ([]domloc.Entity, error) {
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[entityRow])
	if err != nil {
		return nil, fmt.Errorf("scan %s rows: %w", level, err)
	}
	out := make([]domloc.Entity, len(collected))
	for i, row := range collected {
		out[i] = row.entity(level)
	}
	return out, nil
}
