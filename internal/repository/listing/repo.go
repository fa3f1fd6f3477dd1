// Package listing reads job listings from the externally owned Postgres view.
package listing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/kailas-cloud/jobscout/internal/db"
	domlisting "github.com/kailas-cloud/jobscout/internal/domain/listing"
)

// DefaultTable is the listing view queried when none is configured.
const DefaultTable = "job_listings"

// querier is the consumer interface over a pgx pool or connection (ISP).
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repo implements the listing store over Postgres.
type Repo struct {
	q     querier
	table string
}

// New creates a listing repository. table may be schema-qualified; empty uses DefaultTable.
func New(q querier, table string) *Repo {
	if table == "" {
		table = DefaultTable
	}
	return &Repo{q: q, table: pgx.Identifier(strings.Split(table, ".")).Sanitize()}
}

// listingRow mirrors the projection in columns.
type listingRow struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Description   *string   `db:"description"`
	EmployerName  *string   `db:"employer_name"`
	CategoryName  *string   `db:"category_name"`
	TypeName      *string   `db:"type_name"`
	SalaryMin     *int64    `db:"salary_min"`
	SalaryMax     *int64    `db:"salary_max"`
	ExperienceMin *int64    `db:"experience_min"`
	ExperienceMax *int64    `db:"experience_max"`
	JobTypeID     *int64    `db:"job_type_id"`
	JobCategoryID *int64    `db:"job_category_id"`
	CountryID     *int64    `db:"country_id"`
	StateID       *int64    `db:"state_id"`
	CityID        *int64    `db:"city_id"`
	AreaID        *int64    `db:"area_id"`
	Latitude      *float64  `db:"latitude"`
	Longitude     *float64  `db:"longitude"`
	CreatedAt     time.Time `db:"created_at"`
	ViewCount     int64     `db:"view_count"`
	IsFeatured    bool      `db:"is_featured"`
}

func (r *listingRow) toDomain() domlisting.Listing {
	return domlisting.Listing{
		ID:            r.ID,
		Title:         r.Title,
		Description:   deref(r.Description),
		EmployerName:  deref(r.EmployerName),
		CategoryName:  deref(r.CategoryName),
		TypeName:      deref(r.TypeName),
		CreatedAt:     r.CreatedAt,
		ViewCount:     r.ViewCount,
		IsFeatured:    r.IsFeatured,
		SalaryMin:     r.SalaryMin,
		SalaryMax:     r.SalaryMax,
		ExperienceMin: r.ExperienceMin,
		ExperienceMax: r.ExperienceMax,
		JobTypeID:     r.JobTypeID,
		JobCategoryID: r.JobCategoryID,
		CountryID:     r.CountryID,
		StateID:       r.StateID,
		CityID:        r.CityID,
		AreaID:        r.AreaID,
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
	}
}

// Search returns one window of listings matching params in params.Sort order.
func (r *Repo) Search(ctx context.Context, params domlisting.Params, limit, offset int) ([]domlisting.Listing, error) {
	sql, args := searchQuery(r.table, params, limit, offset)
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: err}
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[listingRow])
	if err != nil {
		return nil, fmt.Errorf("scan listings: %w", err)
	}
	out := make([]domlisting.Listing, len(collected))
	for i := range collected {
		out[i] = collected[i].toDomain()
	}
	return out, nil
}

// Count returns the number of listings matching params.
func (r *Repo) Count(ctx context.Context, params domlisting.Params) (int, error) {
	sql, args := countQuery(r.table, params)
	var n int64
	if err := r.q.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, &db.Error{Op: db.OpQuery, Err: err}
	}
	return int(n), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
