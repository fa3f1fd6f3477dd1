package listing

import (
	"fmt"
	"strings"

	domlisting "github.com/kailas-cloud/jobscout/internal/domain/listing"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
)

// columns is the projection shared by every listing query.
const columns = "id, title, description, employer_name, category_name, type_name, " +
	"salary_min, salary_max, experience_min, experience_max, job_type_id, job_category_id, " +
	"country_id, state_id, city_id, area_id, latitude, longitude, created_at, view_count, is_featured"

// orderBy maps a push-down strategy to its ORDER BY clause. id DESC makes every order total.
var orderBy = map[ranking.Strategy]string{
	ranking.Recent:  "created_at DESC, id DESC",
	ranking.Popular: "view_count DESC, created_at DESC, id DESC",
	ranking.Salary:  "COALESCE(salary_min, 0) DESC, COALESCE(salary_max, 0) DESC, id DESC",
}

// where accumulates AND-ed predicates with positional arguments.
type where struct {
	conds []string
	args  []any
}

// add appends cond, replacing its single "?" with the next placeholder.
func (w *where) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

func (w *where) eq(column string, v *int64) {
	if v != nil {
		w.add(column+" = ?", *v)
	}
}

func (w *where) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// buildWhere translates the store params. Range bounds follow the same rule as
// the in-process predicate: the upper end must reach min, the lower end must not
// exceed max, and a listing without either end fails an active bound.
func buildWhere(p domlisting.Params) *where {
	w := &where{}
	w.eq("country_id", p.CountryID)
	w.eq("state_id", p.StateID)
	w.eq("city_id", p.CityID)
	w.eq("area_id", p.AreaID)
	w.eq("job_type_id", p.JobTypeID)
	w.eq("job_category_id", p.JobCategoryID)
	if p.Featured != nil {
		w.add("is_featured = ?", *p.Featured)
	}
	if p.SalaryMin != nil {
		w.add("COALESCE(salary_max, salary_min) >= ?", *p.SalaryMin)
	}
	if p.SalaryMax != nil {
		w.add("COALESCE(salary_min, salary_max) <= ?", *p.SalaryMax)
	}
	if p.ExperienceMin != nil {
		w.add("COALESCE(experience_max, experience_min) >= ?", *p.ExperienceMin)
	}
	if p.ExperienceMax != nil {
		w.add("COALESCE(experience_min, experience_max) <= ?", *p.ExperienceMax)
	}
	return w
}

// searchQuery builds the windowed select. Without a push-down strategy the newest
// listings come first.
func searchQuery(table string, p domlisting.Params, limit, offset int) (string, []any) {
	w := buildWhere(p)
	order, ok := orderBy[p.Sort]
	if !ok {
		order = orderBy[ranking.Recent]
	}
	args := append(w.args, limit, offset)
	sql := fmt.Sprintf("SELECT %s FROM %s%s ORDER BY %s LIMIT $%d OFFSET $%d",
		columns, table, w.String(), order, len(args)-1, len(args))
	return sql, args
}

func countQuery(table string, p domlisting.Params) (string, []any) {
	w := buildWhere(p)
	return fmt.Sprintf("SELECT count(*) FROM %s%s", table, w.String()), w.args
}
