// Package explore drives a facet session from line-oriented text commands.
package explore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/kailas-cloud/jobscout/internal/domain"
	"github.com/kailas-cloud/jobscout/internal/domain/location"
	"github.com/kailas-cloud/jobscout/internal/domain/search/filter"
	"github.com/kailas-cloud/jobscout/internal/domain/search/ranking"
	"github.com/kailas-cloud/jobscout/internal/usecase/session"
)

// Session is the part of a facet session the explorer drives.
type Session interface {
	Apply(ctx context.Context, change filter.Change) error
	SetSort(ctx context.Context, strategy ranking.Strategy) error
	SetPage(ctx context.Context, page int) error
	Snapshot(ctx context.Context) (session.Snapshot, error)
}

// Resolver maps a slug to hierarchy ids.
type Resolver interface {
	Resolve(ctx context.Context, slug string) location.Resolved
}

// Debouncer delays fn until input settles.
type Debouncer interface {
	Trigger(fn func())
}

// ErrQuit is returned by Handle for the quit command.
var ErrQuit = errors.New("quit")

// unset is the argument that clears a facet.
const unset = "-"

const helpText = `commands:
  country|state|city|area <id|->   select or clear a hierarchy level
  where <slug>                     resolve a slug such as bandra-mumbai
  q <text>                         free-text query (debounced)
  salary <min|-> <max|->           salary range
  exp <min|-> <max|->              experience range in years
  type <id|->, category <id|->     job type and category
  featured yes|no|-                featured flag
  near <lat> <lon> [radius_km]     proximity center; "near -" clears it
  sort recent|popular|salary|distance
  page <n>
  show, help, quit`

// Runner executes commands against a session and writes feedback to out.
type Runner struct {
	sess     Session
	resolver Resolver
	debounce Debouncer
	mu       sync.Mutex
	out      io.Writer
}

// NewRunner creates a runner.
func NewRunner(sess Session, resolver Resolver, debounce Debouncer, out io.Writer) *Runner {
	return &Runner{sess: sess, resolver: resolver, debounce: debounce, out: out}
}

// Handle executes one input line. Errors are user-facing; ErrQuit ends the loop.
func (r *Runner) Handle(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "quit", "exit":
		return ErrQuit
	case "help":
		r.printf("%s\n", helpText)
		return nil
	case "show":
		snap, err := r.sess.Snapshot(ctx)
		if err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
		r.Render(snap)
		return nil
	case "where":
		return r.where(ctx, strings.Join(args, "-"))
	case "q":
		text := strings.Join(args, " ")
		r.debounce.Trigger(func() {
			if err := r.sess.Apply(ctx, filter.SetText(text)); err != nil {
				r.printf("error: %v\n", err)
			}
		})
		return nil
	case "sort":
		if len(args) != 1 {
			return usage("sort <strategy>")
		}
		s := ranking.Strategy(strings.ToLower(args[0]))
		if !s.IsValid() {
			return fmt.Errorf("unknown sort %q: %w", args[0], domain.ErrInvalidRequest)
		}
		return r.sess.SetSort(ctx, s) //nolint:wrapcheck // user-facing as is
	case "page":
		if len(args) != 1 {
			return usage("page <n>")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid page %q: %w", args[0], domain.ErrInvalidRequest)
		}
		return r.sess.SetPage(ctx, n) //nolint:wrapcheck // user-facing as is
	}

	change, err := parseChange(name, args)
	if err != nil {
		return err
	}
	return r.sess.Apply(ctx, change) //nolint:wrapcheck // FacetOrderError is shown as is
}

func (r *Runner) where(ctx context.Context, slug string) error {
	if slug == "" {
		return usage("where <slug>")
	}
	res := r.resolver.Resolve(ctx, slug)
	r.printf("%s (%s)\n", res.Display, res.Confidence)
	if !res.IsResolved() {
		return nil
	}
	//nolint:wrapcheck // user-facing as is
	return r.sess.Apply(ctx, filter.SetLocation(filter.Location{
		CountryID: res.CountryID,
		StateID:   res.StateID,
		CityID:    res.CityID,
		AreaID:    res.AreaID,
	}))
}

func parseChange(name string, args []string) (filter.Change, error) {
	switch name {
	case "country", "state", "city", "area", "type", "category":
		if len(args) != 1 {
			return filter.Change{}, usage(name + " <id|->")
		}
		id, err := parseID(args[0])
		if err != nil {
			return filter.Change{}, err
		}
		return map[string]func(int64) filter.Change{
			"country":  filter.SetCountry,
			"state":    filter.SetState,
			"city":     filter.SetCity,
			"area":     filter.SetArea,
			"type":     filter.SetJobType,
			"category": filter.SetJobCategory,
		}[name](id), nil
	case "salary", "exp":
		if len(args) != 2 {
			return filter.Change{}, usage(name + " <min|-> <max|->")
		}
		lo, err := parseOpt(args[0])
		if err != nil {
			return filter.Change{}, err
		}
		hi, err := parseOpt(args[1])
		if err != nil {
			return filter.Change{}, err
		}
		if name == "salary" {
			return filter.SetSalary(lo, hi), nil
		}
		return filter.SetExperience(lo, hi), nil
	case "featured":
		if len(args) != 1 {
			return filter.Change{}, usage("featured yes|no|-")
		}
		switch strings.ToLower(args[0]) {
		case "yes", "true":
			v := true
			return filter.SetFeatured(&v), nil
		case "no", "false":
			v := false
			return filter.SetFeatured(&v), nil
		case unset:
			return filter.SetFeatured(nil), nil
		}
		return filter.Change{}, usage("featured yes|no|-")
	case "near":
		return parseNear(args)
	default:
		return filter.Change{}, fmt.Errorf("unknown command %q (try help): %w", name, domain.ErrInvalidRequest)
	}
}

func parseNear(args []string) (filter.Change, error) {
	if len(args) == 1 && args[0] == unset {
		return filter.ClearProximity(), nil
	}
	if len(args) < 2 || len(args) > 3 {
		return filter.Change{}, usage("near <lat> <lon> [radius_km]")
	}
	vals := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return filter.Change{}, fmt.Errorf("invalid number %q: %w", a, domain.ErrInvalidRequest)
		}
		vals[i] = v
	}
	p := filter.Proximity{Latitude: vals[0], Longitude: vals[1]}
	if len(vals) == 3 {
		p.RadiusKM = vals[2]
	}
	return filter.SetProximity(p), nil
}

func parseID(s string) (int64, error) {
	if s == unset {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid id %q: %w", s, domain.ErrInvalidRequest)
	}
	return id, nil
}

func parseOpt(s string) (*int64, error) {
	if s == unset {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, domain.ErrInvalidRequest)
	}
	return &n, nil
}

func usage(u string) error {
	return fmt.Errorf("usage: %s: %w", u, domain.ErrInvalidRequest)
}

func (r *Runner) printf(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = fmt.Fprintf(r.out, format, args...)
}
