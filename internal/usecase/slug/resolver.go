// Package slug resolves hyphen-joined location tokens such as "bandra-mumbai"
// into taxonomy ids.
package slug

import (
	"context"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/kailas-cloud/jobscout/internal/domain/location"
)

// matchOrder is the order levels are tried against the slug words, most specific first.
var matchOrder = []location.Level{location.LevelArea, location.LevelCity, location.LevelState}

// Resolver maps slugs to taxonomy ids by longest-match.
type Resolver struct {
	tax      Taxonomy
	resolved *prometheus.CounterVec
	logger   *zap.Logger
}

// New creates a slug resolver.
func New(tax Taxonomy, logger *zap.Logger) *Resolver {
	return &Resolver{tax: tax, logger: logger}
}

// WithCounter sets a counter vec with label "confidence", incremented per resolution.
func (r *Resolver) WithCounter(c *prometheus.CounterVec) *Resolver {
	r.resolved = c
	return r
}

// Resolve never fails: anything the taxonomy cannot explain degrades the confidence.
func (r *Resolver) Resolve(ctx context.Context, slug string) location.Resolved {
	words := location.Words(slug)
	res := r.resolve(ctx, words)

	if r.resolved != nil {
		r.resolved.WithLabelValues(string(res.Confidence)).Inc()
	}
	r.logger.Debug("Slug resolved",
		zap.String("slug", slug),
		zap.String("confidence", string(res.Confidence)),
		zap.Int64("area_id", res.AreaID),
		zap.Int64("city_id", res.CityID),
		zap.Int64("state_id", res.StateID),
	)
	return res
}

// match is the running state of one resolution.
type match struct {
	remaining []string
	lineage   location.Lineage
	names     location.MatchedNames
	found     bool
}

func (r *Resolver) resolve(ctx context.Context, words []string) location.Resolved {
	m := &match{remaining: words}

	for _, level := range matchOrder {
		r.matchLevel(ctx, m, level)
	}

	if !m.found {
		return location.Resolved{
			Confidence: location.Unresolved,
			Display:    titleCase(words),
		}
	}

	res := location.Resolved{
		CountryID:    m.lineage.CountryID,
		StateID:      m.lineage.StateID,
		CityID:       m.lineage.CityID,
		AreaID:       m.lineage.AreaID,
		MatchedNames: m.names,
		Confidence:   location.Exact,
		Display:      breadcrumb(m.lineage),
	}
	if len(m.remaining) > 0 {
		res.Confidence = location.Partial
	}
	return res
}

// matchLevel consumes at most one candidate phrase at level.
func (r *Resolver) matchLevel(ctx context.Context, m *match, level location.Level) {
	for _, c := range candidates(m.remaining) {
		entries := r.tax.FindByName(ctx, level, c.phrase)
		if len(entries) == 0 {
			continue
		}

		// A lower level already fixed this one: only a confirming name is consumed.
		if fixed := m.lineage.IDOf(level); fixed != 0 {
			for _, e := range entries {
				if e.ID == fixed {
					m.consume(c, level, e.Name)
					return
				}
			}
			continue
		}

		entry, lin, ok := r.pick(ctx, level, entries, c.rest)
		if !ok {
			continue
		}
		m.lineage = lin
		m.consume(c, level, entry.Name)
		return
	}
}

// pick chooses among same-named entries: the first whose ancestor names appear at
// either end of rest wins, otherwise the first with a valid lineage.
func (r *Resolver) pick(
	ctx context.Context, level location.Level, entries []location.Entity, rest []string,
) (location.Entity, location.Lineage, bool) {
	var (
		fallback    location.Entity
		fallbackLin location.Lineage
		haveFall    bool
	)
	for _, e := range entries {
		lin, err := r.tax.Lineage(ctx, level, e.ID)
		if err != nil {
			r.logger.Warn("Skipping slug candidate with broken lineage",
				zap.String("level", string(level)), zap.Int64("id", e.ID), zap.Error(err))
			continue
		}
		for _, name := range lin.AncestorNames(level) {
			if hasPhraseAtEnd(rest, location.Words(name)) {
				return e, lin, true
			}
		}
		if !haveFall {
			fallback, fallbackLin, haveFall = e, lin, true
		}
	}
	return fallback, fallbackLin, haveFall
}

func (m *match) consume(c candidate, level location.Level, name string) {
	m.remaining = c.rest
	m.found = true
	switch level {
	case location.LevelArea:
		m.names.Area = name
	case location.LevelCity:
		m.names.City = name
	case location.LevelState:
		m.names.State = name
	}
}

// candidate is a prefix or suffix phrase and the words left once it is removed.
type candidate struct {
	phrase string
	rest   []string
}

// candidates lists every prefix and suffix of words, longest first, prefix before
// suffix at equal length.
func candidates(words []string) []candidate {
	n := len(words)
	out := make([]candidate, 0, 2*n)
	for size := n; size > 0; size-- {
		out = append(out, candidate{
			phrase: strings.Join(words[:size], " "),
			rest:   words[size:],
		})
		if size == n {
			continue
		}
		out = append(out, candidate{
			phrase: strings.Join(words[n-size:], " "),
			rest:   words[:n-size],
		})
	}
	return out
}

func hasPhraseAtEnd(words, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(words) {
		return false
	}
	return equalWords(words[:len(phrase)], phrase) || equalWords(words[len(words)-len(phrase):], phrase)
}

func equalWords(a, b []string) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return len(a) == len(b)
}

// breadcrumb joins the resolved names, most specific first.
func breadcrumb(lin location.Lineage) string {
	var parts []string
	for _, n := range []string{lin.AreaName, lin.CityName, lin.StateName} {
		if n != "" {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, ", ")
}

func titleCase(words []string) string {
	return cases.Title(language.Und).String(strings.Join(words, " "))
}
