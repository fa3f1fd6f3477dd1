package explore

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/jobscout/internal/domain/location"
	"github.com/kailas-cloud/jobscout/internal/usecase/session"
)

// maxOptions caps how many option names are printed per level.
const maxOptions = 8

// Render prints a snapshot.
func (r *Runner) Render(snap session.Snapshot) {
	var b strings.Builder

	qs := snap.Filter.Values().Encode()
	if qs == "" {
		qs = "(none)"
	}
	fmt.Fprintf(&b, "filter: %s  sort: %s  page: %d\n", qs, snap.Strategy, snap.Page)

	writeOptions(&b, "states", states(snap.States), snap.Loading[session.EdgeStates])
	writeOptions(&b, "cities", cities(snap.Cities), snap.Loading[session.EdgeCities])
	writeOptions(&b, "areas", areas(snap.Areas), snap.Loading[session.EdgeAreas])

	switch {
	case snap.ResultsErr != nil:
		fmt.Fprintf(&b, "results: error: %v\n", snap.ResultsErr)
	case snap.Loading[session.EdgeResults]:
		b.WriteString("results: loading...\n")
	default:
		p := snap.Results
		fmt.Fprintf(&b, "results: %d of %d (%s)", len(p.Items), p.Total, p.TotalSource)
		if p.Truncated {
			b.WriteString(" truncated")
		}
		b.WriteByte('\n')
		for _, h := range p.Items {
			fmt.Fprintf(&b, "  #%d %s", h.Listing.ID, h.Listing.Title)
			if h.Listing.EmployerName != "" {
				fmt.Fprintf(&b, " @ %s", h.Listing.EmployerName)
			}
			if h.DistanceKM != nil {
				fmt.Fprintf(&b, "  %.1f km", *h.DistanceKM)
			}
			b.WriteByte('\n')
		}
	}

	r.printf("%s", b.String())
}

func writeOptions(b *strings.Builder, label string, names []string, loading bool) {
	if len(names) == 0 && !loading {
		return
	}
	fmt.Fprintf(b, "%s:", label)
	if loading {
		b.WriteString(" loading...\n")
		return
	}
	shown := names
	if len(shown) > maxOptions {
		shown = shown[:maxOptions]
	}
	fmt.Fprintf(b, " %s", strings.Join(shown, ", "))
	if extra := len(names) - len(shown); extra > 0 {
		fmt.Fprintf(b, " (+%d more)", extra)
	}
	b.WriteByte('\n')
}

func states(in []location.State) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = fmt.Sprintf("%s(%d)", s.Name, s.ID)
	}
	return out
}

func cities(in []location.City) []string {
	out := make([]string, len(in))
	for i, c := range in {
		out[i] = fmt.Sprintf("%s(%d)", c.Name, c.ID)
	}
	return out
}

func areas(in []location.Area) []string {
	out := make([]string, len(in))
	for i, a := range in {
		out[i] = fmt.Sprintf("%s(%d)", a.Name, a.ID)
	}
	return out
}
