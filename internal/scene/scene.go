// Package scene pushes converted primitives into rendering sinks.
package scene

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OCAP2/globe/internal/model/core"
)

// Sink accepts primitives one at a time
type Sink interface {
	Add(ctx context.Context, p core.Primitive) error
}

// Session is implemented by sinks that need to know where a scene starts and ends
type Session interface {
	Begin(ctx context.Context, name string) error
	End(ctx context.Context) error
}

// Stats counts the primitives pushed by Draw
type Stats struct {
	Polygons   int
	Points     int
	Lines      int
	Billboards int
	Duration   time.Duration
}

// Total returns the number of primitives drawn.
func (s Stats) Total() int {
	return s.Polygons + s.Points + s.Lines + s.Billboards
}

func (s *Stats) count(k core.PrimitiveKind) {
	switch k {
	case core.KindPolygon:
		s.Polygons++
	case core.KindPoint:
		s.Points++
	case core.KindLine:
		s.Lines++
	case core.KindBillboard:
		s.Billboards++
	}
}

// Primitives flattens a scene in draw order: overlays, attack targets,
// all trajectory legs, deployment models, then assets.
func Primitives(sc core.Scene) []core.Primitive {
	out := make([]core.Primitive, 0, len(sc.Overlays)+len(sc.Assets)+2*len(sc.Attacks))

	for _, o := range sc.Overlays {
		out = append(out, o)
	}
	for _, a := range sc.Attacks {
		out = append(out, a.Target)
	}
	for _, a := range sc.Attacks {
		for _, leg := range a.Trajectories {
			out = append(out, leg)
		}
	}
	for _, d := range sc.Deployments {
		for _, pm := range d.PhysicalModels {
			out = append(out, pm)
		}
	}
	for _, a := range sc.Assets {
		out = append(out, a)
	}
	return out
}

// Draw pushes every primitive of sc into sink in draw order.
// It stops at the first sink error or when ctx is cancelled.
func Draw(ctx context.Context, sink Sink, sc core.Scene) (Stats, error) {
	var stats Stats
	start := time.Now()

	for _, p := range Primitives(sc) {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
		if err := sink.Add(ctx, p); err != nil {
			stats.Duration = time.Since(start)
			return stats, fmt.Errorf("add %s: %w", p.Kind(), err)
		}
		stats.count(p.Kind())
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

// Run draws sc as one named scene, calling Begin and End when sink is a Session.
func Run(ctx context.Context, sink Sink, name string, sc core.Scene) (Stats, error) {
	sess, ok := sink.(Session)
	if ok {
		if err := sess.Begin(ctx, name); err != nil {
			return Stats{}, fmt.Errorf("begin scene: %w", err)
		}
	}

	stats, err := Draw(ctx, sink, sc)

	if ok {
		if endErr := sess.End(ctx); endErr != nil {
			err = errors.Join(err, fmt.Errorf("end scene: %w", endErr))
		}
	}
	return stats, err
}
