// Package placement scatters circular obstacles over a rectangle so that no
// two of them, and none of them and a set of reserved points, come closer
// than a minimum spacing. It uses plain rejection sampling: no spatial index,
// the point counts involved are tiny.
package placement

import (
	"errors"
	"fmt"

	"github.com/plus3/bumperfield/internal/geom"
)

// FallbackDistance is the distance assumed when there is nothing to keep
// away from yet.
const FallbackDistance = 500.0

var (
	// ErrExhausted is returned when a point could not be placed within
	// Params.MaxAttempts draws.
	ErrExhausted = errors.New("placement attempts exhausted")
	// ErrInvalidParams is returned for a negative count or an empty area.
	ErrInvalidParams = errors.New("invalid placement parameters")
)

// Sampler yields uniform floats in [0, 1). *rand.Rand satisfies it.
type Sampler interface {
	Float64() float64
}

// Params describes one placement run.
type Params struct {
	// Count is the number of points to place.
	Count int
	// Spacing is the minimum distance between a placed point and every
	// reserved or previously placed point.
	Spacing float64
	// Area bounds the draws: x in [Min.X, Max.X), y in [Min.Y, Max.Y).
	Area geom.Rect
	// MaxAttempts caps the draws spent on a single point. Zero means no cap.
	MaxAttempts int
}

// Result is the outcome of Place.
type Result struct {
	Points []geom.Vec2
	// Draws is the total number of random candidates drawn.
	Draws int
}

// Place draws Count points from p.Area. Each point is redrawn until its
// distance to every point in avoid, and to every point placed before it, is
// at least p.Spacing. avoid is not modified.
//
// A NaN distance does not count as too close.
func Place(rng Sampler, p Params, avoid []geom.Vec2) (Result, error) {
	if p.Count < 0 {
		return Result{}, fmt.Errorf("%w: count %d", ErrInvalidParams, p.Count)
	}
	if p.Area.Empty() {
		return Result{}, fmt.Errorf("%w: empty area %v", ErrInvalidParams, p.Area)
	}

	taken := make([]geom.Vec2, len(avoid), len(avoid)+p.Count)
	copy(taken, avoid)

	res := Result{Points: make([]geom.Vec2, 0, p.Count)}
	for i := range p.Count {
		var pos geom.Vec2
		attempts := 0
		if len(taken) > 0 {
			pos = taken[0]
		} else {
			pos = draw(rng, p.Area)
			res.Draws++
			attempts++
		}

		for MinDistance(pos, taken) < p.Spacing {
			if p.MaxAttempts > 0 && attempts >= p.MaxAttempts {
				return res, fmt.Errorf("point %d of %d after %d draws: %w", i+1, p.Count, attempts, ErrExhausted)
			}
			pos = draw(rng, p.Area)
			res.Draws++
			attempts++
		}

		taken = append(taken, pos)
		res.Points = append(res.Points, pos)
	}
	return res, nil
}

func draw(rng Sampler, area geom.Rect) geom.Vec2 {
	return geom.V(
		area.Min.X+rng.Float64()*area.Width(),
		area.Min.Y+rng.Float64()*area.Height(),
	)
}

// MinDistance returns the smallest distance from p to any point in others,
// or FallbackDistance when others is empty. Comparisons against NaN keep
// the running minimum, so a NaN first distance yields NaN and later NaN
// distances are skipped.
func MinDistance(p geom.Vec2, others []geom.Vec2) float64 {
	if len(others) == 0 {
		return FallbackDistance
	}
	best := p.Distance(others[0])
	for _, o := range others[1:] {
		if d := p.Distance(o); d < best {
			best = d
		}
	}
	return best
}

// Separated reports whether every point is at least spacing away from every
// other point and from every reserved point.
func Separated(points, reserved []geom.Vec2, spacing float64) bool {
	for i, p := range points {
		if MinDistance(p, reserved) < spacing && len(reserved) > 0 {
			return false
		}
		for _, q := range points[i+1:] {
			if p.Distance(q) < spacing {
				return false
			}
		}
	}
	return true
}
