package tess

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/alexiusacademia/gofea/internal/geom"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// maxQuadRounds caps the opposite-edge equalization
	maxQuadRounds = 20

	// parallelTol is the tolerance on the direction-cosine dot product
	parallelTol = 1e-6
)

// ErrQuadIterations is returned when edge counts do not settle within maxQuadRounds
var ErrQuadIterations = errors.New("quad edge equalization did not converge")

// EdgePointCounts returns the number of points on each edge (slice index =
// edge index - 1). The nominal count is max(min, min(1 + L/seed, max)) with
// seed = RelEdgeLength * body size. Opposite edges of quad-candidate faces are
// then raised to the larger count of the pair until nothing changes.
func EdgePointCounts(b *geom.Body, p Params) ([]int, error) {
	seed := p.RelEdgeLength * b.Size()

	counts := make([]int, len(b.Edges))
	for i := range b.Edges {
		n := p.EdgePointMin
		if seed > 0 && !b.IsDegenerate(i+1) {
			n = int(math.Floor(1 + b.EdgeLength(i+1)/seed))
			n = min(n, p.EdgePointMax)
			n = max(n, p.EdgePointMin)
		}
		counts[i] = n
	}

	var quads []geom.Loop
	for fi := range b.Faces {
		if QuadCandidate(b, fi+1, p) {
			quads = append(quads, b.Faces[fi].Loops[0])
		}
	}
	if len(quads) == 0 {
		return counts, nil
	}

	for round := 1; round <= maxQuadRounds; round++ {
		changed := false
		for _, loop := range quads {
			for k := 0; k < 2; k++ {
				a, c := loop[k].Edge-1, loop[k+2].Edge-1
				if counts[a] != counts[c] {
					n := max(counts[a], counts[c])
					counts[a], counts[c] = n, n
					changed = true
				}
			}
		}
		if !changed {
			return counts, nil
		}
	}
	return nil, fmt.Errorf("body %q: %w after %d rounds", b.Name, ErrQuadIterations, maxQuadRounds)
}

// QuadCandidate reports whether a face (1-based) can receive a structured quad patch
func QuadCandidate(b *geom.Body, face int, p Params) bool {
	if !p.QuadMesh {
		return false
	}
	f := b.Faces[face-1]
	if quadDisabled(f.Attrs) {
		return false
	}
	if len(f.Loops) != 1 || len(f.Loops[0]) != 4 {
		return false
	}
	loop := f.Loops[0]
	dirs := make([]r3.Vec, 4)
	for i, le := range loop {
		if b.IsDegenerate(le.Edge) {
			return false
		}
		dirs[i] = r3.Scale(float64(le.Sense), b.EdgeDirection(le.Edge))
	}
	for i := range dirs {
		if math.Abs(r3.Dot(dirs[i], dirs[(i+1)%4])) > 1-parallelTol {
			return false
		}
	}
	return true
}

// quadDisabled reads the per-face override ("off", "false", "no" or 0)
func quadDisabled(a geom.Attrs) bool {
	at, ok := a.Get(geom.AttrQuadMesh)
	if !ok {
		return false
	}
	switch at.Kind {
	case geom.AttrString:
		switch strings.ToLower(at.Str) {
		case "off", "false", "no", "0":
			return true
		}
	case geom.AttrReal:
		return len(at.Reals) > 0 && at.Reals[0] == 0
	case geom.AttrInt:
		return len(at.Ints) > 0 && at.Ints[0] == 0
	}
	return false
}
