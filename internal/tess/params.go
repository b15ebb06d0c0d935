// Package tess walks a body's topology and discretizes it.
//
// The CAD kernel's tessellator is an external collaborator; Tessellate is a
// reference implementation for planar straight-edged bodies that produces the
// same output contract (global point ids, per-edge point lists and per-face
// cells) so the mesh builder can run without a kernel.
package tess

import (
	"errors"
	"fmt"
)

// Params holds the tessellation controls
type Params struct {
	RelEdgeLength float64 // maximum edge segment length relative to the body size
	RelSag        float64 // maximum chord deviation relative to the body size
	MaxAngle      float64 // maximum dihedral angle between facets (degrees)
	EdgePointMin  int     // minimum number of points on an edge
	EdgePointMax  int     // maximum number of points on an edge
	QuadMesh      bool    // generate structured quads on eligible faces
}

// DefaultParams returns the default tessellation controls
func DefaultParams() Params {
	return Params{
		RelEdgeLength: 0.1,
		RelSag:        0.001,
		MaxAngle:      15,
		EdgePointMin:  2,
		EdgePointMax:  50,
		QuadMesh:      false,
	}
}

// ErrInvalidParams is returned by Validate
var ErrInvalidParams = errors.New("invalid tessellation parameters")

// Validate checks the parameter ranges
func (p Params) Validate() error {
	switch {
	case p.RelEdgeLength <= 0:
		return fmt.Errorf("%w: relative edge length must be positive, got %g", ErrInvalidParams, p.RelEdgeLength)
	case p.RelSag < 0:
		return fmt.Errorf("%w: relative sag must not be negative, got %g", ErrInvalidParams, p.RelSag)
	case p.MaxAngle < 0 || p.MaxAngle > 90:
		return fmt.Errorf("%w: max angle must be in [0, 90], got %g", ErrInvalidParams, p.MaxAngle)
	case p.EdgePointMin < 2:
		return fmt.Errorf("%w: edge point min must be at least 2, got %d", ErrInvalidParams, p.EdgePointMin)
	case p.EdgePointMax < p.EdgePointMin:
		return fmt.Errorf("%w: edge point max %d is below min %d", ErrInvalidParams, p.EdgePointMax, p.EdgePointMin)
	}
	return nil
}
