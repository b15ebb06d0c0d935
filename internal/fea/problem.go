// Package fea assembles a finite-element problem: it resolves the
// user-supplied tuples into typed records, binds them to the mesh through the
// attribute maps and synthesizes connection elements.
package fea

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexiusacademia/gofea/internal/attrmap"
	"github.com/alexiusacademia/gofea/internal/mesh"
	"github.com/alexiusacademia/gofea/internal/record"
	"github.com/alexiusacademia/gofea/internal/units"
)

// ErrNotImplemented is returned for tuple values that are keywords instead of JSON objects
var ErrNotImplemented = record.ErrNotImplemented

// ErrUnresolved marks a name that does not resolve to a record or attribute
var ErrUnresolved = errors.New("unresolved reference")

// Tuple is one (name, value) input pair. Value is usually a JSON object.
type Tuple struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ExternalPressure carries nodal pressures computed by another discipline
type ExternalPressure struct {
	NodeIDs   []int     `json:"nodeIDs"`
	Pressures []float64 `json:"pressures"`
}

// Inputs are the assembly inputs. Mesh and Maps come from BuildMesh or from
// an inherited mesh.
type Inputs struct {
	Mesh *mesh.Mesh
	Maps *attrmap.Set

	UnitSystem   string
	AnalysisType string

	Material               []Tuple
	Property               []Tuple
	Constraint             []Tuple
	Support                []Tuple
	Connect                []Tuple
	Load                   []Tuple
	Analysis               []Tuple
	DesignVariable         []Tuple
	DesignVariableRelation []Tuple
	DesignConstraint       []Tuple
	DesignResponse         []Tuple
	DesignEquation         []Tuple
	DesignEquationResponse []Tuple
	DesignTable            []Tuple
	DesignOptParam         []Tuple

	ExternalPressure *ExternalPressure
	AeroReference    string
}

// Problem is the assembled problem. Record ids are 1-based tuple positions.
type Problem struct {
	Mesh  *mesh.Mesh
	Maps  *attrmap.Set
	Units *units.System

	CoordSystems            []CoordSystem
	Materials               []Material
	Properties              []Property
	Constraints             []Constraint
	Supports                []Support
	Connections             []Connection
	Loads                   []Load
	Analyses                []Analysis
	DesignVariables         []DesignVariable
	DesignVariableRelations []DesignVariableRelation
	DesignConstraints       []DesignConstraint
	DesignResponses         []DesignResponse
	DesignEquations         []DesignEquation
	DesignEquationResponses []DesignEquationResponse
	DesignTable             []DesignConstant
	OptParams               []OptParam
	AeroReference           *AeroReference
}

// Reset clears the problem to its empty state
func (p *Problem) Reset() {
	*p = Problem{}
}

// MaterialByName looks a material up case-insensitively
func (p *Problem) MaterialByName(name string) (*Material, bool) {
	for i := range p.Materials {
		if strings.EqualFold(p.Materials[i].Name, name) {
			return &p.Materials[i], true
		}
	}
	return nil, false
}

// PropertyByName looks a property up case-insensitively
func (p *Problem) PropertyByName(name string) (*Property, bool) {
	for i := range p.Properties {
		if strings.EqualFold(p.Properties[i].Name, name) {
			return &p.Properties[i], true
		}
	}
	return nil, false
}

// InputError reports a malformed tuple
type InputError struct {
	Category string
	Tuple    string
	Field    string
	Err      error
}

func (e *InputError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s %q: %v", e.Category, e.Tuple, e.Err)
	}
	return fmt.Sprintf("%s %q field %q: %v", e.Category, e.Tuple, e.Field, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ReferenceError reports a name in a tuple that resolves to nothing
type ReferenceError struct {
	Category string
	Tuple    string
	Kind     string
	Name     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q: unknown %s %q", e.Category, e.Tuple, e.Kind, e.Name)
}

func (e *ReferenceError) Unwrap() error { return ErrUnresolved }

// inputError converts a record parse failure into an InputError for category
func inputError(category string, err error) error {
	var rerr *record.Error
	if errors.As(err, &rerr) {
		return &InputError{Category: category, Tuple: rerr.Tuple, Field: rerr.Field, Err: rerr.Err}
	}
	return err
}
