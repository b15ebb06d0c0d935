package fea

import (
	"fmt"
	"strings"
)

// enumNames maps an enum value (its index) to the keyword users write.
// Index 0 is the zero value and never matches a keyword.
type enumNames []string

func (n enumNames) name(v int) string {
	if v > 0 && v < len(n) {
		return n[v]
	}
	return fmt.Sprintf("%s(%d)", n[0], v)
}

func (n enumNames) parse(s string) (int, error) {
	s = strings.TrimSpace(s)
	for i, name := range n[1:] {
		if strings.EqualFold(name, s) {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (want one of %s)", n[0], s, strings.Join(n[1:], ", "))
}

// MaterialType classifies a material's constitutive model
type MaterialType int

const (
	Isotropic MaterialType = iota + 1
	Anisothotropic
	Orthotropic
	Anisotropic
)

var materialTypes = enumNames{"materialType", "Isotropic", "Anisothotropic", "Orthotropic", "Anisotropic"}

func (t MaterialType) String() string { return materialTypes.name(int(t)) }

func ParseMaterialType(s string) (MaterialType, error) {
	v, err := materialTypes.parse(s)
	return MaterialType(v), err
}

// PropertyType classifies an element property
type PropertyType int

const (
	ConcentratedMass PropertyType = iota + 1
	Rod
	Bar
	Beam
	Shear
	Shell
	Membrane
	Composite
	Solid
)

var propertyTypes = enumNames{"propertyType", "ConcentratedMass", "Rod", "Bar", "Beam", "Shear", "Shell",
	"Membrane", "Composite", "Solid"}

func (t PropertyType) String() string { return propertyTypes.name(int(t)) }

func ParsePropertyType(s string) (PropertyType, error) {
	v, err := propertyTypes.parse(s)
	return PropertyType(v), err
}

// ConstraintType classifies a displacement constraint
type ConstraintType int

const (
	ZeroDisplacement ConstraintType = iota + 1
	Displacement
)

var constraintTypes = enumNames{"constraintType", "ZeroDisplacement", "Displacement"}

func (t ConstraintType) String() string { return constraintTypes.name(int(t)) }

func ParseConstraintType(s string) (ConstraintType, error) {
	v, err := constraintTypes.parse(s)
	return ConstraintType(v), err
}

// ConnectionType classifies a synthesized connection element
type ConnectionType int

const (
	MassConnection ConnectionType = iota + 1
	Spring
	Damper
	RigidBody
	RigidBodyInterpolate
)

var connectionTypes = enumNames{"connectionType", "Mass", "Spring", "Damper", "RigidBody", "RigidBodyInterpolate"}

func (t ConnectionType) String() string { return connectionTypes.name(int(t)) }

func ParseConnectionType(s string) (ConnectionType, error) {
	v, err := connectionTypes.parse(s)
	return ConnectionType(v), err
}

// LoadType classifies a load
type LoadType int

const (
	GridForce LoadType = iota + 1
	GridMoment
	Rotational
	Thermal
	Pressure
	PressureDistribute
	PressureExternal
	Gravity
	LineForce
	LineMoment
)

var loadTypes = enumNames{"loadType", "GridForce", "GridMoment", "Rotational", "Thermal", "Pressure",
	"PressureDistribute", "PressureExternal", "Gravity", "LineForce", "LineMoment"}

func (t LoadType) String() string { return loadTypes.name(int(t)) }

func ParseLoadType(s string) (LoadType, error) {
	v, err := loadTypes.parse(s)
	return LoadType(v), err
}

// OnGrid reports whether the load is applied to nodes
func (t LoadType) OnGrid() bool {
	switch t {
	case GridForce, GridMoment, Rotational, Thermal:
		return true
	}
	return false
}

// OnElement reports whether the load is applied to elements
func (t LoadType) OnElement() bool {
	switch t {
	case Pressure, PressureDistribute, PressureExternal, LineForce, LineMoment:
		return true
	}
	return false
}

// AnalysisType classifies an analysis
type AnalysisType int

const (
	Modal AnalysisType = iota + 1
	Static
	AeroelasticTrim
	AeroelasticFlutter
	Optimization
)

var analysisTypes = enumNames{"analysisType", "Modal", "Static", "AeroelasticTrim", "AeroelasticFlutter", "Optimization"}

func (t AnalysisType) String() string { return analysisTypes.name(int(t)) }

func ParseAnalysisType(s string) (AnalysisType, error) {
	v, err := analysisTypes.parse(s)
	return AnalysisType(v), err
}

// ComponentType names what a design variable relation acts on
type ComponentType int

const (
	MaterialComponent ComponentType = iota + 1
	PropertyComponent
	ElementComponent
)

var componentTypes = enumNames{"componentType", "Material", "Property", "Element"}

func (t ComponentType) String() string { return componentTypes.name(int(t)) }

func ParseComponentType(s string) (ComponentType, error) {
	v, err := componentTypes.parse(s)
	return ComponentType(v), err
}

// CoordSystemType classifies a coordinate system
type CoordSystemType int

const (
	Rectangular CoordSystemType = iota + 1
	Cylindrical
	Spherical
)

var coordSystemTypes = enumNames{"coordSystemType", "Rectangular", "Cylindrical", "Spherical"}

func (t CoordSystemType) String() string { return coordSystemTypes.name(int(t)) }
