// Package units converts dimensioned input values into a problem's unit system.
package units

import (
	"fmt"
	"strings"
)

// Dimension identifies the physical quantity of a field
type Dimension int

const (
	None Dimension = iota
	Length
	Area
	Inertia // area moment of inertia, length^4
	Mass
	Force
	Moment
	Pressure
	Density
	Acceleration
	MassPerLength
	MassPerArea
	Stiffness
)

var dimensionNames = map[Dimension]string{
	None:          "dimensionless",
	Length:        "length",
	Area:          "area",
	Inertia:       "inertia",
	Mass:          "mass",
	Force:         "force",
	Moment:        "moment",
	Pressure:      "pressure",
	Density:       "density",
	Acceleration:  "acceleration",
	MassPerLength: "mass per length",
	MassPerArea:   "mass per area",
	Stiffness:     "stiffness",
}

func (d Dimension) String() string {
	if s, ok := dimensionNames[d]; ok {
		return s
	}
	return fmt.Sprintf("Dimension(%d)", int(d))
}

type unit struct {
	dim    Dimension
	factor float64 // multiply to get SI
}

// SI factors
const (
	inch   = 0.0254
	foot   = 0.3048
	pound  = 0.45359237
	lbf    = 4.4482216152605
	slug   = 14.59390294
	gravit = 9.80665
)

var table = map[string]unit{
	"m":  {Length, 1},
	"cm": {Length, 1e-2},
	"mm": {Length, 1e-3},
	"in": {Length, inch},
	"ft": {Length, foot},

	"m^2":  {Area, 1},
	"cm^2": {Area, 1e-4},
	"mm^2": {Area, 1e-6},
	"in^2": {Area, inch * inch},
	"ft^2": {Area, foot * foot},

	"m^4":  {Inertia, 1},
	"cm^4": {Inertia, 1e-8},
	"mm^4": {Inertia, 1e-12},
	"in^4": {Inertia, inch * inch * inch * inch},

	"kg":   {Mass, 1},
	"g":    {Mass, 1e-3},
	"t":    {Mass, 1e3},
	"lb":   {Mass, pound},
	"slug": {Mass, slug},

	"N":   {Force, 1},
	"kN":  {Force, 1e3},
	"MN":  {Force, 1e6},
	"lbf": {Force, lbf},
	"kip": {Force, 1e3 * lbf},

	"N*m":    {Moment, 1},
	"kN*m":   {Moment, 1e3},
	"N*mm":   {Moment, 1e-3},
	"lbf*in": {Moment, lbf * inch},
	"lbf*ft": {Moment, lbf * foot},

	"Pa":       {Pressure, 1},
	"kPa":      {Pressure, 1e3},
	"MPa":      {Pressure, 1e6},
	"GPa":      {Pressure, 1e9},
	"N/m^2":    {Pressure, 1},
	"N/mm^2":   {Pressure, 1e6},
	"psi":      {Pressure, lbf / (inch * inch)},
	"ksi":      {Pressure, 1e3 * lbf / (inch * inch)},
	"lbf/in^2": {Pressure, lbf / (inch * inch)},
	"lbf/ft^2": {Pressure, lbf / (foot * foot)},

	"kg/m^3":    {Density, 1},
	"g/cm^3":    {Density, 1e3},
	"t/mm^3":    {Density, 1e12},
	"lb/in^3":   {Density, pound / (inch * inch * inch)},
	"lb/ft^3":   {Density, pound / (foot * foot * foot)},
	"slug/ft^3": {Density, slug / (foot * foot * foot)},

	"m/s^2":  {Acceleration, 1},
	"mm/s^2": {Acceleration, 1e-3},
	"in/s^2": {Acceleration, inch},
	"ft/s^2": {Acceleration, foot},
	"g0":     {Acceleration, gravit},

	"kg/m":    {MassPerLength, 1},
	"lb/in":   {MassPerLength, pound / inch},
	"lb/ft":   {MassPerLength, pound / foot},
	"t/mm":    {MassPerLength, 1e3 / 1e-3},
	"kg/m^2":  {MassPerArea, 1},
	"t/mm^2":  {MassPerArea, 1e3 / 1e-6},
	"lb/in^2": {MassPerArea, pound / (inch * inch)},
	"lb/ft^2": {MassPerArea, pound / (foot * foot)},

	"N/m":    {Stiffness, 1},
	"kN/m":   {Stiffness, 1e3},
	"N/mm":   {Stiffness, 1e3},
	"lbf/in": {Stiffness, lbf / inch},
}

// System is the unit system a problem is expressed in. Each dimension maps
// to the unit values are converted into.
type System struct {
	Name  string
	Units map[Dimension]string
}

// SI is the metre-kilogram-second-newton system
var SI = System{Name: "SI", Units: map[Dimension]string{
	Length: "m", Area: "m^2", Inertia: "m^4", Mass: "kg", Force: "N", Moment: "N*m",
	Pressure: "Pa", Density: "kg/m^3", Acceleration: "m/s^2", MassPerLength: "kg/m",
	MassPerArea: "kg/m^2", Stiffness: "N/m",
}}

// MMTS is the millimetre-tonne-second-newton system common in structural work
var MMTS = System{Name: "mmts", Units: map[Dimension]string{
	Length: "mm", Area: "mm^2", Inertia: "mm^4", Mass: "t", Force: "N", Moment: "N*mm",
	Pressure: "MPa", Density: "t/mm^3", Acceleration: "mm/s^2", MassPerLength: "t/mm",
	MassPerArea: "t/mm^2", Stiffness: "N/mm",
}}

// US is the inch-pound system
var US = System{Name: "US", Units: map[Dimension]string{
	Length: "in", Area: "in^2", Inertia: "in^4", Mass: "lb", Force: "lbf", Moment: "lbf*in",
	Pressure: "psi", Density: "lb/in^3", Acceleration: "in/s^2", MassPerLength: "lb/in",
	MassPerArea: "lb/in^2", Stiffness: "lbf/in",
}}

// Lookup returns a predefined system by name (case-insensitive)
func Lookup(name string) (*System, error) {
	for _, s := range []System{SI, MMTS, US} {
		if strings.EqualFold(s.Name, name) {
			sys := s
			return &sys, nil
		}
	}
	return nil, fmt.Errorf("unknown unit system %q (options are SI, mmts, US)", name)
}

// Convert converts value given in unit into the system's unit for dim
func (s *System) Convert(value float64, from string, dim Dimension) (float64, error) {
	src, ok := table[from]
	if !ok {
		return 0, fmt.Errorf("unknown unit %q", from)
	}
	if src.dim != dim {
		return 0, fmt.Errorf("unit %q is a %s, expected %s", from, src.dim, dim)
	}
	to, ok := s.Units[dim]
	if !ok {
		return 0, fmt.Errorf("unit system %s has no %s unit", s.Name, dim)
	}
	dst := table[to]
	return value * src.factor / dst.factor, nil
}
