package fea

import (
	"github.com/alexiusacademia/gofea/internal/record"
	"github.com/alexiusacademia/gofea/internal/units"
)

// DesignVariable is an optimization variable acting on materials, properties
// or the elements of a capsGroup. A variable listing independent variables is
// dependent on them.
type DesignVariable struct {
	Name      string
	ID        int
	GroupName []string

	MaterialIDs []int
	PropertyIDs []int
	ElementIDs  []int

	InitialValue  float64
	LowerBound    float64
	UpperBound    float64
	MaxDelta      float64
	DiscreteValue []float64

	IndependentVariable       []string
	IndependentVariableID     []int
	IndependentVariableWeight []float64
	VariableWeight            []float64

	FieldName string
}

// Dependent reports whether the variable is linked to independent variables
func (d *DesignVariable) Dependent() bool {
	return len(d.IndependentVariable) > 0
}

var designVariableSchema = []record.Field[DesignVariable]{
	record.Strings("groupName", func(d *DesignVariable) *[]string { return &d.GroupName }),
	record.Float("initialValue", units.None, func(d *DesignVariable) *float64 { return &d.InitialValue }),
	record.Float("lowerBound", units.None, func(d *DesignVariable) *float64 { return &d.LowerBound }),
	record.Float("upperBound", units.None, func(d *DesignVariable) *float64 { return &d.UpperBound }),
	record.Float("maxDelta", units.None, func(d *DesignVariable) *float64 { return &d.MaxDelta }),
	record.Floats("discreteValue", units.None, func(d *DesignVariable) *[]float64 { return &d.DiscreteValue }),
	record.Strings("independentVariable", func(d *DesignVariable) *[]string { return &d.IndependentVariable }),
	record.Floats("independentVariableWeight", units.None, func(d *DesignVariable) *[]float64 { return &d.IndependentVariableWeight }),
	record.Floats("variableWeight", units.None, func(d *DesignVariable) *[]float64 { return &d.VariableWeight }),
	record.String("fieldName", func(d *DesignVariable) *string { return &d.FieldName }),
}

// DesignVariableRelation ties design variables to a field of materials,
// properties or elements
type DesignVariableRelation struct {
	Name           string
	ID             int
	ComponentType  ComponentType
	ComponentNames []string
	ComponentIDs   []int
	FieldName      string
	FieldPosition  int
	ConstantCoeff  float64
	LinearCoeff    []float64
	VariableNames  []string
	VariableIDs    []int
}

var designVariableRelationSchema = []record.Field[DesignVariableRelation]{
	record.Keyword("componentType", ParseComponentType, func(r *DesignVariableRelation) *ComponentType { return &r.ComponentType }).Required(),
	record.Strings("componentName", func(r *DesignVariableRelation) *[]string { return &r.ComponentNames }).Required(),
	record.String("fieldName", func(r *DesignVariableRelation) *string { return &r.FieldName }),
	record.Int("fieldPosition", func(r *DesignVariableRelation) *int { return &r.FieldPosition }),
	record.Float("constantCoeff", units.None, func(r *DesignVariableRelation) *float64 { return &r.ConstantCoeff }),
	record.Floats("linearCoeff", units.None, func(r *DesignVariableRelation) *[]float64 { return &r.LinearCoeff }),
	record.Strings("variableName", func(r *DesignVariableRelation) *[]string { return &r.VariableNames }),
}

// DesignConstraint bounds a response of the elements of some properties
type DesignConstraint struct {
	Name          string
	ID            int
	GroupName     []string
	PropertyIDs   []int
	ResponseType  string
	LowerBound    float64
	UpperBound    float64
	FieldName     string
	FieldPosition int
}

var designConstraintSchema = []record.Field[DesignConstraint]{
	record.Strings("groupName", func(d *DesignConstraint) *[]string { return &d.GroupName }),
	record.String("responseType", func(d *DesignConstraint) *string { return &d.ResponseType }),
	record.Float("lowerBound", units.None, func(d *DesignConstraint) *float64 { return &d.LowerBound }),
	record.Float("upperBound", units.None, func(d *DesignConstraint) *float64 { return &d.UpperBound }),
	record.String("fieldName", func(d *DesignConstraint) *string { return &d.FieldName }),
	record.Int("fieldPosition", func(d *DesignConstraint) *int { return &d.FieldPosition }),
}

// DesignResponse is a response measured on the grids of a capsResponse attribute
type DesignResponse struct {
	Name         string
	ID           int
	ResponseType string
	Component    int
	Attribute    string
	GridIDs      []int
	LowerBound   float64
	UpperBound   float64
}

var designResponseSchema = []record.Field[DesignResponse]{
	record.String("responseType", func(d *DesignResponse) *string { return &d.ResponseType }).Required(),
	record.Int("component", func(d *DesignResponse) *int { return &d.Component }),
	record.String("attribute", func(d *DesignResponse) *string { return &d.Attribute }),
	record.Float("lowerBound", units.None, func(d *DesignResponse) *float64 { return &d.LowerBound }),
	record.Float("upperBound", units.None, func(d *DesignResponse) *float64 { return &d.UpperBound }),
}

// DesignEquation is a named user equation
type DesignEquation struct {
	Name     string
	ID       int
	Equation []string
}

// DesignEquationResponse evaluates an equation over constants, variables and
// other responses
type DesignEquationResponse struct {
	Name                string
	ID                  int
	Equation            string
	EquationID          int
	Constants           []string
	ConstantIDs         []int
	Variables           []string
	VariableIDs         []int
	Responses           []string
	ResponseIDs         []int
	EquationResponses   []string
	EquationResponseIDs []int
}

var designEquationResponseSchema = []record.Field[DesignEquationResponse]{
	record.String("equation", func(d *DesignEquationResponse) *string { return &d.Equation }).Required(),
	record.Strings("constant", func(d *DesignEquationResponse) *[]string { return &d.Constants }),
	record.Strings("variable", func(d *DesignEquationResponse) *[]string { return &d.Variables }),
	record.Strings("response", func(d *DesignEquationResponse) *[]string { return &d.Responses }),
	record.Strings("equationResponse", func(d *DesignEquationResponse) *[]string { return &d.EquationResponses }),
}

// DesignConstant is a named entry of the design table
type DesignConstant struct {
	Name  string
	Value float64
}

// OptParam is an optimizer parameter; exactly one of Numbers or Text is set
type OptParam struct {
	Name    string
	Numbers []float64
	Text    []string
}
