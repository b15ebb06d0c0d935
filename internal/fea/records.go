package fea

import (
	"github.com/alexiusacademia/gofea/internal/record"
	"github.com/alexiusacademia/gofea/internal/units"
	"gonum.org/v1/gonum/spatial/r3"
)

// Material is a constitutive description referenced by properties
type Material struct {
	Name string
	ID   int
	Type MaterialType

	YoungModulus           float64
	ShearModulus           float64
	PoissonRatio           float64
	Density                float64
	ThermalExpCoeff        float64
	ThermalExpCoeffLateral float64
	TemperatureRef         float64
	DampingCoeff           float64
	YieldAllow             float64
	TensionAllow           float64
	TensionAllowLateral    float64
	CompressAllow          float64
	CompressAllowLateral   float64
	ShearAllow             float64
	AllowType              int
	YoungModulusLateral    float64
	ShearModulusTrans1Z    float64
	ShearModulusTrans2Z    float64
	Kappa                  float64
	SpecificHeat           float64
	K                      []float64
}

var materialSchema = []record.Field[Material]{
	record.Keyword("materialType", ParseMaterialType, func(m *Material) *MaterialType { return &m.Type }),
	record.Float("youngModulus", units.Pressure, func(m *Material) *float64 { return &m.YoungModulus }),
	record.Float("shearModulus", units.Pressure, func(m *Material) *float64 { return &m.ShearModulus }),
	record.Float("poissonRatio", units.None, func(m *Material) *float64 { return &m.PoissonRatio }),
	record.Float("density", units.Density, func(m *Material) *float64 { return &m.Density }),
	record.Float("thermalExpCoeff", units.None, func(m *Material) *float64 { return &m.ThermalExpCoeff }),
	record.Float("thermalExpCoeffLateral", units.None, func(m *Material) *float64 { return &m.ThermalExpCoeffLateral }),
	record.Float("temperatureRef", units.None, func(m *Material) *float64 { return &m.TemperatureRef }),
	record.Float("dampingCoeff", units.None, func(m *Material) *float64 { return &m.DampingCoeff }),
	record.Float("yieldAllow", units.Pressure, func(m *Material) *float64 { return &m.YieldAllow }),
	record.Float("tensionAllow", units.Pressure, func(m *Material) *float64 { return &m.TensionAllow }),
	record.Float("tensionAllowLateral", units.Pressure, func(m *Material) *float64 { return &m.TensionAllowLateral }),
	record.Float("compressAllow", units.Pressure, func(m *Material) *float64 { return &m.CompressAllow }),
	record.Float("compressAllowLateral", units.Pressure, func(m *Material) *float64 { return &m.CompressAllowLateral }),
	record.Float("shearAllow", units.Pressure, func(m *Material) *float64 { return &m.ShearAllow }),
	record.Int("allowType", func(m *Material) *int { return &m.AllowType }),
	record.Float("youngModulusLateral", units.Pressure, func(m *Material) *float64 { return &m.YoungModulusLateral }),
	record.Float("shearModulusTrans1Z", units.Pressure, func(m *Material) *float64 { return &m.ShearModulusTrans1Z }),
	record.Float("shearModulusTrans2Z", units.Pressure, func(m *Material) *float64 { return &m.ShearModulusTrans2Z }),
	record.Float("kappa", units.None, func(m *Material) *float64 { return &m.Kappa }),
	record.Float("specificHeat", units.None, func(m *Material) *float64 { return &m.SpecificHeat }),
	record.Floats("K", units.None, func(m *Material) *[]float64 { return &m.K }),
}

// Property describes the section of the elements in the capsGroup of the same name
type Property struct {
	Name string
	ID   int
	Type PropertyType

	Material           string
	MaterialID         int
	BendingMaterial    string
	BendingMaterialID  int
	ShearMaterial      string
	ShearMaterialID    int
	MembraneMaterial   string
	MembraneMaterialID int

	CrossSecArea           float64
	TorsionalConst         float64
	TorsionalStressReCoeff float64
	MassPerLength          float64
	ZAxisInertia           float64
	YAxisInertia           float64
	CrossProductInertia    float64
	CrossSecType           string
	CrossSecDimension      []float64
	OrientationVec         []float64

	MembraneThickness   float64
	BendingInertiaRatio float64
	ShearMembraneRatio  float64
	MassPerArea         float64
	ZOffsetRel          float64

	CompositeMaterial           []string
	CompositeMaterialID         []int
	CompositeThickness          []float64
	CompositeOrientation        []float64
	SymmetricLaminate           bool
	CompositeFailureTheory      string
	CompositeShearBondAllowable float64

	Mass        float64
	MassOffset  []float64
	MassInertia []float64

	// GroupIndex is the capsGroup index the property binds to, Unset if none
	GroupIndex   int
	ElementCount int
}

var propertySchema = []record.Field[Property]{
	record.Keyword("propertyType", ParsePropertyType, func(p *Property) *PropertyType { return &p.Type }).Required(),
	record.String("material", func(p *Property) *string { return &p.Material }),
	record.String("bendingMaterial", func(p *Property) *string { return &p.BendingMaterial }),
	record.String("shearMaterial", func(p *Property) *string { return &p.ShearMaterial }),
	record.String("membraneMaterial", func(p *Property) *string { return &p.MembraneMaterial }),
	record.Float("crossSecArea", units.Area, func(p *Property) *float64 { return &p.CrossSecArea }),
	record.Float("torsionalConst", units.Inertia, func(p *Property) *float64 { return &p.TorsionalConst }),
	record.Float("torsionalStressReCoeff", units.Length, func(p *Property) *float64 { return &p.TorsionalStressReCoeff }),
	record.Float("massPerLength", units.MassPerLength, func(p *Property) *float64 { return &p.MassPerLength }),
	record.Float("zAxisInertia", units.Inertia, func(p *Property) *float64 { return &p.ZAxisInertia }),
	record.Float("yAxisInertia", units.Inertia, func(p *Property) *float64 { return &p.YAxisInertia }),
	record.Float("crossProductInertia", units.Inertia, func(p *Property) *float64 { return &p.CrossProductInertia }),
	record.String("crossSecType", func(p *Property) *string { return &p.CrossSecType }),
	record.Floats("crossSecDimension", units.Length, func(p *Property) *[]float64 { return &p.CrossSecDimension }),
	record.Floats("orientationVec", units.None, func(p *Property) *[]float64 { return &p.OrientationVec }),
	record.Float("membraneThickness", units.Length, func(p *Property) *float64 { return &p.MembraneThickness }),
	record.Float("bendingInertiaRatio", units.None, func(p *Property) *float64 { return &p.BendingInertiaRatio }),
	record.Float("shearMembraneRatio", units.None, func(p *Property) *float64 { return &p.ShearMembraneRatio }),
	record.Float("massPerArea", units.MassPerArea, func(p *Property) *float64 { return &p.MassPerArea }),
	record.Float("zOffsetRel", units.None, func(p *Property) *float64 { return &p.ZOffsetRel }),
	record.Strings("compositeMaterial", func(p *Property) *[]string { return &p.CompositeMaterial }),
	record.Floats("compositeThickness", units.Length, func(p *Property) *[]float64 { return &p.CompositeThickness }),
	record.Floats("compositeOrientation", units.None, func(p *Property) *[]float64 { return &p.CompositeOrientation }),
	record.Bool("symmetricLaminate", func(p *Property) *bool { return &p.SymmetricLaminate }),
	record.String("compositeFailureTheory", func(p *Property) *string { return &p.CompositeFailureTheory }),
	record.Float("compositeShearBondAllowable", units.Pressure, func(p *Property) *float64 { return &p.CompositeShearBondAllowable }),
	record.Float("mass", units.Mass, func(p *Property) *float64 { return &p.Mass }),
	record.Floats("massOffset", units.Length, func(p *Property) *[]float64 { return &p.MassOffset }),
	record.Floats("massInertia", units.None, func(p *Property) *[]float64 { return &p.MassInertia }),
}

// Constraint fixes degrees of freedom on a set of grids
type Constraint struct {
	Name             string
	ID               int
	Type             ConstraintType
	DOF              int
	GridDisplacement float64
	GroupName        []string
	GridIDs          []int
}

var constraintSchema = []record.Field[Constraint]{
	record.Keyword("constraintType", ParseConstraintType, func(c *Constraint) *ConstraintType { return &c.Type }),
	record.Int("dofConstraint", func(c *Constraint) *int { return &c.DOF }),
	record.Float("gridDisplacement", units.Length, func(c *Constraint) *float64 { return &c.GridDisplacement }),
	record.Strings("groupName", func(c *Constraint) *[]string { return &c.GroupName }),
}

// Support is a constraint used for free-body (inertia relief) analyses
type Support struct {
	Name      string
	ID        int
	DOF       int
	GroupName []string
	GridIDs   []int
}

var supportSchema = []record.Field[Support]{
	record.Int("dofSupport", func(s *Support) *int { return &s.DOF }),
	record.Strings("groupName", func(s *Support) *[]string { return &s.GroupName }),
}

// Connection is one synthesized connection element. Two-node connections use
// Connectivity; interpolating rigid elements tie Connectivity[0] to Masters.
type Connection struct {
	Name         string
	ConnectionID int
	ElementID    int
	Type         ConnectionType
	Connectivity [2]int

	Masters         []int
	MasterWeighting []float64
	MasterComponent []int

	DOFDependent   int
	ComponentStart int
	ComponentEnd   int
	StiffnessConst float64
	DampingConst   float64
	StressCoeff    float64
	Mass           float64
}

// connectionSpec is the parsed connect tuple the elements are synthesized from
type connectionSpec struct {
	Type             ConnectionType
	DOFDependent     int
	ComponentStart   int
	ComponentEnd     int
	StiffnessConst   float64
	DampingConst     float64
	StressCoeff      float64
	Mass             float64
	GroupName        []string
	Weighting        float64
	Glue             bool
	GlueNumMaster    int
	GlueSearchRadius float64
}

var connectionSchema = []record.Field[connectionSpec]{
	record.Keyword("connectionType", ParseConnectionType, func(c *connectionSpec) *ConnectionType { return &c.Type }).Required(),
	record.Int("dofDependent", func(c *connectionSpec) *int { return &c.DOFDependent }),
	record.Int("componentNumberStart", func(c *connectionSpec) *int { return &c.ComponentStart }),
	record.Int("componentNumberEnd", func(c *connectionSpec) *int { return &c.ComponentEnd }),
	record.Float("stiffnessConst", units.Stiffness, func(c *connectionSpec) *float64 { return &c.StiffnessConst }),
	record.Float("dampingConst", units.None, func(c *connectionSpec) *float64 { return &c.DampingConst }),
	record.Float("stressCoeff", units.None, func(c *connectionSpec) *float64 { return &c.StressCoeff }),
	record.Float("mass", units.Mass, func(c *connectionSpec) *float64 { return &c.Mass }),
	record.Strings("groupName", func(c *connectionSpec) *[]string { return &c.GroupName }),
	record.Float("weighting", units.None, func(c *connectionSpec) *float64 { return &c.Weighting }),
	record.Bool("glue", func(c *connectionSpec) *bool { return &c.Glue }),
	record.Int("glueNumMaster", func(c *connectionSpec) *int { return &c.GlueNumMaster }),
	record.Float("glueSearchRadius", units.Length, func(c *connectionSpec) *float64 { return &c.GlueSearchRadius }),
}

// Load is a force, moment, pressure, thermal or body load
type Load struct {
	Name      string
	ID        int
	Type      LoadType
	GroupName []string

	GridIDs    []int
	ElementIDs []int

	ForceScaleFactor        float64
	DirectionVector         []float64
	MomentScaleFactor       float64
	GravityAcceleration     float64
	PressureForce           float64
	PressureDistributeForce []float64
	AngularVelScaleFactor   float64
	AngularAccScaleFactor   float64
	CoordinateSystem        string
	CoordSystemID           int
	Temperature             float64
	TemperatureDefault      float64

	// PressureMultiDistributeForce holds per-node pressures for each element
	// of a PressureExternal load, aligned with ElementIDs
	PressureMultiDistributeForce [][]float64
}

var loadSchema = []record.Field[Load]{
	record.Keyword("loadType", ParseLoadType, func(l *Load) *LoadType { return &l.Type }).Required(),
	record.Strings("groupName", func(l *Load) *[]string { return &l.GroupName }),
	record.Float("forceScaleFactor", units.Force, func(l *Load) *float64 { return &l.ForceScaleFactor }),
	record.Floats("directionVector", units.None, func(l *Load) *[]float64 { return &l.DirectionVector }),
	record.Float("momentScaleFactor", units.Moment, func(l *Load) *float64 { return &l.MomentScaleFactor }),
	record.Float("gravityAcceleration", units.Acceleration, func(l *Load) *float64 { return &l.GravityAcceleration }),
	record.Float("pressureForce", units.Pressure, func(l *Load) *float64 { return &l.PressureForce }),
	record.Floats("pressureDistributeForce", units.Pressure, func(l *Load) *[]float64 { return &l.PressureDistributeForce }),
	record.Float("angularVelScaleFactor", units.None, func(l *Load) *float64 { return &l.AngularVelScaleFactor }),
	record.Float("angularAccScaleFactor", units.None, func(l *Load) *float64 { return &l.AngularAccScaleFactor }),
	record.String("coordinateSystem", func(l *Load) *string { return &l.CoordinateSystem }),
	record.Float("temperature", units.None, func(l *Load) *float64 { return &l.Temperature }),
	record.Float("temperatureDefault", units.None, func(l *Load) *float64 { return &l.TemperatureDefault }),
}

// Analysis is one solution case
type Analysis struct {
	Name string
	ID   int
	Type AnalysisType

	Loads               []string
	LoadIDs             []int
	Constraints         []string
	ConstraintIDs       []int
	Supports            []string
	SupportIDs          []int
	DesignConstraints   []string
	DesignConstraintIDs []int
	Responses           []string
	ResponseIDs         []int

	ExtractionMethod       string
	FrequencyRange         []float64
	NumEstEigenvalue       int
	NumDesiredEigenvalue   int
	EigenNormalization     string
	GridNormalization      int
	ComponentNormalization int
	LanczosMode            int
	LanczosType            string

	MachNumber      []float64
	DynamicPressure float64
	Density         float64
	AeroSymmetryXY  string
	AeroSymmetryXZ  string
}

var analysisSchema = []record.Field[Analysis]{
	record.Keyword("analysisType", ParseAnalysisType, func(a *Analysis) *AnalysisType { return &a.Type }),
	record.Strings("analysisLoad", func(a *Analysis) *[]string { return &a.Loads }),
	record.Strings("analysisConstraint", func(a *Analysis) *[]string { return &a.Constraints }),
	record.Strings("analysisSupport", func(a *Analysis) *[]string { return &a.Supports }),
	record.Strings("analysisDesignConstraint", func(a *Analysis) *[]string { return &a.DesignConstraints }),
	record.Strings("analysisResponse", func(a *Analysis) *[]string { return &a.Responses }),
	record.String("extractionMethod", func(a *Analysis) *string { return &a.ExtractionMethod }),
	record.Floats("frequencyRange", units.None, func(a *Analysis) *[]float64 { return &a.FrequencyRange }),
	record.Int("numEstEigenvalue", func(a *Analysis) *int { return &a.NumEstEigenvalue }),
	record.Int("numDesiredEigenvalue", func(a *Analysis) *int { return &a.NumDesiredEigenvalue }),
	record.String("eigenNormalization", func(a *Analysis) *string { return &a.EigenNormalization }),
	record.Int("gridNormalization", func(a *Analysis) *int { return &a.GridNormalization }),
	record.Int("componentNormalization", func(a *Analysis) *int { return &a.ComponentNormalization }),
	record.Int("lanczosMode", func(a *Analysis) *int { return &a.LanczosMode }),
	record.String("lanczosType", func(a *Analysis) *string { return &a.LanczosType }),
	record.Floats("machNumber", units.None, func(a *Analysis) *[]float64 { return &a.MachNumber }),
	record.Float("dynamicPressure", units.Pressure, func(a *Analysis) *float64 { return &a.DynamicPressure }),
	record.Float("density", units.Density, func(a *Analysis) *float64 { return &a.Density }),
	record.String("aeroSymmetryXY", func(a *Analysis) *string { return &a.AeroSymmetryXY }),
	record.String("aeroSymmetryXZ", func(a *Analysis) *string { return &a.AeroSymmetryXZ }),
}

func defaultAnalysis(name string, id int) Analysis {
	return Analysis{
		Name:               name,
		ID:                 id,
		Type:               Static,
		ExtractionMethod:   "Lanczos",
		EigenNormalization: "MASS",
		LanczosMode:        2,
	}
}

// CoordSystem is a rectangular frame declared by a coordinate-system attribute
type CoordSystem struct {
	Name   string
	ID     int
	Type   CoordSystemType
	Origin r3.Vec
	Axes   [3]r3.Vec
}

// AeroReference holds the reference geometry of aeroelastic analyses
type AeroReference struct {
	CoordSystem   string
	CoordSystemID int
	RefChord      float64
	RefSpan       float64
	RefArea       float64
	SymmetryXZ    string
	SymmetryXY    string
}

var aeroReferenceSchema = []record.Field[AeroReference]{
	record.String("coordSystem", func(a *AeroReference) *string { return &a.CoordSystem }),
	record.Float("refChord", units.Length, func(a *AeroReference) *float64 { return &a.RefChord }),
	record.Float("refSpan", units.Length, func(a *AeroReference) *float64 { return &a.RefSpan }),
	record.Float("refArea", units.Area, func(a *AeroReference) *float64 { return &a.RefArea }),
	record.String("symmetryXZ", func(a *AeroReference) *string { return &a.SymmetryXZ }),
	record.String("symmetryXY", func(a *AeroReference) *string { return &a.SymmetryXY }),
}
