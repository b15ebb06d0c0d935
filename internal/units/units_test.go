package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvert(t *testing.T) {
	tests := []struct {
		name string
		sys  System
		val  float64
		unit string
		dim  Dimension
		want float64
	}{
		{"GPa to Pa", SI, 70, "GPa", Pressure, 70e9},
		{"mm to m", SI, 250, "mm", Length, 0.25},
		{"psi to MPa", MMTS, 1e7, "psi", Pressure, 68947.5729},
		{"kg/m^3 to t/mm^3", MMTS, 2700, "kg/m^3", Density, 2.7e-9},
		{"kg/m to t/mm", MMTS, 1.5, "kg/m", MassPerLength, 1.5e-6},
		{"kg/m^2 to t/mm^2", MMTS, 2.7, "kg/m^2", MassPerArea, 2.7e-9},
		{"in to in", US, 3, "in", Length, 3},
		{"ft to in", US, 1, "ft", Length, 12},
		{"kip to lbf", US, 1, "kip", Force, 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.sys.Convert(tt.val, tt.unit, tt.dim)
			require.NoError(t, err)
			assert.InEpsilon(t, tt.want, got, 1e-6)
		})
	}
}

func TestConvertErrors(t *testing.T) {
	_, err := SI.Convert(1, "furlong", Length)
	assert.ErrorContains(t, err, "unknown unit")

	_, err = SI.Convert(1, "kg", Length)
	assert.ErrorContains(t, err, "is a mass")

	partial := System{Name: "partial", Units: map[Dimension]string{Length: "m"}}
	_, err = partial.Convert(1, "kg/m", MassPerLength)
	assert.ErrorContains(t, err, "no mass per length unit")
}

func TestLookup(t *testing.T) {
	s, err := Lookup("si")
	require.NoError(t, err)
	assert.Equal(t, "SI", s.Name)

	_, err = Lookup("cgs")
	assert.Error(t, err)
}
