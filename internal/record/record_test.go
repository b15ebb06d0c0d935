package record

import (
	"fmt"
	"strings"
	"testing"

	"github.com/alexiusacademia/gofea/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shade int

const (
	light shade = iota + 1
	dark
)

func parseShade(s string) (shade, error) {
	switch strings.ToLower(s) {
	case "light":
		return light, nil
	case "dark":
		return dark, nil
	}
	return 0, fmt.Errorf("unknown shade %q", s)
}

type sample struct {
	Kind      shade
	Modulus   float64
	Thickness float64
	Count     int
	Label     string
	Groups    []string
	Vector    []float64
	DOFs      []int
	Enabled   bool
}

var sampleSchema = []Field[sample]{
	Keyword("kind", parseShade, func(s *sample) *shade { return &s.Kind }),
	Float("modulus", units.Pressure, func(s *sample) *float64 { return &s.Modulus }),
	Float("thickness", units.Length, func(s *sample) *float64 { return &s.Thickness }),
	Int("count", func(s *sample) *int { return &s.Count }),
	String("label", func(s *sample) *string { return &s.Label }),
	Strings("groups", func(s *sample) *[]string { return &s.Groups }),
	Floats("vector", units.Length, func(s *sample) *[]float64 { return &s.Vector }),
	Ints("dofs", func(s *sample) *[]int { return &s.DOFs }),
	Bool("enabled", func(s *sample) *bool { return &s.Enabled }),
}

func TestParseAllFieldKinds(t *testing.T) {
	rec := sample{Kind: light, Label: "default"}
	err := Parse("s1", `{
		"kind": "Dark",
		"modulus": 7e10,
		"thickness": [2, "mm"],
		"count": 3,
		"groups": "skin",
		"vector": [[1, 2, 3], "cm"],
		"dofs": 123,
		"enabled": "yes",
		"unknownKey": {"ignored": true}
	}`, &rec, sampleSchema, &units.SI)
	require.NoError(t, err)

	assert.Equal(t, dark, rec.Kind)
	assert.Equal(t, 7e10, rec.Modulus)
	assert.InDelta(t, 0.002, rec.Thickness, 1e-15)
	assert.Equal(t, 3, rec.Count)
	assert.Equal(t, "default", rec.Label, "absent keys keep defaults")
	assert.Equal(t, []string{"skin"}, rec.Groups)
	assert.InDeltaSlice(t, []float64{0.01, 0.02, 0.03}, rec.Vector, 1e-15)
	assert.Equal(t, []int{123}, rec.DOFs)
	assert.True(t, rec.Enabled)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		value string
		us    *units.System
		field string
		want  string
	}{
		{"bad keyword", `{"kind": "plaid"}`, nil, "kind", "unknown shade"},
		{"fractional int", `{"count": 1.5}`, nil, "count", "expected an integer"},
		{"string for number", `{"modulus": "stiff"}`, nil, "modulus", "expected a number"},
		{"unit without system", `{"thickness": [2, "mm"]}`, nil, "thickness", "no unit system"},
		{"wrong dimension", `{"thickness": [2, "kg"]}`, &units.SI, "thickness", "is a mass"},
		{"bad bool", `{"enabled": "maybe"}`, nil, "enabled", "expected a boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec sample
			err := Parse("s1", tt.value, &rec, sampleSchema, tt.us)
			var rerr *Error
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, "s1", rerr.Tuple)
			assert.Equal(t, tt.field, rerr.Field)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestParseRejectsKeywordValues(t *testing.T) {
	var rec sample
	err := Parse("s1", "aluminum", &rec, sampleSchema, nil)
	assert.ErrorIs(t, err, ErrNotImplemented)

	err = Parse("s1", "{not json", &rec, sampleSchema, nil)
	assert.Error(t, err)
}

func TestRequiredField(t *testing.T) {
	schema := []Field[sample]{
		Keyword("kind", parseShade, func(s *sample) *shade { return &s.Kind }).Required(),
	}
	var rec sample
	err := Parse("s1", `{"label": "x"}`, &rec, schema, nil)
	assert.ErrorIs(t, err, ErrMissing)

	err = Parse("s1", `{"kind": null}`, &rec, schema, nil)
	assert.ErrorIs(t, err, ErrMissing)
}

func TestIsJSON(t *testing.T) {
	assert.True(t, IsJSON(`  {"a": 1}`))
	assert.False(t, IsJSON("Isotropic"))
	assert.False(t, IsJSON(`[1, 2]`))
}
