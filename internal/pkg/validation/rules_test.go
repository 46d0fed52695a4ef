package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Role       string `validate:"required,role"`
	BirthDate  string `validate:"required,isodate"`
	NationalID string `validate:"omitempty,cedula"`
}

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	require.NoError(t, RegisterRules(v))
	return v
}

func TestRulesAccept(t *testing.T) {
	v := newValidator(t)
	assert.NoError(t, v.Struct(sample{Role: "catequista", BirthDate: "2012-04-30", NationalID: "0912345678"}))
	assert.NoError(t, v.Struct(sample{Role: "admin", BirthDate: "2000-02-29"}))
}

func TestRulesReject(t *testing.T) {
	v := newValidator(t)

	cases := map[string]sample{
		"role":    {Role: "superuser", BirthDate: "2012-04-30"},
		"date":    {Role: "admin", BirthDate: "30/04/2012"},
		"cedula":  {Role: "admin", BirthDate: "2012-04-30", NationalID: "09 12"},
		"badDate": {Role: "admin", BirthDate: "2001-02-29"},
	}
	for name, in := range cases {
		err := v.Struct(in)
		assert.Error(t, err, name)
	}
}

func TestNotBlank(t *testing.T) {
	v := newValidator(t)

	type named struct {
		Name string `validate:"required,notblank"`
	}
	assert.NoError(t, v.Struct(named{Name: "Grupo A"}))
	assert.NoError(t, v.Struct(named{Name: "  Ana "}))
	for _, blank := range []string{"   ", "\t", " \n "} {
		assert.Error(t, v.Struct(named{Name: blank}), "%q", blank)
	}
}
