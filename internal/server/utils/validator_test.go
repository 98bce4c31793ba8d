package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type queryParam struct {
	City string `json:"city" validate:"required,max=100,cityquery"`
}

type keyParam struct {
	City string `json:"city" validate:"required,max=100,citykey"`
}

func TestValidateCityQuery(t *testing.T) {
	cases := []struct {
		query string
		valid bool
	}{
		{"Prague", true},
		{"Prague,CZ", true},
		{"Saint Petersburg, RU", true},
		{"São Paulo", true},
		{"", false},
		{"   ", false},
		{",CZ", false},
		{"Pra\x00gue", false},
		{strings.Repeat("a", 101), false},
	}

	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			errs := ValidateStruct(queryParam{City: tc.query})
			if tc.valid {
				assert.Empty(t, errs)
			} else {
				assert.NotEmpty(t, errs)
			}
		})
	}
}

func TestValidateCityKey(t *testing.T) {
	assert.Empty(t, ValidateStruct(keyParam{City: "Prague,CZ"}))

	errs := ValidateStruct(keyParam{City: "Prague"})
	require.Len(t, errs, 1)
	assert.Equal(t, "city", errs[0].Field)
	assert.Equal(t, "citykey", errs[0].Tag)
	assert.Equal(t, "city must have the form name,COUNTRY", errs[0].Message)

	assert.NotEmpty(t, ValidateStruct(keyParam{City: "Prague,"}))
}

func TestJoinMessages(t *testing.T) {
	errs := ValidateStruct(queryParam{})
	assert.Equal(t, "city is required", JoinMessages(errs))
}
