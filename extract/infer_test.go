package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferVerb(t *testing.T) {
	tests := []struct {
		method    string
		verb      string
		remainder string
	}{
		{"getOwner", "GET", "Owner"},
		{"retrieveAllPets", "GET", "AllPets"},
		{"listVisits", "GET", "Visits"},
		{"createOwner", "POST", "Owner"},
		{"saveVisit", "POST", "Visit"},
		{"updateOwner", "PUT", "Owner"},
		{"deletePet", "DELETE", "Pet"},
		{"patchOwner", "PATCH", "Owner"},
		{"delete", "DELETE", ""},
		// "getter" has the get prefix but no camelCase boundary.
		{"getterValue", "GET", "getterValue"},
		{"handleRequest", "GET", "handleRequest"},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			verb, remainder := inferVerb(tt.method)
			assert.Equal(t, tt.verb, verb)
			assert.Equal(t, tt.remainder, remainder)
		})
	}
}

func TestInferPath(t *testing.T) {
	assert.Equal(t, "/owners", inferPath("Owner", nil))
	assert.Equal(t, "/owners/{id}", inferPath("Owner", []string{"Integer"}))
	assert.Equal(t, "/pets", inferPath("Pets", []string{"String"}))
	assert.Equal(t, "/specialties", inferPath("Specialty", nil))
	assert.Equal(t, "/medical-history", inferPath("MedicalHistory", nil))
	assert.Equal(t, "/", inferPath("", nil))
	assert.Equal(t, "/{id}", inferPath("", []string{"long"}))
}

func TestKebabCase(t *testing.T) {
	assert.Equal(t, "medical-history", kebabCase("MedicalHistory"))
	assert.Equal(t, "owner", kebabCase("Owner"))
	assert.Equal(t, "visits", kebabCase("visits"))
}
