package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/", "/"},
		{"owners", "/owners"},
		{"/owners/", "/owners"},
		{"//owners//{id}/", "/owners/{id}"},
		{"  /owners ", "/owners"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.in), "input %q", tt.in)
	}
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "/api/owners/{id}", JoinPath("/api/owners", "/{id}"))
	assert.Equal(t, "/api/owners", JoinPath("/api/owners/", ""))
	assert.Equal(t, "/owners", JoinPath("", "owners"))
	assert.Equal(t, "/api/owners", JoinPath("api", "owners/"))
}

func TestTemplateVars(t *testing.T) {
	assert.Nil(t, TemplateVars("/owners"))
	assert.Equal(t, []string{"ownerId", "petId"}, TemplateVars("/owners/{ownerId}/pets/{petId}"))
	assert.Equal(t, []string{"id"}, TemplateVars("/owners/{id:[0-9]+}"))
}

func TestReconcilePathParams(t *testing.T) {
	t.Run("promotes declared query parameter", func(t *testing.T) {
		params := reconcilePathParams("/owners/{ownerId}", []Parameter{
			{Name: "ownerId", In: "query", Type: "Integer"},
			{Name: "page", In: "query", Type: "int"},
		})
		assert.Equal(t, []Parameter{
			{Name: "ownerId", In: "path", Type: "Integer", Required: true},
			{Name: "page", In: "query", Type: "int"},
		}, params)
	})

	t.Run("synthesizes missing path parameter", func(t *testing.T) {
		params := reconcilePathParams("/owners/{ownerId}", nil)
		assert.Equal(t, []Parameter{
			{Name: "ownerId", In: "path", Type: "String", Required: true},
		}, params)
	})

	t.Run("drops orphaned path parameter", func(t *testing.T) {
		params := reconcilePathParams("/owners", []Parameter{
			{Name: "petId", In: "path", Type: "int", Required: true},
		})
		assert.Empty(t, params)
	})

	t.Run("collapses duplicate declarations", func(t *testing.T) {
		params := reconcilePathParams("/owners/{id}", []Parameter{
			{Name: "id", In: "path", Type: "int", Required: true},
			{Name: "id", In: "query", Type: "int"},
		})
		assert.Len(t, params, 1)
		assert.Equal(t, "path", params[0].In)
	})
}
