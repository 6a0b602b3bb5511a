package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudikristanto/apiscan/extract"
)

func TestSchemaForPrimitiveStaysInline(t *testing.T) {
	root := t.TempDir()
	r := NewResolver(discard(), root)
	a := NewAssembler(discard(), r)

	s := a.SchemaFor("Integer")
	assert.Equal(t, KindPrimitive, s.Kind)
	assert.Equal(t, "integer", s.Type)
	assert.Empty(t, a.Components())
	assert.Zero(t, r.CachedSchemaCount())
}

func TestSchemaForPlatformType(t *testing.T) {
	root := t.TempDir()
	a := NewAssembler(discard(), NewResolver(discard(), root))

	s := a.SchemaFor("HttpServletRequest")
	assert.Equal(t, KindObject, s.Kind)
	assert.Contains(t, s.Description, "Platform type")
	assert.Empty(t, a.Components())
}

func TestSchemaForDtoBecomesComponent(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/a/OwnerRecord.java", `
package a;
public class OwnerRecord {
	public String name;
	public java.util.List<PetRecord> pets;
}
`)
	writeJava(t, root, "src/main/java/a/PetRecord.java", `
package a;
public class PetRecord {
	public String name;
}
`)

	a := NewAssembler(discard(), NewResolver(discard(), root))

	s := a.SchemaFor("List<OwnerRecord>")
	require.Equal(t, KindArray, s.Kind)
	require.NotNil(t, s.Items)
	assert.Equal(t, KindReference, s.Items.Kind)
	assert.Equal(t, "OwnerRecord", s.Items.Ref)

	owner := a.Components()["OwnerRecord"]
	require.NotNil(t, owner)
	assert.Equal(t, KindObject, owner.Kind)
}

func TestFlattenClosesLaterReferences(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/a/OwnerRecord.java", `
package a;
public class OwnerRecord {
	public java.util.List<PetRecord> pets;
}
`)
	writeJava(t, root, "src/main/java/a/PetRecord.java", `
package a;
public class PetRecord {
	public String name;
}
`)

	a := NewAssembler(discard(), NewResolver(discard(), root))
	a.SchemaFor("OwnerRecord")

	components := a.Flatten(0)
	assert.Contains(t, components, "OwnerRecord")
	assert.Contains(t, components, "PetRecord")
}

func TestAssembleClosure(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/a/OwnerRecord.java", `
package a;
public class OwnerRecord {
	public String name;
	public java.util.List<PetRecord> pets;
}
`)
	writeJava(t, root, "src/main/java/a/PetRecord.java", `
package a;
public class PetRecord {
	public String name;
	public VisitRecord lastVisit;
}
`)
	writeJava(t, root, "src/main/java/a/VisitRecord.java", `
package a;
public class VisitRecord {
	public String description;
}
`)

	ops := []*extract.ApiOperation{
		{
			HTTPMethod: "GET",
			Path:       "/owners/{id}",
			Parameters: []extract.Parameter{{Name: "id", In: "path", Type: "int", Required: true}},
			Responses: map[string]*extract.Response{
				"200": {Content: map[string]extract.MediaType{
					"application/json": {SchemaType: "OwnerRecord"},
				}},
			},
		},
	}

	a := NewAssembler(discard(), NewResolver(discard(), root))
	components := a.Assemble(ops, 3)

	// The whole reference closure lands in the component map, not just the
	// types named by the operations.
	require.Len(t, components, 3)
	assert.Contains(t, components, "OwnerRecord")
	assert.Contains(t, components, "PetRecord")
	assert.Contains(t, components, "VisitRecord")
}

func TestAssembleMissingTypePlaceholder(t *testing.T) {
	root := t.TempDir()

	ops := []*extract.ApiOperation{
		{
			HTTPMethod:  "POST",
			Path:        "/ghosts",
			RequestBody: &extract.Body{Content: map[string]extract.MediaType{"application/json": {SchemaType: "GhostRecord"}}},
			Responses:   map[string]*extract.Response{"200": {}},
		},
	}

	a := NewAssembler(discard(), NewResolver(discard(), root))
	components := a.Assemble(ops, 3)

	ghost := components["GhostRecord"]
	require.NotNil(t, ghost)
	_, ok := ghost.Properties.Get(PlaceholderProperty)
	assert.True(t, ok)
}
