package openapi

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudikristanto/apiscan/extract"
	"github.com/rudikristanto/apiscan/schema"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeJava(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func fixtureAssembler(t *testing.T) *schema.Assembler {
	t.Helper()
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
	return schema.NewAssembler(discard(), schema.NewResolver(discard(), root))
}

func fixtureOps() []*extract.ApiOperation {
	return []*extract.ApiOperation{
		{
			ControllerClass: "OwnerController",
			MethodName:      "getOwner",
			HTTPMethod:      "GET",
			Path:            "/owners/{ownerId}",
			OperationID:     "getOwner",
			Tags:            []string{"Owner"},
			Summary:         "Finds one owner.",
			Parameters: []extract.Parameter{
				{Name: "ownerId", In: "path", Type: "int", Required: true},
			},
			Responses: map[string]*extract.Response{
				"200": {Description: "Successful operation", Content: map[string]extract.MediaType{
					"application/json": {SchemaType: "OwnerRecord"},
				}},
			},
		},
		{
			ControllerClass: "OwnerController",
			MethodName:      "createOwner",
			HTTPMethod:      "POST",
			Path:            "/owners",
			OperationID:     "createOwner",
			Tags:            []string{"Owner"},
			RequestBody: &extract.Body{Content: map[string]extract.MediaType{
				"application/json": {SchemaType: "OwnerRecord"},
			}},
			Responses: map[string]*extract.Response{
				"200": {Description: "Successful operation"},
			},
		},
	}
}

func TestBuildDocument(t *testing.T) {
	b := NewBuilder(discard(), "petclinic", "1.2.3", 0)
	doc, warnings := b.Build(context.Background(), fixtureOps(), fixtureAssembler(t))

	assert.Empty(t, warnings)
	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.Equal(t, "petclinic", doc.Info.Title)
	assert.Equal(t, "1.2.3", doc.Info.Version)

	item := doc.Paths.Value("/owners/{ownerId}")
	require.NotNil(t, item)
	get := item.Get
	require.NotNil(t, get)
	assert.Equal(t, "getOwner", get.OperationID)
	assert.Equal(t, "Finds one owner.", get.Summary)
	assert.Nil(t, get.Extensions)

	require.Len(t, get.Parameters, 1)
	param := get.Parameters[0].Value
	assert.Equal(t, "ownerId", param.Name)
	assert.Equal(t, "path", param.In)
	assert.True(t, param.Required)

	resp := get.Responses.Value("200")
	require.NotNil(t, resp)
	media := resp.Value.Content["application/json"]
	require.NotNil(t, media)
	assert.Equal(t, "#/components/schemas/OwnerRecord", media.Schema.Ref)

	post := doc.Paths.Value("/owners").Post
	require.NotNil(t, post)
	require.NotNil(t, post.RequestBody)
	assert.True(t, post.RequestBody.Value.Required)

	// The transitive closure backs the component map.
	require.Contains(t, doc.Components.Schemas, "OwnerRecord")
	require.Contains(t, doc.Components.Schemas, "PetRecord")
	owner := doc.Components.Schemas["OwnerRecord"].Value
	pets := owner.Properties["pets"]
	require.NotNil(t, pets)
	assert.Equal(t, "#/components/schemas/PetRecord", pets.Value.Items.Ref)
}

func TestBuildClosesReferenceGraph(t *testing.T) {
	// No Assemble call beforehand: Build alone must pull transitively
	// referenced schemas into the component map.
	b := NewBuilder(discard(), "t", "v", 0)
	doc, warnings := b.Build(context.Background(), fixtureOps()[:1], fixtureAssembler(t))

	assert.Empty(t, warnings)
	require.Contains(t, doc.Components.Schemas, "OwnerRecord")
	require.Contains(t, doc.Components.Schemas, "PetRecord")
}

func TestBuildMarksInferredOperations(t *testing.T) {
	ops := []*extract.ApiOperation{{
		HTTPMethod:  "GET",
		Path:        "/guessed",
		OperationID: "guessed",
		Inferred:    true,
		Responses:   map[string]*extract.Response{"200": {Description: "Successful operation"}},
	}}

	b := NewBuilder(discard(), "t", "v", 0)
	doc, _ := b.Build(context.Background(), ops, fixtureAssembler(t))

	get := doc.Paths.Value("/guessed").Get
	require.NotNil(t, get)
	assert.Equal(t, true, get.Extensions["x-apiscan-inferred"])
}

func TestBuildFoldsFormParams(t *testing.T) {
	ops := []*extract.ApiOperation{{
		HTTPMethod:  "POST",
		Path:        "/login",
		OperationID: "login",
		Parameters: []extract.Parameter{
			{Name: "user", In: "formData", Type: "String"},
			{Name: "pass", In: "formData", Type: "String"},
		},
		Responses: map[string]*extract.Response{"200": {Description: "Successful operation"}},
	}}

	b := NewBuilder(discard(), "t", "v", 0)
	doc, _ := b.Build(context.Background(), ops, fixtureAssembler(t))

	post := doc.Paths.Value("/login").Post
	require.NotNil(t, post)
	assert.Empty(t, post.Parameters)

	require.NotNil(t, post.RequestBody)
	media := post.RequestBody.Value.Content["application/x-www-form-urlencoded"]
	require.NotNil(t, media)
	assert.Contains(t, media.Schema.Value.Properties, "user")
	assert.Contains(t, media.Schema.Value.Properties, "pass")
}

func TestBuildCutoffTruncates(t *testing.T) {
	b := NewBuilder(discard(), "t", "v", time.Nanosecond)
	doc, warnings := b.Build(context.Background(), fixtureOps(), fixtureAssembler(t))

	require.NotEmpty(t, warnings)
	assert.Contains(t, warnings[0], "truncated")
	assert.Less(t, doc.Paths.Len(), 2)
}

func TestMarshalFormats(t *testing.T) {
	b := NewBuilder(discard(), "petclinic", "1.0", 0)
	doc, _ := b.Build(context.Background(), fixtureOps(), fixtureAssembler(t))

	jsonOut, err := MarshalJSON(doc)
	require.NoError(t, err)
	assert.Contains(t, string(jsonOut), `"openapi": "3.0.3"`)
	assert.Contains(t, string(jsonOut), "#/components/schemas/OwnerRecord")

	yamlOut, err := MarshalYAML(doc)
	require.NoError(t, err)
	assert.Contains(t, string(yamlOut), "openapi: 3.0.3")

	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, WriteFile(path, doc, "yaml"))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "title: petclinic")
}
