package extract

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudikristanto/apiscan/profile"
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

func scanProject(t *testing.T, root string) *ScanResult {
	t.Helper()
	return NewScanner(discard(), root, profile.Spring()).Scan()
}

func opByID(t *testing.T, result *ScanResult, id string) *ApiOperation {
	t.Helper()
	for _, op := range result.Operations {
		if op.OperationID == id {
			return op
		}
	}
	t.Fatalf("no operation %q, have %d operations", id, len(result.Operations))
	return nil
}

func TestScanWithoutAnnotationsYieldsNothing(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/a/Service.java", `
package a;
public class Service {
	public Owner findOwner(int id) { return null; }
}
`)
	writeJava(t, root, "src/main/java/a/Owner.java", `
package a;
public class Owner { private String name; }
`)

	result := scanProject(t, root)
	assert.Equal(t, 2, result.FilesScanned)
	assert.Empty(t, result.Operations)
	assert.Empty(t, result.Errors)
}

func TestScanSkipsTestSources(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/test/java/a/OwnerControllerTest.java", `
package a;
@RestController
public class OwnerControllerTest {
	@GetMapping("/nope")
	public String f() { return null; }
}
`)

	result := scanProject(t, root)
	assert.Zero(t, result.FilesScanned)
	assert.Empty(t, result.Operations)
}

func TestScanController(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/a/OwnerController.java", `
package a;

@RestController
@RequestMapping("/api/owners")
public class OwnerController {

	/** Finds one owner. Loads lazily. */
	@GetMapping("/{ownerId}")
	public ResponseEntity<OwnerDto> getOwner(Integer ownerId) {
		return null;
	}

	@PostMapping
	public OwnerDto createOwner(OwnerDto owner) { return null; }

	@DeleteMapping("/{ownerId}")
	public void deleteOwner(@PathVariable("ownerId") int ownerId) {}
}
`)

	result := scanProject(t, root)
	require.Len(t, result.Operations, 3)
	assert.Empty(t, result.Errors)

	get := opByID(t, result, "getOwner")
	assert.Equal(t, "GET", get.HTTPMethod)
	assert.Equal(t, "/api/owners/{ownerId}", get.Path)
	assert.Equal(t, []string{"Owner"}, get.Tags)
	assert.Equal(t, "Finds one owner.", get.Summary)
	assert.False(t, get.Inferred)

	// Unannotated ownerId matches the template variable and is promoted.
	require.Len(t, get.Parameters, 1)
	assert.Equal(t, Parameter{Name: "ownerId", In: "path", Type: "Integer", Required: true}, get.Parameters[0])

	// ResponseEntity wrapper is peeled off the response type.
	resp := get.Responses["200"]
	require.NotNil(t, resp)
	assert.Equal(t, "OwnerDto", resp.Content["application/json"].SchemaType)

	// DTO parameter on a mutating method becomes the implicit body.
	create := opByID(t, result, "createOwner")
	require.NotNil(t, create.RequestBody)
	assert.Equal(t, "OwnerDto", create.RequestBody.Content["application/json"].SchemaType)
	assert.Empty(t, create.Parameters)

	// void return maps to a content-less 200.
	del := opByID(t, result, "deleteOwner")
	require.NotNil(t, del.Responses["200"])
	assert.Empty(t, del.Responses["200"].Content)
}

func TestScanPathAliases(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/a/PetController.java", `
package a;

@RestController
public class PetController {
	@GetMapping({"/pets", "/animals"})
	public List<PetDto> listPets() { return null; }
}
`)

	result := scanProject(t, root)
	require.Len(t, result.Operations, 2)
	assert.Equal(t, "/pets", result.Operations[0].Path)
	assert.Equal(t, "/animals", result.Operations[1].Path)
	assert.NotEqual(t, result.Operations[0].OperationID, result.Operations[1].OperationID)
	assert.Equal(t, "listPets", result.Operations[0].MethodName)
	assert.Equal(t, "listPets", result.Operations[1].MethodName)
}

func TestScanOperationIDCollisionAcrossControllers(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/a/A.java", `
package a;
@RestController
public class AController {
	@GetMapping("/as")
	public String list() { return null; }
}
`)
	writeJava(t, root, "src/main/java/a/B.java", `
package a;
@RestController
public class BController {
	@GetMapping("/bs")
	public String list() { return null; }
}
`)

	result := scanProject(t, root)
	require.Len(t, result.Operations, 2)
	ids := map[string]bool{}
	for _, op := range result.Operations {
		assert.False(t, ids[op.OperationID], "duplicate id %q", op.OperationID)
		ids[op.OperationID] = true
	}
}

func TestScanInterfaceBackedController(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/api/VisitApi.java", `
package api;

public interface VisitApi {
	@GetMapping("/visits")
	List<VisitDto> listVisits();
}
`)
	writeJava(t, root, "src/main/java/web/VisitController.java", `
package web;

@RestController
public class VisitController implements VisitApi {
	@Override
	public List<VisitDto> listVisits() { return null; }
}
`)

	result := scanProject(t, root)
	require.Len(t, result.Operations, 1)

	op := result.Operations[0]
	assert.Equal(t, "GET", op.HTTPMethod)
	assert.Equal(t, "/visits", op.Path)
	assert.Equal(t, "VisitController", op.ControllerClass)
	assert.False(t, op.Inferred)
}

func TestScanAnnotatedInterfaceStandsAlone(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/api/VetApi.java", `
package api;

@RestController
@RequestMapping("/vets")
public interface VetApi {
	@GetMapping
	List<VetDto> listVets();
}
`)

	result := scanProject(t, root)
	require.Len(t, result.Operations, 1)
	assert.Equal(t, "/vets", result.Operations[0].Path)
}

func TestScanInferenceFallback(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/web/OwnerController.java", `
package web;

@RestController
@RequestMapping("/api")
public class OwnerController implements GeneratedOwnerApi {

	@Override
	public OwnerDto getOwner(Integer ownerId) { return null; }

	@Override
	public OwnerDto createOwner(OwnerDto owner) { return null; }

	public OwnerDto helper(OwnerDto owner) { return null; }
}
`)

	result := scanProject(t, root)
	require.Len(t, result.Operations, 2, "only override methods are inferred")

	get := opByID(t, result, "getOwner")
	assert.True(t, get.Inferred)
	assert.Equal(t, "GET", get.HTTPMethod)
	assert.Equal(t, "/api/owners/{id}", get.Path)
	// The declared integer lands as a query parameter; the synthesized {id}
	// template variable gets its own path parameter.
	require.Len(t, get.Parameters, 2)
	assert.Equal(t, Parameter{Name: "ownerId", In: "query", Type: "Integer"}, get.Parameters[0])
	assert.Equal(t, Parameter{Name: "id", In: "path", Type: "String", Required: true}, get.Parameters[1])

	create := opByID(t, result, "createOwner")
	assert.True(t, create.Inferred)
	assert.Equal(t, "POST", create.HTTPMethod)
	assert.Equal(t, "/api/owners", create.Path)
	require.NotNil(t, create.RequestBody)
}

func TestScanRecordsParseErrors(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/a/Broken.java", `package a; class Broken { void f( }`)
	writeJava(t, root, "src/main/java/a/OkController.java", `
package a;
@RestController
public class OkController {
	@GetMapping("/ok")
	public String ok() { return null; }
}
`)

	result := scanProject(t, root)
	assert.Equal(t, 2, result.FilesScanned)
	assert.Len(t, result.Errors, 1)
	require.Len(t, result.Operations, 1)
}

func TestScanJAXRSFormParams(t *testing.T) {
	root := t.TempDir()
	writeJava(t, root, "src/main/java/a/AuthResource.java", `
package a;

@Path("/auth")
public class AuthResource {
	@POST
	@Path("/login")
	public void login(@FormParam("user") String user, @FormParam("pass") String pass) {}
}
`)

	result := NewScanner(discard(), root, profile.JAXRS()).Scan()
	require.Len(t, result.Operations, 1)

	op := result.Operations[0]
	assert.Equal(t, "POST", op.HTTPMethod)
	assert.Equal(t, "/auth/login", op.Path)
	require.Len(t, op.Parameters, 2)
	assert.Equal(t, "formData", op.Parameters[0].In)
	assert.Equal(t, "user", op.Parameters[0].Name)
	assert.Equal(t, "formData", op.Parameters[1].In)
	assert.Nil(t, op.RequestBody)
}

func TestControllerTag(t *testing.T) {
	assert.Equal(t, "Owner", controllerTag("OwnerController"))
	assert.Equal(t, "Pet", controllerTag("PetResource"))
	assert.Equal(t, "Visit", controllerTag("VisitApi"))
	assert.Equal(t, "Standalone", controllerTag("Standalone"))
}

func TestFirstSentence(t *testing.T) {
	assert.Equal(t, "Finds one owner.", firstSentence("Finds one owner. Loads lazily."))
	assert.Equal(t, "No terminator here", firstSentence("No terminator here"))
	assert.Equal(t, "", firstSentence(""))
}
