// Package profile picks the annotation vocabulary used by a scanned project.
// Detection reads build descriptors first and falls back to sampling source
// files; when neither reveals a known style the scan must not start at all.
package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rudikristanto/apiscan/javasrc"
)

// ErrNoAnnotationStyle is returned when a project exposes no recognizable
// routing annotation style; callers abort before processing any file.
var ErrNoAnnotationStyle = errors.New("no recognizable annotation style in project")

type Style string

const (
	StyleSpring Style = "spring"
	StyleJAXRS  Style = "jaxrs"
)

// Profile is the annotation vocabulary of one framework style.
type Profile struct {
	Style Style

	controllerMarkers []string
	classMapping      []string
	verbAnnotations   map[string]string
	genericMapping    string

	pathParams   []string
	queryParams  []string
	headerParams []string
	formParams   []string
	bodyParams   []string
}

func Spring() *Profile {
	return &Profile{
		Style:             StyleSpring,
		controllerMarkers: []string{"RestController", "Controller"},
		classMapping:      []string{"RequestMapping"},
		verbAnnotations: map[string]string{
			"GetMapping":    "GET",
			"PostMapping":   "POST",
			"PutMapping":    "PUT",
			"DeleteMapping": "DELETE",
			"PatchMapping":  "PATCH",
		},
		genericMapping: "RequestMapping",
		pathParams:     []string{"PathVariable"},
		queryParams:    []string{"RequestParam"},
		headerParams:   []string{"RequestHeader"},
		formParams:     []string{"ModelAttribute"},
		bodyParams:     []string{"RequestBody"},
	}
}

func JAXRS() *Profile {
	return &Profile{
		Style:             StyleJAXRS,
		controllerMarkers: []string{"Path"},
		classMapping:      []string{"Path"},
		verbAnnotations: map[string]string{
			"GET": "GET", "POST": "POST", "PUT": "PUT",
			"DELETE": "DELETE", "PATCH": "PATCH",
			"HEAD": "HEAD", "OPTIONS": "OPTIONS",
		},
		pathParams:   []string{"PathParam"},
		queryParams:  []string{"QueryParam"},
		headerParams: []string{"HeaderParam"},
		formParams:   []string{"FormParam"},
		bodyParams:   nil, // JAX-RS bodies are the unannotated entity parameter
	}
}

// ForName returns the profile for an explicitly configured framework name,
// bypassing detection. ok is false for an empty or unknown name.
func ForName(name string) (*Profile, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "spring":
		return Spring(), true
	case "jaxrs", "jax-rs":
		return JAXRS(), true
	}
	return nil, false
}

// IsController reports whether a class carries a controller marker.
func (p *Profile) IsController(t *javasrc.TypeDecl) bool {
	return t.HasAnnotation(p.controllerMarkers...)
}

// ClassBasePath returns the class-level path prefix, if any.
func (p *Profile) ClassBasePath(t *javasrc.TypeDecl) string {
	a, ok := t.Annotation(p.classMapping...)
	if !ok {
		return ""
	}
	return a.Value("value", "path")
}

// MethodMapping resolves a method's routing annotation into an HTTP verb and
// its declared path aliases. ok is false when the method carries no routing
// metadata.
func (p *Profile) MethodMapping(m *javasrc.Method) (verb string, paths []string, ok bool) {
	switch p.Style {
	case StyleJAXRS:
		for name, v := range p.verbAnnotations {
			if m.HasAnnotation(name) {
				verb = v
				ok = true
				break
			}
		}
		if !ok {
			return "", nil, false
		}
		if a, found := m.Annotation("Path"); found {
			paths = a.ValueList()
		}
		return verb, paths, true

	default: // Spring
		for name, v := range p.verbAnnotations {
			if a, found := m.Annotation(name); found {
				return v, a.ValueList("value", "path"), true
			}
		}
		if a, found := m.Annotation(p.genericMapping); found {
			verb = "GET"
			if methodAttr := a.Value("method"); methodAttr != "" {
				verb = verbFromRequestMethod(methodAttr)
			}
			return verb, a.ValueList("value", "path"), true
		}
		return "", nil, false
	}
}

// HasMapping reports whether a method carries any routing annotation.
func (p *Profile) HasMapping(m *javasrc.Method) bool {
	_, _, ok := p.MethodMapping(m)
	return ok
}

// ParamBinding classifies a parameter's binding annotation. Returns one of
// path, query, header, formData, body, or "" for an unannotated parameter.
func (p *Profile) ParamBinding(param *javasrc.Param) (location, boundName string, required bool, explicit bool) {
	if a, ok := param.Annotation(p.pathParams...); ok {
		return "path", a.Value("value", "name"), true, true
	}
	if a, ok := param.Annotation(p.queryParams...); ok {
		required = !strings.EqualFold(a.Value("required"), "false")
		return "query", a.Value("value", "name"), required, true
	}
	if a, ok := param.Annotation(p.headerParams...); ok {
		required = !strings.EqualFold(a.Value("required"), "false")
		return "header", a.Value("value", "name"), required, true
	}
	if a, ok := param.Annotation(p.formParams...); ok {
		return "formData", a.Value("value", "name"), false, true
	}
	if len(p.bodyParams) > 0 {
		if _, ok := param.Annotation(p.bodyParams...); ok {
			return "body", "", true, true
		}
	}
	return "", "", false, false
}

// MediaHints returns a mapping's declared consumes (or produces) media
// types, as written in the source.
func (p *Profile) MediaHints(m *javasrc.Method, consumes bool) []string {
	attr := "produces"
	jaxrsName := "Produces"
	if consumes {
		attr = "consumes"
		jaxrsName = "Consumes"
	}

	if p.Style == StyleJAXRS {
		if a, ok := m.Annotation(jaxrsName); ok {
			return a.ValueList()
		}
		return nil
	}

	for name := range p.verbAnnotations {
		if a, ok := m.Annotation(name); ok {
			return a.ValueList(attr)
		}
	}
	if a, ok := m.Annotation(p.genericMapping); ok {
		return a.ValueList(attr)
	}
	return nil
}

// verbFromRequestMethod maps "RequestMethod.GET" (or a bare "GET") onto an
// HTTP verb.
func verbFromRequestMethod(attr string) string {
	attr = strings.ToUpper(attr[strings.LastIndex(attr, ".")+1:])
	switch attr {
	case "GET", "POST", "PUT", "DELETE", "PATCH", "HEAD", "OPTIONS":
		return attr
	}
	return "GET"
}

var springMarkers = [][]byte{
	[]byte("spring-boot-starter-web"),
	[]byte("spring-webmvc"),
	[]byte("org.springframework"),
}

var jaxrsMarkers = [][]byte{
	[]byte("javax.ws.rs"),
	[]byte("jakarta.ws.rs"),
	[]byte("jersey"),
	[]byte("resteasy"),
}

var buildDescriptors = map[string]bool{
	"pom.xml":          true,
	"build.gradle":     true,
	"build.gradle.kts": true,
}

// Detect sniffs the project's build descriptors, then a sample of its
// sources, for a known annotation style. ErrNoAnnotationStyle means the
// precondition for any useful scan is absent.
func Detect(root string) (*Profile, error) {
	if p := detectFromDescriptors(root); p != nil {
		return p, nil
	}
	if p := detectFromSources(root); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w under %s", ErrNoAnnotationStyle, root)
}

func detectFromDescriptors(root string) *Profile {
	var detected *Profile
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if depth(root, path) > 3 || strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !buildDescriptors[d.Name()] {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		if containsAny(data, jaxrsMarkers) && !containsAny(data, springMarkers) {
			detected = JAXRS()
			return fs.SkipAll
		}
		if containsAny(data, springMarkers) {
			detected = Spring()
			return fs.SkipAll
		}
		return nil
	})
	return detected
}

// detectFromSources samples java files for controller annotations; useful
// when the build descriptor is absent or opaque.
func detectFromSources(root string) *Profile {
	const sampleLimit = 250
	seen := 0
	var detected *Profile
	filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".java") {
			return nil
		}
		seen++
		if seen > sampleLimit {
			return fs.SkipAll
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		switch {
		case bytes.Contains(data, []byte("@RestController")),
			bytes.Contains(data, []byte("@Controller")),
			bytes.Contains(data, []byte("@RequestMapping")):
			detected = Spring()
			return fs.SkipAll
		case bytes.Contains(data, []byte("@Path(")) &&
			(bytes.Contains(data, []byte("@GET")) || bytes.Contains(data, []byte("@POST"))):
			detected = JAXRS()
			return fs.SkipAll
		}
		return nil
	})
	return detected
}

func containsAny(data []byte, markers [][]byte) bool {
	for _, m := range markers {
		if bytes.Contains(data, m) {
			return true
		}
	}
	return false
}

func depth(root, path string) int {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return 0
	}
	return strings.Count(rel, string(filepath.Separator)) + 1
}
