package schema

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rudikristanto/apiscan/javasrc"
	"github.com/rudikristanto/apiscan/javatype"
)

// DefaultClosureDepth bounds the rounds of deferred reference resolution.
const DefaultClosureDepth = 7

const maxInheritanceDepth = 10

// Source roots searched inside each module, generated trees first.
var sourceRoots = []string{
	filepath.Join("target", "generated-sources"),
	filepath.Join("build", "generated"),
	filepath.Join("src", "main", "java"),
	filepath.Join("src", "java"),
}

// Ordered package-substring priorities for tie-breaking a type found in more
// than one module: DTO/API-style beats generated, generated beats domain,
// domain beats persistence.
var packagePriorities = []string{"dto", "api", "generated", "openapi", "model", "domain", "entity", "persistence", "jpa"}

var moduleNameHints = []string{"model", "api", "dto", "entity", "service", "core"}

var ignoreFieldAnnotations = []string{"JsonIgnore", "Transient", "XmlTransient"}
var requiredFieldAnnotations = []string{"NotNull", "NotEmpty", "NotBlank"}
var lombokAccessorMarkers = []string{"Data", "Getter", "Value"}

// Resolver locates DTO sources anywhere under a (possibly multi-module)
// project tree and converts them into structural schemas. All state is
// scoped to one scan; create a new Resolver per scan and discard it after
// document emission.
type Resolver struct {
	logger *slog.Logger
	root   string

	modules   []string
	cache     map[string]*ResolvedSchema
	resolving map[string]bool
	fileCache map[string]string
}

func NewResolver(logger *slog.Logger, projectRoot string) *Resolver {
	return &Resolver{
		logger:    logger,
		root:      projectRoot,
		cache:     make(map[string]*ResolvedSchema),
		resolving: make(map[string]bool),
		fileCache: make(map[string]string),
	}
}

// CachedSchemaCount returns the number of distinct sanitized names resolved
// so far.
func (r *Resolver) CachedSchemaCount() int {
	return len(r.cache)
}

// ResolveSchema resolves a type name into a structural schema. It never
// fails: an unlocatable or unparseable type degrades to a placeholder, and
// results are memoized per sanitized name for the resolver's lifetime.
func (r *Resolver) ResolveSchema(typeName string) *ResolvedSchema {
	bare := javatype.Simple(javatype.Base(typeName))
	key := Sanitize(bare)

	if cached, ok := r.cache[key]; ok {
		return cached
	}

	// Reentrant resolution of an in-flight name short-circuits to a
	// reference; the outer call installs the full schema under the key.
	if r.resolving[key] {
		return NewReferenceSchema(key)
	}
	r.resolving[key] = true
	defer delete(r.resolving, key)

	schema := r.buildNamed(bare, map[string]bool{bare: true}, 0)
	if schema == nil {
		schema = NewPlaceholderSchema(key, fmt.Sprintf("Definition of %s is not available in the scanned sources", bare))
	}
	r.cache[key] = schema
	return schema
}

// AllResolvedSchemas expands the transitive reference closure of everything
// resolved so far: each round resolves the reference targets that have no
// cache entry yet, until a round adds nothing or maxDepth rounds have run.
func (r *Resolver) AllResolvedSchemas(maxDepth int) map[string]*ResolvedSchema {
	if maxDepth <= 0 {
		maxDepth = DefaultClosureDepth
	}
	for round := 0; round < maxDepth; round++ {
		missing := r.unresolvedRefs()
		if len(missing) == 0 {
			break
		}
		for _, name := range missing {
			r.ResolveSchema(name)
		}
	}

	out := make(map[string]*ResolvedSchema, len(r.cache))
	for name, s := range r.cache {
		out[name] = s
	}
	return out
}

func (r *Resolver) unresolvedRefs() []string {
	seen := map[string]bool{}
	var missing []string
	var walk func(s *ResolvedSchema)
	walk = func(s *ResolvedSchema) {
		if s == nil {
			return
		}
		if s.Kind == KindReference && s.Ref != "" {
			if _, ok := r.cache[s.Ref]; !ok && !seen[s.Ref] {
				seen[s.Ref] = true
				missing = append(missing, s.Ref)
			}
			return
		}
		walk(s.Items)
		if s.Properties != nil {
			for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
				walk(pair.Value)
			}
		}
	}
	for _, s := range r.cache {
		walk(s)
	}
	sort.Strings(missing)
	return missing
}

// buildNamed runs discovery for a bare type name and converts the found
// declaration. Returns nil when no definition is available.
func (r *Resolver) buildNamed(bare string, visited map[string]bool, depth int) *ResolvedSchema {
	path := r.findTypeFile(bare)
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("cannot read type source", "type", bare, "file", path, "error", err)
		return nil
	}
	file, err := javasrc.Parse(path, data)
	if err != nil {
		r.logger.Warn("cannot parse type source", "type", bare, "file", path, "error", err)
		return nil
	}
	decl := file.Find(bare)
	if decl == nil {
		return nil
	}
	return r.buildDecl(decl, visited, depth)
}

func (r *Resolver) buildDecl(decl *javasrc.TypeDecl, visited map[string]bool, depth int) *ResolvedSchema {
	if decl.Kind == javasrc.KindEnum {
		s := NewPrimitiveSchema("string", "")
		s.Name = decl.Name
		if len(decl.EnumConstants) > 0 {
			s.Description = "One of: " + strings.Join(decl.EnumConstants, ", ")
		}
		return s
	}

	s := NewObjectSchema(decl.Name)
	s.Description = decl.Doc

	// Superclass fields come first so own declarations overwrite them.
	for _, ext := range decl.Extends {
		superName := javatype.Simple(javatype.Base(ext))
		if javatype.IsPrimitive(superName) || javatype.IsPlatform(superName) {
			continue
		}
		if visited[superName] || depth >= maxInheritanceDepth {
			continue
		}
		visited[superName] = true
		if super := r.buildNamed(superName, visited, depth+1); super != nil {
			s.merge(super)
		}
	}

	lombok := decl.HasAnnotation(lombokAccessorMarkers...)
	for _, field := range decl.Fields {
		if !includeField(decl, field, lombok) {
			continue
		}
		name := field.Name
		if a, ok := field.Annotation("JsonProperty"); ok && a.Value() != "" {
			name = a.Value()
		}
		prop := r.fieldSchema(field.Type)
		if prop.Description == "" && field.Doc != "" && prop.Kind != KindReference {
			prop.Description = field.Doc
		}
		s.Properties.Set(name, prop)
		if field.HasAnnotation(requiredFieldAnnotations...) {
			s.setRequired(name)
		}
	}
	return s
}

func includeField(decl *javasrc.TypeDecl, field *javasrc.Field, lombok bool) bool {
	if field.HasModifier("static") {
		return false
	}
	if field.Name == "serialVersionUID" {
		return false
	}
	if strings.HasPrefix(field.Name, "DEFAULT_") {
		return false
	}
	if strings.Contains(strings.ToUpper(field.Name), "COLLATOR") {
		return false
	}
	if field.HasAnnotation(ignoreFieldAnnotations...) {
		return false
	}
	if field.HasModifier("public") || lombok {
		return true
	}
	return hasAccessor(decl, field.Name)
}

func hasAccessor(decl *javasrc.TypeDecl, fieldName string) bool {
	if fieldName == "" {
		return false
	}
	title := strings.ToUpper(fieldName[:1]) + fieldName[1:]
	return decl.Method("get"+title) != nil || decl.Method("is"+title) != nil
}

// fieldSchema maps a declared field type onto its structural schema.
// DTO-shaped types become references resolved through the cache, never
// inline expansions.
func (r *Resolver) fieldSchema(typeText string) *ResolvedSchema {
	if p, ok := javatype.MapPrimitive(typeText); ok {
		return NewPrimitiveSchema(p.Type, p.Format)
	}
	if javatype.IsCollection(typeText) {
		return NewArraySchema(r.fieldSchema(javatype.ElementType(typeText)))
	}
	if javatype.IsDtoShaped(typeText) {
		inner := javatype.Simple(javatype.Base(typeText))
		r.ResolveSchema(inner)
		return NewReferenceSchema(Sanitize(inner))
	}
	return &ResolvedSchema{
		Kind:        KindObject,
		Type:        "object",
		Description: fmt.Sprintf("Unmapped type %s", typeText),
	}
}

// findTypeFile locates <bare>.java across every module's source roots,
// tie-breaking multi-module matches by package priority.
func (r *Resolver) findTypeFile(bare string) string {
	if path, ok := r.fileCache[bare]; ok {
		return path
	}

	target := bare + ".java"
	var candidates []string
	for _, module := range r.moduleDirs() {
		candidates = append(candidates, findFilesNamed(module, target)...)
	}

	path := pickCandidate(candidates)
	r.fileCache[bare] = path
	return path
}

func pickCandidate(candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	for _, token := range packagePriorities {
		for _, c := range candidates {
			if strings.Contains(strings.ToLower(filepath.ToSlash(c)), token) {
				return c
			}
		}
	}
	return candidates[0]
}

// moduleDirs returns the project root plus everything around it that looks
// like a module: subdirectories always, siblings when the layout is
// multi-module.
func (r *Resolver) moduleDirs() []string {
	if r.modules != nil {
		return r.modules
	}

	dirs := []string{r.root}
	dirs = append(dirs, moduleCandidates(r.root)...)
	if isMultiModule(r.root) {
		dirs = append(dirs, moduleCandidates(filepath.Dir(r.root))...)
	}

	seen := map[string]bool{}
	var out []string
	for _, d := range dirs {
		if abs, err := filepath.Abs(d); err == nil {
			d = abs
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	r.modules = out
	return out
}

func moduleCandidates(parent string) []string {
	entries, err := os.ReadDir(parent)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		dir := filepath.Join(parent, e.Name())
		if looksLikeModule(dir, e.Name()) {
			out = append(out, dir)
		}
	}
	sort.Strings(out)
	return out
}

func looksLikeModule(dir, name string) bool {
	for _, descriptor := range []string{"pom.xml", "build.gradle", "build.gradle.kts"} {
		if _, err := os.Stat(filepath.Join(dir, descriptor)); err == nil {
			return true
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "src", "main", "java")); err == nil {
		return true
	}
	lower := strings.ToLower(name)
	for _, hint := range moduleNameHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}

// isMultiModule reports whether the root sits beside other module
// directories instead of containing them: no parent build descriptor plus at
// least two sibling directories carrying one.
func isMultiModule(root string) bool {
	parent := filepath.Dir(root)
	for _, descriptor := range []string{"pom.xml", "build.gradle", "build.gradle.kts"} {
		if _, err := os.Stat(filepath.Join(parent, descriptor)); err == nil {
			return false
		}
	}
	entries, err := os.ReadDir(parent)
	if err != nil {
		return false
	}
	withDescriptor := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		for _, descriptor := range []string{"pom.xml", "build.gradle", "build.gradle.kts"} {
			if _, err := os.Stat(filepath.Join(parent, e.Name(), descriptor)); err == nil {
				withDescriptor++
				break
			}
		}
	}
	return withDescriptor >= 2
}

// findFilesNamed searches a module's conventional source roots for a file,
// falling back to the module tree itself when no conventional root exists.
func findFilesNamed(module, target string) []string {
	var matches []string
	walked := false
	for _, rootRel := range sourceRoots {
		dir := filepath.Join(module, rootRel)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		walked = true
		matches = append(matches, walkForFile(dir, target)...)
	}
	if !walked {
		matches = walkForFile(module, target)
	}
	return matches
}

func walkForFile(dir, target string) []string {
	var matches []string
	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || name == "node_modules" {
				return fs.SkipDir
			}
			return nil
		}
		if d.Name() == target {
			matches = append(matches, path)
		}
		return nil
	})
	sort.Strings(matches)
	return matches
}
