package extract

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rudikristanto/apiscan/javasrc"
	"github.com/rudikristanto/apiscan/javatype"
	"github.com/rudikristanto/apiscan/profile"
)

const defaultMediaType = "application/json"

// Scanner recovers API operations from every Java source under a project
// root. State is scoped to one scan.
type Scanner struct {
	logger  *slog.Logger
	root    string
	profile *profile.Profile

	opIDs      *operationIDs
	interfaces map[string]*javasrc.TypeDecl
}

func NewScanner(logger *slog.Logger, projectRoot string, p *profile.Profile) *Scanner {
	return &Scanner{
		logger:     logger,
		root:       projectRoot,
		profile:    p,
		opIDs:      newOperationIDs(),
		interfaces: make(map[string]*javasrc.TypeDecl),
	}
}

type parsedFile struct {
	path string
	file *javasrc.File
}

// Scan walks the project tree twice: pass one harvests routing-annotated
// interfaces by simple name, pass two resolves controllers against them.
// Parse failures are recorded and skipped, never fatal.
func (s *Scanner) Scan() *ScanResult {
	result := &ScanResult{}

	var parsed []parsedFile
	filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if strings.HasPrefix(name, ".") || name == "node_modules" {
				return fs.SkipDir
			}
			if name == "test" && filepath.Base(filepath.Dir(path)) == "src" {
				return fs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), ".java") {
			return nil
		}
		result.FilesScanned++

		data, err := os.ReadFile(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			return nil
		}
		file, err := javasrc.Parse(path, data)
		if err != nil {
			s.logger.Warn("cannot parse file", "file", path, "error", err)
			result.Errors = append(result.Errors, err.Error())
			return nil
		}
		parsed = append(parsed, parsedFile{path: path, file: file})
		return nil
	})

	// Pass 1: interface harvesting. Controllers in this style often
	// implement an externally-declared interface carrying the metadata.
	for _, pf := range parsed {
		s.harvestInterfaces(pf.file.Types)
	}

	// Pass 2: controller resolution.
	for _, pf := range parsed {
		for _, decl := range pf.file.Types {
			s.scanType(decl, pf.file, result)
		}
	}
	return result
}

func (s *Scanner) harvestInterfaces(decls []*javasrc.TypeDecl) {
	for _, decl := range decls {
		if decl.Kind == javasrc.KindInterface && s.hasAnnotatedMethod(decl) {
			if _, exists := s.interfaces[decl.Name]; !exists {
				s.interfaces[decl.Name] = decl
			}
		}
		s.harvestInterfaces(decl.Nested)
	}
}

func (s *Scanner) hasAnnotatedMethod(decl *javasrc.TypeDecl) bool {
	for _, m := range decl.Methods {
		if s.profile.HasMapping(m) {
			return true
		}
	}
	return false
}

func (s *Scanner) scanType(decl *javasrc.TypeDecl, file *javasrc.File, result *ScanResult) {
	switch {
	case decl.Kind == javasrc.KindInterface && s.profile.IsController(decl):
		s.logger.Debug("scanning controller", "name", decl.Name, "kind", decl.Kind.String())
		s.extractMethods(decl, decl, s.profile.ClassBasePath(decl), result)

	case decl.Kind == javasrc.KindClass && s.profile.IsController(decl):
		s.logger.Debug("scanning controller", "name", decl.Name, "kind", decl.Kind.String())
		base := s.profile.ClassBasePath(decl)
		covered := s.extractMethods(decl, decl, base, result)
		s.resolveInterfaces(decl, file, base, covered, result)
	}

	for _, nested := range decl.Nested {
		s.scanType(nested, file, result)
	}
}

// resolveInterfaces works through a controller's declared interfaces:
// pass-1 table first, then the file's own declarations, then name-based
// inference as a last resort.
func (s *Scanner) resolveInterfaces(decl *javasrc.TypeDecl, file *javasrc.File, base string, covered map[string]bool, result *ScanResult) {
	for _, impl := range decl.Implements {
		simple := javatype.Simple(javatype.Base(impl))

		iface := s.interfaces[simple]
		if iface == nil {
			if local := file.Find(simple); local != nil && local.Kind == javasrc.KindInterface {
				iface = local
			}
		}

		if iface != nil {
			ifaceBase := base
			if ifaceBase == "" {
				ifaceBase = s.profile.ClassBasePath(iface)
			}
			for _, m := range iface.Methods {
				if covered[m.Name] {
					continue
				}
				if ops := s.extractMethod(decl, iface, m, ifaceBase, result); len(ops) > 0 {
					covered[m.Name] = true
				}
			}
			continue
		}

		// Last resort: guess routing for override-marked methods. Never
		// overrides an annotation-derived operation.
		for _, m := range decl.Methods {
			if !m.IsOverride() || m.Constructor || covered[m.Name] {
				continue
			}
			s.inferMethod(decl, m, base, result)
			covered[m.Name] = true
		}
	}
}

// extractMethods extracts every annotated method of a declaration, returning
// the set of method names that produced operations.
func (s *Scanner) extractMethods(controller, holder *javasrc.TypeDecl, base string, result *ScanResult) map[string]bool {
	covered := make(map[string]bool)
	for _, m := range holder.Methods {
		if m.Constructor {
			continue
		}
		if ops := s.extractMethod(controller, holder, m, base, result); len(ops) > 0 {
			covered[m.Name] = true
		}
	}
	return covered
}

// extractMethod turns one routing-annotated method into operations, one per
// declared path alias.
func (s *Scanner) extractMethod(controller, holder *javasrc.TypeDecl, m *javasrc.Method, base string, result *ScanResult) []*ApiOperation {
	verb, aliases, ok := s.profile.MethodMapping(m)
	if !ok {
		return nil
	}
	if len(aliases) == 0 {
		aliases = []string{""}
	}

	var ops []*ApiOperation
	for _, alias := range aliases {
		op := s.buildOperation(controller, holder, m, verb, JoinPath(base, alias), false)
		ops = append(ops, op)
		result.Operations = append(result.Operations, op)
	}
	return ops
}

func (s *Scanner) inferMethod(controller *javasrc.TypeDecl, m *javasrc.Method, base string, result *ScanResult) {
	verb, remainder := inferVerb(m.Name)
	var paramTypes []string
	for _, p := range m.Params {
		paramTypes = append(paramTypes, p.Type)
	}
	path := JoinPath(base, inferPath(remainder, paramTypes))

	op := s.buildOperation(controller, controller, m, verb, path, true)
	result.Operations = append(result.Operations, op)
	s.logger.Debug("inferred operation", "controller", controller.Name, "method", m.Name, "verb", verb, "path", path)
}

func (s *Scanner) buildOperation(controller, holder *javasrc.TypeDecl, m *javasrc.Method, verb, path string, inferred bool) *ApiOperation {
	op := &ApiOperation{
		ControllerClass: controller.Name,
		MethodName:      m.Name,
		HTTPMethod:      verb,
		Path:            path,
		OperationID:     s.opIDs.claim(m.Name, verb, path),
		Responses:       map[string]*Response{},
		Tags:            []string{controllerTag(controller.Name)},
		Summary:         firstSentence(m.Doc),
		Description:     m.Doc,
		Deprecated:      m.HasAnnotation("Deprecated") || holder.HasAnnotation("Deprecated"),
		Inferred:        inferred,
	}

	s.classifyParameters(op, m, verb)
	op.Parameters = reconcilePathParams(op.Path, op.Parameters)
	s.mapResponse(op, m, verb)
	return op
}

// classifyParameters applies the binding priority: explicit annotations
// first, then the DTO-shape heuristic for implicit bodies, then primitives
// as optional query parameters.
func (s *Scanner) classifyParameters(op *ApiOperation, m *javasrc.Method, verb string) {
	consumes := s.mediaTypes(m, true)
	for _, param := range m.Params {
		location, boundName, required, explicit := s.profile.ParamBinding(&param)
		name := boundName
		if name == "" {
			name = param.Name
		}

		if explicit {
			if location == "body" {
				if IsMutating(verb) {
					op.RequestBody = bodyOf(param.Type, consumes)
				}
				continue
			}
			op.Parameters = append(op.Parameters, Parameter{
				Name:     name,
				In:       location,
				Type:     param.Type,
				Required: required,
			})
			continue
		}

		switch {
		case javatype.IsPlatform(param.Type):
			// Framework plumbing, carries no API surface.
		case javatype.IsPrimitive(param.Type):
			op.Parameters = append(op.Parameters, Parameter{
				Name: name,
				In:   "query",
				Type: param.Type,
			})
		case javatype.IsDtoShaped(param.Type) && IsMutating(verb):
			// Implicit body on mutating methods.
			if op.RequestBody == nil {
				op.RequestBody = bodyOf(param.Type, consumes)
			}
		case javatype.IsDtoShaped(param.Type):
			op.Parameters = append(op.Parameters, Parameter{
				Name: name,
				In:   "query",
				Type: param.Type,
			})
		}
	}
}

func (s *Scanner) mapResponse(op *ApiOperation, m *javasrc.Method, verb string) {
	if javatype.IsVoid(m.ReturnType) || m.ReturnType == "" {
		op.Responses["200"] = &Response{Description: "Successful operation"}
		return
	}
	effective := javatype.UnwrapResponse(m.ReturnType)
	content := map[string]MediaType{}
	for _, mt := range s.mediaTypes(m, false) {
		content[mt] = MediaType{SchemaType: effective}
	}
	op.Responses["200"] = &Response{Description: "Successful operation", Content: content}
}

// mediaTypes returns the declared consumes/produces media types of a
// mapping, defaulting to JSON.
func (s *Scanner) mediaTypes(m *javasrc.Method, consumes bool) []string {
	hints := s.profile.MediaHints(m, consumes)
	var out []string
	for _, h := range hints {
		if strings.Contains(h, "/") {
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return []string{defaultMediaType}
	}
	return out
}

func bodyOf(typeName string, mediaTypes []string) *Body {
	content := map[string]MediaType{}
	for _, mt := range mediaTypes {
		content[mt] = MediaType{SchemaType: typeName}
	}
	return &Body{Content: content}
}

func controllerTag(className string) string {
	for _, suffix := range []string{"Controller", "RestController", "Resource", "Api"} {
		if trimmed := strings.TrimSuffix(className, suffix); trimmed != className && trimmed != "" {
			return trimmed
		}
	}
	return className
}

func firstSentence(doc string) string {
	if doc == "" {
		return ""
	}
	if idx := strings.IndexAny(doc, ".!?"); idx >= 0 {
		return strings.TrimSpace(doc[:idx+1])
	}
	return doc
}
