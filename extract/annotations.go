package extract

import (
	"regexp"
	"strings"
)

var pathTemplateRegex = regexp.MustCompile(`\{([^/{}]+)\}`)

// TemplateVars returns the `{x}` template variable names of a path, in
// order of appearance.
func TemplateVars(path string) []string {
	var vars []string
	for _, m := range pathTemplateRegex.FindAllStringSubmatch(path, -1) {
		name := m[1]
		// Spring allows {name:regex} constraints in templates.
		if idx := strings.Index(name, ":"); idx >= 0 {
			name = name[:idx]
		}
		vars = append(vars, name)
	}
	return vars
}

// JoinPath joins a base path and a fragment into one absolute, normalized
// path.
func JoinPath(base, fragment string) string {
	return NormalizePath(NormalizePath(base) + NormalizePath(fragment))
}

// NormalizePath forces a leading slash, collapses duplicate slashes and
// strips the trailing slash from everything but the root path.
func NormalizePath(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// reconcilePathParams enforces the path-template invariant on an operation's
// parameter list: every `{x}` ends up with exactly one path parameter named
// x. A declared parameter of the same name is promoted to the path location,
// a missing one is synthesized, and path parameters matching no template
// variable are dropped.
func reconcilePathParams(path string, params []Parameter) []Parameter {
	vars := TemplateVars(path)
	inTemplate := map[string]bool{}
	for _, v := range vars {
		inTemplate[v] = true
	}

	var out []Parameter
	promoted := map[string]bool{}
	for _, p := range params {
		if inTemplate[p.Name] {
			if promoted[p.Name] {
				continue
			}
			promoted[p.Name] = true
			p.In = "path"
			p.Required = true
			out = append(out, p)
			continue
		}
		if p.In == "path" {
			// Orphaned path parameter, no matching template variable.
			continue
		}
		out = append(out, p)
	}

	for _, v := range vars {
		if !promoted[v] {
			out = append(out, Parameter{Name: v, In: "path", Type: "String", Required: true})
		}
	}
	return out
}
