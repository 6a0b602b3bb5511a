// Package extract recovers HTTP API operations from annotated Java sources:
// a two-pass walk resolving controllers, their externally-declared
// interfaces, and a last-resort verb/path inference for override methods
// with no locatable routing metadata.
package extract

import (
	"fmt"
	"strings"
)

// ApiOperation is one recovered HTTP method + path + handler mapping. A
// handler declaring several path aliases yields one operation per alias,
// sharing method identity but not path or operation id.
type ApiOperation struct {
	ControllerClass string
	MethodName      string
	HTTPMethod      string
	Path            string
	OperationID     string
	Parameters      []Parameter
	RequestBody     *Body
	Responses       map[string]*Response
	Tags            []string
	Summary         string
	Description     string
	Deprecated      bool

	// Inferred marks operations produced by name-based guessing rather
	// than annotation metadata, so consumers can separate fact from guess.
	Inferred bool
}

type Parameter struct {
	Name        string
	In          string // path, query, header, formData
	Type        string
	Required    bool
	Description string
}

type Body struct {
	Description string
	Content     map[string]MediaType
}

type Response struct {
	Description string
	Content     map[string]MediaType
}

// MediaType carries the textual type reference resolved later by the schema
// resolver.
type MediaType struct {
	SchemaType string
}

// ScanResult is the outcome of one project scan. Per-file parse failures
// land in Errors and never abort the scan.
type ScanResult struct {
	Operations   []*ApiOperation
	FilesScanned int
	Errors       []string
}

// operationIDs hands out scan-unique operation ids. Disambiguation tries the
// bare id, then a verb suffix, then a path suffix, then a counter; the first
// unused candidate wins.
type operationIDs struct {
	used map[string]bool
}

func newOperationIDs() *operationIDs {
	return &operationIDs{used: make(map[string]bool)}
}

func (o *operationIDs) claim(base, verb, path string) string {
	candidates := []string{
		base,
		base + "_" + strings.ToUpper(verb),
		base + "_" + pathSuffix(path),
	}
	for _, c := range candidates {
		if c != "" && !o.used[c] {
			o.used[c] = true
			return c
		}
	}
	for n := 2; ; n++ {
		c := fmt.Sprintf("%s_%d", base, n)
		if !o.used[c] {
			o.used[c] = true
			return c
		}
	}
}

// pathSuffix flattens a path into an identifier-safe suffix.
func pathSuffix(path string) string {
	var sb strings.Builder
	for _, r := range path {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	out := strings.Trim(sb.String(), "_")
	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	return out
}

var mutatingMethods = map[string]bool{"POST": true, "PUT": true, "PATCH": true, "DELETE": true}

// IsMutating reports whether a verb conventionally carries a request body.
func IsMutating(verb string) bool {
	return mutatingMethods[verb]
}
