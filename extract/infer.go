package extract

import (
	"strings"
	"unicode"

	"github.com/rudikristanto/apiscan/javatype"
)

// Verb prefixes tried longest-first against a method name. The tables are
// deliberately small and tuned; widening them silently would turn more
// guesses into wrong facts.
var verbPrefixes = []struct {
	prefix string
	verb   string
}{
	{"retrieve", "GET"},
	{"get", "GET"},
	{"list", "GET"},
	{"find", "GET"},
	{"post", "POST"},
	{"create", "POST"},
	{"add", "POST"},
	{"save", "POST"},
	{"put", "PUT"},
	{"update", "PUT"},
	{"modify", "PUT"},
	{"delete", "DELETE"},
	{"remove", "DELETE"},
	{"patch", "PATCH"},
}

// Domain nouns with a known resource path. Everything else falls back to
// kebab-cased method remainders.
var nounPaths = map[string]string{
	"owner":       "/owners",
	"owners":      "/owners",
	"pet":         "/pets",
	"pets":        "/pets",
	"visit":       "/visits",
	"visits":      "/visits",
	"vet":         "/vets",
	"vets":        "/vets",
	"user":        "/users",
	"users":       "/users",
	"customer":    "/customers",
	"order":       "/orders",
	"product":     "/products",
	"account":     "/accounts",
	"type":        "/types",
	"types":       "/types",
	"specialty":   "/specialties",
	"specialties": "/specialties",
}

// inferVerb guesses an HTTP verb from a method name prefix; GET when
// nothing matches.
func inferVerb(methodName string) (verb, remainder string) {
	lower := strings.ToLower(methodName)
	for _, entry := range verbPrefixes {
		if strings.HasPrefix(lower, entry.prefix) && len(methodName) > len(entry.prefix) {
			rest := methodName[len(entry.prefix):]
			// The prefix must end on a camelCase boundary.
			if unicode.IsUpper(rune(rest[0])) {
				return entry.verb, rest
			}
		}
		if lower == entry.prefix {
			return entry.verb, ""
		}
	}
	return "GET", methodName
}

// inferPath guesses a resource path from the method-name remainder: a known
// domain noun wins, otherwise the remainder is kebab-cased. `/{id}` is
// appended when any handler parameter is integer-typed.
func inferPath(remainder string, paramTypes []string) string {
	path := ""
	if remainder != "" {
		if noun, ok := nounPaths[strings.ToLower(remainder)]; ok {
			path = noun
		} else {
			path = "/" + kebabCase(remainder)
		}
	}
	if path == "" {
		path = "/"
	}
	for _, t := range paramTypes {
		if javatype.IsInteger(t) {
			path = NormalizePath(path + "/{id}")
			break
		}
	}
	return NormalizePath(path)
}

func kebabCase(name string) string {
	var sb strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				sb.WriteRune('-')
			}
			sb.WriteRune(unicode.ToLower(r))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
