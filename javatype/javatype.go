// Package javatype classifies declared Java type text: primitives, platform
// types, collections, generic wrappers and DTO-shaped payload types.
package javatype

import "strings"

// Primitive maps a Java type to its structural schema type and format.
type Primitive struct {
	Type   string
	Format string
}

var primitives = map[string]Primitive{
	"boolean": {Type: "boolean"},
	"Boolean": {Type: "boolean"},
	"byte":    {Type: "integer", Format: "int32"},
	"Byte":    {Type: "integer", Format: "int32"},
	"short":   {Type: "integer", Format: "int32"},
	"Short":   {Type: "integer", Format: "int32"},
	"int":     {Type: "integer", Format: "int32"},
	"Integer": {Type: "integer", Format: "int32"},
	"long":    {Type: "integer", Format: "int64"},
	"Long":    {Type: "integer", Format: "int64"},
	"float":   {Type: "number", Format: "float"},
	"Float":   {Type: "number", Format: "float"},
	"double":  {Type: "number", Format: "double"},
	"Double":  {Type: "number", Format: "double"},

	"char":      {Type: "string"},
	"Character": {Type: "string"},
	"String":    {Type: "string"},

	"BigDecimal": {Type: "number"},
	"BigInteger": {Type: "integer"},
	"UUID":       {Type: "string", Format: "uuid"},

	"Date":           {Type: "string", Format: "date-time"},
	"LocalDate":      {Type: "string", Format: "date"},
	"LocalTime":      {Type: "string", Format: "time"},
	"LocalDateTime":  {Type: "string", Format: "date-time"},
	"OffsetDateTime": {Type: "string", Format: "date-time"},
	"ZonedDateTime":  {Type: "string", Format: "date-time"},
	"Instant":        {Type: "string", Format: "date-time"},
	"Timestamp":      {Type: "string", Format: "date-time"},
	"Calendar":       {Type: "string", Format: "date-time"},
}

var integerTypes = map[string]bool{
	"byte": true, "Byte": true, "short": true, "Short": true,
	"int": true, "Integer": true, "long": true, "Long": true,
	"BigInteger": true,
}

var collectionPrefixes = []string{"List", "Set", "Collection", "Iterable", "ArrayList", "LinkedList", "HashSet", "SortedSet", "TreeSet"}

// Wrappers whose first type argument is the effective payload type.
var genericWrappers = map[string]bool{
	"ResponseEntity":    true,
	"HttpEntity":        true,
	"Optional":          true,
	"CompletableFuture": true,
	"Callable":          true,
	"Mono":              true,
	"Flux":              true,
	"DeferredResult":    true,
}

var platformPrefixes = []string{"java.", "javax.", "jakarta.", "org.springframework.", "org.slf4j."}

// Platform simple names that never describe a payload of their own.
var platformSimple = map[string]bool{
	"Object": true, "Void": true, "void": true, "Class": true,
	"Map": true, "HashMap": true, "SortedMap": true, "TreeMap": true,
	"Locale": true, "Currency": true, "Number": true,
	"Pageable": true, "Sort": true, "Principal": true, "Authentication": true,
	"HttpServletRequest": true, "HttpServletResponse": true, "HttpSession": true,
	"BindingResult": true, "Errors": true, "UriComponentsBuilder": true,
	"RedirectAttributes": true, "MultipartFile": true, "InputStream": true,
	"OutputStream": true, "Reader": true, "Writer": true, "StringBuilder": true,
}

// Simple strips package qualification from a type name, leaving generic
// arguments and array suffixes intact.
func Simple(name string) string {
	base := name
	var tail string
	if idx := strings.IndexAny(base, "<["); idx >= 0 {
		tail = base[idx:]
		base = base[:idx]
	}
	if idx := strings.LastIndex(base, "."); idx >= 0 {
		base = base[idx+1:]
	}
	return base + tail
}

// Base strips generic arguments and array suffixes, leaving the bare
// (possibly qualified) name.
func Base(name string) string {
	name = strings.TrimSpace(name)
	if idx := strings.IndexAny(name, "<["); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}

// IsPrimitive reports whether the declared type maps directly onto a
// structural primitive.
func IsPrimitive(name string) bool {
	_, ok := primitives[Simple(Base(name))]
	return ok
}

// MapPrimitive returns the structural type of a primitive declared type.
// A byte array is the one array treated as a primitive: base64 text.
func MapPrimitive(name string) (Primitive, bool) {
	if Simple(strings.TrimSpace(name)) == "byte[]" {
		return Primitive{Type: "string", Format: "byte"}, true
	}
	p, ok := primitives[Simple(Base(name))]
	return p, ok
}

// IsInteger reports whether the declared type is integer-shaped.
func IsInteger(name string) bool {
	return integerTypes[Simple(Base(name))]
}

// IsVoid reports whether a return type produces no response payload.
func IsVoid(name string) bool {
	s := Simple(Base(name))
	return s == "void" || s == "Void"
}

// IsCollection reports whether the declared type is a recognized collection.
func IsCollection(name string) bool {
	simple := Simple(Base(name))
	for _, c := range collectionPrefixes {
		if simple == c {
			return true
		}
	}
	return strings.HasSuffix(name, "[]")
}

// ElementType returns the element type of a collection or array declaration.
// A raw collection or malformed declaration yields "Object".
func ElementType(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasSuffix(name, "[]") {
		return strings.TrimSuffix(name, "[]")
	}
	if open := strings.Index(name, "<"); open >= 0 {
		if close := strings.LastIndex(name, ">"); close > open {
			inner := strings.TrimSpace(name[open+1 : close])
			// Wildcard bounds reduce to their bound.
			inner = strings.TrimPrefix(inner, "? extends ")
			inner = strings.TrimPrefix(inner, "? super ")
			if inner == "" || inner == "?" {
				return "Object"
			}
			return inner
		}
	}
	return "Object"
}

// FirstTypeArgument returns the first generic argument of a declaration, or
// "" when there is none. Nested generics are kept intact.
func FirstTypeArgument(name string) string {
	open := strings.Index(name, "<")
	close := strings.LastIndex(name, ">")
	if open < 0 || close <= open {
		return ""
	}
	inner := name[open+1 : close]
	depth := 0
	for i := 0; i < len(inner); i++ {
		switch inner[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				return strings.TrimSpace(inner[:i])
			}
		}
	}
	return strings.TrimSpace(inner)
}

// UnwrapResponse peels generic response wrappers (ResponseEntity, Optional,
// futures, reactive types) down to the effective payload type.
func UnwrapResponse(name string) string {
	for i := 0; i < 5; i++ {
		base := Simple(Base(name))
		if !genericWrappers[base] {
			return name
		}
		arg := FirstTypeArgument(name)
		if arg == "" {
			return "Object"
		}
		name = arg
	}
	return name
}

// IsPlatform reports whether the type belongs to the platform rather than
// the scanned application.
func IsPlatform(name string) bool {
	base := Base(name)
	for _, prefix := range platformPrefixes {
		if strings.HasPrefix(base, prefix) {
			return true
		}
	}
	return platformSimple[Simple(base)]
}

// IsDtoShaped reports whether a declared type looks like an application
// payload: anything that is neither primitive, platform, nor collection.
// Exclusions run first, so HttpServletRequest never passes on its suffix.
func IsDtoShaped(name string) bool {
	base := Simple(Base(name))
	if base == "" || base == "?" {
		return false
	}
	return !IsPrimitive(base) && !IsPlatform(name) && !IsCollection(name)
}
