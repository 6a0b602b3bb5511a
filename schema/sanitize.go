package schema

import "strings"

// Sanitize maps an arbitrary declared type name onto a valid component-map
// key. Pure, deterministic and idempotent; the result always matches
// ^[A-Za-z_][A-Za-z0-9._-]*$. Distinct raw names may sanitize to the same
// key; the component map keeps the last write.
func Sanitize(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "UnknownType"
	}
	if name == "?" || strings.HasPrefix(name, "? ") {
		return "UnknownType"
	}
	if name == "byte[]" {
		return "ByteArray"
	}
	if strings.HasSuffix(name, "[]") {
		return Sanitize(strings.TrimSuffix(name, "[]")) + "Array"
	}
	// Generic arguments are dropped: List<Foo> and List<Bar> share a key.
	if idx := strings.Index(name, "<"); idx >= 0 {
		return Sanitize(name[:idx])
	}

	var sb strings.Builder
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9',
			c == '.', c == '-', c == '_':
			sb.WriteByte(c)
		default:
			sb.WriteByte('_')
		}
	}
	out := sb.String()

	for strings.Contains(out, "__") {
		out = strings.ReplaceAll(out, "__", "_")
	}
	out = strings.TrimRight(out, "_")

	if out == "" {
		return "UnknownType"
	}
	first := out[0]
	if !(first >= 'A' && first <= 'Z' || first >= 'a' && first <= 'z' || first == '_') {
		out = "Schema_" + out
	}
	return out
}
