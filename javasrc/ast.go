// Package javasrc parses Java source files into a declaration tree: types with
// their annotations, fields and methods. The parse is purely syntactic: no
// symbol table, no classpath. That is all the downstream scanners need.
package javasrc

import "strings"

type TypeKind int

const (
	KindClass TypeKind = iota
	KindInterface
	KindEnum
	KindRecord
	KindAnnotation
)

func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindRecord:
		return "record"
	case KindAnnotation:
		return "@interface"
	}
	return "unknown"
}

// File is the read-only parse of a single source file.
type File struct {
	Path    string
	Package string
	Imports []string
	Types   []*TypeDecl
}

// Find locates a type declaration by simple name, descending into nested
// declarations.
func (f *File) Find(name string) *TypeDecl {
	for _, t := range f.Types {
		if found := t.find(name); found != nil {
			return found
		}
	}
	return nil
}

type TypeDecl struct {
	Name          string
	Kind          TypeKind
	Modifiers     []string
	Annotations   []Annotation
	Doc           string
	Extends       []string
	Implements    []string
	Fields        []*Field
	Methods       []*Method
	EnumConstants []string
	Nested        []*TypeDecl
}

func (t *TypeDecl) find(name string) *TypeDecl {
	if t.Name == name {
		return t
	}
	for _, n := range t.Nested {
		if found := n.find(name); found != nil {
			return found
		}
	}
	return nil
}

// Annotation returns the first annotation matching any of the given simple
// names, ignoring package qualification.
func (t *TypeDecl) Annotation(names ...string) (Annotation, bool) {
	return findAnnotation(t.Annotations, names)
}

func (t *TypeDecl) HasAnnotation(names ...string) bool {
	_, ok := t.Annotation(names...)
	return ok
}

// Method returns the first declared method with the given name.
func (t *TypeDecl) Method(name string) *Method {
	for _, m := range t.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

type Field struct {
	Name        string
	Type        string
	Modifiers   []string
	Annotations []Annotation
	Doc         string
}

func (f *Field) Annotation(names ...string) (Annotation, bool) {
	return findAnnotation(f.Annotations, names)
}

func (f *Field) HasAnnotation(names ...string) bool {
	_, ok := f.Annotation(names...)
	return ok
}

func (f *Field) HasModifier(m string) bool {
	return hasModifier(f.Modifiers, m)
}

type Method struct {
	Name        string
	ReturnType  string
	Params      []Param
	Modifiers   []string
	Annotations []Annotation
	Doc         string
	Constructor bool
}

func (m *Method) Annotation(names ...string) (Annotation, bool) {
	return findAnnotation(m.Annotations, names)
}

func (m *Method) HasAnnotation(names ...string) bool {
	_, ok := m.Annotation(names...)
	return ok
}

func (m *Method) IsOverride() bool {
	return m.HasAnnotation("Override")
}

type Param struct {
	Name        string
	Type        string
	Annotations []Annotation
}

func (p *Param) Annotation(names ...string) (Annotation, bool) {
	return findAnnotation(p.Annotations, names)
}

func (p *Param) HasAnnotation(names ...string) bool {
	_, ok := p.Annotation(names...)
	return ok
}

// Annotation is a parsed annotation usage. Positional single values and
// arrays land under the "value" key, the same way the language defines them.
type Annotation struct {
	Name   string
	Values map[string][]string
}

// Value returns the first value stored under any of the given attribute
// names, falling back to the implicit "value" attribute when no names are
// given.
func (a Annotation) Value(attrs ...string) string {
	vals := a.ValueList(attrs...)
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}

// ValueList returns every value stored under the first matching attribute.
func (a Annotation) ValueList(attrs ...string) []string {
	if len(attrs) == 0 {
		attrs = []string{"value"}
	}
	for _, attr := range attrs {
		if vals, ok := a.Values[attr]; ok && len(vals) > 0 {
			return vals
		}
	}
	return nil
}

func findAnnotation(annotations []Annotation, names []string) (Annotation, bool) {
	for _, a := range annotations {
		simple := a.Name
		if idx := strings.LastIndex(simple, "."); idx >= 0 {
			simple = simple[idx+1:]
		}
		for _, name := range names {
			if simple == name {
				return a, true
			}
		}
	}
	return Annotation{}, false
}

func hasModifier(mods []string, m string) bool {
	for _, mod := range mods {
		if mod == m {
			return true
		}
	}
	return false
}
