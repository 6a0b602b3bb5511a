// Package schema resolves DTO type names into structural schemas and
// assembles the reference closure that backs the document's component map.
package schema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

type Kind string

const (
	KindPrimitive Kind = "primitive"
	KindObject    Kind = "object"
	KindArray     Kind = "array"
	KindReference Kind = "reference"
)

// ResolvedSchema is the structural description of one type. Nested
// DTO-shaped properties are always name-addressed references, never owned
// copies, so cyclic type graphs stay bounded.
type ResolvedSchema struct {
	Kind        Kind
	Name        string
	Type        string
	Format      string
	Description string
	Properties  *orderedmap.OrderedMap[string, *ResolvedSchema]
	Required    []string
	Items       *ResolvedSchema
	Ref         string
}

// PlaceholderProperty is the single property installed on schemas standing
// in for types whose source could not be located or parsed.
const PlaceholderProperty = "_schemaPlaceholder"

func NewObjectSchema(name string) *ResolvedSchema {
	return &ResolvedSchema{
		Kind:       KindObject,
		Name:       name,
		Type:       "object",
		Properties: orderedmap.New[string, *ResolvedSchema](),
	}
}

func NewPrimitiveSchema(typ, format string) *ResolvedSchema {
	return &ResolvedSchema{Kind: KindPrimitive, Type: typ, Format: format}
}

func NewArraySchema(items *ResolvedSchema) *ResolvedSchema {
	return &ResolvedSchema{Kind: KindArray, Type: "array", Items: items}
}

func NewReferenceSchema(target string) *ResolvedSchema {
	return &ResolvedSchema{Kind: KindReference, Ref: target}
}

// NewPlaceholderSchema stands in for a type whose definition is unavailable.
func NewPlaceholderSchema(name, reason string) *ResolvedSchema {
	s := NewObjectSchema(name)
	s.Description = reason
	s.Properties.Set(PlaceholderProperty, &ResolvedSchema{
		Kind:        KindPrimitive,
		Type:        "string",
		Description: reason,
	})
	return s
}

// setRequired adds a field to the required set, deduplicated.
func (s *ResolvedSchema) setRequired(name string) {
	for _, r := range s.Required {
		if r == name {
			return
		}
	}
	s.Required = append(s.Required, name)
}

// merge copies another object schema's properties and required set into s,
// overwriting same-name properties. Used for superclass field inheritance.
func (s *ResolvedSchema) merge(other *ResolvedSchema) {
	if other == nil || other.Properties == nil {
		return
	}
	for pair := other.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == PlaceholderProperty {
			continue
		}
		s.Properties.Set(pair.Key, pair.Value)
	}
	for _, r := range other.Required {
		s.setRequired(r)
	}
}
