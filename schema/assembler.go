package schema

import (
	"log/slog"

	"github.com/rudikristanto/apiscan/extract"
	"github.com/rudikristanto/apiscan/javatype"
)

// Assembler converts the type references of a scanned operation list into
// the reusable component map, flattening the transitive reference closure
// through the resolver.
type Assembler struct {
	logger   *slog.Logger
	resolver *Resolver

	components map[string]*ResolvedSchema
}

func NewAssembler(logger *slog.Logger, resolver *Resolver) *Assembler {
	return &Assembler{
		logger:     logger,
		resolver:   resolver,
		components: make(map[string]*ResolvedSchema),
	}
}

// Components returns the assembled component map, keyed by sanitized name.
func (a *Assembler) Components() map[string]*ResolvedSchema {
	return a.components
}

// Assemble processes every parameter, body and response type reference of
// the given operations, then unions the resolver's full closure into the
// component map.
func (a *Assembler) Assemble(ops []*extract.ApiOperation, closureDepth int) map[string]*ResolvedSchema {
	for _, op := range ops {
		for _, p := range op.Parameters {
			a.SchemaFor(p.Type)
		}
		if op.RequestBody != nil {
			for _, mt := range op.RequestBody.Content {
				a.SchemaFor(mt.SchemaType)
			}
		}
		for _, resp := range op.Responses {
			for _, mt := range resp.Content {
				a.SchemaFor(mt.SchemaType)
			}
		}
	}

	return a.Flatten(closureDepth)
}

// Flatten unions the resolver's full reference closure into the component
// map so every nested reference has a target. Safe to call again after more
// SchemaFor calls; a closureDepth <= 0 uses the resolver default.
func (a *Assembler) Flatten(closureDepth int) map[string]*ResolvedSchema {
	// Distinct raw names can collide after sanitization; the union keeps
	// the last write rather than inventing a disambiguation policy.
	for name, s := range a.resolver.AllResolvedSchemas(closureDepth) {
		a.components[Sanitize(name)] = s
	}
	return a.components
}

// SchemaFor classifies one type reference: primitives inline with no cache
// entry, arrays wrap their element schema, everything else installs the
// resolver's output under its sanitized name and returns a named pointer.
func (a *Assembler) SchemaFor(typeName string) *ResolvedSchema {
	if typeName == "" {
		return nil
	}

	if p, ok := javatype.MapPrimitive(typeName); ok {
		return NewPrimitiveSchema(p.Type, p.Format)
	}

	if javatype.IsCollection(typeName) {
		return NewArraySchema(a.SchemaFor(javatype.ElementType(typeName)))
	}

	base := javatype.Simple(javatype.Base(typeName))
	if !javatype.IsDtoShaped(base) && javatype.IsPlatform(typeName) {
		return &ResolvedSchema{Kind: KindObject, Type: "object", Description: "Platform type " + typeName}
	}

	key := Sanitize(base)
	resolved := a.resolver.ResolveSchema(base)
	a.components[key] = resolved
	return NewReferenceSchema(key)
}
