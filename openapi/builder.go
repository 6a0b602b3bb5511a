// Package openapi materializes the scan output into an OpenAPI 3 document.
package openapi

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/rudikristanto/apiscan/extract"
	"github.com/rudikristanto/apiscan/schema"
)

const componentPrefix = "#/components/schemas/"

// DefaultBuildTimeout caps document assembly. The cutoff is cooperative,
// checked between operations, never mid-operation.
const DefaultBuildTimeout = 30 * time.Second

// Builder converts operations and the assembled component map into an
// openapi3 document.
type Builder struct {
	logger  *slog.Logger
	title   string
	version string
	timeout time.Duration
	asm     *schema.Assembler
}

func NewBuilder(logger *slog.Logger, title, version string, timeout time.Duration) *Builder {
	if timeout <= 0 {
		timeout = DefaultBuildTimeout
	}
	return &Builder{logger: logger, title: title, version: version, timeout: timeout}
}

// Build assembles the document. Operations are added in order until done or
// the wall-clock cutoff fires, in which case the document is truncated with
// a warning rather than left to hang.
func (b *Builder) Build(ctx context.Context, ops []*extract.ApiOperation, asm *schema.Assembler) (*openapi3.T, []string) {
	var warnings []string
	b.asm = asm
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   b.title,
			Version: b.version,
		},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: openapi3.Schemas{}},
	}

	start := time.Now()
	for i, op := range ops {
		if time.Since(start) > b.timeout {
			msg := fmt.Sprintf("document assembly exceeded %s, truncated after %d of %d operations", b.timeout, i, len(ops))
			b.logger.Warn("build cutoff", "elapsed", time.Since(start), "done", i, "total", len(ops))
			warnings = append(warnings, msg)
			break
		}
		b.addOperation(doc, op)
	}

	// Operations may have introduced types the assembler had not seen yet;
	// close the reference graph before emitting components so no nested
	// reference dangles.
	components := asm.Flatten(0)
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		doc.Components.Schemas[name] = b.schemaRef(components[name])
	}

	if err := doc.Validate(ctx); err != nil {
		warnings = append(warnings, fmt.Sprintf("document validation: %v", err))
	}
	return doc, warnings
}

func (b *Builder) addOperation(doc *openapi3.T, op *extract.ApiOperation) {
	item := doc.Paths.Value(op.Path)
	if item == nil {
		item = &openapi3.PathItem{}
		doc.Paths.Set(op.Path, item)
	}

	o := &openapi3.Operation{
		OperationID: op.OperationID,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  op.Deprecated,
	}
	if op.Inferred {
		o.Extensions = map[string]any{"x-apiscan-inferred": true}
	}

	var formParams []extract.Parameter
	for _, p := range op.Parameters {
		if p.In == "formData" {
			formParams = append(formParams, p)
			continue
		}
		o.Parameters = append(o.Parameters, &openapi3.ParameterRef{
			Value: &openapi3.Parameter{
				Name:        p.Name,
				In:          p.In,
				Required:    p.Required,
				Description: p.Description,
				Schema:      b.typeRef(p.Type),
			},
		})
	}

	switch {
	case op.RequestBody != nil:
		content := openapi3.Content{}
		for mt, media := range op.RequestBody.Content {
			content[mt] = &openapi3.MediaType{Schema: b.typeRef(media.SchemaType)}
		}
		o.RequestBody = &openapi3.RequestBodyRef{
			Value: &openapi3.RequestBody{
				Description: op.RequestBody.Description,
				Required:    true,
				Content:     content,
			},
		}
	case len(formParams) > 0:
		// OpenAPI 3 has no formData parameter location; fold form-bound
		// parameters into a urlencoded request body.
		form := openapi3.NewObjectSchema()
		for _, p := range formParams {
			form.Properties[p.Name] = b.typeRef(p.Type)
		}
		o.RequestBody = &openapi3.RequestBodyRef{
			Value: &openapi3.RequestBody{
				Content: openapi3.Content{
					"application/x-www-form-urlencoded": &openapi3.MediaType{
						Schema: &openapi3.SchemaRef{Value: form},
					},
				},
			},
		}
	}

	responses := openapi3.NewResponses()
	responses.Delete("default")
	statuses := make([]string, 0, len(op.Responses))
	for status := range op.Responses {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		resp := op.Responses[status]
		value := &openapi3.Response{Description: &resp.Description}
		if len(resp.Content) > 0 {
			content := openapi3.Content{}
			for mt, media := range resp.Content {
				content[mt] = &openapi3.MediaType{Schema: b.typeRef(media.SchemaType)}
			}
			value.Content = content
		}
		responses.Set(status, &openapi3.ResponseRef{Value: value})
	}
	o.Responses = responses

	item.SetOperation(op.HTTPMethod, o)
}

// typeRef maps a raw declared type reference onto an openapi3 schema:
// primitives and collections inline, DTO names point into the component map.
func (b *Builder) typeRef(typeName string) *openapi3.SchemaRef {
	return b.schemaRef(b.asm.SchemaFor(typeName))
}

// schemaRef converts a resolved structural schema into its openapi3 form.
func (b *Builder) schemaRef(s *schema.ResolvedSchema) *openapi3.SchemaRef {
	if s == nil {
		return &openapi3.SchemaRef{Value: openapi3.NewObjectSchema()}
	}
	switch s.Kind {
	case schema.KindReference:
		return &openapi3.SchemaRef{Ref: componentPrefix + s.Ref}
	case schema.KindArray:
		value := openapi3.NewArraySchema()
		value.Items = b.schemaRef(s.Items)
		return &openapi3.SchemaRef{Value: value}
	case schema.KindPrimitive:
		value := &openapi3.Schema{
			Type:        &openapi3.Types{s.Type},
			Format:      s.Format,
			Description: s.Description,
		}
		return &openapi3.SchemaRef{Value: value}
	default:
		value := openapi3.NewObjectSchema()
		value.Description = s.Description
		if s.Properties != nil {
			for pair := s.Properties.Oldest(); pair != nil; pair = pair.Next() {
				value.Properties[pair.Key] = b.schemaRef(pair.Value)
			}
		}
		value.Required = s.Required
		return &openapi3.SchemaRef{Value: value}
	}
}
