package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rudikristanto/apiscan/extract"
)

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Summary{
		ProjectRoot:  "/work/petclinic",
		FilesScanned: 42,
		Operations: []*extract.ApiOperation{
			{HTTPMethod: "GET", Path: "/owners/{ownerId}"},
			{HTTPMethod: "POST", Path: "/owners", Inferred: true},
		},
		SchemaCount: 5,
		Warnings:    []string{"one parse failure"},
		Elapsed:     1234 * time.Millisecond,
		Output:      "openapi.json",
	})

	out := buf.String()
	assert.Contains(t, out, "/work/petclinic")
	assert.Contains(t, out, "42")
	assert.Contains(t, out, "(1 annotated, 1 inferred)")
	assert.Contains(t, out, "/owners/{ownerId}")
	assert.Contains(t, out, "(inferred)")
	assert.Contains(t, out, "1 warning(s):")
	assert.Contains(t, out, "one parse failure")
	assert.Contains(t, out, "openapi.json")
}

func TestRenderTruncatesLongWarnings(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Summary{Warnings: []string{strings.Repeat("x", 500)}})

	out := buf.String()
	assert.NotContains(t, out, strings.Repeat("x", 200))
	assert.Contains(t, out, "...")
}
