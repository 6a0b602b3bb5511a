package javasrc

import (
	"fmt"
	"strings"
)

// Parse parses one Java source file into its declaration tree.
func Parse(path string, src []byte) (*File, error) {
	toks, err := newLexer(string(src)).tokens()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	p := &parser{toks: toks, file: &File{Path: path}}
	if err := p.parseFile(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p.file, nil
}

var modifierWords = map[string]bool{
	"public": true, "private": true, "protected": true,
	"static": true, "final": true, "abstract": true,
	"native": true, "synchronized": true, "transient": true,
	"volatile": true, "strictfp": true, "default": true, "sealed": true,
}

type parser struct {
	toks       []token
	pos        int
	file       *File
	pendingDoc string
}

func (p *parser) cur() token {
	if p.pos >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) peek(off int) token {
	if p.pos+off >= len(p.toks) {
		return token{kind: tokEOF}
	}
	return p.toks[p.pos+off]
}

func (p *parser) atPunct(s string) bool {
	t := p.cur()
	return t.kind == tokPunct && t.text == s
}

func (p *parser) atIdent(s string) bool {
	t := p.cur()
	return t.kind == tokIdent && t.text == s
}

func (p *parser) advance() token {
	t := p.cur()
	p.pos++
	return t
}

func (p *parser) expectPunct(s string) error {
	if !p.atPunct(s) {
		return fmt.Errorf("line %d: expected %q, found %q", p.cur().line, s, p.cur().text)
	}
	p.pos++
	return nil
}

func (p *parser) expectIdent() (string, error) {
	t := p.cur()
	if t.kind != tokIdent {
		return "", fmt.Errorf("line %d: expected identifier, found %q", t.line, t.text)
	}
	p.pos++
	return t.text, nil
}

// skipBalanced consumes from the current open token through its matching
// close token.
func (p *parser) skipBalanced(open, close string) error {
	if err := p.expectPunct(open); err != nil {
		return err
	}
	depth := 1
	for depth > 0 {
		t := p.advance()
		switch {
		case t.kind == tokEOF:
			return fmt.Errorf("unbalanced %q", open)
		case t.kind == tokPunct && t.text == open:
			depth++
		case t.kind == tokPunct && t.text == close:
			depth--
		}
	}
	return nil
}

func (p *parser) parseFile() error {
	for {
		t := p.cur()
		switch {
		case t.kind == tokEOF:
			return nil
		case t.kind == tokDoc:
			p.pendingDoc = cleanDoc(t.text)
			p.pos++
		case t.kind == tokIdent && t.text == "package":
			p.pos++
			p.file.Package = p.readQualifiedName()
			p.skipPast(";")
		case t.kind == tokIdent && t.text == "import":
			p.pos++
			start := p.pos
			p.skipPast(";")
			p.file.Imports = append(p.file.Imports, p.joinTokens(start, p.pos-1))
		case t.kind == tokPunct && t.text == ";":
			p.pos++
		default:
			decl, err := p.parseTypeWithPrologue()
			if err != nil {
				return err
			}
			if decl != nil {
				p.file.Types = append(p.file.Types, decl)
			}
		}
	}
}

// parseTypeWithPrologue parses annotations and modifiers followed by a type
// declaration.
func (p *parser) parseTypeWithPrologue() (*TypeDecl, error) {
	annotations, modifiers, err := p.parsePrologue()
	if err != nil {
		return nil, err
	}
	return p.parseTypeDecl(annotations, modifiers)
}

// parsePrologue consumes interleaved annotations and modifier keywords.
func (p *parser) parsePrologue() ([]Annotation, []string, error) {
	var annotations []Annotation
	var modifiers []string
	for {
		t := p.cur()
		switch {
		case t.kind == tokDoc:
			p.pendingDoc = cleanDoc(t.text)
			p.pos++
		case t.kind == tokPunct && t.text == "@" && p.peek(1).text != "interface":
			a, err := p.parseAnnotation()
			if err != nil {
				return nil, nil, err
			}
			annotations = append(annotations, a)
		case t.kind == tokIdent && modifierWords[t.text]:
			modifiers = append(modifiers, t.text)
			p.pos++
		default:
			return annotations, modifiers, nil
		}
	}
}

func (p *parser) parseTypeDecl(annotations []Annotation, modifiers []string) (*TypeDecl, error) {
	var kind TypeKind
	switch {
	case p.atIdent("class"):
		kind = KindClass
	case p.atIdent("interface"):
		kind = KindInterface
	case p.atIdent("enum"):
		kind = KindEnum
	case p.atIdent("record"):
		kind = KindRecord
	case p.atPunct("@") && p.peek(1).text == "interface":
		kind = KindAnnotation
		p.pos++
	default:
		return nil, fmt.Errorf("line %d: expected type declaration, found %q", p.cur().line, p.cur().text)
	}
	p.pos++

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}

	decl := &TypeDecl{
		Name:        name,
		Kind:        kind,
		Modifiers:   modifiers,
		Annotations: annotations,
		Doc:         p.pendingDoc,
	}
	p.pendingDoc = ""

	if p.atPunct("<") {
		if err := p.skipBalanced("<", ">"); err != nil {
			return nil, err
		}
	}

	// Record components behave like public accessor-backed fields.
	if kind == KindRecord && p.atPunct("(") {
		params, err := p.parseParamList()
		if err != nil {
			return nil, err
		}
		for _, param := range params {
			decl.Fields = append(decl.Fields, &Field{
				Name:        param.Name,
				Type:        param.Type,
				Modifiers:   []string{"public", "final"},
				Annotations: param.Annotations,
			})
		}
	}

	if p.atIdent("extends") {
		p.pos++
		decl.Extends = p.parseTypeNameList()
	}
	if p.atIdent("implements") {
		p.pos++
		decl.Implements = p.parseTypeNameList()
	}
	if p.atIdent("permits") {
		p.pos++
		p.parseTypeNameList()
	}

	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	if kind == KindEnum {
		if err := p.parseEnumConstants(decl); err != nil {
			return nil, err
		}
	}
	if err := p.parseBody(decl); err != nil {
		return nil, err
	}
	return decl, nil
}

func (p *parser) parseEnumConstants(decl *TypeDecl) error {
	for {
		t := p.cur()
		switch {
		case t.kind == tokEOF:
			return fmt.Errorf("unterminated enum body")
		case t.kind == tokDoc:
			p.pos++
		case t.kind == tokPunct && t.text == "@":
			if _, err := p.parseAnnotation(); err != nil {
				return err
			}
		case t.kind == tokPunct && (t.text == ";" || t.text == "}"):
			if t.text == ";" {
				p.pos++
			}
			return nil
		case t.kind == tokIdent:
			decl.EnumConstants = append(decl.EnumConstants, t.text)
			p.pos++
			if p.atPunct("(") {
				if err := p.skipBalanced("(", ")"); err != nil {
					return err
				}
			}
			if p.atPunct("{") {
				if err := p.skipBalanced("{", "}"); err != nil {
					return err
				}
			}
			if p.atPunct(",") {
				p.pos++
			}
		default:
			p.pos++
		}
	}
}

func (p *parser) parseBody(decl *TypeDecl) error {
	for {
		t := p.cur()
		switch {
		case t.kind == tokEOF:
			return fmt.Errorf("unterminated body of %s", decl.Name)
		case t.kind == tokPunct && t.text == "}":
			p.pos++
			return nil
		case t.kind == tokPunct && t.text == ";":
			p.pos++
		case t.kind == tokDoc:
			p.pendingDoc = cleanDoc(t.text)
			p.pos++
		default:
			if err := p.parseMember(decl); err != nil {
				return err
			}
		}
	}
}

func (p *parser) parseMember(decl *TypeDecl) error {
	annotations, modifiers, err := p.parsePrologue()
	if err != nil {
		return err
	}

	// Initializer block, static or instance.
	if p.atPunct("{") {
		p.pendingDoc = ""
		return p.skipBalanced("{", "}")
	}

	// Nested type.
	if p.atIdent("class") || p.atIdent("interface") || p.atIdent("enum") ||
		p.atIdent("record") || (p.atPunct("@") && p.peek(1).text == "interface") {
		nested, err := p.parseTypeDecl(annotations, modifiers)
		if err != nil {
			return err
		}
		decl.Nested = append(decl.Nested, nested)
		return nil
	}

	doc := p.pendingDoc
	p.pendingDoc = ""

	// Generic method type parameters.
	if p.atPunct("<") {
		if err := p.skipBalanced("<", ">"); err != nil {
			return err
		}
	}

	typeText, err := p.parseTypeRef()
	if err != nil {
		return err
	}

	// Constructor: the "type" was the member name.
	if p.atPunct("(") {
		m := &Method{
			Name:        typeText,
			Constructor: true,
			Modifiers:   modifiers,
			Annotations: annotations,
			Doc:         doc,
		}
		if m.Params, err = p.parseParamList(); err != nil {
			return err
		}
		if err := p.finishMethod(); err != nil {
			return err
		}
		decl.Methods = append(decl.Methods, m)
		return nil
	}

	name, err := p.expectIdent()
	if err != nil {
		return err
	}

	if p.atPunct("(") {
		m := &Method{
			Name:        name,
			ReturnType:  typeText,
			Modifiers:   modifiers,
			Annotations: annotations,
			Doc:         doc,
		}
		if m.Params, err = p.parseParamList(); err != nil {
			return err
		}
		if err := p.finishMethod(); err != nil {
			return err
		}
		decl.Methods = append(decl.Methods, m)
		return nil
	}

	// Field declarators, possibly several on one type.
	for {
		fieldType := typeText
		for p.atPunct("[") && p.peek(1).text == "]" {
			fieldType += "[]"
			p.pos += 2
		}
		decl.Fields = append(decl.Fields, &Field{
			Name:        name,
			Type:        fieldType,
			Modifiers:   modifiers,
			Annotations: annotations,
			Doc:         doc,
		})
		if p.atPunct("=") {
			p.pos++
			if err := p.skipInitializer(); err != nil {
				return err
			}
		}
		if p.atPunct(",") {
			p.pos++
			if name, err = p.expectIdent(); err != nil {
				return err
			}
			continue
		}
		return p.expectPunct(";")
	}
}

// finishMethod consumes everything after a parameter list: throws clause,
// annotation-member defaults and the body or terminating semicolon.
func (p *parser) finishMethod() error {
	if p.atIdent("throws") {
		p.pos++
		p.parseTypeNameList()
	}
	if p.atIdent("default") {
		p.pos++
		if err := p.skipInitializer(); err != nil {
			return err
		}
	}
	if p.atPunct("{") {
		return p.skipBalanced("{", "}")
	}
	return p.expectPunct(";")
}

// skipInitializer consumes an expression up to a top-level comma, semicolon
// or closing brace, leaving the terminator in place.
func (p *parser) skipInitializer() error {
	depth := 0
	for {
		t := p.cur()
		switch {
		case t.kind == tokEOF:
			return fmt.Errorf("unterminated initializer")
		case t.kind == tokPunct && (t.text == "(" || t.text == "{" || t.text == "["):
			depth++
		case t.kind == tokPunct && (t.text == ")" || t.text == "]"):
			depth--
		case t.kind == tokPunct && t.text == "}":
			if depth == 0 {
				return nil
			}
			depth--
		case t.kind == tokPunct && (t.text == "," || t.text == ";"):
			if depth == 0 {
				return nil
			}
		}
		p.pos++
	}
}

func (p *parser) parseParamList() ([]Param, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var params []Param
	for {
		if p.atPunct(")") {
			p.pos++
			return params, nil
		}

		var annotations []Annotation
		for {
			if p.atPunct("@") {
				a, err := p.parseAnnotation()
				if err != nil {
					return nil, err
				}
				annotations = append(annotations, a)
				continue
			}
			if p.atIdent("final") {
				p.pos++
				continue
			}
			break
		}

		typeText, err := p.parseTypeRef()
		if err != nil {
			return nil, err
		}
		// Varargs are array-typed for every purpose we care about.
		if p.atPunct(".") && p.peek(1).text == "." && p.peek(2).text == "." {
			p.pos += 3
			typeText += "[]"
		}

		// Receiver parameters ("this") and unnamed lambdas do not occur in
		// declaration position; a missing name means a malformed source.
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		for p.atPunct("[") && p.peek(1).text == "]" {
			typeText += "[]"
			p.pos += 2
		}

		params = append(params, Param{Name: name, Type: typeText, Annotations: annotations})

		if p.atPunct(",") {
			p.pos++
		}
	}
}

// parseTypeRef reads a type reference and reconstructs its source text:
// qualified name, generic arguments, array suffixes.
func (p *parser) parseTypeRef() (string, error) {
	// Type-use annotations are legal almost anywhere in a reference.
	for p.atPunct("@") && p.peek(1).text != "interface" {
		if _, err := p.parseAnnotation(); err != nil {
			return "", err
		}
	}

	if p.atPunct("?") {
		p.pos++
		text := "?"
		if p.atIdent("extends") || p.atIdent("super") {
			bound := p.advance().text
			inner, err := p.parseTypeRef()
			if err != nil {
				return "", err
			}
			text += " " + bound + " " + inner
		}
		return text, nil
	}

	t := p.cur()
	if t.kind != tokIdent {
		return "", fmt.Errorf("line %d: expected type, found %q", t.line, t.text)
	}
	text := p.readQualifiedName()

	if p.atPunct("<") {
		generic, err := p.captureGeneric()
		if err != nil {
			return "", err
		}
		text += generic
	}
	for p.atPunct("[") && p.peek(1).text == "]" {
		text += "[]"
		p.pos += 2
	}
	return text, nil
}

// captureGeneric consumes a balanced <...> group and reconstructs its text.
func (p *parser) captureGeneric() (string, error) {
	var sb strings.Builder
	depth := 0
	prevIdent := false
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return "", fmt.Errorf("unbalanced generic arguments")
		}
		p.pos++
		switch {
		case t.kind == tokPunct && t.text == "<":
			depth++
			sb.WriteString("<")
			prevIdent = false
		case t.kind == tokPunct && t.text == ">":
			depth--
			sb.WriteString(">")
			prevIdent = false
			if depth == 0 {
				return sb.String(), nil
			}
		case t.kind == tokPunct && t.text == ",":
			sb.WriteString(", ")
			prevIdent = false
		case t.kind == tokIdent || t.kind == tokNumber:
			if prevIdent {
				sb.WriteString(" ")
			}
			sb.WriteString(t.text)
			prevIdent = true
		case t.kind == tokPunct && t.text == "?":
			sb.WriteString("?")
			// Wildcard bounds read as "? extends T".
			prevIdent = true
		default:
			sb.WriteString(t.text)
			prevIdent = false
		}
	}
}

func (p *parser) parseAnnotation() (Annotation, error) {
	if err := p.expectPunct("@"); err != nil {
		return Annotation{}, err
	}
	name := p.readQualifiedName()
	if name == "" {
		return Annotation{}, fmt.Errorf("line %d: malformed annotation", p.cur().line)
	}
	a := Annotation{Name: name, Values: map[string][]string{}}
	if !p.atPunct("(") {
		return a, nil
	}
	p.pos++

	if p.atPunct(")") {
		p.pos++
		return a, nil
	}

	// Named attribute list or a single positional value.
	if p.cur().kind == tokIdent && p.peek(1).text == "=" && p.peek(2).text != "=" {
		for {
			attr, err := p.expectIdent()
			if err != nil {
				return Annotation{}, err
			}
			if err := p.expectPunct("="); err != nil {
				return Annotation{}, err
			}
			vals, err := p.parseAnnotationExpr()
			if err != nil {
				return Annotation{}, err
			}
			a.Values[attr] = vals
			if p.atPunct(",") {
				p.pos++
				continue
			}
			break
		}
	} else {
		vals, err := p.parseAnnotationExpr()
		if err != nil {
			return Annotation{}, err
		}
		a.Values["value"] = vals
	}
	return a, p.expectPunct(")")
}

// parseAnnotationExpr reads one annotation attribute value: a scalar, a
// nested annotation or a {…} array of either.
func (p *parser) parseAnnotationExpr() ([]string, error) {
	if p.atPunct("{") {
		p.pos++
		var vals []string
		for {
			if p.atPunct("}") {
				p.pos++
				return vals, nil
			}
			v, err := p.parseAnnotationExpr()
			if err != nil {
				return nil, err
			}
			vals = append(vals, v...)
			if p.atPunct(",") {
				p.pos++
			}
		}
	}

	if p.atPunct("@") {
		nested, err := p.parseAnnotation()
		if err != nil {
			return nil, err
		}
		return []string{"@" + nested.Name}, nil
	}

	if p.cur().kind == tokString {
		return []string{p.advance().text}, nil
	}

	// Scalar expression: consume until a top-level comma or closer.
	var sb strings.Builder
	depth := 0
	prevIdent := false
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return nil, fmt.Errorf("unterminated annotation value")
		}
		if t.kind == tokPunct && depth == 0 && (t.text == "," || t.text == ")" || t.text == "}") {
			return []string{sb.String()}, nil
		}
		p.pos++
		switch {
		case t.kind == tokPunct && (t.text == "(" || t.text == "{"):
			depth++
			sb.WriteString(t.text)
			prevIdent = false
		case t.kind == tokPunct && (t.text == ")" || t.text == "}"):
			depth--
			sb.WriteString(t.text)
			prevIdent = false
		case t.kind == tokIdent || t.kind == tokNumber:
			if prevIdent {
				sb.WriteString(" ")
			}
			sb.WriteString(t.text)
			prevIdent = true
		case t.kind == tokString:
			sb.WriteString(`"` + t.text + `"`)
			prevIdent = false
		default:
			sb.WriteString(t.text)
			prevIdent = false
		}
	}
}

// parseTypeNameList reads a comma-separated list of type references and
// returns their base names with generic arguments stripped.
func (p *parser) parseTypeNameList() []string {
	var names []string
	for {
		ref, err := p.parseTypeRef()
		if err != nil {
			return names
		}
		names = append(names, ref)
		if p.atPunct(",") {
			p.pos++
			continue
		}
		return names
	}
}

func (p *parser) readQualifiedName() string {
	if p.cur().kind != tokIdent {
		return ""
	}
	name := p.advance().text
	for p.atPunct(".") && p.peek(1).kind == tokIdent {
		// Do not swallow ".class" or a ".*" import tail into the name.
		if p.peek(1).text == "class" {
			break
		}
		p.pos++
		name += "." + p.advance().text
	}
	if p.atPunct(".") && p.peek(1).text == "*" {
		p.pos += 2
		name += ".*"
	}
	return name
}

func (p *parser) skipPast(terminator string) {
	for {
		t := p.cur()
		if t.kind == tokEOF {
			return
		}
		p.pos++
		if t.kind == tokPunct && t.text == terminator {
			return
		}
	}
}

func (p *parser) joinTokens(from, to int) string {
	var sb strings.Builder
	for i := from; i < to && i < len(p.toks); i++ {
		sb.WriteString(p.toks[i].text)
	}
	return sb.String()
}

// cleanDoc strips comment markers and leading asterisks from a doc comment.
func cleanDoc(raw string) string {
	raw = strings.TrimPrefix(raw, "/**")
	raw = strings.TrimSuffix(raw, "*/")
	lines := strings.Split(raw, "\n")
	var out []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		// Javadoc tags mark the end of the prose description.
		if strings.HasPrefix(line, "@") {
			break
		}
		out = append(out, line)
	}
	return strings.Join(out, " ")
}
