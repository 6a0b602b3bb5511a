package javasrc

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokChar
	tokNumber
	tokPunct
	tokDoc // /** ... */ comment, kept for doc attachment
)

type token struct {
	kind tokenKind
	text string
	line int
}

// lexer tokenizes Java source. Line and block comments are discarded, doc
// comments are emitted so the parser can attach them to declarations.
type lexer struct {
	src  string
	pos  int
	line int
}

func newLexer(src string) *lexer {
	return &lexer{src: src, line: 1}
}

func (l *lexer) errorf(format string, args ...any) error {
	return fmt.Errorf("line %d: %s", l.line, fmt.Sprintf(format, args...))
}

func (l *lexer) tokens() ([]token, error) {
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekByteAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r' || c == '\f':
			l.pos++
		case c == '/' && l.peekByteAt(1) == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		case c == '/' && l.peekByteAt(1) == '*':
			isDoc := l.peekByteAt(2) == '*' && l.peekByteAt(3) != '/'
			start := l.pos
			startLine := l.line
			l.pos += 2
			closed := false
			for l.pos < len(l.src) {
				if l.src[l.pos] == '\n' {
					l.line++
				}
				if l.src[l.pos] == '*' && l.peekByteAt(1) == '/' {
					l.pos += 2
					closed = true
					break
				}
				l.pos++
			}
			if !closed {
				return token{}, l.errorf("unterminated block comment")
			}
			if isDoc {
				return token{kind: tokDoc, text: l.src[start:l.pos], line: startLine}, nil
			}
		default:
			return l.lexToken()
		}
	}
	return token{kind: tokEOF, line: l.line}, nil
}

func (l *lexer) lexToken() (token, error) {
	c, size := utf8.DecodeRuneInString(l.src[l.pos:])
	startLine := l.line

	switch {
	case c == '"':
		return l.lexString()
	case c == '\'':
		return l.lexCharLiteral()
	case unicode.IsDigit(c):
		return l.lexNumber()
	case c == '_' || c == '$' || unicode.IsLetter(c):
		start := l.pos
		for l.pos < len(l.src) {
			r, rs := utf8.DecodeRuneInString(l.src[l.pos:])
			if r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r) {
				l.pos += rs
				continue
			}
			break
		}
		return token{kind: tokIdent, text: l.src[start:l.pos], line: startLine}, nil
	default:
		l.pos += size
		return token{kind: tokPunct, text: string(c), line: startLine}, nil
	}
}

func (l *lexer) lexString() (token, error) {
	startLine := l.line

	// Text block """ ... """
	if l.peekByteAt(1) == '"' && l.peekByteAt(2) == '"' {
		l.pos += 3
		start := l.pos
		for l.pos < len(l.src) {
			if l.src[l.pos] == '\n' {
				l.line++
			}
			if l.src[l.pos] == '"' && l.peekByteAt(1) == '"' && l.peekByteAt(2) == '"' {
				text := l.src[start:l.pos]
				l.pos += 3
				return token{kind: tokString, text: text, line: startLine}, nil
			}
			l.pos++
		}
		return token{}, l.errorf("unterminated text block")
	}

	l.pos++
	var out []byte
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: string(out), line: startLine}, nil
		case '\\':
			l.pos++
			if l.pos < len(l.src) {
				out = append(out, unescape(l.src[l.pos]))
				l.pos++
			}
		case '\n':
			return token{}, l.errorf("unterminated string literal")
		default:
			out = append(out, c)
			l.pos++
		}
	}
	return token{}, l.errorf("unterminated string literal")
}

func (l *lexer) lexCharLiteral() (token, error) {
	startLine := l.line
	l.pos++
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' {
			l.pos += 2
			continue
		}
		if c == '\'' {
			text := l.src[start:l.pos]
			l.pos++
			return token{kind: tokChar, text: text, line: startLine}, nil
		}
		if c == '\n' {
			break
		}
		l.pos++
	}
	return token{}, l.errorf("unterminated char literal")
}

func (l *lexer) lexNumber() (token, error) {
	startLine := l.line
	start := l.pos
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '_' || c == '.' || c == 'x' || c == 'X' ||
			(c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F') ||
			c == 'l' || c == 'L' || c == 'd' || c == 'D' {
			l.pos++
			continue
		}
		break
	}
	return token{kind: tokNumber, text: l.src[start:l.pos], line: startLine}, nil
}

func unescape(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	default:
		return c
	}
}
