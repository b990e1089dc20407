package classfile

import (
	"fmt"
	"strings"
)

// parseSignature visits every class named by a field/method descriptor or a generic signature;
// names are reported in internal form, inner classes of parameterized types as Outer$Inner
func parseSignature(text string, visit func(internalName string)) error {
	p := &signatureParser{text: text, visit: visit}
	if p.peek() == '<' {
		p.typeParameters()
	}
	for p.err == nil && p.pos < len(p.text) {
		switch p.peek() {
		case '(', ')', '^':
			p.pos++
		default:
			p.typeSignature()
		}
	}
	return p.err
}

type signatureParser struct {
	text  string
	pos   int
	visit func(string)
	err   error
}

func (p *signatureParser) peek() byte {
	if p.pos >= len(p.text) {
		return 0
	}
	return p.text[p.pos]
}

func (p *signatureParser) fail(reason string) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: invalid signature %q: %s at %d", ErrMalformed, p.text, reason, p.pos)
	}
}

func (p *signatureParser) typeParameters() {
	p.pos++ // <
	for p.err == nil && p.peek() != '>' {
		colon := strings.IndexByte(p.text[p.pos:], ':')
		if colon <= 0 {
			p.fail("expected type parameter")
			return
		}
		p.pos += colon
		for p.err == nil && p.peek() == ':' {
			p.pos++
			switch p.peek() {
			case 'L', 'T', '[':
				p.typeSignature()
			}
		}
	}
	p.pos++ // >
}

func (p *signatureParser) typeSignature() {
	switch p.peek() {
	case 'B', 'C', 'D', 'F', 'I', 'J', 'S', 'Z', 'V':
		p.pos++
	case 'L':
		p.classType()
	case 'T':
		end := strings.IndexByte(p.text[p.pos:], ';')
		if end < 0 {
			p.fail("unterminated type variable")
			return
		}
		p.pos += end + 1
	case '[':
		p.pos++
		p.typeSignature()
	case 0:
		p.fail("unexpected end")
	default:
		p.fail(fmt.Sprintf("unexpected %q", p.peek()))
	}
}

func (p *signatureParser) identifier() string {
	start := p.pos
	for p.pos < len(p.text) {
		switch p.text[p.pos] {
		case '<', '.', ';':
			return p.text[start:p.pos]
		}
		p.pos++
	}
	return p.text[start:p.pos]
}

func (p *signatureParser) classType() {
	p.pos++ // L
	name := p.identifier()
	if name == "" {
		p.fail("empty class name")
		return
	}
	for p.err == nil {
		if p.peek() == '<' {
			p.typeArguments()
		}
		p.visit(name)
		switch p.peek() {
		case '.':
			p.pos++
			simple := p.identifier()
			if simple == "" {
				p.fail("empty inner class name")
				return
			}
			name += "$" + simple
		case ';':
			p.pos++
			return
		default:
			p.fail("unterminated class type")
		}
	}
}

func (p *signatureParser) typeArguments() {
	p.pos++ // <
	for p.err == nil && p.peek() != '>' {
		switch p.peek() {
		case '*':
			p.pos++
		case '+', '-':
			p.pos++
			p.typeSignature()
		default:
			p.typeSignature()
		}
	}
	p.pos++ // >
}
