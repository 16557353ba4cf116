package syntax

import "strings"

// structural characters terminate bare words.
const structural = "{}[],:\""

// Parse builds a tree for text. It never fails: unexpected input becomes
// error placeholder nodes and missing values become zero-width placeholders.
func Parse(text string) *Tree {
	p := &parser{src: text}
	root := &Node{Kind: KindJSONText, From: 0, To: len(text)}
	p.skipSpace()
	if !p.eof() {
		root.add(p.value())
	}
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		root.add(p.junk())
	}
	root.To = len(text)
	return &Tree{Root: root, Text: text}
}

type parser struct {
	src string
	pos int
}

func (p *parser) eof() bool { return p.pos >= len(p.src) }

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) token(kind Kind) *Node {
	n := &Node{Kind: kind, From: p.pos, To: p.pos + 1}
	p.pos++
	return n
}

func (p *parser) placeholder() *Node {
	return &Node{Kind: KindError, From: p.pos, To: p.pos}
}

func (p *parser) value() *Node {
	switch c := p.peek(); {
	case c == '{':
		return p.object()
	case c == '[':
		return p.array()
	case c == '"':
		return p.str(KindString)
	case c == '-' || (c >= '0' && c <= '9'):
		return p.number()
	case strings.IndexByte("]},:", c) >= 0:
		n := &Node{Kind: KindError, From: p.pos, To: p.pos + 1}
		p.pos++
		return n
	default:
		return p.word()
	}
}

func (p *parser) object() *Node {
	obj := &Node{Kind: KindObject, From: p.pos}
	obj.add(p.token(KindLBrace))
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		c := p.peek()
		if c == '}' {
			obj.add(p.token(KindRBrace))
			break
		}
		switch c {
		case ',':
			obj.add(p.token(KindComma))
		case '"':
			obj.add(p.property())
		default:
			obj.add(p.junk())
		}
	}
	obj.To = p.pos
	return obj
}

func (p *parser) property() *Node {
	prop := &Node{Kind: KindProperty, From: p.pos}
	prop.add(p.str(KindPropertyName))
	p.skipSpace()
	if p.peek() == ':' {
		prop.add(p.token(KindColon))
		p.skipSpace()
	} else {
		prop.add(p.placeholder())
	}
	if c := p.peek(); p.eof() || c == ',' || c == '}' {
		prop.add(p.placeholder())
	} else {
		prop.add(p.value())
	}
	return prop
}

func (p *parser) array() *Node {
	arr := &Node{Kind: KindArray, From: p.pos}
	arr.add(p.token(KindLBracket))
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		switch p.peek() {
		case ']':
			arr.add(p.token(KindRBracket))
			arr.To = p.pos
			return arr
		case ',':
			arr.add(p.token(KindComma))
		default:
			arr.add(p.value())
		}
	}
	arr.To = p.pos
	return arr
}

// str scans a double-quoted literal. An unterminated literal stops at the
// end of its line.
func (p *parser) str(kind Kind) *Node {
	n := &Node{Kind: kind, From: p.pos}
	p.pos++
	for !p.eof() {
		c := p.src[p.pos]
		if c == '\\' {
			p.pos += 2
			continue
		}
		if c == '\n' {
			break
		}
		p.pos++
		if c == '"' {
			break
		}
	}
	if p.pos > len(p.src) {
		p.pos = len(p.src)
	}
	n.To = p.pos
	return n
}

func (p *parser) number() *Node {
	n := &Node{Kind: KindNumber, From: p.pos}
	for !p.eof() && strings.IndexByte("0123456789+-.eE", p.src[p.pos]) >= 0 {
		p.pos++
	}
	n.To = p.pos
	return n
}

// word consumes a bare identifier; only true, false and null are values.
func (p *parser) word() *Node {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || strings.IndexByte(structural, c) >= 0 {
			break
		}
		p.pos++
	}
	kind := KindError
	switch p.src[start:p.pos] {
	case "true":
		kind = KindTrue
	case "false":
		kind = KindFalse
	case "null":
		kind = KindNull
	}
	return &Node{Kind: kind, From: start, To: p.pos}
}

// junk wraps unexpected input in an error node, always consuming at least
// one byte so the parse makes progress.
func (p *parser) junk() *Node {
	start := p.pos
	if strings.IndexByte(structural, p.peek()) >= 0 {
		p.pos++
		return &Node{Kind: KindError, From: start, To: p.pos}
	}
	n := p.word()
	n.Kind = KindError
	if n.To == start {
		p.pos++
		n.To = p.pos
	}
	return n
}
