package keyvalues

import (
	"errors"
	"fmt"
	"strings"
)

// Node is a single KeyValues entry: either a leaf ("key" "value") or a
// subsection ("key" { ... }). Children keep file order.
type Node struct {
	Key      string
	Value    string
	Children []*Node
	HasValue bool
}

// ErrSyntax marks unparsable KeyValues input.
var ErrSyntax = errors.New("keyvalues syntax error")

// Parse decodes KeyValues text. The returned node is a synthetic root whose
// Children are the top-level entries.
func Parse(data []byte) (*Node, error) {
	lex := &lexer{input: string(data)}
	root := &Node{}
	if err := parseInto(lex, root, true); err != nil {
		return nil, err
	}
	return root, nil
}

// Child returns the direct child with the given key, or nil.
func (n *Node) Child(key string) *Node {
	for _, c := range n.Children {
		if c.Key == key {
			return c
		}
	}
	return nil
}

// ChildFold returns the direct child whose key matches case-insensitively.
func (n *Node) ChildFold(key string) *Node {
	for _, c := range n.Children {
		if strings.EqualFold(c.Key, key) {
			return c
		}
	}
	return nil
}

// Ensure returns the direct child subsection with the given key, appending
// an empty one when absent.
func (n *Node) Ensure(key string) *Node {
	if c := n.Child(key); c != nil {
		return c
	}
	c := &Node{Key: key}
	n.Children = append(n.Children, c)
	return c
}

// Set writes a leaf value under n, overwriting in place when the key exists
// and appending otherwise.
func (n *Node) Set(key, value string) {
	if c := n.Child(key); c != nil {
		c.Value = value
		c.HasValue = true
		c.Children = nil
		return
	}
	n.Children = append(n.Children, &Node{Key: key, Value: value, HasValue: true})
}

// Marshal serializes the tree rooted at the synthetic root node.
func Marshal(root *Node) []byte {
	var b strings.Builder
	for _, c := range root.Children {
		writeNode(&b, c, 0)
	}
	return []byte(b.String())
}

func writeNode(b *strings.Builder, n *Node, depth int) {
	indent := strings.Repeat("\t", depth)
	b.WriteString(indent)
	b.WriteString(quote(n.Key))
	if n.HasValue {
		b.WriteString("\t\t")
		b.WriteString(quote(n.Value))
		b.WriteByte('\n')
		return
	}
	b.WriteByte('\n')
	b.WriteString(indent)
	b.WriteString("{\n")
	for _, c := range n.Children {
		writeNode(b, c, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("}\n")
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

type lexer struct {
	input string
	pos   int
	line  int
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenString
	tokenOpen
	tokenClose
)

func (l *lexer) next() (tokenKind, string, error) {
	l.skipSpace()
	if l.pos >= len(l.input) {
		return tokenEOF, "", nil
	}
	switch c := l.input[l.pos]; c {
	case '{':
		l.pos++
		return tokenOpen, "", nil
	case '}':
		l.pos++
		return tokenClose, "", nil
	case '"':
		return l.quotedString()
	default:
		return l.bareString()
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\n':
			l.line++
			l.pos++
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *lexer) quotedString() (tokenKind, string, error) {
	l.pos++ // opening quote
	var b strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case '"':
			l.pos++
			return tokenString, b.String(), nil
		case '\\':
			if l.pos+1 >= len(l.input) {
				return tokenEOF, "", fmt.Errorf("%w: dangling escape at line %d", ErrSyntax, l.line+1)
			}
			l.pos++
			switch e := l.input[l.pos]; e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"', '\\':
				b.WriteByte(e)
			default:
				b.WriteByte('\\')
				b.WriteByte(e)
			}
			l.pos++
		case '\n':
			return tokenEOF, "", fmt.Errorf("%w: unterminated string at line %d", ErrSyntax, l.line+1)
		default:
			b.WriteByte(c)
			l.pos++
		}
	}
	return tokenEOF, "", fmt.Errorf("%w: unterminated string at line %d", ErrSyntax, l.line+1)
}

func (l *lexer) bareString() (tokenKind, string, error) {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '{' || c == '}' || c == '"' {
			break
		}
		l.pos++
	}
	return tokenString, l.input[start:l.pos], nil
}

func parseInto(lex *lexer, parent *Node, top bool) error {
	for {
		kind, text, err := lex.next()
		if err != nil {
			return err
		}
		switch kind {
		case tokenEOF:
			if !top {
				return fmt.Errorf("%w: unexpected end of input inside section %q", ErrSyntax, parent.Key)
			}
			return nil
		case tokenClose:
			if top {
				return fmt.Errorf("%w: unexpected '}' at top level", ErrSyntax)
			}
			return nil
		case tokenOpen:
			return fmt.Errorf("%w: unexpected '{' without a key", ErrSyntax)
		case tokenString:
			node := &Node{Key: text}
			vKind, vText, err := lex.next()
			if err != nil {
				return err
			}
			switch vKind {
			case tokenString:
				node.Value = vText
				node.HasValue = true
			case tokenOpen:
				if err := parseInto(lex, node, false); err != nil {
					return err
				}
			default:
				return fmt.Errorf("%w: key %q has no value or section", ErrSyntax, text)
			}
			parent.Children = append(parent.Children, node)
		}
	}
}
