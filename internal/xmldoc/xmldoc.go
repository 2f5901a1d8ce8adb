// file: internal/xmldoc/xmldoc.go
// version: 1.1.0
// guid: 3f4a5b6c-7d8e-9f0a-1b2c-3d4e5f6a7b8c

// Package xmldoc decodes raw XML into a generic element tree. It performs
// no value coercion: attribute values stay raw strings, and repeated
// elements are always materialized as ordered child slices so downstream
// consumers never have to distinguish "one" from "one of many".
package xmldoc

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// StructuralError signals that the document is not well-formed XML or is
// missing a mandatory section. It aborts the whole parse; there is no
// partial result.
type StructuralError struct {
	Msg string
	Err error
}

func (e *StructuralError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("structural error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("structural error: %s", e.Msg)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// NewStructuralError builds a StructuralError wrapping an optional cause
func NewStructuralError(msg string, err error) *StructuralError {
	return &StructuralError{Msg: msg, Err: err}
}

// Node is one element of the generic tree. Text collects the element's
// own character data, trimmed; Children preserves document order.
type Node struct {
	Name     string
	Attrs    map[string]string
	Children []*Node
	Text     string
}

// Attr returns the named attribute value and whether it was present
func (n *Node) Attr(name string) (string, bool) {
	v, ok := n.Attrs[name]
	return v, ok
}

// ChildrenNamed returns all direct children with the given element name,
// in document order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// FirstChild returns the first direct child with the given element name,
// or nil if none exists.
func (n *Node) FirstChild(name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Decode parses raw XML text into its root element node
func Decode(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	root, err := decodeInto(dec)
	if err != nil {
		return nil, err
	}
	if root == nil {
		return nil, NewStructuralError("document has no root element", nil)
	}
	return root, nil
}

// decodeInto consumes tokens until the first top-level element has been
// fully read, building the subtree beneath it.
func decodeInto(dec *xml.Decoder) (*Node, error) {
	var root *Node
	var stack []*Node

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			if len(stack) != 0 {
				return nil, NewStructuralError("unexpected end of document", nil)
			}
			return root, nil
		}
		if err != nil {
			return nil, NewStructuralError("malformed XML", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &Node{
				Name:  t.Name.Local,
				Attrs: make(map[string]string, len(t.Attr)),
			}
			for _, a := range t.Attr {
				node.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, NewStructuralError("multiple root elements", nil)
				}
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, NewStructuralError("unbalanced end element", nil)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				if text := strings.TrimSpace(string(t)); text != "" {
					cur := stack[len(stack)-1]
					cur.Text += text
				}
			}
		}
	}
}
