package deck

import (
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"
)

// xmlNode is a generic element tree that round-trips OOXML markup.
// Children and character data keep their document order so that markup the
// pipeline does not understand survives a load/save cycle untouched.
type xmlNode struct {
	name     xml.Name   // empty Local means a character-data node
	attrs    []xml.Attr // xmlns declarations included
	children []*xmlNode
	text     string // set only for character-data nodes
}

// isText reports whether the node holds character data instead of an element.
func (n *xmlNode) isText() bool {
	return n.name.Local == ""
}

// attr returns the value of the named attribute, if present.
func (n *xmlNode) attr(local string) (string, bool) {
	for _, a := range n.attrs {
		if a.Name.Local == local && a.Name.Space != "xmlns" {
			return a.Value, true
		}
	}
	return "", false
}

// setAttr sets or replaces the named (namespace-less) attribute.
func (n *xmlNode) setAttr(local, value string) {
	for i, a := range n.attrs {
		if a.Name.Local == local && a.Name.Space == "" {
			n.attrs[i].Value = value
			return
		}
	}
	n.attrs = append(n.attrs, xml.Attr{Name: xml.Name{Local: local}, Value: value})
}

// child returns the first element child in the given namespace with the
// given local name.
func (n *xmlNode) child(space, local string) *xmlNode {
	for _, c := range n.children {
		if !c.isText() && c.name.Space == space && c.name.Local == local {
			return c
		}
	}
	return nil
}

// childrenNamed returns all element children matching space and local name,
// in document order.
func (n *xmlNode) childrenNamed(space, local string) []*xmlNode {
	var out []*xmlNode
	for _, c := range n.children {
		if !c.isText() && c.name.Space == space && c.name.Local == local {
			out = append(out, c)
		}
	}
	return out
}

// insertChildAt inserts a child at the given position.
func (n *xmlNode) insertChildAt(i int, c *xmlNode) {
	if i < 0 {
		i = 0
	}
	if i > len(n.children) {
		i = len(n.children)
	}
	n.children = append(n.children, nil)
	copy(n.children[i+1:], n.children[i:])
	n.children[i] = c
}

// innerText returns the concatenated character data of the node.
func (n *xmlNode) innerText() string {
	var sb strings.Builder
	for _, c := range n.children {
		if c.isText() {
			sb.WriteString(c.text)
		}
	}
	return sb.String()
}

// setInnerText replaces all character data of the node with a single
// text child, keeping element children intact.
func (n *xmlNode) setInnerText(s string) {
	kept := n.children[:0]
	for _, c := range n.children {
		if !c.isText() {
			kept = append(kept, c)
		}
	}
	n.children = append(kept, &xmlNode{text: s})
}

// parseXML reads an XML document into a node tree and records a mapping
// from namespace URI to declared prefix so the tree can be serialized with
// the original prefixes.
func parseXML(r io.Reader) (*xmlNode, map[string]string, error) {
	dec := xml.NewDecoder(r)
	prefixes := make(map[string]string)

	var root *xmlNode
	var stack []*xmlNode

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			node := &xmlNode{name: t.Name}
			node.attrs = append(node.attrs, t.Attr...)
			for _, a := range t.Attr {
				if a.Name.Space == "xmlns" {
					prefixes[a.Value] = a.Name.Local
				} else if a.Name.Space == "" && a.Name.Local == "xmlns" {
					prefixes[a.Value] = ""
				}
			}
			if len(stack) == 0 {
				root = node
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, node)
			}
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, nil, fmt.Errorf("unbalanced end element %s", t.Name.Local)
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, &xmlNode{text: string(t)})
			}
		}
		// Comments, directives and processing instructions other than the
		// XML declaration are dropped; slide parts do not rely on them.
	}

	if root == nil {
		return nil, nil, fmt.Errorf("empty XML document")
	}
	return root, prefixes, nil
}

// serializeXML writes the node tree back to XML using the prefix table
// collected at parse time.
func serializeXML(w io.Writer, root *xmlNode, prefixes map[string]string) error {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\r\n")
	if err := writeNode(&sb, root, prefixes); err != nil {
		return err
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeNode(sb *strings.Builder, n *xmlNode, prefixes map[string]string) error {
	if n.isText() {
		var esc strings.Builder
		if err := xml.EscapeText(&esc, []byte(n.text)); err != nil {
			return err
		}
		sb.WriteString(esc.String())
		return nil
	}

	name := qualifiedName(n.name, prefixes)
	sb.WriteString("<")
	sb.WriteString(name)

	for _, a := range sortedAttrs(n.attrs) {
		sb.WriteString(" ")
		sb.WriteString(attrName(a.Name, prefixes))
		sb.WriteString(`="`)
		var esc strings.Builder
		if err := xml.EscapeText(&esc, []byte(a.Value)); err != nil {
			return err
		}
		sb.WriteString(esc.String())
		sb.WriteString(`"`)
	}

	if len(n.children) == 0 {
		sb.WriteString("/>")
		return nil
	}

	sb.WriteString(">")
	for _, c := range n.children {
		if err := writeNode(sb, c, prefixes); err != nil {
			return err
		}
	}
	sb.WriteString("</")
	sb.WriteString(name)
	sb.WriteString(">")
	return nil
}

// sortedAttrs returns xmlns declarations first, preserving relative order
// otherwise. PowerPoint writes them first; keep that shape.
func sortedAttrs(attrs []xml.Attr) []xml.Attr {
	out := make([]xml.Attr, len(attrs))
	copy(out, attrs)
	sort.SliceStable(out, func(i, j int) bool {
		return isXMLNS(out[i].Name) && !isXMLNS(out[j].Name)
	})
	return out
}

func isXMLNS(name xml.Name) bool {
	return name.Space == "xmlns" || (name.Space == "" && name.Local == "xmlns")
}

func qualifiedName(name xml.Name, prefixes map[string]string) string {
	if name.Space == "" {
		return name.Local
	}
	if prefix, ok := prefixes[name.Space]; ok && prefix != "" {
		return prefix + ":" + name.Local
	}
	return name.Local
}

func attrName(name xml.Name, prefixes map[string]string) string {
	if name.Space == "xmlns" {
		return "xmlns:" + name.Local
	}
	if name.Space == "" {
		return name.Local
	}
	if name.Space == "xml" {
		return "xml:" + name.Local
	}
	if prefix, ok := prefixes[name.Space]; ok && prefix != "" {
		return prefix + ":" + name.Local
	}
	return name.Local
}
