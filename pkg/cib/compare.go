package cib

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/go-cmp/cmp"
	"github.com/pmezard/go-difflib/difflib"
)

// Node is the canonical form of an element: attributes sorted, text
// trimmed, whitespace-only text, comments and processing instructions
// dropped. Two elements are equal when their canonical forms are.
type Node struct {
	Tag      string
	Attrs    []Attr
	Text     string
	Children []Node
}

// Canonicalize converts el into its canonical form
func Canonicalize(el *etree.Element) Node {
	n := Node{
		Tag:  el.FullTag(),
		Text: strings.TrimSpace(el.Text()),
	}
	for _, a := range el.Attr {
		n.Attrs = append(n.Attrs, Attr{Name: a.FullKey(), Value: a.Value})
	}
	sort.Slice(n.Attrs, func(i, j int) bool { return n.Attrs[i].Name < n.Attrs[j].Name })
	for _, c := range el.ChildElements() {
		n.Children = append(n.Children, Canonicalize(c))
	}
	return n
}

// Equal reports whether a and b are structurally identical
func Equal(a, b *etree.Element) bool {
	return cmp.Equal(Canonicalize(a), Canonicalize(b))
}

// StructDiff returns a go-cmp report of the canonical differences, empty
// when the elements are equal. Intended for debug logging.
func StructDiff(a, b *etree.Element) string {
	return cmp.Diff(Canonicalize(a), Canonicalize(b))
}

// Render returns the canonical, indented XML of el
func Render(el *etree.Element) string {
	if el == nil {
		return ""
	}
	doc := etree.NewDocument()
	doc.SetRoot(render(Canonicalize(el)))
	doc.Indent(2)
	s, err := doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

func render(n Node) *etree.Element {
	el := etree.NewElement(n.Tag)
	for _, a := range n.Attrs {
		el.CreateAttr(a.Name, a.Value)
	}
	if n.Text != "" {
		el.SetText(n.Text)
	}
	for _, c := range n.Children {
		el.AddChild(render(c))
	}
	return el
}

// Diff returns a unified diff of the canonical renderings of before and
// after. Either may be nil.
func Diff(before, after *etree.Element) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(Render(before)),
		B:        difflib.SplitLines(Render(after)),
		FromFile: "before",
		ToFile:   "after",
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return ""
	}
	return text
}
