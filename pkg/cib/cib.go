package cib

import (
	"fmt"
	"os"

	"github.com/beevik/etree"
	"github.com/cuemby/burrow/pkg/types"
)

// Document is a parsed CIB. It is loaded fresh for every reconcile call
// and never cached.
type Document struct {
	doc *etree.Document
}

// Parse parses CIB XML as printed by `pcs cluster cib`
func Parse(data []byte) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to parse CIB: %w", err)
	}
	d := &Document{doc: doc}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// LoadFile parses a CIB file. A missing or unparsable file is an error.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read CIB file: %w", err)
	}
	d, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func (d *Document) validate() error {
	root := d.doc.Root()
	if root == nil || root.Tag != "cib" {
		return fmt.Errorf("failed to parse CIB: root element is not <cib>")
	}
	if root.SelectElement("configuration") == nil {
		return fmt.Errorf("failed to parse CIB: missing <configuration>")
	}
	return nil
}

// Root returns the <cib> element
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

func (d *Document) configuration() *etree.Element {
	return d.doc.Root().SelectElement("configuration")
}

// section returns configuration/<name>, creating it when missing
func (d *Document) section(name string) *etree.Element {
	conf := d.configuration()
	if el := conf.SelectElement(name); el != nil {
		return el
	}
	return conf.CreateElement(name)
}

// Resources returns configuration/resources
func (d *Document) Resources() *etree.Element { return d.section("resources") }

// Constraints returns configuration/constraints
func (d *Document) Constraints() *etree.Element { return d.section("constraints") }

// CRMConfig returns configuration/crm_config
func (d *Document) CRMConfig() *etree.Element { return d.section("crm_config") }

var resourceTags = map[string]bool{
	"primitive": true,
	"group":     true,
	"clone":     true,
	"master":    true,
	"bundle":    true,
}

// FindResource returns the first resource element with the given id in a
// depth-first walk of configuration/resources, or nil
func (d *Document) FindResource(id string) *etree.Element {
	return findResource(d.Resources(), id)
}

func findResource(parent *etree.Element, id string) *etree.Element {
	for _, child := range parent.ChildElements() {
		if !resourceTags[child.Tag] {
			continue
		}
		if child.SelectAttrValue("id", "") == id {
			return child
		}
		if found := findResource(child, id); found != nil {
			return found
		}
	}
	return nil
}

// Attr is an attribute name/value pair used to identify a constraint
type Attr struct {
	Name  string
	Value string
}

// Identity selects a constraint. All pairs must match and, when Any is
// non-empty, at least one of its pairs must match. Pairs with an empty
// value are ignored so an optional key never matches an absent attribute.
type Identity struct {
	All []Attr
	Any []Attr
}

func (id Identity) matches(el *etree.Element) bool {
	for _, a := range id.All {
		if a.Value == "" {
			continue
		}
		if el.SelectAttrValue(a.Name, "") != a.Value {
			return false
		}
	}
	anyGiven := false
	for _, a := range id.Any {
		if a.Value == "" {
			continue
		}
		anyGiven = true
		if el.SelectAttrValue(a.Name, "") == a.Value {
			return true
		}
	}
	return !anyGiven
}

// FindConstraint scans rsc_<kind> elements in document order and returns
// the first one matching identity, or nil
func (d *Document) FindConstraint(kind types.ConstraintKind, identity Identity) *etree.Element {
	for _, el := range d.Constraints().SelectElements(kind.Tag()) {
		if identity.matches(el) {
			return el
		}
	}
	return nil
}

// Replace splices a copy of repl in place of live, keeping its position
// among its siblings
func (d *Document) Replace(live, repl *etree.Element) error {
	parent := live.Parent()
	if parent == nil {
		return fmt.Errorf("cannot replace detached element <%s>", live.Tag)
	}
	idx := live.Index()
	parent.RemoveChildAt(idx)
	parent.InsertChildAt(idx, repl.Copy())
	return nil
}

// SandboxCopy returns a copy of the document with resources, constraints
// and status emptied. The copy keeps the schema version and cluster
// options so pcs validates sandbox objects against the same schema.
func (d *Document) SandboxCopy() *Document {
	c := &Document{doc: d.doc.Copy()}
	for _, name := range []string{"resources", "constraints"} {
		clearChildren(c.section(name))
	}
	if status := c.doc.Root().SelectElement("status"); status != nil {
		clearChildren(status)
	}
	return c
}

func clearChildren(el *etree.Element) {
	for len(el.Child) > 0 {
		el.RemoveChildAt(0)
	}
}

// Bytes serializes the document
func (d *Document) Bytes() ([]byte, error) {
	return d.doc.WriteToBytes()
}

// WriteFile serializes the document to path
func (d *Document) WriteFile(path string) error {
	data, err := d.Bytes()
	if err != nil {
		return fmt.Errorf("failed to serialize CIB: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write CIB file: %w", err)
	}
	return nil
}
