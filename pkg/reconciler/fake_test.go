package reconciler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/cuemby/burrow/pkg/cib"
	"github.com/cuemby/burrow/pkg/rule"
	"github.com/cuemby/burrow/pkg/types"
	"github.com/stretchr/testify/require"
)

// fakeTool is an in-memory cluster: it keeps the CIB as XML and applies
// every command to it the way pcs would
type fakeTool struct {
	xml   []byte
	props map[string]string
	calls []string

	// skipMaterialize makes MaterializeResource succeed without creating
	skipMaterialize bool

	// roles is the sequence of roles resource status reports; the last
	// one repeats
	roles []string
}

func newFakeTool(t *testing.T) *fakeTool {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "cib.xml"))
	require.NoError(t, err)
	return &fakeTool{xml: data, props: map[string]string{}}
}

func (f *fakeTool) record(format string, args ...interface{}) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// mutations returns the recorded calls that change the cluster
func (f *fakeTool) mutations() []string {
	out := []string{}
	for _, c := range f.calls {
		if !strings.HasPrefix(c, "get") && !strings.HasPrefix(c, "list") && !strings.HasPrefix(c, "materialize") {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeTool) GetConfiguration(ctx context.Context) (*cib.Document, error) {
	f.record("get")
	return cib.Parse(f.xml)
}

func (f *fakeTool) ApplyConfiguration(ctx context.Context, doc *cib.Document) error {
	f.record("apply")
	data, err := doc.Bytes()
	if err != nil {
		return err
	}
	f.xml = data
	return nil
}

func (f *fakeTool) edit(fn func(doc *cib.Document) error) error {
	doc, err := cib.Parse(f.xml)
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	f.xml, err = doc.Bytes()
	return err
}

func primitive(spec types.ResourceSpec) *etree.Element {
	el := etree.NewElement("primitive")
	el.CreateAttr("id", spec.Name)

	parts := strings.Split(spec.Type, ":")
	switch {
	case spec.Class == types.ResourceClassStonith:
		el.CreateAttr("class", "stonith")
		el.CreateAttr("type", parts[len(parts)-1])
	case len(parts) == 3:
		el.CreateAttr("class", parts[0])
		el.CreateAttr("provider", parts[1])
		el.CreateAttr("type", parts[2])
	default:
		el.CreateAttr("class", string(spec.Class))
		el.CreateAttr("type", parts[len(parts)-1])
	}

	if fields := strings.Fields(spec.Options); len(fields) > 0 {
		ia := el.CreateElement("instance_attributes")
		ia.CreateAttr("id", spec.Name+"-instance_attributes")
		for _, field := range fields {
			kv := strings.SplitN(field, "=", 2)
			nv := ia.CreateElement("nvpair")
			nv.CreateAttr("id", spec.Name+"-instance_attributes-"+kv[0])
			nv.CreateAttr("name", kv[0])
			nv.CreateAttr("value", kv[1])
		}
	}
	return el
}

func (f *fakeTool) CreateResource(ctx context.Context, spec types.ResourceSpec) error {
	f.record("create resource %s", spec.Name)
	return f.edit(func(doc *cib.Document) error {
		doc.Resources().AddChild(primitive(spec))
		return nil
	})
}

func (f *fakeTool) MaterializeResource(ctx context.Context, spec types.ResourceSpec, file string) error {
	f.record("materialize %s", spec.Name)
	if f.skipMaterialize {
		return nil
	}
	doc, err := cib.LoadFile(file)
	if err != nil {
		return err
	}
	if doc.FindResource(spec.Name) != nil {
		return fmt.Errorf("resource %s already exists in sandbox", spec.Name)
	}
	doc.Resources().AddChild(primitive(spec))
	return doc.WriteFile(file)
}

func (f *fakeTool) DeleteResource(ctx context.Context, spec types.ResourceSpec) error {
	f.record("delete resource %s", spec.Name)
	return f.edit(func(doc *cib.Document) error {
		el := doc.FindResource(spec.Name)
		if el == nil {
			return fmt.Errorf("resource %s does not exist", spec.Name)
		}
		el.Parent().RemoveChild(el)
		return nil
	})
}

func (f *fakeTool) CreateConstraint(ctx context.Context, c types.Constraint) error {
	f.record("create %s", c)
	return f.edit(func(doc *cib.Document) error {
		constraints := doc.Constraints()
		switch c := c.(type) {
		case types.OrderConstraint:
			c = c.WithDefaults()
			el := constraints.CreateElement("rsc_order")
			el.CreateAttr("id", fmt.Sprintf("order-%s-%s-%s", c.First, c.Then, strings.ToLower(c.OrderKind)))
			el.CreateAttr("first", c.First)
			el.CreateAttr("first-action", c.FirstAction)
			el.CreateAttr("then", c.Then)
			el.CreateAttr("then-action", c.ThenAction)
			el.CreateAttr("kind", c.OrderKind)
			if c.Symmetrical == "false" {
				el.CreateAttr("symmetrical", "false")
			}
		case types.ColocationConstraint:
			c = c.WithDefaults()
			el := constraints.CreateElement("rsc_colocation")
			el.CreateAttr("id", fmt.Sprintf("colocation-%s-%s-%s", c.Resource, c.With, c.Score))
			el.CreateAttr("rsc", c.Resource)
			el.CreateAttr("with-rsc", c.With)
			el.CreateAttr("score", c.Score)
			if c.ResourceRole != "" {
				el.CreateAttr("rsc-role", c.ResourceRole)
			}
			if c.WithRole != "" {
				el.CreateAttr("with-rsc-role", c.WithRole)
			}
		case types.LocationConstraint:
			c = c.WithDefaults()
			el := constraints.CreateElement("rsc_location")
			id := c.ID
			if id == "" {
				id = fmt.Sprintf("location-%s-%s-%s", c.Resource, c.Node, c.Score)
			}
			el.CreateAttr("id", id)
			el.CreateAttr("rsc", c.Resource)
			if c.ResourceDiscovery != "" {
				el.CreateAttr("resource-discovery", c.ResourceDiscovery)
			}
			if c.Rule != "" {
				parsed, err := rule.Parse(c.Rule)
				if err != nil {
					return err
				}
				el.AddChild(parsed.Element(id+"-rule", c.Score))
			} else {
				el.CreateAttr("node", c.Node)
				el.CreateAttr("score", c.Score)
			}
		}
		return nil
	})
}

func (f *fakeTool) DeleteConstraint(ctx context.Context, id string) error {
	f.record("delete constraint %s", id)
	return f.edit(func(doc *cib.Document) error {
		for _, el := range doc.Constraints().ChildElements() {
			if el.SelectAttrValue("id", "") == id {
				doc.Constraints().RemoveChild(el)
				return nil
			}
		}
		return fmt.Errorf("constraint %s does not exist", id)
	})
}

func (f *fakeTool) ListProperties(ctx context.Context) (map[string]string, error) {
	f.record("list properties")
	out := make(map[string]string, len(f.props))
	for k, v := range f.props {
		out[k] = v
	}
	return out, nil
}

func (f *fakeTool) SetProperty(ctx context.Context, name, value string) error {
	f.record("set property %s=%s", name, value)
	f.props[name] = value
	return nil
}

func (f *fakeTool) UnsetProperty(ctx context.Context, name string) error {
	f.record("unset property %s", name)
	delete(f.props, name)
	return nil
}

func (f *fakeTool) ResourceStatus(ctx context.Context, name string) (types.ResourceStatus, error) {
	f.record("get status %s", name)
	if len(f.roles) == 0 {
		return types.ResourceStatus{}, fmt.Errorf("resource %s not found in resource status", name)
	}
	role := f.roles[0]
	if len(f.roles) > 1 {
		f.roles = f.roles[1:]
	}
	return types.ResourceStatus{Name: name, Agent: "ocf:heartbeat:IPaddr2", Role: role, Node: "n1"}, nil
}

func (f *fakeTool) SetTargetRole(ctx context.Context, name, role string) error {
	f.record("set target-role %s=%s", name, role)
	return nil
}

func (f *fakeTool) CleanupResource(ctx context.Context, name string) error {
	f.record("cleanup %s", name)
	return nil
}
