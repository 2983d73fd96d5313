package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/cuemby/burrow/pkg/types"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Desired is the desired cluster state read from a YAML file
type Desired struct {
	Cluster     *ClusterSpec    `yaml:"cluster,omitempty"`
	Resources   []ResourceSpec  `yaml:"resources,omitempty" validate:"dive"`
	Constraints ConstraintSpecs `yaml:"constraints,omitempty"`
	Properties  []PropertySpec  `yaml:"properties,omitempty" validate:"dive"`
}

// ClusterSpec is the desired membership
type ClusterSpec struct {
	Name            string `yaml:"name" validate:"required_unless=State absent"`
	NodeList        string `yaml:"nodeList" validate:"required_unless=State absent"`
	AllowNodeAdd    bool   `yaml:"allowNodeAdd,omitempty"`
	AllowNodeRemove bool   `yaml:"allowNodeRemove,omitempty"`
	State           string `yaml:"state,omitempty" validate:"omitempty,oneof=present absent"`
	Token           int    `yaml:"token,omitempty" validate:"gte=0"`
	Transport       string `yaml:"transport,omitempty" validate:"omitempty,oneof=default udp udpu knet"`
}

type ResourceSpec struct {
	Name    string `yaml:"name" validate:"required"`
	Class   string `yaml:"class,omitempty" validate:"omitempty,oneof=ocf systemd stonith"`
	Type    string `yaml:"type" validate:"required_unless=State absent"`
	Options string `yaml:"options,omitempty"`
	State   string `yaml:"state,omitempty" validate:"omitempty,oneof=present absent"`
}

type ConstraintSpecs struct {
	Order      []OrderSpec      `yaml:"order,omitempty" validate:"dive"`
	Colocation []ColocationSpec `yaml:"colocation,omitempty" validate:"dive"`
	Location   []LocationSpec   `yaml:"location,omitempty" validate:"dive"`
}

type OrderSpec struct {
	Resource1       string `yaml:"resource1" validate:"required"`
	Resource1Action string `yaml:"resource1Action,omitempty"`
	Resource2       string `yaml:"resource2" validate:"required"`
	Resource2Action string `yaml:"resource2Action,omitempty"`
	Kind            string `yaml:"kind,omitempty"`
	Symmetrical     string `yaml:"symmetrical,omitempty"`
	State           string `yaml:"state,omitempty" validate:"omitempty,oneof=present absent"`
}

type ColocationSpec struct {
	Resource1     string `yaml:"resource1" validate:"required"`
	Resource1Role string `yaml:"resource1Role,omitempty"`
	Resource2     string `yaml:"resource2" validate:"required"`
	Resource2Role string `yaml:"resource2Role,omitempty"`
	Score         string `yaml:"score,omitempty"`
	State         string `yaml:"state,omitempty" validate:"omitempty,oneof=present absent"`
}

type LocationSpec struct {
	Resource          string `yaml:"resource" validate:"required"`
	Node              string `yaml:"node,omitempty"`
	Rule              string `yaml:"rule,omitempty"`
	ConstraintID      string `yaml:"constraintId,omitempty"`
	Score             string `yaml:"score,omitempty"`
	ResourceDiscovery string `yaml:"resourceDiscovery,omitempty"`
	State             string `yaml:"state,omitempty" validate:"omitempty,oneof=present absent"`
}

type PropertySpec struct {
	Name  string `yaml:"name" validate:"required"`
	Value string `yaml:"value,omitempty"`
	State string `yaml:"state,omitempty" validate:"omitempty,oneof=present absent"`
}

// LoadDesired reads and validates a desired state file. Unknown keys are
// rejected.
func LoadDesired(path string) (*Desired, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read desired state: %w", err)
	}
	return ParseDesired(data)
}

// ParseDesired decodes and validates a desired state document
func ParseDesired(data []byte) (*Desired, error) {
	var d Desired
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("failed to parse desired state: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// report fields by their YAML names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the document structure. Semantic checks on individual
// objects happen when they are reconciled.
func (d *Desired) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	field := strings.TrimPrefix(fe.Namespace(), "Desired.")
	return types.NewValidationError(field, "%s", describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of [%s], got %q", fe.Param(), fe.Value())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

func state(s string) types.State {
	if s == "" {
		return types.StatePresent
	}
	return types.State(s)
}

// Membership converts the cluster section
func (c ClusterSpec) Membership() types.DesiredMembership {
	return types.DesiredMembership{
		ClusterName: c.Name,
		Nodes:       types.ParseNodeList(c.NodeList),
		AllowAdd:    c.AllowNodeAdd,
		AllowRemove: c.AllowNodeRemove,
		State:       state(c.State),
		Token:       c.Token,
		Transport:   c.Transport,
	}
}

func (r ResourceSpec) Spec() types.ResourceSpec {
	class := types.ResourceClass(r.Class)
	if class == "" {
		class = types.ResourceClassOCF
	}
	return types.ResourceSpec{
		Name:    r.Name,
		Class:   class,
		Type:    r.Type,
		Options: r.Options,
		State:   state(r.State),
	}
}

func (o OrderSpec) Constraint() types.OrderConstraint {
	return types.OrderConstraint{
		First:       o.Resource1,
		FirstAction: o.Resource1Action,
		Then:        o.Resource2,
		ThenAction:  o.Resource2Action,
		OrderKind:   o.Kind,
		Symmetrical: o.Symmetrical,
		State:       state(o.State),
	}
}

func (c ColocationSpec) Constraint() types.ColocationConstraint {
	return types.ColocationConstraint{
		Resource:     c.Resource1,
		ResourceRole: c.Resource1Role,
		With:         c.Resource2,
		WithRole:     c.Resource2Role,
		Score:        c.Score,
		State:        state(c.State),
	}
}

func (l LocationSpec) Constraint() types.LocationConstraint {
	return types.LocationConstraint{
		Resource:          l.Resource,
		Node:              l.Node,
		Rule:              l.Rule,
		ID:                l.ConstraintID,
		Score:             l.Score,
		ResourceDiscovery: l.ResourceDiscovery,
		State:             state(l.State),
	}
}

func (p PropertySpec) Spec() types.PropertySpec {
	return types.PropertySpec{Name: p.Name, Value: p.Value, State: state(p.State)}
}

// AllConstraints returns the constraints in reconcile order: order,
// colocation, then location
func (c ConstraintSpecs) AllConstraints() []types.Constraint {
	out := make([]types.Constraint, 0, len(c.Order)+len(c.Colocation)+len(c.Location))
	for _, o := range c.Order {
		out = append(out, o.Constraint())
	}
	for _, co := range c.Colocation {
		out = append(out, co.Constraint())
	}
	for _, l := range c.Location {
		out = append(out, l.Constraint())
	}
	return out
}
