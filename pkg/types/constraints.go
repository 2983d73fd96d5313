package types

import "fmt"

// ConstraintKind names a Pacemaker constraint type
type ConstraintKind string

const (
	ConstraintOrder      ConstraintKind = "order"
	ConstraintColocation ConstraintKind = "colocation"
	ConstraintLocation   ConstraintKind = "location"
)

// Tag returns the CIB element name holding constraints of this kind
func (k ConstraintKind) Tag() string {
	return "rsc_" + string(k)
}

// Default values applied by pcs when a field is not given
const (
	DefaultScore  = "INFINITY"
	DefaultAction = "start"
	DefaultKind   = "Mandatory"
	DefaultRole   = "Started"
)

// Constraint is one of OrderConstraint, ColocationConstraint or
// LocationConstraint
type Constraint interface {
	Kind() ConstraintKind
	DesiredState() State
	// String describes the constraint by its identity key
	String() string
}

// OrderConstraint: start Then after First
type OrderConstraint struct {
	First       string
	FirstAction string
	Then        string
	ThenAction  string
	OrderKind   string // Optional, Mandatory or Serialize
	Symmetrical string // "true" or "false"
	State       State
}

func (c OrderConstraint) Kind() ConstraintKind { return ConstraintOrder }
func (c OrderConstraint) DesiredState() State  { return c.State }
func (c OrderConstraint) String() string {
	return fmt.Sprintf("order %s then %s", c.First, c.Then)
}

// WithDefaults fills unset fields with pcs defaults
func (c OrderConstraint) WithDefaults() OrderConstraint {
	if c.FirstAction == "" {
		c.FirstAction = DefaultAction
	}
	if c.ThenAction == "" {
		c.ThenAction = DefaultAction
	}
	if c.OrderKind == "" {
		c.OrderKind = DefaultKind
	}
	if c.Symmetrical == "" {
		c.Symmetrical = "true"
	}
	if c.State == "" {
		c.State = StatePresent
	}
	return c
}

// ColocationConstraint keeps Resource together with (or away from) With
type ColocationConstraint struct {
	Resource     string
	ResourceRole string // empty means no role was requested
	With         string
	WithRole     string
	Score        string
	State        State
}

func (c ColocationConstraint) Kind() ConstraintKind { return ConstraintColocation }
func (c ColocationConstraint) DesiredState() State  { return c.State }
func (c ColocationConstraint) String() string {
	return fmt.Sprintf("colocation %s with %s", c.Resource, c.With)
}

func (c ColocationConstraint) WithDefaults() ColocationConstraint {
	if c.Score == "" {
		c.Score = DefaultScore
	}
	if c.State == "" {
		c.State = StatePresent
	}
	return c
}

// HasRoles reports whether either side asked for a specific role
func (c ColocationConstraint) HasRoles() bool {
	return c.ResourceRole != "" || c.WithRole != ""
}

// LocationConstraint places Resource on Node, or wherever Rule matches.
// Node and Rule are mutually exclusive.
type LocationConstraint struct {
	Resource          string
	Node              string
	Rule              string
	ID                string
	Score             string
	ResourceDiscovery string // always, never or exclusive
	State             State
}

func (c LocationConstraint) Kind() ConstraintKind { return ConstraintLocation }
func (c LocationConstraint) DesiredState() State  { return c.State }
func (c LocationConstraint) String() string {
	if c.Rule != "" {
		return fmt.Sprintf("location %s rule %s", c.Resource, c.ID)
	}
	return fmt.Sprintf("location %s on %s", c.Resource, c.Node)
}

func (c LocationConstraint) WithDefaults() LocationConstraint {
	if c.Score == "" {
		c.Score = DefaultScore
	}
	if c.State == "" {
		c.State = StatePresent
	}
	return c
}
