package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// Operation values as written to the CIB
const (
	OpGt         = "gt"
	OpLt         = "lt"
	OpInRange    = "in_range"
	OpDateSpec   = "date_spec"
	OpDefined    = "defined"
	OpNotDefined = "not_defined"
)

// BooleanOp joins the expressions of a rule
type BooleanOp string

const (
	And BooleanOp = "and"
	Or  BooleanOp = "or"
)

// Expression is a single predicate of a rule
type Expression struct {
	Operation string
	Attribute string
	Value     string
	// Type is the optional comparison type of an attribute expression
	// (string, integer, number or version)
	Type  string
	Start string
	End   string
	// Duration is set for "date in_range X to duration ..."
	Duration DateSpec
	// DateSpec is set for "date-spec ..."
	DateSpec DateSpec
}

// IsDate reports whether the expression is stored as a date_expression
func (e Expression) IsDate() bool {
	switch e.Operation {
	case OpInRange, OpDateSpec:
		return true
	case OpGt:
		return e.Attribute == "" && e.Start != ""
	case OpLt:
		return e.Attribute == "" && e.End != ""
	}
	return false
}

func (e Expression) String() string {
	switch {
	case e.Operation == OpDateSpec:
		return "date-spec " + e.DateSpec.String()
	case e.Operation == OpInRange && e.Duration != nil:
		return fmt.Sprintf("date in_range %s to duration %s", e.Start, e.Duration)
	case e.Operation == OpInRange:
		return fmt.Sprintf("date in_range %s to %s", e.Start, e.End)
	case e.IsDate() && e.Operation == OpLt:
		return "date lt " + e.End
	case e.IsDate():
		return fmt.Sprintf("date %s %s", e.Operation, e.Start)
	case e.Operation == OpDefined || e.Operation == OpNotDefined:
		return e.Operation + " " + e.Attribute
	case e.Type != "":
		return fmt.Sprintf("%s %s %s %s", e.Attribute, e.Operation, e.Type, e.Value)
	default:
		return fmt.Sprintf("%s %s %s", e.Attribute, e.Operation, e.Value)
	}
}

// Rule is an ordered list of expressions joined by a single operator
type Rule struct {
	BooleanOp   BooleanOp
	Expressions []Expression
}

func (r *Rule) String() string {
	parts := make([]string, len(r.Expressions))
	for i, e := range r.Expressions {
		parts[i] = e.String()
	}
	return strings.Join(parts, " "+string(r.BooleanOp)+" ")
}

var (
	boolSplit    = regexp.MustCompile(`\s+(and|or)\s+`)
	dateCompare  = regexp.MustCompile(`^date\s+(gt|lt)\s+(\S+)$`)
	dateDuration = regexp.MustCompile(`^date\s+in_range\s+(\S+)\s+to\s+duration\s+(.+)$`)
	dateRange    = regexp.MustCompile(`^date\s+in_range\s+(\S+)\s+to\s+(\S+)$`)
	dateSpec     = regexp.MustCompile(`^date-spec\s+(.+)$`)
	defined      = regexp.MustCompile(`^(defined|not_defined)\s+(\S+)$`)
	attrCompare  = regexp.MustCompile(
		`^(\S+)\s+(lt|gt|lte|gte|eq|ne)\s+(?:(string|integer|number|version)\s+)?(\S+)$`)
)

// Parse parses a location rule such as
//
//	not_defined pingd or pingd lt 1
//	date-spec hours=9-16 weekdays=1-5
//
// Rules mixing "and" and "or" are read as if every operator were the
// first one found. Any expression that does not match the grammar is an
// error.
func Parse(s string) (*Rule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty rule")
	}

	r := &Rule{BooleanOp: And}
	if m := boolSplit.FindStringSubmatch(s); m != nil {
		r.BooleanOp = BooleanOp(m[1])
	}

	for _, part := range boolSplit.Split(s, -1) {
		e, err := parseExpression(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("failed to parse rule %q: %w", s, err)
		}
		r.Expressions = append(r.Expressions, e)
	}
	return r, nil
}

func parseExpression(s string) (Expression, error) {
	if m := dateCompare.FindStringSubmatch(s); m != nil {
		// pacemaker bounds "lt" by end and "gt" by start
		if m[1] == OpLt {
			return Expression{Operation: OpLt, End: m[2]}, nil
		}
		return Expression{Operation: OpGt, Start: m[2]}, nil
	}
	if m := dateDuration.FindStringSubmatch(s); m != nil {
		d, err := ParseDateSpec(m[2])
		if err != nil {
			return Expression{}, fmt.Errorf("duration: %w", err)
		}
		return Expression{Operation: OpInRange, Start: m[1], Duration: d}, nil
	}
	if m := dateRange.FindStringSubmatch(s); m != nil {
		if m[2] == "duration" {
			return Expression{}, fmt.Errorf("missing duration in %q", s)
		}
		return Expression{Operation: OpInRange, Start: m[1], End: m[2]}, nil
	}
	if m := dateSpec.FindStringSubmatch(s); m != nil {
		d, err := ParseDateSpec(m[1])
		if err != nil {
			return Expression{}, err
		}
		return Expression{Operation: OpDateSpec, DateSpec: d}, nil
	}
	if m := defined.FindStringSubmatch(s); m != nil {
		return Expression{Operation: m[1], Attribute: m[2]}, nil
	}
	if m := attrCompare.FindStringSubmatch(s); m != nil {
		return Expression{Attribute: m[1], Operation: m[2], Type: m[3], Value: unquote(m[4])}, nil
	}
	return Expression{}, fmt.Errorf("unrecognized expression %q", s)
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// Matches reports whether the live rule element expresses the same rule
func (r *Rule) Matches(live *etree.Element) bool {
	if live == nil {
		return false
	}

	children := live.ChildElements()
	exprs := make([]*etree.Element, 0, len(children))
	for _, c := range children {
		switch c.Tag {
		case "expression", "date_expression":
			exprs = append(exprs, c)
		case "rule":
			// nested rules are never produced from a flat rule string
			return false
		}
	}
	if len(exprs) != len(r.Expressions) {
		return false
	}

	if len(r.Expressions) > 1 {
		if live.SelectAttrValue("boolean-op", string(And)) != string(r.BooleanOp) {
			return false
		}
	}

	for i, e := range r.Expressions {
		if !e.Matches(exprs[i]) {
			return false
		}
	}
	return true
}

// Matches compares the expression against an expression or date_expression
// element. Attributes absent on both sides are equal.
func (e Expression) Matches(el *etree.Element) bool {
	if el.SelectAttrValue("operation", "") != e.Operation ||
		el.SelectAttrValue("attribute", "") != e.Attribute ||
		el.SelectAttrValue("value", "") != e.Value ||
		el.SelectAttrValue("start", "") != e.Start ||
		el.SelectAttrValue("end", "") != e.End {
		return false
	}
	if e.Type != "" && el.SelectAttrValue("type", "") != e.Type {
		return false
	}

	duration := el.SelectElement("duration")
	spec := el.SelectElement("date_spec")
	switch {
	case e.Duration != nil:
		return duration != nil && spec == nil && e.Duration.Matches(duration)
	case e.DateSpec != nil:
		return spec != nil && duration == nil && e.DateSpec.Matches(spec)
	default:
		return duration == nil && spec == nil
	}
}

// Element renders the rule the way pcs stores it under rsc_location
func (r *Rule) Element(id, score string) *etree.Element {
	el := etree.NewElement("rule")
	el.CreateAttr("id", id)
	el.CreateAttr("boolean-op", string(r.BooleanOp))
	el.CreateAttr("score", score)

	for i, e := range r.Expressions {
		exprID := id + "-expr"
		if i > 0 {
			exprID = fmt.Sprintf("%s-expr-%d", id, i)
		}
		e.appendTo(el, exprID)
	}
	return el
}

func (e Expression) appendTo(parent *etree.Element, id string) {
	tag := "expression"
	if e.IsDate() {
		tag = "date_expression"
	}
	el := parent.CreateElement(tag)
	el.CreateAttr("id", id)
	el.CreateAttr("operation", e.Operation)

	for _, a := range []struct{ name, value string }{
		{"attribute", e.Attribute},
		{"type", e.Type},
		{"value", e.Value},
		{"start", e.Start},
		{"end", e.End},
	} {
		if a.value != "" {
			el.CreateAttr(a.name, a.value)
		}
	}

	if e.Duration != nil {
		d := el.CreateElement("duration")
		d.CreateAttr("id", id+"-duration")
		e.Duration.setAttrs(d)
	}
	if e.DateSpec != nil {
		d := el.CreateElement("date_spec")
		d.CreateAttr("id", id+"-datespec")
		e.DateSpec.setAttrs(d)
	}
}
