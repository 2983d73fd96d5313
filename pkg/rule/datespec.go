package rule

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/beevik/etree"
)

// DateSpecFields lists the date-spec fields in the order pcs writes them
var DateSpecFields = []string{
	"hours", "monthdays", "weekdays", "yeardays",
	"months", "weeks", "years", "weekyears", "moon",
}

var dateSpecField = regexp.MustCompile(
	`^(hours|monthdays|weekdays|yeardays|months|weeks|years|weekyears|moon)=['"]?([\w-]+)['"]?$`)

// DateSpec is a sparse set of calendar fields. It is used both for
// date-spec expressions and for the duration of an in_range expression.
type DateSpec map[string]string

// ParseDateSpec parses space separated field=value pairs
func ParseDateSpec(s string) (DateSpec, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty date spec")
	}
	spec := DateSpec{}
	for _, tok := range tokens {
		m := dateSpecField.FindStringSubmatch(tok)
		if m == nil {
			return nil, fmt.Errorf("invalid date spec field %q", tok)
		}
		if _, dup := spec[m[1]]; dup {
			return nil, fmt.Errorf("date spec field %q given twice", m[1])
		}
		spec[m[1]] = m[2]
	}
	return spec, nil
}

// Matches compares every known field against the attributes of el.
// A field missing on both sides is equal.
func (d DateSpec) Matches(el *etree.Element) bool {
	for _, f := range DateSpecFields {
		if d[f] != el.SelectAttrValue(f, "") {
			return false
		}
	}
	return true
}

func (d DateSpec) String() string {
	parts := make([]string, 0, len(d))
	for _, f := range DateSpecFields {
		if v, ok := d[f]; ok {
			parts = append(parts, f+"="+v)
		}
	}
	return strings.Join(parts, " ")
}

func (d DateSpec) setAttrs(el *etree.Element) {
	for _, f := range DateSpecFields {
		if v, ok := d[f]; ok {
			el.CreateAttr(f, v)
		}
	}
}
