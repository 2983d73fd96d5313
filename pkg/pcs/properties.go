package pcs

import (
	"fmt"
	"strings"
)

// ParseProperties parses the output of "pcs property show" (pcs < 0.11)
// or "pcs property config":
//
//	Cluster Properties:
//	 cluster-name: hacluster
//	 stonith-enabled: false
//
//	Cluster Properties: cib-bootstrap-options
//	  cluster-name=hacluster
//
// Only the Cluster Properties section is read; other sections such as
// Node Attributes are skipped. Every line inside the section must be a
// "name: value" or "name=value" pair.
func ParseProperties(out string) (map[string]string, error) {
	props := map[string]string{}
	found := false
	inSection := false

	for i, line := range strings.Split(out, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "\t") {
			inSection = strings.HasPrefix(line, "Cluster Properties:")
			found = found || inSection
			continue
		}
		if !inSection {
			continue
		}

		name, value, ok := splitProperty(strings.TrimSpace(line))
		if !ok {
			return nil, fmt.Errorf("unexpected property line %d: %q", i+1, line)
		}
		props[name] = value
	}

	if !found {
		return nil, fmt.Errorf("no Cluster Properties section in property listing")
	}
	return props, nil
}

func splitProperty(line string) (string, string, bool) {
	sep := strings.IndexAny(line, ":=")
	if sep <= 0 {
		return "", "", false
	}
	name := strings.TrimSpace(line[:sep])
	if strings.ContainsAny(name, " \t") {
		return "", "", false
	}
	return name, strings.TrimSpace(line[sep+1:]), true
}
