package facts

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ParseCorosyncNodes returns the node names listed in a corosync.conf
// nodelist, in file order. A node's name: key is preferred over its
// ring0_addr:.
func ParseCorosyncNodes(r io.Reader) ([]string, error) {
	var (
		path  []string
		nodes []string
		node  map[string]string
	)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}

		switch {
		case strings.HasSuffix(line, "{"):
			name := strings.TrimSpace(strings.TrimSuffix(line, "{"))
			path = append(path, name)
			if inNode(path) {
				node = map[string]string{}
			}

		case line == "}":
			if len(path) == 0 {
				return nil, fmt.Errorf("corosync.conf line %d: unbalanced '}'", lineNo)
			}
			if inNode(path) {
				if name := nodeName(node); name != "" {
					nodes = append(nodes, name)
				}
				node = nil
			}
			path = path[:len(path)-1]

		default:
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				return nil, fmt.Errorf("corosync.conf line %d: expected 'key: value', got %q", lineNo, line)
			}
			if node != nil {
				node[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corosync.conf: %w", err)
	}
	if len(path) != 0 {
		return nil, fmt.Errorf("corosync.conf: unterminated section %q", path[len(path)-1])
	}
	return nodes, nil
}

func inNode(path []string) bool {
	return len(path) == 2 && path[0] == "nodelist" && path[1] == "node"
}

func nodeName(node map[string]string) string {
	if name := node["name"]; name != "" {
		return name
	}
	return node["ring0_addr"]
}
