package facts

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/cuemby/burrow/pkg/types"
	"gopkg.in/yaml.v3"
)

// Inventory holds every host's facts for one run together with the
// canonical host order all hosts evaluate in
type Inventory struct {
	Order []string            `yaml:"order"`
	Hosts []types.ClusterFact `yaml:"hosts"`
}

// LoadInventory reads and validates an inventory file
func LoadInventory(path string) (*Inventory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	var inv Inventory
	if err := yaml.Unmarshal(data, &inv); err != nil {
		return nil, fmt.Errorf("failed to parse inventory: %w", err)
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return &inv, nil
}

// Save writes the inventory as YAML
func (inv *Inventory) Save(path string) error {
	data, err := yaml.Marshal(inv)
	if err != nil {
		return fmt.Errorf("failed to encode inventory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write inventory: %w", err)
	}
	return nil
}

// Validate checks that the order names every host exactly once
func (inv *Inventory) Validate() error {
	if len(inv.Order) == 0 {
		return types.NewValidationError("order", "inventory must list the host order")
	}

	facts := map[string]bool{}
	for _, h := range inv.Hosts {
		if h.Host == "" {
			return types.NewValidationError("hosts", "host entry without a name")
		}
		if facts[h.Host] {
			return types.NewValidationError("hosts", "host %s listed twice", h.Host)
		}
		facts[h.Host] = true
	}

	seen := map[string]bool{}
	for _, h := range inv.Order {
		if seen[h] {
			return types.NewValidationError("order", "host %s listed twice", h)
		}
		seen[h] = true
		if !facts[h] {
			return types.NewValidationError("order", "no facts for host %s", h)
		}
	}
	for h := range facts {
		if !seen[h] {
			return types.NewValidationError("order", "host %s has facts but is missing from the order", h)
		}
	}
	return nil
}

// Facts returns the facts indexed by host
func (inv *Inventory) Facts() map[string]types.ClusterFact {
	out := make(map[string]types.ClusterFact, len(inv.Hosts))
	for _, h := range inv.Hosts {
		out[h.Host] = h
	}
	return out
}

// Upsert records fact, appending its host to the order when new
func (inv *Inventory) Upsert(fact types.ClusterFact) {
	for i, h := range inv.Hosts {
		if h.Host == fact.Host {
			inv.Hosts[i] = fact
			return
		}
	}
	inv.Hosts = append(inv.Hosts, fact)
	inv.Order = append(inv.Order, fact.Host)
}

// OrderFingerprint identifies a host order. Hosts that computed their
// decisions from different orders report different fingerprints.
func OrderFingerprint(order []string) string {
	sum := sha256.Sum256([]byte(strings.Join(order, "\n")))
	return hex.EncodeToString(sum[:])[:12]
}
