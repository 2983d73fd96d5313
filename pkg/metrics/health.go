package metrics

import (
	"sort"
	"sync"
	"time"
)

// HealthStatus summarises the preflight checks of one run
type HealthStatus struct {
	Status     string            `json:"status" yaml:"status"` // "healthy", "unhealthy"
	Timestamp  time.Time         `json:"timestamp" yaml:"timestamp"`
	Components map[string]string `json:"components,omitempty" yaml:"components,omitempty"`
	Message    string            `json:"message,omitempty" yaml:"message,omitempty"`
	Version    string            `json:"version,omitempty" yaml:"version,omitempty"`
}

// CriticalComponents must be healthy before any cluster object is touched
var CriticalComponents = []string{"pcs", "cib"}

var (
	healthChecker = &HealthChecker{
		components: make(map[string]ComponentHealth),
	}
)

// ComponentHealth tracks the health of a single component
type ComponentHealth struct {
	Name    string
	Healthy bool
	Message string
	Updated time.Time
}

// HealthChecker collects the outcome of the preflight checks
type HealthChecker struct {
	mu         sync.RWMutex
	components map[string]ComponentHealth
	version    string
}

// SetVersion records the detected pcs version
func SetVersion(version string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.version = version
}

// RegisterComponent records the result of a check
func RegisterComponent(name string, healthy bool, message string) {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()

	healthChecker.components[name] = ComponentHealth{
		Name:    name,
		Healthy: healthy,
		Message: message,
		Updated: time.Now(),
	}
}

// ResetHealth forgets every registered component
func ResetHealth() {
	healthChecker.mu.Lock()
	defer healthChecker.mu.Unlock()
	healthChecker.components = make(map[string]ComponentHealth)
	healthChecker.version = ""
}

// GetHealth returns the overall status of every registered component
func GetHealth() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	status := "healthy"
	components := make(map[string]string)

	for name, comp := range healthChecker.components {
		if !comp.Healthy {
			status = "unhealthy"
			components[name] = "unhealthy: " + comp.Message
		} else {
			components[name] = "healthy"
		}
	}

	return HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		Components: components,
		Version:    healthChecker.version,
	}
}

// GetReadiness reports whether the critical components are registered
// and healthy
func GetReadiness() HealthStatus {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	status := "ready"
	message := ""
	components := make(map[string]string)

	for _, name := range CriticalComponents {
		comp, exists := healthChecker.components[name]
		switch {
		case !exists:
			status = "not_ready"
			message = name + " was not checked"
			components[name] = "not registered"
		case !comp.Healthy:
			status = "not_ready"
			message = name + ": " + comp.Message
			components[name] = "not ready: " + comp.Message
		default:
			components[name] = "ready"
		}
	}

	return HealthStatus{
		Status:     status,
		Timestamp:  time.Now(),
		Components: components,
		Message:    message,
		Version:    healthChecker.version,
	}
}

// ComponentNames returns the registered component names in lexical order
func ComponentNames() []string {
	healthChecker.mu.RLock()
	defer healthChecker.mu.RUnlock()

	names := make([]string, 0, len(healthChecker.components))
	for name := range healthChecker.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
