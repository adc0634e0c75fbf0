package reasoner

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the reasoner component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "reasoner",
		Factory:     NewComponent,
		Schema:      reasonerSchema,
		Type:        "processor",
		Protocol:    "graph",
		Domain:      "semreason",
		Description: "Derives new facts from graph entity triples via forward chaining",
		Version:     "0.1.0",
	})
}
