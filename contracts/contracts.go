// Package contracts embeds the OpenAPI documents served and enforced by the API.
package contracts

import (
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed properties.yaml
var propertiesYAML []byte

// PropertiesPath is the repository path of the properties contract.
const PropertiesPath = "contracts/properties.yaml"

// LoadProperties parses and validates the embedded properties contract.
func LoadProperties() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(propertiesYAML)
	if err != nil {
		return nil, fmt.Errorf("load properties contract: %w", err)
	}
	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("validate properties contract: %w", err)
	}
	return spec, nil
}
