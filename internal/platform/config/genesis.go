package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Genesis is the deploy-time state of the access-control engine: the owner
// principal plus optional pre-authorized anchors and entitlement grants.
type Genesis struct {
	Owner        string            `yaml:"owner"`
	Anchors      []string          `yaml:"anchors"`
	Entitlements map[string]string `yaml:"entitlements"`
}

// LoadGenesis reads and decodes a genesis YAML file. The owner field is
// mandatory; value validation happens in the domain at bootstrap.
func LoadGenesis(path string) (Genesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("read genesis file %s: %w", path, err)
	}
	var genesis Genesis
	if err := yaml.Unmarshal(raw, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decode genesis file %s: %w", path, err)
	}
	if genesis.Owner == "" {
		return Genesis{}, fmt.Errorf("genesis file %s has no owner", path)
	}
	return genesis, nil
}
