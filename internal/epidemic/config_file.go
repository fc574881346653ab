package epidemic

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var configSchemaJSON string

var (
	configSchemaOnce sync.Once
	configSchema     *jsonschema.Schema
	configSchemaErr  error
)

func compiledConfigSchema() (*jsonschema.Schema, error) {
	configSchemaOnce.Do(func() {
		configSchema, configSchemaErr = jsonschema.CompileString("config.schema.json", configSchemaJSON)
	})
	return configSchema, configSchemaErr
}

// LoadConfigFile reads a YAML (or JSON) config file. Keys that are absent
// keep their DefaultConfig value.
func LoadConfigFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return ParseConfig(raw)
}

// ParseConfig decodes a YAML or JSON document, checks it against the config
// schema and overlays it onto DefaultConfig. The result is validated with
// ValidateConfig.
func ParseConfig(raw []byte) (Config, error) {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if doc == nil {
		doc = map[string]any{}
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	schema, err := compiledConfigSchema()
	if err != nil {
		return Config{}, fmt.Errorf("compiling config schema: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// MarshalConfigYAML renders cfg in the config file format.
func MarshalConfigYAML(cfg Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
