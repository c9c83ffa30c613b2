package common

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Config holds all application configuration. It is constructed once at
// startup and passed read-only to every component that needs it.
type Config struct {
	APIKey         string `json:"api_key"`
	APIBase        string `json:"api_base"`
	Model          string `json:"model"`
	MaxTokens      int    `json:"max_tokens"`
	ReservedTokens int    `json:"reserved_tokens"`
}

const (
	DefaultMaxTokens      = 8192
	DefaultReservedTokens = 200
)

// configSchema validates the raw document before decoding so a malformed
// config fails with a precise property path instead of a zero-value struct.
var configSchema = map[string]any{
	"type":                 "object",
	"additionalProperties": false,
	"properties": map[string]any{
		"api_key":         map[string]any{"type": "string", "minLength": 1},
		"api_base":        map[string]any{"type": "string", "minLength": 1},
		"model":           map[string]any{"type": "string", "minLength": 1},
		"max_tokens":      map[string]any{"type": "integer", "minimum": 1},
		"reserved_tokens": map[string]any{"type": "integer", "minimum": 0},
	},
	"required": []string{"api_key", "api_base", "model"},
}

// LoadConfig reads and validates the JSON config document at path.
// Missing file, invalid JSON, or missing required keys are fatal.
func LoadConfig(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ConfigError(fmt.Sprintf("read %s", path), err)
	}
	if err := ValidateJSONAgainstSchema(configSchema, raw); err != nil {
		return nil, ConfigError(fmt.Sprintf("invalid config %s", path), err)
	}

	cfg := &Config{
		MaxTokens:      DefaultMaxTokens,
		ReservedTokens: DefaultReservedTokens,
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, ConfigError(fmt.Sprintf("decode %s", path), err)
	}
	cfg.APIBase = strings.TrimRight(cfg.APIBase, "/")
	return cfg, nil
}

// Validate checks invariants that the schema cannot express.
func (c *Config) Validate() error {
	if c.MaxTokens <= c.ReservedTokens {
		return ConfigError(fmt.Sprintf("max_tokens (%d) must exceed reserved_tokens (%d)", c.MaxTokens, c.ReservedTokens), nil)
	}
	return nil
}

// LoadPrompt reads the instruction prompt used verbatim as the system
// message for every LLM call.
func LoadPrompt(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", ConfigError(fmt.Sprintf("read prompt %s", path), err)
	}
	prompt := strings.TrimSpace(string(raw))
	if prompt == "" {
		return "", ConfigError(fmt.Sprintf("prompt %s is empty", path), nil)
	}
	return prompt, nil
}

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
