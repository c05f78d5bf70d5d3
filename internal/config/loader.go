package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadYAML decodes the YAML file at filepath into out.
// Fields already set on out keep their value unless the file overrides them.
// Unknown keys are rejected so typos do not silently fall back to defaults.
func LoadYAML(filepath string, out any) error {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("error parsing YAML %s: %w", filepath, err)
	}

	return nil
}
