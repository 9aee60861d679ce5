package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// WriteConfig writes cfg to path as YAML. The Neo4j password is never
// written; it is expected from JAVANAV_NEO4J_PASSWORD instead.
func WriteConfig(cfg *Config, path string) error {
	out := *cfg
	out.Neo4j.Password = ""

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# javanav configuration\n")
	fmt.Fprintf(&buf, "# Every key can be overridden with %s_<SECTION>_<KEY>, e.g. %s_ANALYSIS_MAX_DEPTH.\n\n", EnvPrefix, EnvPrefix)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
