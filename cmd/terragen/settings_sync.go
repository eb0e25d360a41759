package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"terragen/internal/config"
)

// writeSettingsFromEnv materialises settings handed over through the
// environment into cfgPath so the run and any later rerun read the same file.
// JSON wins when both variables are set.
func writeSettingsFromEnv(cfgPath string) (bool, error) {
	jsonPayload := os.Getenv("TERRAGEN_SETTINGS_JSON")
	yamlPayload := os.Getenv("TERRAGEN_SETTINGS_YAML_B64")

	if jsonPayload == "" && yamlPayload == "" {
		return false, nil
	}
	if cfgPath == "" {
		return false, errors.New("settings provided through the environment but no -config path supplied")
	}

	var (
		cfg *config.Settings
		err error
	)
	if jsonPayload != "" {
		cfg, err = config.Decode([]byte(jsonPayload), config.FormatJSON)
		if err != nil {
			return false, fmt.Errorf("decode settings json: %w", err)
		}
	} else {
		data, decErr := base64.StdEncoding.DecodeString(yamlPayload)
		if decErr != nil {
			return false, fmt.Errorf("decode settings yaml: %w", decErr)
		}
		cfg, err = config.Decode(data, config.FormatYAML)
		if err != nil {
			return false, fmt.Errorf("parse settings yaml: %w", err)
		}
	}

	if dir := filepath.Dir(cfgPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("create settings directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return false, fmt.Errorf("marshal settings json: %w", err)
	}
	if err := os.WriteFile(filepath.Clean(cfgPath), data, 0o600); err != nil {
		return false, fmt.Errorf("write settings file: %w", err)
	}
	return true, nil
}
