package export

import (
	"encoding/json"
	"fmt"
	"io"

	"terragen/internal/placement"
)

type instanceDocument struct {
	Feature   string           `json:"feature"`
	Count     int              `json:"count"`
	Instances []instanceRecord `json:"instances"`
}

type instanceRecord struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Z        float64 `json:"z"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
	Density  float64 `json:"density"`
}

// WriteInstances writes the expanded objects of one feature as a JSON document.
func WriteInstances(w io.Writer, feature string, instances []placement.Instance) error {
	doc := instanceDocument{Feature: feature, Count: len(instances), Instances: make([]instanceRecord, len(instances))}
	for i, inst := range instances {
		doc.Instances[i] = instanceRecord(inst)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode instances: %w", err)
	}
	return nil
}
