package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gyeh/chartmerge/internal/fhir"
)

// resourceFiles maps each resource type to its file name under a
// connection's export directory.
var resourceFiles = map[ResourceType]string{
	ResourcePatient:     "patient.json",
	ResourceMedication:  "medications.json",
	ResourceCondition:   "conditions.json",
	ResourceObservation: "labs.json",
	ResourceEncounter:   "encounters.json",
}

// DirClient reads previously exported FHIR data from a directory tree:
// one subdirectory per connection ID, one JSON file per resource type.
// A file may hold a FHIR bundle, a bare JSON array of resources, or a
// single resource object.
type DirClient struct {
	Root string
}

func NewDirClient(root string) *DirClient {
	return &DirClient{Root: root}
}

// Fetch reads the records of one resource type for one connection. A
// missing file is a fetch failure for that resource type, which the
// orchestrator treats as the source not offering that data.
func (c *DirClient) Fetch(_ context.Context, conn Connection, resource ResourceType) ([]json.RawMessage, error) {
	name, ok := resourceFiles[resource]
	if !ok {
		return nil, fmt.Errorf("unsupported resource type %q", resource)
	}

	path := filepath.Join(c.Root, conn.ConnectionID, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeResources(data, path)
}

func decodeResources(data []byte, path string) ([]json.RawMessage, error) {
	// An entry-less searchset bundle is the normal answer when a source has
	// no records of a type; it must yield zero resources, not itself.
	var bundle fhir.Bundle
	if err := json.Unmarshal(data, &bundle); err == nil && (bundle.ResourceType == "Bundle" || len(bundle.Entry) > 0) {
		return bundle.Resources(), nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		return list, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(obj) == 0 {
		return nil, nil
	}
	return []json.RawMessage{json.RawMessage(data)}, nil
}
