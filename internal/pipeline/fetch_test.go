package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeExport(t *testing.T, root, connID, name, content string) {
	t.Helper()
	dir := filepath.Join(root, connID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDirClient_Bundle(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "conn-a", "medications.json", `{
		"resourceType":"Bundle",
		"entry":[
			{"resource":{"id":"m1"}},
			{"resource":{"id":"m2"}}
		]
	}`)

	raws, err := NewDirClient(root).Fetch(context.Background(), Connection{ConnectionID: "conn-a"}, ResourceMedication)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raws) != 2 {
		t.Errorf("expected 2 resources from bundle, got %d", len(raws))
	}
}

func TestDirClient_EmptySearchsetBundle(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "conn-a", "medications.json", `{"resourceType":"Bundle","type":"searchset","total":0}`)

	raws, err := NewDirClient(root).Fetch(context.Background(), Connection{ConnectionID: "conn-a"}, ResourceMedication)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raws) != 0 {
		t.Errorf("entry-less bundle should yield 0 resources, not itself: got %d", len(raws))
	}
}

func TestDirClient_BareArray(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "conn-a", "conditions.json", `[{"id":"c1"},{"id":"c2"},{"id":"c3"}]`)

	raws, err := NewDirClient(root).Fetch(context.Background(), Connection{ConnectionID: "conn-a"}, ResourceCondition)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raws) != 3 {
		t.Errorf("expected 3 resources from array, got %d", len(raws))
	}
}

func TestDirClient_SingleResource(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "conn-a", "patient.json", `{"id":"p1","name":[{"text":"DOE, JOHN"}]}`)

	raws, err := NewDirClient(root).Fetch(context.Background(), Connection{ConnectionID: "conn-a"}, ResourcePatient)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(raws) != 1 {
		t.Errorf("expected the object itself, got %d resources", len(raws))
	}
}

func TestDirClient_MissingFileIsFetchFailure(t *testing.T) {
	root := t.TempDir()
	_, err := NewDirClient(root).Fetch(context.Background(), Connection{ConnectionID: "conn-a"}, ResourceObservation)
	if err == nil {
		t.Fatal("expected error for missing export file")
	}
}

func TestDirClient_MalformedJSON(t *testing.T) {
	root := t.TempDir()
	writeExport(t, root, "conn-a", "labs.json", `{not json`)

	_, err := NewDirClient(root).Fetch(context.Background(), Connection{ConnectionID: "conn-a"}, ResourceObservation)
	if err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}
