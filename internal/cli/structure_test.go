package cli

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStructureToJSONPassesValidJSON(t *testing.T) {
	data := []byte(`{"stages": []}`)

	got, err := structureToJSON("structure.json", data)
	if err != nil {
		t.Fatalf("structureToJSON() error: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("JSON input should pass through unchanged, got %s", got)
	}
}

func TestStructureToJSONRejectsInvalidJSON(t *testing.T) {
	_, err := structureToJSON("structure.json", []byte("{not json"))
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestStructureToJSONConvertsYAML(t *testing.T) {
	data := []byte(`
stages:
  - stage_id: 1
    is_initial: true
    sections:
      - section_id: 1
        fields:
          - field_id: 1
            type: text
transitions:
  - transition_id: 1
    from_stage_id: 1
    to_complete: true
`)

	got, err := structureToJSON("structure.yaml", data)
	if err != nil {
		t.Fatalf("structureToJSON() error: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(got, &doc); err != nil {
		t.Fatalf("converted YAML is not valid JSON: %v", err)
	}

	stages, ok := doc["stages"].([]any)
	if !ok || len(stages) != 1 {
		t.Fatalf("expected 1 stage in converted document, got %v", doc["stages"])
	}
	stage := stages[0].(map[string]any)
	if stage["stage_id"] != float64(1) {
		t.Errorf("stage_id = %v, want 1", stage["stage_id"])
	}
	if stage["is_initial"] != true {
		t.Errorf("is_initial = %v, want true", stage["is_initial"])
	}
}

func TestStructureToJSONRejectsInvalidYAML(t *testing.T) {
	_, err := structureToJSON("structure.yml", []byte("stages: [unclosed"))
	if err == nil {
		t.Fatal("expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "YAML") {
		t.Errorf("error should mention YAML, got: %v", err)
	}
}

func TestCollectValuesFromSets(t *testing.T) {
	values, err := collectValues("", []string{"1=Alice", "3=employed"})
	if err != nil {
		t.Fatalf("collectValues() error: %v", err)
	}

	if len(values) != 2 {
		t.Fatalf("expected 2 values, got %d", len(values))
	}
	if values[0].FieldID != 1 || values[0].Value != "Alice" {
		t.Errorf("values[0] = %+v, want field 1 = Alice", values[0])
	}
	if values[1].FieldID != 3 || values[1].Value != "employed" {
		t.Errorf("values[1] = %+v, want field 3 = employed", values[1])
	}
}

func TestCollectValuesRejectsMalformedSet(t *testing.T) {
	if _, err := collectValues("", []string{"no-equals-sign"}); err == nil {
		t.Error("expected error for --set without '=', got nil")
	}
	if _, err := collectValues("", []string{"abc=1"}); err == nil {
		t.Error("expected error for non-numeric field id, got nil")
	}
}
