package repository

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFixtures_YAML(t *testing.T) {
	path := writeFixture(t, "patients.yaml", `
patients:
  - id: "p-1"
    name: Sarah Johnson
    fitzpatrickType: 2
    diagnoses:
      - condition: Melanocytic Nevus
        date: "October 30, 2025 at 04:23 PM"
        riskLevel: Low Risk
        confidence: 86
        metrics:
          asymmetry: 97
          diameter: "9.0"
          evolution: Absent
    progressEntries:
      - date: "Oct 31, 2025"
        score: 65
        trend: stable
  - id: "p-2"
    name: Michael Chen
    fitzpatrickType: IV
`)

	patients, err := LoadFixtures(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patients) != 2 {
		t.Fatalf("expected 2 patients, got %d", len(patients))
	}

	p := patients[0]
	if p.FitzpatrickType != "2" {
		t.Errorf("expected skin type 2, got %q", p.FitzpatrickType)
	}
	if len(p.Diagnoses) != 1 || p.Diagnoses[0].Confidence == nil || *p.Diagnoses[0].Confidence != 86 {
		t.Errorf("unexpected diagnoses: %+v", p.Diagnoses)
	}
	if v, ok := p.Diagnoses[0].Metrics["asymmetry"].Float(); !ok || v != 97 {
		t.Errorf("expected numeric asymmetry 97, got %v (%v)", v, ok)
	}
	if got := p.Diagnoses[0].Metrics["diameter"].String(); got != "9.0" {
		t.Errorf("expected diameter text 9.0, got %q", got)
	}
	if len(p.ProgressEntries) != 1 || p.ProgressEntries[0].Score != 65 {
		t.Errorf("unexpected progress entries: %+v", p.ProgressEntries)
	}
	if patients[1].FitzpatrickType != "IV" {
		t.Errorf("expected skin type IV, got %q", patients[1].FitzpatrickType)
	}
}

func TestLoadFixtures_JSON(t *testing.T) {
	path := writeFixture(t, "patients.json", `{"patients":[{"id":"p-9","name":"Emily Rodriguez","fitzpatrickType":"III"}]}`)

	patients, err := LoadFixtures(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(patients) != 1 || patients[0].Name != "Emily Rodriguez" {
		t.Errorf("unexpected patients: %+v", patients)
	}
}

func TestLoadFixtures_Errors(t *testing.T) {
	cases := map[string]string{
		"missing list": "other: 1\n",
		"no id":        "patients:\n  - name: Nobody\n",
		"duplicate id": "patients:\n  - id: a\n  - id: a\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeFixture(t, "patients.yaml", content)
			if _, err := LoadFixtures(path); !errors.Is(err, ErrLoadFixtures) {
				t.Errorf("expected ErrLoadFixtures, got %v", err)
			}
		})
	}

	if _, err := LoadFixtures(""); !errors.Is(err, ErrLoadFixtures) {
		t.Errorf("expected ErrLoadFixtures for empty path, got %v", err)
	}
	if _, err := LoadFixtures(filepath.Join(t.TempDir(), "absent.yaml")); !errors.Is(err, ErrLoadFixtures) {
		t.Errorf("expected ErrLoadFixtures for missing file, got %v", err)
	}
}
