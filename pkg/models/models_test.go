package models

import (
	"encoding/json"
	"testing"
)

func TestFieldZeroValueIsAbsent(t *testing.T) {
	var f Field
	if f.Resolved() {
		t.Fatal("zero Field should be absent")
	}
	if f.String() != NotAvailable {
		t.Fatalf("expected %q, got %q", NotAvailable, f.String())
	}
}

func TestFieldOf(t *testing.T) {
	f := FieldOf("Seattle, WA")
	v, ok := f.Value()
	if !ok || v != "Seattle, WA" {
		t.Fatalf("expected resolved 'Seattle, WA', got %q ok=%v", v, ok)
	}

	// Empty string is still a resolved value
	empty := FieldOf("")
	if !empty.Resolved() {
		t.Fatal("FieldOf(\"\") should be resolved")
	}
	if empty.String() != "" {
		t.Fatalf("expected empty string, got %q", empty.String())
	}
}

func TestJobRecordJSON(t *testing.T) {
	rec := JobRecord{
		Title:      FieldOf("AI Engineer"),
		SearchTerm: "AI",
		Source:     "Careers",
	}

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if m["title"] != "AI Engineer" {
		t.Errorf("expected title 'AI Engineer', got %v", m["title"])
	}
	// Absent optional fields serialize as the marker, never as null or missing
	for _, key := range []string{"job_location", "posted_date", "description", "url"} {
		if m[key] != NotAvailable {
			t.Errorf("expected %s=%q, got %v", key, NotAvailable, m[key])
		}
	}
}

func TestFieldJSONRoundTrip(t *testing.T) {
	var rec JobRecord
	input := `{"title":"Data Scientist","job_location":"N/A"}`
	if err := json.Unmarshal([]byte(input), &rec); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !rec.Title.Resolved() {
		t.Error("title should be resolved")
	}
	if rec.Location.Resolved() {
		t.Error("N/A location should round-trip to absent")
	}
}
