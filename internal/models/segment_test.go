package models

import (
	"encoding/json"
	"slices"
	"testing"
)

// TestMedia_VideoURLForms verifies every accepted form of the video URL
// fields on segment media.
func TestMedia_VideoURLForms(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  []string
	}{
		{"singular", `{"videoUrl":"X"}`, []string{"X"}},
		{"absent", `{}`, nil},
		{"empty singular", `{"videoUrl":""}`, nil},
		{"plural", `{"videoUrls":["A","B"]}`, []string{"A", "B"}},
		{"both", `{"videoUrl":"X","videoUrls":["A"]}`, []string{"X", "A"}},
		{"both duplicate", `{"videoUrl":"A","videoUrls":["A","B"]}`, []string{"A", "B"}},
		{"explicit empty", `{"videoUrls":[]}`, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var m Media
			if err := json.Unmarshal([]byte(tc.input), &m); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if (m.VideoURLs == nil) != (tc.want == nil) || !slices.Equal(m.VideoURLs, tc.want) {
				t.Errorf("VideoURLs = %#v, want %#v", m.VideoURLs, tc.want)
			}
		})
	}
}

// TestMedia_KeepsOtherFields verifies that the custom decoder does not drop
// the remaining media fields.
func TestMedia_KeepsOtherFields(t *testing.T) {
	var m Media
	if err := json.Unmarshal([]byte(`{"videoUrl":"v","imageUrl":"i","diagramAssetId":"d"}`), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.ImageURL == nil || *m.ImageURL != "i" {
		t.Errorf("ImageURL = %v, want i", m.ImageURL)
	}
	if m.DiagramAssetID == nil || *m.DiagramAssetID != "d" {
		t.Errorf("DiagramAssetID = %v, want d", m.DiagramAssetID)
	}
}

// TestTechnique_VideoURL verifies the singular form at technique level.
func TestTechnique_VideoURL(t *testing.T) {
	var tech Technique
	if err := json.Unmarshal([]byte(`{"name":"Armbar","videoUrl":"https://v/1","keyDetails":["pinch knees"]}`), &tech); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if tech.Name != "Armbar" {
		t.Errorf("Name = %q, want Armbar", tech.Name)
	}
	if !slices.Equal(tech.VideoURLs, []string{"https://v/1"}) {
		t.Errorf("VideoURLs = %v", tech.VideoURLs)
	}
	if !slices.Equal(tech.KeyDetails, []string{"pinch knees"}) {
		t.Errorf("KeyDetails = %v", tech.KeyDetails)
	}
}

// TestSegment_RoundTrip verifies that a segment with nested plans survives
// an encode/decode cycle.
func TestSegment_RoundTrip(t *testing.T) {
	rounds, dur := 5, 300
	in := Segment{
		Name:        "Guard Passing",
		SegmentType: "positionalSpar",
		RoundPlan:   &RoundPlan{Rounds: &rounds, RoundDurationSeconds: &dur, WinConditions: []string{"pass"}},
		Media:       &Media{VideoURLs: []string{"u"}},
	}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out Segment
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.RoundPlan == nil || *out.RoundPlan.Rounds != 5 || !slices.Equal(out.RoundPlan.WinConditions, []string{"pass"}) {
		t.Errorf("RoundPlan = %+v", out.RoundPlan)
	}
	if out.Media == nil || !slices.Equal(out.Media.VideoURLs, []string{"u"}) {
		t.Errorf("Media = %+v", out.Media)
	}
	if out.Constraints != nil {
		t.Errorf("Constraints = %v, want nil", out.Constraints)
	}
}

// TestSegment_IsWarmup verifies the case-insensitive warmup check.
func TestSegment_IsWarmup(t *testing.T) {
	if !(Segment{SegmentType: "WarmUp"}).IsWarmup() {
		t.Error("WarmUp should be a warmup")
	}
	if (Segment{SegmentType: "warm-up"}).IsWarmup() {
		t.Error("warm-up is an alias and needs normalization first")
	}
}
