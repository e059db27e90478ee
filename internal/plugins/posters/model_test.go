package posters

import "testing"

func strPtr(s string) *string { return &s }

func TestBuildView_LockedHidesURL(t *testing.T) {
	views := BuildView([]Record{
		{PromptUsed: "a", PosterURL: strPtr("http://x"), Paid: false},
		{PromptUsed: "b", PosterURL: strPtr("http://x"), Paid: true},
	})

	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if !views[0].Locked || views[0].PosterURL != nil {
		t.Errorf("unpaid record must be locked with no URL, got %+v", views[0])
	}
	if views[1].Locked || views[1].PosterURL == nil || *views[1].PosterURL != "http://x" {
		t.Errorf("paid record must expose its URL, got %+v", views[1])
	}
}

func TestBuildView_PreservesOrder(t *testing.T) {
	in := []Record{
		{PromptUsed: "third", Timestamp: "3"},
		{PromptUsed: "first", Timestamp: "1"},
		{PromptUsed: "second", Timestamp: "2"},
	}
	views := BuildView(in)
	for i, v := range views {
		if v.Prompt != in[i].PromptUsed || v.Timestamp != in[i].Timestamp {
			t.Errorf("position %d: got %+v, want prompt %q", i, v, in[i].PromptUsed)
		}
	}
}

func TestBuildView_PaidWithoutURL(t *testing.T) {
	views := BuildView([]Record{{PromptUsed: "a", Paid: true}})
	if views[0].Locked || views[0].PosterURL != nil {
		t.Errorf("expected unlocked record without URL, got %+v", views[0])
	}
}

func TestBuildView_Empty(t *testing.T) {
	if views := BuildView(nil); views == nil || len(views) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", views)
	}
}

func TestBuildView_DoesNotAliasInput(t *testing.T) {
	url := "http://x"
	views := BuildView([]Record{{Paid: true, PosterURL: &url}})
	url = "http://changed"
	if *views[0].PosterURL != "http://x" {
		t.Error("view must not share the record's URL pointer")
	}
}

func TestRecordFromMap(t *testing.T) {
	tests := []struct {
		name     string
		in       map[string]any
		wantPaid bool
		wantURL  string
		wantTS   string
	}{
		{"bool paid", map[string]any{"paid": true, "poster_url": "u", "timestamp": "2024-01-01T00:00:00"}, true, "u", "2024-01-01T00:00:00"},
		{"string paid", map[string]any{"paid": "True"}, true, "", ""},
		{"string unpaid", map[string]any{"paid": "false"}, false, "", ""},
		{"numeric paid", map[string]any{"paid": float64(1), "timestamp": float64(1700000000)}, true, "", "1700000000"},
		{"missing paid", map[string]any{"poster_url": "u"}, false, "u", ""},
		{"null url", map[string]any{"poster_url": nil}, false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := recordFromMap(tt.in)
			if r.Paid != tt.wantPaid {
				t.Errorf("paid = %v, want %v", r.Paid, tt.wantPaid)
			}
			gotURL := ""
			if r.PosterURL != nil {
				gotURL = *r.PosterURL
			}
			if gotURL != tt.wantURL {
				t.Errorf("url = %q, want %q", gotURL, tt.wantURL)
			}
			if r.Timestamp != tt.wantTS {
				t.Errorf("timestamp = %q, want %q", r.Timestamp, tt.wantTS)
			}
		})
	}
}
