package coordinator

import (
	"testing"

	"sitetext/chunkdoc"
	"sitetext/fetch"
	"sitetext/urlmap"
)

func TestOrderAndTruncateDropsDeepTasks(t *testing.T) {
	tasks := []urlmap.Task{{URL: "a", Depth: 0}, {URL: "b", Depth: 2}, {URL: "c", Depth: 1}}
	got := orderAndTruncate(tasks, 1, 0)
	if len(got) != 2 {
		t.Fatalf("orderAndTruncate() returned %d tasks, want 2", len(got))
	}
	for _, task := range got {
		if task.Depth > 1 {
			t.Errorf("task %+v exceeds MaxDepth 1", task)
		}
	}
}

func TestOrderAndTruncateAppliesLimit(t *testing.T) {
	tasks := []urlmap.Task{{URL: "a"}, {URL: "b"}, {URL: "c"}}
	got := orderAndTruncate(tasks, 0, 2)
	if len(got) != 2 {
		t.Fatalf("orderAndTruncate() returned %d tasks, want 2", len(got))
	}
}

func TestHostOfExtractsHostname(t *testing.T) {
	cases := map[string]string{
		"https://example.org/path":      "example.org",
		"http://example.org:8080/x":     "example.org:8080",
		"https://example.org":           "example.org",
		"not-a-url":                     "not-a-url",
	}
	for in, want := range cases {
		if got := hostOf(in); got != want {
			t.Errorf("hostOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNeedsRenderForSoftBlockNotSkipOrStatus(t *testing.T) {
	if !needsRender(fetch.ReasonSoftBlock) {
		t.Error("needsRender(soft-block) = false, want true")
	}
	if needsRender(fetch.ReasonSkipExt) {
		t.Error("needsRender(skip-ext) = true, want false")
	}
	if needsRender(fetch.StatusReason(404)) {
		t.Error("needsRender(http-status:404) = true, want false")
	}
}

func TestTitleExcludedMatchesConfiguredKeyword(t *testing.T) {
	if !titleExcluded("Cookie Policy", defaultExcludedKeywords) {
		t.Error("titleExcluded() = false, want true for a title containing an excluded keyword")
	}
	if titleExcluded("Annual Report 2025", defaultExcludedKeywords) {
		t.Error("titleExcluded() = true, want false for an unrelated title")
	}
}

func TestNewAssignsDistinctRunIDs(t *testing.T) {
	a := New(DefaultOptions())
	b := New(DefaultOptions())
	if a.RunID == "" {
		t.Error("RunID is empty, want a generated correlation id")
	}
	if a.RunID == b.RunID {
		t.Error("two Coordinators got the same RunID")
	}
}

func TestDefaultOptionsSetsExcludedKeywords(t *testing.T) {
	opts := DefaultOptions()
	if len(opts.ExcludedKeywords) == 0 {
		t.Error("DefaultOptions().ExcludedKeywords is empty, want the source system's default list")
	}
}

func TestCharacterCountSummaryAggregatesByLanguage(t *testing.T) {
	records := []chunkdoc.PageRecord{
		{URL: "a", CharacterCount: 100, Language: "en"},
		{URL: "b", CharacterCount: 50, Language: "en"},
		{URL: "c", CharacterCount: 80, Language: "de"},
	}
	summary := characterCountSummary(records)
	if summary.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", summary.TotalPages)
	}
	if summary.TotalChars != 230 {
		t.Errorf("TotalChars = %d, want 230", summary.TotalChars)
	}
	if summary.ByLanguage["en"].PageCount != 2 {
		t.Errorf("en page count = %d, want 2", summary.ByLanguage["en"].PageCount)
	}
	if summary.ByLanguage["de"].CharacterCount != 80 {
		t.Errorf("de character count = %d, want 80", summary.ByLanguage["de"].CharacterCount)
	}
}
