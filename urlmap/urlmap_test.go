package urlmap

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseDepthMapShape(t *testing.T) {
	data := []byte(`{"0": ["https://a.example/"], "1": ["https://b.example/"]}`)
	tasks, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Parse() returned %d tasks, want 2", len(tasks))
	}
	if tasks[0].URL != "https://a.example/" || tasks[0].Depth != 0 {
		t.Errorf("tasks[0] = %+v, want depth-0 a.example", tasks[0])
	}
}

func TestParseFlatMapShape(t *testing.T) {
	data := []byte(`{"https://a.example/": {"depth": 2}, "https://b.example/": {"depth": 0}}`)
	tasks, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Parse() returned %d tasks, want 2", len(tasks))
	}
	if tasks[0].URL != "https://b.example/" {
		t.Errorf("tasks[0].URL = %q, want shallowest first", tasks[0].URL)
	}
}

func TestParseArrayShape(t *testing.T) {
	data := []byte(`["https://a.example/", "https://b.example/"]`)
	tasks, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Parse() returned %d tasks, want 2", len(tasks))
	}
	for _, task := range tasks {
		if task.Depth != 0 {
			t.Errorf("task %+v has nonzero depth, want 0 for plain array", task)
		}
	}
}

func TestParseSkipsNonHTMLExtensions(t *testing.T) {
	data := []byte(`["https://a.example/doc.pdf", "https://a.example/page"]`)
	tasks, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(tasks) != 1 || tasks[0].URL != "https://a.example/page" {
		t.Errorf("Parse() = %+v, want only the non-pdf URL", tasks)
	}
}

func TestMergeFilesFirstFileWins(t *testing.T) {
	dir := t.TempDir()
	f1 := filepath.Join(dir, "a.json")
	f2 := filepath.Join(dir, "b.json")
	if err := os.WriteFile(f1, []byte(`{"0": ["https://shared.example/"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f2, []byte(`{"3": ["https://shared.example/"], "0": ["https://only-b.example/"]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tasks, err := MergeFiles([]string{f1, f2})
	if err != nil {
		t.Fatalf("MergeFiles: %v", err)
	}

	var shared *Task
	for i := range tasks {
		if tasks[i].URL == "https://shared.example/" {
			shared = &tasks[i]
		}
	}
	if shared == nil {
		t.Fatal("shared URL missing from merged tasks")
	}
	if shared.Depth != 0 {
		t.Errorf("shared.Depth = %d, want 0 (first file's depth should win)", shared.Depth)
	}
}
