package chunk

import (
	"strings"
	"testing"
)

type fakeDedup struct {
	seen map[string]bool
}

func newFakeDedup() *fakeDedup { return &fakeDedup{seen: make(map[string]bool)} }

func (f *fakeDedup) Seen(hash string) bool {
	if f.seen[hash] {
		return true
	}
	f.seen[hash] = true
	return false
}

func TestCharacterChunksShortTextAsSingleDoc(t *testing.T) {
	text := strings.Repeat("word ", 20)
	docs := Character("https://example.org/a", "A", 0, "en", text, DefaultOptions(), nil)
	if len(docs) != 1 {
		t.Fatalf("Character() returned %d docs, want 1", len(docs))
	}
	if docs[0].Metadata.ChunkType != "character" {
		t.Errorf("ChunkType = %q, want character", docs[0].Metadata.ChunkType)
	}
}

func TestCharacterChunksLongTextOverlaps(t *testing.T) {
	sentence := "This is a sentence with several words in it. "
	text := strings.Repeat(sentence, 80)
	opts := Options{MaxSize: 500, Overlap: 100}
	docs := Character("https://example.org/b", "B", 1, "en", text, opts, nil)
	if len(docs) < 2 {
		t.Fatalf("Character() returned %d docs, want multiple windows", len(docs))
	}
	for i, d := range docs {
		if d.Metadata.ChunkIndex != i {
			t.Errorf("doc %d has ChunkIndex %d", i, d.Metadata.ChunkIndex)
		}
		if d.Metadata.TotalChunks != len(docs) {
			t.Errorf("doc %d has TotalChunks %d, want %d", i, d.Metadata.TotalChunks, len(docs))
		}
	}
}

func TestFullTextEmitsSingleDocument(t *testing.T) {
	sentence := "Another sentence of reasonable length for testing purposes. "
	text := strings.Repeat(sentence, 60)
	opts := Options{MaxSize: 400, Overlap: 100}
	docs := FullText("https://example.org/c", "C", 0, "en", text, opts, nil)
	if len(docs) != 1 {
		t.Fatalf("FullText() returned %d docs, want exactly 1, even though the body exceeds MaxSize", len(docs))
	}
	want := strings.TrimSpace(collapseWhitespace(text))
	if docs[0].PageContent != want {
		t.Errorf("FullText() content = %q, want the complete cleaned body %q", docs[0].PageContent, want)
	}
	if docs[0].Metadata.ChunkIndex != 0 || docs[0].Metadata.TotalChunks != 1 {
		t.Errorf("doc metadata = %+v, want ChunkIndex 0 and TotalChunks 1", docs[0].Metadata)
	}
}

func TestFullTextBelowMinimumDropped(t *testing.T) {
	docs := FullText("https://example.org/g", "G", 0, "en", "short", DefaultOptions(), nil)
	if len(docs) != 0 {
		t.Errorf("FullText() on short text returned %d docs, want 0", len(docs))
	}
}

func TestCharacterChunksRespectDedup(t *testing.T) {
	dedup := newFakeDedup()
	text := strings.Repeat("repeated content block here. ", 10)
	first := Character("https://example.org/d", "D", 0, "en", text, DefaultOptions(), dedup)
	second := Character("https://example.org/e", "E", 0, "en", text, DefaultOptions(), dedup)
	if len(first) == 0 {
		t.Fatal("first call produced no docs")
	}
	if len(second) != 0 {
		t.Errorf("second call with identical content produced %d docs, want 0 (dedup across pages)", len(second))
	}
}

func TestCharacterChunksBelowMinimumDropped(t *testing.T) {
	docs := Character("https://example.org/f", "F", 0, "en", "short", DefaultOptions(), nil)
	if len(docs) != 0 {
		t.Errorf("Character() on short text returned %d docs, want 0", len(docs))
	}
}
