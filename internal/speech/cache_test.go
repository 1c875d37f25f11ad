package speech

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAudioCacheMemory(t *testing.T) {
	c := NewAudioCache("en-US-ken", "", false, testLog())

	if _, ok := c.Get("hello"); ok {
		t.Fatal("empty cache should miss")
	}

	c.Put("hello", []byte("audio-bytes"))
	got, ok := c.Get("hello")
	if !ok {
		t.Fatal("cache should hit after Put")
	}
	if string(got) != "audio-bytes" {
		t.Errorf("Get() = %q, want %q", got, "audio-bytes")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits %d misses, want 1 and 1", hits, misses)
	}
}

func TestAudioCacheVoiceKeying(t *testing.T) {
	dir := t.TempDir()

	ken := NewAudioCache("en-US-ken", dir, true, testLog())
	ken.Put("hello", []byte("ken-audio"))

	// Same text, different voice: must miss.
	ava := NewAudioCache("en-US-ava", dir, true, testLog())
	if _, ok := ava.Get("hello"); ok {
		t.Error("different voice should not hit the same entry")
	}
}

func TestAudioCacheDiskRoundTrip(t *testing.T) {
	dir := t.TempDir()

	c1 := NewAudioCache("en-US-ken", dir, true, testLog())
	c1.Put("hello", []byte("persisted"))

	// Fresh cache instance, same dir: warm start from disk.
	c2 := NewAudioCache("en-US-ken", dir, true, testLog())
	got, ok := c2.Get("hello")
	if !ok {
		t.Fatal("second instance should hit the disk entry")
	}
	if string(got) != "persisted" {
		t.Errorf("Get() = %q, want %q", got, "persisted")
	}
}

func TestAudioCacheDiskWriteDisabled(t *testing.T) {
	dir := t.TempDir()

	c := NewAudioCache("en-US-ken", dir, false, testLog())
	c.Put("hello", []byte("mem-only"))

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d files, want 0 with diskWrite off", len(entries))
	}

	// But pre-existing disk entries are still readable.
	writer := NewAudioCache("en-US-ken", dir, true, testLog())
	writer.Put("warm", []byte("from-disk"))

	reader := NewAudioCache("en-US-ken", dir, false, testLog())
	if _, ok := reader.Get("warm"); !ok {
		t.Error("reader should still consult the disk layer")
	}
}

func TestAudioCacheHasAndClear(t *testing.T) {
	dir := t.TempDir()
	c := NewAudioCache("en-US-ken", dir, true, testLog())

	c.Put("hello", []byte("x"))
	if !c.Has("hello") {
		t.Error("Has() should report cached text")
	}
	if c.Has("other") {
		t.Error("Has() should not report uncached text")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	// Disk survives Clear.
	files, _ := filepath.Glob(filepath.Join(dir, "*.wav"))
	if len(files) != 1 {
		t.Errorf("disk entries after Clear = %d, want 1", len(files))
	}
}
