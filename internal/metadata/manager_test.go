package metadata

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"nsplitter/pkg/models"
)

func writeFile(t *testing.T, path, content string) os.FileInfo {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	return info
}

func TestManager_SaveAndLoad(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "movie.mp4")
	info := writeFile(t, path, "content")

	m := NewManager(root)
	m.RecordSplit(models.SplitRecord{
		Path:      path,
		Size:      info.Size(),
		ModTime:   info.ModTime(),
		SplitDir:  filepath.Join(root, "movie.split.mp4"),
		Fragments: 1,
		SplitAt:   time.Now(),
	})
	if err := m.SaveMetadata(); err != nil {
		t.Fatalf("SaveMetadata() error = %v", err)
	}
	if _, err := os.Stat(m.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp journal should be renamed away")
	}

	loaded := NewManager(root)
	if err := loaded.LoadMetadata(); err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	record, ok := loaded.GetRecord(path)
	if !ok {
		t.Fatal("record missing after reload")
	}
	if record.Fragments != 1 || record.Size != info.Size() {
		t.Errorf("record = %+v", record)
	}
	if loaded.IsPending(path, info) {
		t.Error("unchanged file should not be pending")
	}
}

func TestManager_LoadMissingJournal(t *testing.T) {
	m := NewManager(t.TempDir())
	if err := m.LoadMetadata(); err != nil {
		t.Fatalf("LoadMetadata() error = %v", err)
	}
	if m.Count() != 0 {
		t.Errorf("Count() = %d, want 0", m.Count())
	}
}

func TestManager_LoadCorruptJournal(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, JournalFile), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := NewManager(root).LoadMetadata(); err == nil {
		t.Fatal("LoadMetadata() should fail on a corrupt journal")
	}
}

func TestManager_IsPending(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.bin")
	info := writeFile(t, path, "one")

	m := NewManager(root)
	if !m.IsPending(path, info) {
		t.Error("unknown file should be pending")
	}

	m.RecordSplit(models.SplitRecord{Path: path, Size: info.Size(), ModTime: info.ModTime()})
	if m.IsPending(path, info) {
		t.Error("recorded file should not be pending")
	}

	changed := writeFile(t, path, "one more")
	if !m.IsPending(path, changed) {
		t.Error("file with a new size should be pending")
	}
}

func TestManager_KeysAreRelativeToRoot(t *testing.T) {
	root := t.TempDir()
	m := NewManager(root)
	m.RecordSplit(models.SplitRecord{Path: filepath.Join(root, "sub", "x.iso")})

	if _, ok := m.journal.Files["sub/x.iso"]; !ok {
		t.Errorf("journal keys = %v, want sub/x.iso", m.journal.Files)
	}
}
