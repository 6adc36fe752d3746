package metadata

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"nsplitter/internal/utils"
	"nsplitter/pkg/models"
)

// JournalFile is written into the scanned root.
const JournalFile = ".nsplitter.json"

// Manager keeps track of which files were already split, so periodic scans
// and watch events do not split the same unchanged file twice.
type Manager struct {
	root    string
	journal *models.Journal
	mu      sync.RWMutex
}

func NewManager(root string) *Manager {
	return &Manager{
		root: root,
		journal: &models.Journal{
			Version:   "1.0",
			CreatedAt: time.Now(),
			Files:     make(map[string]models.SplitRecord),
		},
	}
}

func (m *Manager) Path() string {
	return filepath.Join(m.root, JournalFile)
}

func (m *Manager) LoadMetadata() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.Path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, m.journal); err != nil {
		return err
	}
	if m.journal.Files == nil {
		m.journal.Files = make(map[string]models.SplitRecord)
	}
	return nil
}

func (m *Manager) SaveMetadata() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := utils.EnsureDirectoryExists(m.root); err != nil {
		return err
	}

	m.journal.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(m.journal, "", "  ")
	if err != nil {
		return err
	}

	journalPath := m.Path()
	tempPath := journalPath + ".tmp"

	// Write to temp file first
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tempPath, journalPath)
}

func (m *Manager) RecordSplit(record models.SplitRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.journal.Files[m.key(record.Path)] = record
}

func (m *Manager) GetRecord(path string) (models.SplitRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, exists := m.journal.Files[m.key(path)]
	return record, exists
}

// IsPending reports whether a file with this stat was never split, or changed
// since it was.
func (m *Manager) IsPending(path string, info os.FileInfo) bool {
	record, exists := m.GetRecord(path)
	if !exists {
		return true
	}
	return record.Size != info.Size() || !record.ModTime.Equal(info.ModTime())
}

func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.journal.Files)
}

// key stores paths relative to the root when possible so the journal
// survives the root being moved.
func (m *Manager) key(path string) string {
	rel, err := filepath.Rel(m.root, path)
	if err != nil || filepath.IsAbs(rel) {
		return path
	}
	return filepath.ToSlash(rel)
}
