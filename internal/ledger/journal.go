package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Status is the completion marker of a deployment or linkage step.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInFlight   Status = "in-flight"
	StatusConfirmed  Status = "confirmed"
	StatusFailed     Status = "failed"
)

// JournalEntry tracks the last known state of a ledger key on one chain.
// Target is the called contract of a link step.
type JournalEntry struct {
	Key       string `json:"key"`
	ChainID   uint64 `json:"chain_id"`
	Status    Status `json:"status"`
	Contract  string `json:"contract,omitempty"`
	Target    string `json:"target,omitempty"`
	TxHash    string `json:"tx_hash,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

func entryID(chainID uint64, key string) string {
	return fmt.Sprintf("%d/%s", chainID, key)
}

func sortEntries(entries []JournalEntry) {
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].ChainID != entries[b].ChainID {
			return entries[a].ChainID < entries[b].ChainID
		}
		return entries[a].Key < entries[b].Key
	})
}

type journalFile struct {
	Entries []JournalEntry `json:"entries"`
}

// Journal persists per-chain, per-key status markers next to the ledger.
// One file may serve several networks; entries of other chains are never
// visible through Get. Writes go through a temp file and rename so a crash
// never leaves a partial file.
type Journal struct {
	path string

	mu      sync.Mutex
	entries map[string]JournalEntry
}

// OpenJournal loads the journal at path. An empty path yields an in-memory
// journal that is never persisted.
func OpenJournal(path string) (*Journal, error) {
	j := &Journal{path: path, entries: make(map[string]JournalEntry)}
	if path == "" {
		return j, nil
	}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return j, nil
		}
		return nil, fmt.Errorf("stat journal: %w", err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("journal path is a directory")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	var file journalFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse journal: %w", err)
	}
	for _, entry := range file.Entries {
		if entry.ChainID == 0 {
			continue
		}
		j.entries[entryID(entry.ChainID, entry.Key)] = entry
	}
	return j, nil
}

// Get returns the journal entry for key on chainID.
func (j *Journal) Get(chainID uint64, key string) (JournalEntry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	entry, ok := j.entries[entryID(chainID, key)]
	return entry, ok
}

// Entries returns all entries sorted by chain, then key.
func (j *Journal) Entries() []JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]JournalEntry, 0, len(j.entries))
	for _, entry := range j.entries {
		out = append(out, entry)
	}
	sortEntries(out)
	return out
}

// Mark replaces the entry for entry.Key on entry.ChainID and persists the
// journal.
func (j *Journal) Mark(entry JournalEntry) error {
	if entry.Key == "" {
		return fmt.Errorf("journal entry has no key")
	}
	if entry.ChainID == 0 {
		return fmt.Errorf("journal entry %s has no chain id", entry.Key)
	}
	entry.UpdatedAt = time.Now().UTC().Format(time.RFC3339Nano)

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries[entryID(entry.ChainID, entry.Key)] = entry
	return j.save()
}

func (j *Journal) save() error {
	if j.path == "" {
		return nil
	}

	dir := filepath.Dir(j.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	file := journalFile{Entries: make([]JournalEntry, 0, len(j.entries))}
	for _, entry := range j.entries {
		file.Entries = append(file.Entries, entry)
	}
	sortEntries(file.Entries)

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	tmpPath := j.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write journal tmp: %w", err)
	}
	if err := os.Rename(tmpPath, j.path); err != nil {
		return fmt.Errorf("rename journal: %w", err)
	}
	return nil
}

// Status resolves the completion state of key on chainID. Only an address
// in the ledger makes a key confirmed. A confirmed journal entry without one
// reads as in-flight: the next deploy recovers the address from its receipt.
func (l *Ledger) Status(key string, journal *Journal, chainID uint64) Status {
	if value, ok := l.Get(key); ok && value != "" {
		return StatusConfirmed
	}
	if journal == nil {
		return StatusNotStarted
	}
	entry, ok := journal.Get(chainID, key)
	if !ok {
		return StatusNotStarted
	}
	if entry.Status == StatusConfirmed {
		return StatusInFlight
	}
	return entry.Status
}
