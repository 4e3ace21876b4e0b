package ledger

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// Entry is a single KEY=value line of the ledger file.
type Entry struct {
	Key   string
	Value string
	Line  int
}

// Ledger is an append-only KEY=value env file. Reads resolve duplicate keys
// to the last occurrence.
type Ledger struct {
	path string

	mu      sync.Mutex
	entries []Entry
	values  map[string]string
	lines   int
}

// Open loads the ledger at path. A missing file is an empty ledger; it is
// created on the first Write.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, fmt.Errorf("ledger path is required")
	}
	l := &Ledger{path: path, values: make(map[string]string)}
	if err := l.load(); err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the backing file path.
func (l *Ledger) Path() string {
	return l.path
}

func (l *Ledger) load() error {
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &LedgerIOError{Op: "open", Path: l.path, Err: err}
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed, err := godotenv.Unmarshal(line)
		if err != nil {
			return &LedgerIOError{Op: "parse", Path: l.path, Err: fmt.Errorf("line %d: %w", lineNo, err)}
		}
		for key, value := range parsed {
			l.entries = append(l.entries, Entry{Key: key, Value: value, Line: lineNo})
			l.values[key] = value
		}
	}
	if err := scanner.Err(); err != nil {
		return &LedgerIOError{Op: "read", Path: l.path, Err: err}
	}
	l.lines = lineNo
	return nil
}

// Write appends KEY=value to the ledger. Existing lines are never touched.
func (l *Ledger) Write(key, value string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("invalid ledger key %q", key)
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("ledger value for %s contains a newline", key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	dir := filepath.Dir(l.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &LedgerIOError{Op: "mkdir", Path: l.path, Err: err}
		}
	}

	file, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return &LedgerIOError{Op: "open", Path: l.path, Err: err}
	}
	defer file.Close()

	var buf bytes.Buffer
	missingNewline, err := endsWithoutNewline(file)
	if err != nil {
		return &LedgerIOError{Op: "read", Path: l.path, Err: err}
	}
	if missingNewline {
		buf.WriteByte('\n')
	}
	buf.WriteString(key)
	buf.WriteByte('=')
	buf.WriteString(value)
	buf.WriteByte('\n')

	if _, err := file.Write(buf.Bytes()); err != nil {
		return &LedgerIOError{Op: "write", Path: l.path, Err: err}
	}
	if err := file.Sync(); err != nil {
		return &LedgerIOError{Op: "sync", Path: l.path, Err: err}
	}

	l.lines++
	l.entries = append(l.entries, Entry{Key: key, Value: value, Line: l.lines})
	l.values[key] = value
	return nil
}

func endsWithoutNewline(file *os.File) (bool, error) {
	stat, err := file.Stat()
	if err != nil {
		return false, err
	}
	if stat.Size() == 0 {
		return false, nil
	}
	last := make([]byte, 1)
	if _, err := file.ReadAt(last, stat.Size()-1); err != nil && err != io.EOF {
		return false, err
	}
	return last[0] != '\n', nil
}

// Get returns the last value written for key in the ledger file.
func (l *Ledger) Get(key string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	value, ok := l.values[key]
	return value, ok
}

// Lookup resolves key from the ledger file first and the process
// environment second.
func (l *Ledger) Lookup(key string) (string, bool) {
	if value, ok := l.Get(key); ok && value != "" {
		return value, true
	}
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// Entries returns every ledger line in file order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Values returns the resolved key mapping.
func (l *Ledger) Values() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]string, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

// KeyFor converts a contract name such as StableSwapTwoPoolDeployer into its
// ledger key STABLE_SWAP_TWO_POOL_DEPLOYER.
func KeyFor(contractName string) string {
	var b strings.Builder
	runes := []rune(contractName)
	for i, r := range runes {
		isUpper := r >= 'A' && r <= 'Z'
		isDigit := r >= '0' && r <= '9'
		if i > 0 && (isUpper || isDigit) {
			prev := runes[i-1]
			prevLower := prev >= 'a' && prev <= 'z'
			prevDigit := prev >= '0' && prev <= '9'
			nextLower := i+1 < len(runes) && runes[i+1] >= 'a' && runes[i+1] <= 'z'
			prevUpper := prev >= 'A' && prev <= 'Z'
			switch {
			case isUpper && (prevLower || prevDigit):
				b.WriteByte('_')
			case isUpper && prevUpper && nextLower:
				b.WriteByte('_')
			case isDigit && prevLower:
				b.WriteByte('_')
			}
		}
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		case isUpper || isDigit:
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// StatusKey is the ledger key holding the completion marker for key.
func StatusKey(key string) string {
	return key + "_STATUS"
}
