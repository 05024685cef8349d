package ledger

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/go-git/go-billy/v6"

	"github.com/ledgerlite/ledgerlite/core"
)

// maxEntryBytes bounds a single ledger line when scanning the file.
const maxEntryBytes = 4 * 1024 * 1024

// FileLog stores entries as newline-delimited JSON in a single file on a
// billy filesystem (osfs for durable use, memfs in tests). The byte stream is
// stable: backup and restore are plain file copies.
type FileLog struct {
	fs     billy.Filesystem
	path   string
	file   billy.File
	mu     sync.Mutex
	nextID int64
}

// NewFileLog opens (or creates) the ledger file at path. An existing file is
// scanned once to seed the transaction counter from the highest recorded id.
func NewFileLog(fs billy.Filesystem, path string) (*FileLog, error) {
	maxID, err := scanMaxID(fs, path)
	if err != nil {
		return nil, err
	}

	file, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	return &FileLog{fs: fs, path: path, file: file, nextID: maxID + 1}, nil
}

func (l *FileLog) Append(entry core.Entry) (core.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry.TransactionID = l.nextID

	data, err := json.Marshal(entry)
	if err != nil {
		return core.Entry{}, fmt.Errorf("marshal ledger entry: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.file.Write(data); err != nil {
		return core.Entry{}, fmt.Errorf("append ledger entry: %w", err)
	}
	if err := syncFile(l.file); err != nil {
		return core.Entry{}, fmt.Errorf("sync ledger: %w", err)
	}

	l.nextID++
	return entry, nil
}

// syncFile flushes a written entry to stable storage when the backing file
// supports it (osfs files do; memfs has nothing to flush).
func syncFile(file billy.File) error {
	if f, ok := file.(interface{ Sync() error }); ok {
		return f.Sync()
	}
	return nil
}

func (l *FileLog) ReadAll() ([]core.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := l.fs.Open(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger %s: %w", l.path, err)
	}
	defer file.Close()

	return decodeEntries(file)
}

func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// Path returns the ledger file path within its filesystem.
func (l *FileLog) Path() string {
	return l.path
}

func scanMaxID(fs billy.Filesystem, path string) (int64, error) {
	file, err := fs.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("open ledger %s: %w", path, err)
	}
	defer file.Close()

	var maxID int64
	scanner := newEntryScanner(file)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry core.Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return 0, fmt.Errorf("ledger %s line %d: %w", path, line, err)
		}
		if entry.TransactionID > maxID {
			maxID = entry.TransactionID
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("scan ledger %s: %w", path, err)
	}
	return maxID, nil
}

func decodeEntries(r io.Reader) ([]core.Entry, error) {
	var entries []core.Entry
	scanner := newEntryScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var entry core.Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			return nil, fmt.Errorf("ledger line %d: %w", line, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func newEntryScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEntryBytes)
	return scanner
}
