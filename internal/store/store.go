package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	analysesDir = "analyses"
	sessionsDir = "sessions"
)

// Store persists analysis artifacts and sessions as JSON files under a
// user-private base directory. Keys are derived from a one-way hash of the
// source filename plus a nanosecond timestamp, so no two puts collide and
// no key is reversible to the source document. The store only accepts
// Artifact and Session values, which carry no raw document text.
type Store struct {
	fs      afero.Fs
	baseDir string
	config  Config
	logger  *zap.Logger
}

// New creates an artifact store rooted at config.BaseDir (defaulting to
// ~/.docsentinel) on the real filesystem.
func New(config Config, logger *zap.Logger) (*Store, error) {
	return NewWithFs(afero.NewOsFs(), config, logger)
}

// NewWithFs creates an artifact store on the given filesystem. Tests use an
// in-memory filesystem.
func NewWithFs(fs afero.Fs, config Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseDir := config.BaseDir
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		baseDir = filepath.Join(home, ".docsentinel")
	}

	for _, dir := range []string{analysesDir, sessionsDir} {
		if err := fs.MkdirAll(filepath.Join(baseDir, dir), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}

	logger.Info("Artifact store initialized",
		zap.String("base_dir", baseDir),
		zap.Int("max_stored_analyses", config.MaxStoredAnalyses),
		zap.Int("retention_days", config.RetentionDays),
	)

	return &Store{fs: fs, baseDir: baseDir, config: config, logger: logger}, nil
}

// NewKey derives a storage key for an artifact from its source filename.
// The filename itself is never stored; only the truncated hash survives.
// The nanosecond timestamp keeps concurrent puts append-only.
func NewKey(sourceName string, now time.Time) string {
	sum := sha256.Sum256([]byte(sourceName))
	return fmt.Sprintf("analysis_%s_%d", hex.EncodeToString(sum[:])[:8], now.UnixNano())
}

// Put persists a single analysis artifact and returns its storage key.
// Write failures come back as *WriteError; callers treat them as non-fatal
// and continue with an empty key.
func (s *Store) Put(artifact *Artifact, sourceName string) (string, error) {
	now := time.Now().UTC()
	key := NewKey(sourceName, now)
	artifact.ID = key
	if artifact.Timestamp.IsZero() {
		artifact.Timestamp = now
	}

	if err := s.writeJSON(filepath.Join(s.baseDir, analysesDir, key+".json"), artifact); err != nil {
		return "", &WriteError{Key: key, Err: err}
	}

	s.logger.Info("Analysis artifact stored",
		zap.String("key", key),
		zap.Int("word_count", artifact.WordCount),
		zap.Int("items_removed", artifact.Sanitization.TotalRemoved),
	)

	if s.config.MaxStoredAnalyses > 0 {
		s.pruneOldest()
	}
	return key, nil
}

// PutSession persists a multi-document session and returns its storage key.
func (s *Store) PutSession(session *Session) (string, error) {
	now := time.Now().UTC()
	if session.SessionID == "" {
		session.SessionID = fmt.Sprintf("%s_%d", now.Format("20060102_150405"), now.UnixNano()%1e6)
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = now
	}
	session.DocumentCount = len(session.Analyses)

	key := "session_" + session.SessionID
	if err := s.writeJSON(filepath.Join(s.baseDir, sessionsDir, key+".json"), session); err != nil {
		return "", &WriteError{Key: key, Err: err}
	}

	s.logger.Info("Session stored",
		zap.String("session_id", session.SessionID),
		zap.Int("document_count", session.DocumentCount),
	)
	return key, nil
}

// List returns summaries of all stored artifacts and sessions, newest
// first. Corrupt or unreadable records are skipped with a warning, never
// fatal to the listing.
func (s *Store) List() []Summary {
	var summaries []Summary

	for _, name := range s.listFiles(analysesDir, "analysis_") {
		var artifact Artifact
		if err := s.readJSON(filepath.Join(s.baseDir, analysesDir, name), &artifact); err != nil {
			s.logger.Warn("Skipping unreadable artifact", zap.String("file", name), zap.Error(err))
			continue
		}
		summaries = append(summaries, Summary{
			ID:        artifact.ID,
			Type:      "analysis",
			Timestamp: artifact.Timestamp,
			WordCount: artifact.WordCount,
			Sentiment: artifact.Sentiment,
		})
	}

	for _, name := range s.listFiles(sessionsDir, "session_") {
		var session Session
		if err := s.readJSON(filepath.Join(s.baseDir, sessionsDir, name), &session); err != nil {
			s.logger.Warn("Skipping unreadable session", zap.String("file", name), zap.Error(err))
			continue
		}
		summaries = append(summaries, Summary{
			ID:            session.SessionID,
			Type:          "multi_document_session",
			Timestamp:     session.CreatedAt,
			DocumentCount: session.DocumentCount,
		})
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Timestamp.After(summaries[j].Timestamp)
	})
	return summaries
}

// Get reads one stored artifact back by key.
func (s *Store) Get(key string) (*Artifact, error) {
	var artifact Artifact
	if err := s.readJSON(filepath.Join(s.baseDir, analysesDir, key+".json"), &artifact); err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}
	return &artifact, nil
}

// LoadSession reads one stored session back by id.
func (s *Store) LoadSession(sessionID string) (*Session, error) {
	var session Session
	path := filepath.Join(s.baseDir, sessionsDir, "session_"+sessionID+".json")
	if err := s.readJSON(path, &session); err != nil {
		return nil, fmt.Errorf("failed to read session %s: %w", sessionID, err)
	}
	return &session, nil
}

// Sweep removes artifacts and sessions older than maxAge and returns the
// number of records removed.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0

	for _, dir := range []string{analysesDir, sessionsDir} {
		entries, err := afero.ReadDir(s.fs, filepath.Join(s.baseDir, dir))
		if err != nil {
			return removed, fmt.Errorf("failed to read storage directory: %w", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			if entry.ModTime().After(cutoff) {
				continue
			}
			path := filepath.Join(s.baseDir, dir, entry.Name())
			if err := s.fs.Remove(path); err != nil {
				s.logger.Warn("Failed to remove expired record", zap.String("file", entry.Name()), zap.Error(err))
				continue
			}
			removed++
		}
	}

	if removed > 0 {
		s.logger.Info("Retention sweep completed",
			zap.Int("removed", removed),
			zap.Duration("max_age", maxAge),
		)
	}
	return removed, nil
}

// Stats returns storage usage counters.
func (s *Store) Stats() Stats {
	stats := Stats{BaseDir: s.baseDir}
	for _, dir := range []string{analysesDir, sessionsDir} {
		entries, err := afero.ReadDir(s.fs, filepath.Join(s.baseDir, dir))
		if err != nil {
			continue
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			stats.TotalBytes += entry.Size()
			if dir == analysesDir {
				stats.Analyses++
			} else {
				stats.Sessions++
			}
		}
	}
	return stats
}

// pruneOldest keeps the artifact count at or below max_stored_analyses by
// deleting the oldest artifacts first.
func (s *Store) pruneOldest() {
	entries, err := afero.ReadDir(s.fs, filepath.Join(s.baseDir, analysesDir))
	if err != nil {
		return
	}

	var files []os.FileInfo
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			files = append(files, entry)
		}
	}
	if len(files) <= s.config.MaxStoredAnalyses {
		return
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].ModTime().Before(files[j].ModTime())
	})
	for _, file := range files[:len(files)-s.config.MaxStoredAnalyses] {
		if err := s.fs.Remove(filepath.Join(s.baseDir, analysesDir, file.Name())); err != nil {
			s.logger.Warn("Failed to prune artifact", zap.String("file", file.Name()), zap.Error(err))
			continue
		}
		s.logger.Debug("Pruned oldest artifact", zap.String("file", file.Name()))
	}
}

func (s *Store) listFiles(dir, prefix string) []string {
	entries, err := afero.ReadDir(s.fs, filepath.Join(s.baseDir, dir))
	if err != nil {
		s.logger.Warn("Failed to read storage directory", zap.String("dir", dir), zap.Error(err))
		return nil
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) && strings.HasSuffix(entry.Name(), ".json") {
			names = append(names, entry.Name())
		}
	}
	return names
}

func (s *Store) writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

func (s *Store) readJSON(path string, v interface{}) error {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
