// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/showcase-chat/internal/model"
	"github.com/jeranaias/showcase-chat/internal/util"
)

// DefaultMaxTranscripts bounds how many snapshots are kept on disk.
const DefaultMaxTranscripts = 100

// =============================================================================
// TRANSCRIPT TYPE
// =============================================================================

// Transcript is a saved copy of one conversation.
type Transcript struct {
	ID             string          `json:"id"`
	ConversationID model.ID        `json:"conversation_id"`
	Title          string          `json:"title"`
	SavedAt        time.Time       `json:"saved_at"`
	Messages       []model.Message `json:"messages"`
}

// DisplayTitle returns the title, falling back to model.DefaultTitle.
func (t *Transcript) DisplayTitle() string {
	return model.Conversation{ID: t.ConversationID, Title: t.Title}.DisplayTitle()
}

// Preview returns the first user message, shortened for listings.
func (t *Transcript) Preview() string {
	for _, msg := range t.Messages {
		if msg.IsUser() && msg.Content != "" {
			return util.TruncateRunes(util.FirstLine(msg.Content), 80)
		}
	}
	return ""
}

// TranscriptMeta is the listing view of a Transcript.
type TranscriptMeta struct {
	ID             string    `json:"id"`
	ConversationID model.ID  `json:"conversation_id"`
	Title          string    `json:"title"`
	SavedAt        time.Time `json:"saved_at"`
	MessageCount   int       `json:"message_count"`
	Preview        string    `json:"preview"`
}

// =============================================================================
// TRANSCRIPT STORE
// =============================================================================

// ErrTranscriptNotFound is returned when no snapshot has the requested id.
var ErrTranscriptNotFound = errors.New("transcript not found")

// TranscriptStore persists transcripts as one JSON file each.
type TranscriptStore struct {
	// BaseDir holds the transcript files.
	BaseDir string

	// MaxTranscripts limits stored snapshots (0 = unlimited).
	MaxTranscripts int
}

// NewTranscriptStore creates a store rooted at dir, creating it if needed.
func NewTranscriptStore(dir string) (*TranscriptStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}
	return &TranscriptStore{
		BaseDir:        dir,
		MaxTranscripts: DefaultMaxTranscripts,
	}, nil
}

// Save writes t and returns its id. A missing id is minted; a zero SavedAt
// is set to now.
func (s *TranscriptStore) Save(t *Transcript) (string, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.SavedAt.IsZero() {
		t.SavedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", err
	}
	if err := util.AtomicWriteFile(s.filePath(t.ID), data, 0600); err != nil {
		return "", err
	}

	if s.MaxTranscripts > 0 {
		s.enforceLimit()
	}
	return t.ID, nil
}

// Load reads the transcript with the given id.
func (s *TranscriptStore) Load(id string) (*Transcript, error) {
	if !validID(id) {
		return nil, ErrTranscriptNotFound
	}
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrTranscriptNotFound
		}
		return nil, err
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns all transcripts, most recently saved first. Unreadable files
// are skipped.
func (s *TranscriptStore) List() ([]TranscriptMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TranscriptMeta{}, nil
		}
		return nil, err
	}

	metas := make([]TranscriptMeta, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		t, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue
		}
		metas = append(metas, TranscriptMeta{
			ID:             t.ID,
			ConversationID: t.ConversationID,
			Title:          t.DisplayTitle(),
			SavedAt:        t.SavedAt,
			MessageCount:   len(t.Messages),
			Preview:        t.Preview(),
		})
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].SavedAt.After(metas[j].SavedAt)
	})
	return metas, nil
}

// Search returns transcripts whose title or any message contains query,
// case-insensitively. An empty query lists everything.
func (s *TranscriptStore) Search(query string) ([]TranscriptMeta, error) {
	all, err := s.List()
	if err != nil || query == "" {
		return all, err
	}

	query = strings.ToLower(query)
	var results []TranscriptMeta
	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Title), query) {
			results = append(results, meta)
			continue
		}
		t, err := s.Load(meta.ID)
		if err != nil {
			continue
		}
		for _, msg := range t.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, meta)
				break
			}
		}
	}
	return results, nil
}

// Delete removes a transcript.
func (s *TranscriptStore) Delete(id string) error {
	if !validID(id) {
		return ErrTranscriptNotFound
	}
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrTranscriptNotFound
		}
		return err
	}
	return nil
}

// enforceLimit removes the oldest snapshots past MaxTranscripts.
func (s *TranscriptStore) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxTranscripts {
		return
	}
	for _, meta := range metas[s.MaxTranscripts:] {
		_ = s.Delete(meta.ID)
	}
}

func (s *TranscriptStore) filePath(id string) string {
	return filepath.Join(s.BaseDir, id+".json")
}

// validID rejects ids that would escape BaseDir.
func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}
