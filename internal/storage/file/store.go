// Package file provides a Store persisting the room state as a single
// document through github.com/viant/afs. Locations ending in ".yaml" or
// ".yml" are written as YAML, everything else as JSON.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/hotel/internal/hotel"
	"github.com/cory-johannsen/hotel/internal/storage"
)

// Store implements storage.Store over an afs location.
type Store struct {
	URL  string
	fs   afs.Service
	seed *hotel.Layout
	yaml bool
	mu   sync.RWMutex
}

var _ storage.Store = (*Store)(nil)

// New creates a file store at location, creating its parent directory if
// needed. Until the first Save, Load returns a copy of seed.
//
// Precondition: location must be non-empty; seed must be non-nil.
func New(ctx context.Context, location string, seed *hotel.Layout) (*Store, error) {
	if location == "" {
		return nil, fmt.Errorf("file store location cannot be empty")
	}

	fs := afs.New()
	URL := url.Normalize(location, file.Scheme)
	parent, _ := url.Split(URL, file.Scheme)
	exists, err := fs.Exists(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("checking directory %s: %w", parent, err)
	}
	if !exists {
		if err := fs.Create(ctx, parent, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", parent, err)
		}
	}

	lower := strings.ToLower(location)
	return &Store{
		URL:  URL,
		fs:   fs,
		seed: seed.Clone(),
		yaml: strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml"),
	}, nil
}

// Load reads the stored document, or returns the seed layout when nothing
// has been saved yet.
func (s *Store) Load(ctx context.Context) (*hotel.Layout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	exists, err := s.fs.Exists(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("checking %s: %w", s.URL, err)
	}
	if !exists {
		return s.seed.Clone(), nil
	}

	data, err := s.fs.DownloadWithURL(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.URL, err)
	}

	l, err := s.decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.URL, err)
	}
	if !s.seed.SameShape(l) {
		return nil, fmt.Errorf("loading %s: %w", s.URL, storage.ErrShapeMismatch)
	}
	return l, nil
}

// Save writes l as the stored document.
func (s *Store) Save(ctx context.Context, l *hotel.Layout) error {
	if !s.seed.SameShape(l) {
		return fmt.Errorf("saving %s: %w", s.URL, storage.ErrShapeMismatch)
	}
	data, err := s.encode(l)
	if err != nil {
		return fmt.Errorf("encoding layout: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fs.Upload(ctx, s.URL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing %s: %w", s.URL, err)
	}
	return nil
}

func (s *Store) encode(l *hotel.Layout) ([]byte, error) {
	if s.yaml {
		return yaml.Marshal(l.Document())
	}
	return json.MarshalIndent(l.Document(), "", "  ")
}

func (s *Store) decode(data []byte) (*hotel.Layout, error) {
	var doc hotel.Document
	var err error
	if s.yaml {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, err
	}
	return doc.Layout()
}
