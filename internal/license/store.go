package license

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/Varian-MedicalAffairsAppliedSolutions/MAAS-PlanComplexity/internal/errors"
)

// storeSchemaVersion tags the canonical on-disk document. Version 2 is
// the JSON schema below; version 1 was a bare JSON object of key->code;
// before that an XML list of entries. Legacy documents are migrated on
// load and rewritten canonically on the next save.
const storeSchemaVersion = 2

// Settings carries non-code state stored alongside the acceptance
// mapping. The section exists so the file can grow without breaking
// readers of the codes mapping.
type Settings struct {
	// Validated flips to true the first time any code is accepted.
	Validated bool `json:"validated"`

	// ActivationID identifies this installation's first successful
	// acceptance. Assigned once, on the first save.
	ActivationID string `json:"activation_id,omitempty"`
}

// storeDocument is the canonical serialized form. The in-memory map is
// the single source of truth; this struct exists only at the
// serialization boundary.
type storeDocument struct {
	SchemaVersion int               `json:"schema_version"`
	Codes         map[string]string `json:"codes"`
	Settings      Settings          `json:"settings"`
}

// Legacy XML document, oldest schema still found in the field.
type xmlStoreDocument struct {
	XMLName xml.Name   `xml:"licenseStore"`
	Entries []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	Key  string `xml:"key,attr"`
	Code string `xml:"code,attr"`
	Body string `xml:",chardata"`
}

// Store is the persisted mapping of configuration keys to accepted
// access codes. A missing, unreadable or corrupt file degrades to an
// empty store; it never fails the caller. Concurrent processes are not
// coordinated: the subsystem assumes one interactive session at a time.
type Store struct {
	mu           sync.RWMutex
	path         string
	fallbackPath string
	codes        map[string]string
	settings     Settings
}

// Open loads the store from path and merges any flat fallback records
// left behind by an earlier failed save. The returned error is a typed
// diagnosis (ErrStoreNotFound, ErrStoreParse or ErrStoreIO) of why the
// store came back empty; the store itself is always usable.
func Open(path, fallbackPath string) (*Store, error) {
	s := &Store{
		path:         path,
		fallbackPath: fallbackPath,
		codes:        make(map[string]string),
	}
	issue := s.loadPrimary()
	s.mergeFallback()
	return s, issue
}

func (s *Store) loadPrimary() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", apperrors.ErrStoreNotFound, s.path)
		}
		return fmt.Errorf("%w: %v", apperrors.ErrStoreIO, err)
	}
	return s.parse(data)
}

func (s *Store) parse(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty file %s", apperrors.ErrStoreParse, s.path)
	}

	if trimmed[0] == '<' {
		return s.parseLegacyXML(trimmed)
	}

	var doc storeDocument
	if err := json.Unmarshal(trimmed, &doc); err == nil && doc.SchemaVersion > 0 {
		if doc.Codes != nil {
			s.codes = doc.Codes
		}
		s.settings = doc.Settings
		return nil
	}

	// Schema v1: a bare JSON object of key -> code.
	var flat map[string]string
	if err := json.Unmarshal(trimmed, &flat); err == nil {
		s.codes = flat
		return nil
	}

	return fmt.Errorf("%w: %s", apperrors.ErrStoreParse, s.path)
}

func (s *Store) parseLegacyXML(data []byte) error {
	var doc xmlStoreDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %s", apperrors.ErrStoreParse, s.path)
	}
	for _, e := range doc.Entries {
		code := e.Code
		if code == "" {
			code = strings.TrimSpace(e.Body)
		}
		if e.Key == "" || code == "" {
			continue
		}
		s.codes[e.Key] = code
	}
	return nil
}

// mergeFallback folds flat key=code records into the mapping. Fallback
// entries were written after the structured save failed, so they are
// newer and win on conflict.
func (s *Store) mergeFallback() {
	if s.fallbackPath == "" {
		return
	}
	data, err := os.ReadFile(s.fallbackPath)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, code, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key, code = strings.TrimSpace(key), strings.TrimSpace(code)
		if key == "" || code == "" {
			continue
		}
		s.codes[key] = code
	}
}

// Get returns the accepted code recorded under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.codes[key]
	return code, ok
}

// Set records an accepted code under key, overwriting any prior record.
// Idempotent upsert; also flips the validated settings flag.
func (s *Store) Set(key, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[key] = code
	s.settings.Validated = true
}

// All returns a copy of the key -> code mapping.
func (s *Store) All() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.codes))
	for k, v := range s.codes {
		out[k] = v
	}
	return out
}

// Len returns the number of acceptance records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.codes)
}

// Settings returns the non-code state persisted with the store.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Path returns the structured store file location.
func (s *Store) Path() string {
	return s.path
}

// Save serializes the full record set to the canonical schema, creating
// missing parent directories. It returns a typed error and never
// panics, so the caller can apply the flat-file fallback. A successful
// save absorbs and removes the fallback file.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings.ActivationID == "" {
		s.settings.ActivationID = uuid.New().String()
	}

	doc := storeDocument{
		SchemaVersion: storeSchemaVersion,
		Codes:         s.codes,
		Settings:      s.settings,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreParse, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreIO, err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreIO, err)
	}

	if s.fallbackPath != "" {
		os.Remove(s.fallbackPath)
	}
	return nil
}

// WriteFallback records a single key=code pairing in the flat secondary
// file so the acceptance survives to the next run even though the
// structured store could not be written.
func (s *Store) WriteFallback(key, code string) error {
	if s.fallbackPath == "" {
		return fmt.Errorf("%w: no fallback path configured", apperrors.ErrStoreIO)
	}

	pairs := map[string]string{}
	if data, err := os.ReadFile(s.fallbackPath); err == nil {
		for _, line := range strings.Split(string(data), "\n") {
			k, v, ok := strings.Cut(strings.TrimSpace(line), "=")
			if ok && k != "" {
				pairs[k] = v
			}
		}
	}
	pairs[key] = code

	keys := make([]string, 0, len(pairs))
	for k := range pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s\n", k, pairs[k])
	}
	if err := os.WriteFile(s.fallbackPath, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrStoreIO, err)
	}
	return nil
}
