// Package persona loads the assistant's identity documents from disk and
// assembles them into the fixed biography used by the prompt builder.
package persona

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"doppel-ai/internal/domain"
	"doppel-ai/internal/infra/config"
)

// Store loads a persona from its configured document paths. Every path is
// optional: a missing file is skipped with a log line, so a persona can be
// assembled from whatever documents exist.
type Store struct {
	name        string
	profilePath string
	summaryPath string
	websitePath string
	logger      *slog.Logger
}

// NewStore creates a persona store from configuration.
func NewStore(cfg config.PersonaConfig, logger *slog.Logger) *Store {
	return &Store{
		name:        cfg.Name,
		profilePath: cfg.ProfilePath,
		summaryPath: cfg.SummaryPath,
		websitePath: cfg.WebsitePath,
		logger:      logger,
	}
}

// Load reads all configured documents and returns the assembled persona.
// It is deterministic for fixed file contents: loading twice yields the
// same biography.
func (s *Store) Load() (domain.Persona, error) {
	var bio strings.Builder

	if s.profilePath != "" {
		text, err := s.loadDocument(s.profilePath, extractPDFText)
		if err != nil {
			return domain.Persona{}, err
		}
		bio.WriteString(text)
	}

	for _, path := range []string{s.summaryPath, s.websitePath} {
		if path == "" {
			continue
		}
		text, err := s.loadDocument(path, readTextFile)
		if err != nil {
			return domain.Persona{}, err
		}
		if text != "" {
			bio.WriteString("\n")
			bio.WriteString(text)
		}
	}

	persona := domain.Persona{Name: s.name, Biography: bio.String()}
	s.logger.Info("persona loaded", "name", persona.Name, "biography_bytes", len(persona.Biography))
	return persona, nil
}

// loadDocument reads one source with the given extractor. A missing file is
// not an error; any other failure is.
func (s *Store) loadDocument(path string, extract func(string) (string, error)) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("persona document missing, skipping", "path", path)
			return "", nil
		}
		return "", err
	}

	text, err := extract(filepath.Clean(path))
	if err != nil {
		return "", err
	}
	return text, nil
}

func readTextFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
