package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/barracksmedia/site-assistant/internal/models"
	"gopkg.in/yaml.v3"
)

// File is the YAML catalog document.
type File struct {
	Services []models.ServiceRecord `yaml:"services"`
	Episodes []models.EpisodeRecord `yaml:"episodes"`
}

// LoadFile parses a YAML catalog from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseFile(data)
}

// ParseFile parses a YAML catalog document.
func ParseFile(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &f, nil
}

// FileSource serves the catalog from a YAML file. The file is re-read on
// every call so edits show up without a restart.
type FileSource struct {
	path string
}

var _ Source = (*FileSource)(nil)

// NewFileSource creates a source backed by path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Services returns the file's service records.
func (s *FileSource) Services(ctx context.Context) ([]models.ServiceRecord, error) {
	f, err := LoadFile(s.path)
	if err != nil {
		return nil, err
	}
	return f.Services, nil
}

// Episodes returns the file's episode records.
func (s *FileSource) Episodes(ctx context.Context) ([]models.EpisodeRecord, error) {
	f, err := LoadFile(s.path)
	if err != nil {
		return nil, err
	}
	return f.Episodes, nil
}

// Static serves fixed records. Used in tests and by the CLI dry run.
type Static struct {
	ServiceRecords []models.ServiceRecord
	EpisodeRecords []models.EpisodeRecord
	ServiceErr     error
	EpisodeErr     error
}

var _ Source = (*Static)(nil)

// Services returns the fixed service records or ServiceErr.
func (s *Static) Services(ctx context.Context) ([]models.ServiceRecord, error) {
	if s.ServiceErr != nil {
		return nil, s.ServiceErr
	}
	return s.ServiceRecords, nil
}

// Episodes returns the fixed episode records or EpisodeErr.
func (s *Static) Episodes(ctx context.Context) ([]models.EpisodeRecord, error) {
	if s.EpisodeErr != nil {
		return nil, s.EpisodeErr
	}
	return s.EpisodeRecords, nil
}
