// Package modelstore persists trained promotion models as JSON files
package modelstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ethpandaops/rbi/pkg/features"
	"github.com/ethpandaops/rbi/pkg/ml"
)

// File names inside the model directory
const (
	ClassifierFile = "promo_classifier.json"
	RegressorFile  = "promo_regressor.json"
	EncodersFile   = "label_encoders.json"
)

// Define static errors
var (
	ErrModelsNotFound = errors.New("no trained models found")
	ErrIncompleteSet  = errors.New("model set is incomplete")
)

// Config holds model storage configuration
type Config struct {
	Dir string `yaml:"dir" default:"saved_models"`
}

// ModelSet is the output of one training run
type ModelSet struct {
	RunID        string
	TrainedAt    time.Time
	FeatureNames []string
	Classifier   *ml.GradientBoostingClassifier
	Regressor    *ml.GradientBoostingRegressor
	Encoders     features.Encoders
}

type classifierFile struct {
	RunID        string                         `json:"run_id"`
	TrainedAt    time.Time                      `json:"trained_at"`
	FeatureNames []string                       `json:"feature_names"`
	Model        *ml.GradientBoostingClassifier `json:"model"`
}

type regressorFile struct {
	RunID        string                        `json:"run_id"`
	TrainedAt    time.Time                     `json:"trained_at"`
	FeatureNames []string                      `json:"feature_names"`
	Model        *ml.GradientBoostingRegressor `json:"model"`
}

type encodersFile struct {
	RunID     string            `json:"run_id"`
	TrainedAt time.Time         `json:"trained_at"`
	Encoders  features.Encoders `json:"encoders"`
}

// Store reads and writes a model set in one directory. Files are overwritten in place.
type Store struct {
	dir string
}

// NewStore creates a store rooted at dir
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the model directory
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the full path of a model file
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save writes the three model files, creating the directory when needed
func (s *Store) Save(set *ModelSet) ([]string, error) {
	if set == nil || set.Classifier == nil || set.Regressor == nil || set.Encoders == nil {
		return nil, ErrIncompleteSet
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create model directory: %w", err)
	}

	files := []struct {
		name  string
		value interface{}
	}{
		{ClassifierFile, classifierFile{set.RunID, set.TrainedAt, set.FeatureNames, set.Classifier}},
		{RegressorFile, regressorFile{set.RunID, set.TrainedAt, set.FeatureNames, set.Regressor}},
		{EncodersFile, encodersFile{set.RunID, set.TrainedAt, set.Encoders}},
	}

	paths := make([]string, 0, len(files))

	for _, f := range files {
		path := s.Path(f.name)
		if err := writeJSON(path, f.value); err != nil {
			return paths, err
		}

		paths = append(paths, path)
	}

	return paths, nil
}

// Load reads the model set back
func (s *Store) Load() (*ModelSet, error) {
	var (
		clf classifierFile
		reg regressorFile
		enc encodersFile
	)

	for name, target := range map[string]interface{}{
		ClassifierFile: &clf,
		RegressorFile:  &reg,
		EncodersFile:   &enc,
	} {
		if err := readJSON(s.Path(name), target); err != nil {
			return nil, err
		}
	}

	if clf.Model == nil || reg.Model == nil || enc.Encoders == nil {
		return nil, ErrIncompleteSet
	}

	return &ModelSet{
		RunID:        clf.RunID,
		TrainedAt:    clf.TrainedAt,
		FeatureNames: clf.FeatureNames,
		Classifier:   clf.Model,
		Regressor:    reg.Model,
		Encoders:     enc.Encoders,
	}, nil
}

func writeJSON(path string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

func readJSON(path string, target interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrModelsNotFound, path)
		}

		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return nil
}
