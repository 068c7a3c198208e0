// Package regression loads exported regression models and runs inference on
// a single feature row.
package regression

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported model types.
const (
	TypeLinear           = "linear"
	TypeRandomForest     = "random_forest"
	TypeGradientBoosting = "gradient_boosting"
)

// Artifact encodings.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	ErrUnknownModelType = errors.New("unknown model type")
	ErrFeatureMismatch  = errors.New("feature mismatch")
	ErrMalformedTree    = errors.New("malformed tree")
	ErrNonFinite        = errors.New("non-finite value")
)

// Model maps a feature row to a scalar prediction.
type Model interface {
	Predict(row []float64) (float64, error)
	FeatureNames() []string
}

// Artifact is the serialized form of a trained model.
type Artifact struct {
	ModelType    string    `json:"model_type" yaml:"model_type"`
	FeatureNames []string  `json:"feature_names" yaml:"feature_names"`
	Intercept    float64   `json:"intercept" yaml:"intercept"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	BaseScore    float64   `json:"base_score" yaml:"base_score"`
	LearningRate float64   `json:"learning_rate" yaml:"learning_rate"`
	Trees        []Tree    `json:"trees" yaml:"trees"`
}

// Load reads and decodes the artifact at path. The encoding is picked from
// the file extension; anything other than .yaml/.yml is treated as JSON.
func Load(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	model, err := Decode(data, formatFor(path))
	if err != nil {
		return nil, fmt.Errorf("failed to load model %s: %w", filepath.Base(path), err)
	}
	return model, nil
}

// Decode builds a Model from raw artifact bytes.
func Decode(data []byte, format string) (Model, error) {
	var artifact Artifact
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &artifact); err != nil {
			return nil, fmt.Errorf("invalid yaml: %w", err)
		}
	case FormatJSON, "":
		if err := json.Unmarshal(data, &artifact); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported artifact format %q", format)
	}
	return artifact.Build()
}

// Build validates the artifact and returns the matching Model.
func (a *Artifact) Build() (Model, error) {
	if len(a.FeatureNames) == 0 {
		return nil, fmt.Errorf("%w: artifact lists no feature names", ErrFeatureMismatch)
	}

	var (
		model Model
		err   error
	)
	switch strings.ToLower(a.ModelType) {
	case TypeLinear:
		model, err = newLinearModel(a.FeatureNames, a.Intercept, a.Coefficients)
	case TypeRandomForest:
		model, err = newForestModel(a.FeatureNames, a.Trees)
	case TypeGradientBoosting:
		model, err = newBoostedModel(a.FeatureNames, a.Trees, a.BaseScore, a.LearningRate)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownModelType, a.ModelType)
	}
	if err != nil {
		return nil, err
	}
	return model, nil
}

// RequireFeatures checks that the model was trained on exactly the given
// columns, in the same order.
func RequireFeatures(m Model, columns []string) error {
	names := m.FeatureNames()
	if len(names) != len(columns) {
		return fmt.Errorf("%w: model expects %d features %v, got %d %v",
			ErrFeatureMismatch, len(names), names, len(columns), columns)
	}
	for i := range names {
		if names[i] != columns[i] {
			return fmt.Errorf("%w: feature %d is %q in model, %q in input",
				ErrFeatureMismatch, i, names[i], columns[i])
		}
	}
	return nil
}

func formatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

func checkRow(row []float64, width int) error {
	if len(row) != width {
		return fmt.Errorf("%w: row has %d values, model expects %d", ErrFeatureMismatch, len(row), width)
	}
	for i, v := range row {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: input feature %d is %v", ErrNonFinite, i, v)
		}
	}
	return nil
}

func checkOutput(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: model produced %v", ErrNonFinite, v)
	}
	return v, nil
}
