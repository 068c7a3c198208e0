package regression

import "fmt"

type linearModel struct {
	features     []string
	intercept    float64
	coefficients []float64
}

func newLinearModel(features []string, intercept float64, coefficients []float64) (*linearModel, error) {
	if len(coefficients) != len(features) {
		return nil, fmt.Errorf("%w: %d coefficients for %d features",
			ErrFeatureMismatch, len(coefficients), len(features))
	}
	return &linearModel{
		features:     append([]string(nil), features...),
		intercept:    intercept,
		coefficients: append([]float64(nil), coefficients...),
	}, nil
}

func (m *linearModel) FeatureNames() []string {
	return append([]string(nil), m.features...)
}

func (m *linearModel) Predict(row []float64) (float64, error) {
	if err := checkRow(row, len(m.features)); err != nil {
		return 0, err
	}
	y := m.intercept
	for i, c := range m.coefficients {
		y += c * row[i]
	}
	return checkOutput(y)
}
