package services

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/irfndi/bidpredict/internal/config"
	"github.com/irfndi/bidpredict/internal/logging"
	"github.com/irfndi/bidpredict/internal/models"
	"github.com/irfndi/bidpredict/internal/regression"
	"github.com/irfndi/bidpredict/internal/utils"
)

const hoursPerDay = 24

// Predictor turns auction inputs into a recommended final bid price.
type Predictor struct {
	model  regression.Model
	rules  config.PricingRules
	logger *logrus.Entry
}

// NewPredictor wraps a loaded model. The model must have been trained on
// models.FeatureColumns in that order.
func NewPredictor(model regression.Model, rules config.PricingRules, logger *logrus.Entry) (*Predictor, error) {
	if model == nil {
		return nil, utils.NewValidationError("predictor requires a model")
	}
	if err := regression.RequireFeatures(model, models.FeatureColumns()); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.NewEntry(logging.NewLogger(logging.LevelOff, nil))
	}
	return &Predictor{
		model:  model,
		rules:  rules,
		logger: logging.WithComponent(logger, "predictor"),
	}, nil
}

// NewPredictorFromFile loads the artifact at path and builds a Predictor.
func NewPredictorFromFile(path string, rules config.PricingRules, logger *logrus.Entry) (*Predictor, error) {
	model, err := regression.Load(path)
	if err != nil {
		return nil, err
	}
	return NewPredictor(model, rules, logger)
}

// DeriveFeatures builds the model row from the raw inputs. Both modulo
// operations are floored, so negative bid times still land in [0, 24] hours
// and [0, 7) weekdays. Hour reaches 24 only when a tiny negative fraction
// rounds up to a whole day, matching the floored float modulo.
func DeriveFeatures(input models.BidInput) (models.FeatureRow, error) {
	if !isFinite(input.OpenBid) {
		return models.FeatureRow{}, utils.NewFieldError(models.ColumnOpenBid, "must be a finite number, got %v", input.OpenBid)
	}
	if !isFinite(input.BidTimeDays) {
		return models.FeatureRow{}, utils.NewFieldError("bidtime_days", "must be a finite number, got %v", input.BidTimeDays)
	}

	days := math.Floor(input.BidTimeDays)
	hour := (input.BidTimeDays - days) * hoursPerDay

	weekday := math.Mod(days, 7)
	switch {
	case weekday < 0:
		weekday += 7
	case weekday == 0:
		weekday = 0 // drop the sign of -0
	}

	return models.FeatureRow{
		OpenBid:    input.OpenBid,
		BidderRate: input.BidderRate,
		Hour:       hour,
		Weekday:    weekday,
	}, nil
}

// Adjustment is the outcome of the pricing rules for one raw prediction.
type Adjustment struct {
	Final        decimal.Decimal
	Minimum      decimal.Decimal
	FloorApplied bool
	BonusApplied bool
}

// ApplyRules floors the raw prediction at openbid*FloorMultiplier and then,
// for bids inside the early window, scales it by EarlyBonus.
func ApplyRules(rules config.PricingRules, input models.BidInput, raw float64) Adjustment {
	minimum := decimal.NewFromFloat(input.OpenBid).Mul(rules.FloorMultiplier)
	final := decimal.NewFromFloat(raw)

	floorApplied := final.LessThan(minimum)
	if floorApplied {
		final = minimum
	}

	bonusApplied := input.BidTimeDays < rules.EarlyWindowDays
	if bonusApplied {
		final = final.Mul(rules.EarlyBonus)
	}

	return Adjustment{
		Final:        final,
		Minimum:      minimum,
		FloorApplied: floorApplied,
		BonusApplied: bonusApplied,
	}
}

// Predict runs one inference and applies the business rules.
func (p *Predictor) Predict(input models.BidInput) (*models.PredictionResult, error) {
	row, err := DeriveFeatures(input)
	if err != nil {
		return nil, err
	}

	raw, err := p.model.Predict(row.Values())
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	adj := ApplyRules(p.rules, input, raw)

	p.logger.WithFields(logrus.Fields{
		"openbid":        row.OpenBid,
		"bidderrate":     row.BidderRate,
		"hour":           row.Hour,
		"weekday":        row.Weekday,
		"raw_prediction": raw,
		"minimum_price":  adj.Minimum.String(),
		"floor_applied":  adj.FloorApplied,
		"bonus_applied":  adj.BonusApplied,
		"final_price":    adj.Final.String(),
	}).Debug("Bid prediction computed")

	return &models.PredictionResult{
		Features:      row,
		RawPrediction: raw,
		MinimumPrice:  adj.Minimum,
		FloorApplied:  adj.FloorApplied,
		BonusApplied:  adj.BonusApplied,
		FinalPrice:    adj.Final,
	}, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
