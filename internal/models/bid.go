package models

import (
	"github.com/shopspring/decimal"
)

// Feature column names, in the order the bid model was trained on.
const (
	ColumnOpenBid    = "openbid"
	ColumnBidderRate = "bidderrate"
	ColumnHour       = "hour"
	ColumnWeekday    = "weekday"
)

// FeatureColumns returns the model's input columns in training order.
func FeatureColumns() []string {
	return []string{ColumnOpenBid, ColumnBidderRate, ColumnHour, ColumnWeekday}
}

// BidInput holds the caller-supplied values for one prediction.
type BidInput struct {
	OpenBid     float64 `json:"openbid"`
	BidderRate  int     `json:"bidderrate"`
	BidTimeDays float64 `json:"bidtime_days"`
}

// FeatureRow is the single-row feature table fed to the model.
type FeatureRow struct {
	OpenBid    float64 `json:"openbid"`
	BidderRate int     `json:"bidderrate"`
	Hour       float64 `json:"hour"`    // 0-24
	Weekday    float64 `json:"weekday"` // 0-7
}

// Values returns the row laid out as FeatureColumns.
func (r FeatureRow) Values() []float64 {
	return []float64{r.OpenBid, float64(r.BidderRate), r.Hour, r.Weekday}
}

// PredictionResult represents the adjusted price and how it was reached.
type PredictionResult struct {
	Features      FeatureRow      `json:"features"`
	RawPrediction float64         `json:"raw_prediction"`
	MinimumPrice  decimal.Decimal `json:"minimum_price"`
	FloorApplied  bool            `json:"floor_applied"`
	BonusApplied  bool            `json:"bonus_applied"`
	FinalPrice    decimal.Decimal `json:"final_price"`
}

// FormatPrice renders a price in plain decimal notation. Whole numbers keep
// a trailing ".0" so consumers always see a float literal.
func FormatPrice(price decimal.Decimal) string {
	if price.IsInteger() {
		return price.StringFixed(1)
	}
	return price.String()
}
