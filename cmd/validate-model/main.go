package main

import (
	"fmt"
	"io"
	"os"

	"github.com/irfndi/bidpredict/internal/config"
	"github.com/irfndi/bidpredict/internal/logging"
	"github.com/irfndi/bidpredict/internal/models"
	"github.com/irfndi/bidpredict/internal/regression"
	"github.com/irfndi/bidpredict/internal/services"
)

// sampleInput is the reference scenario every healthy bundle must handle.
var sampleInput = models.BidInput{OpenBid: 100, BidderRate: 5, BidTimeDays: 0.5}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run checks a deployment bundle (default: the current directory) and
// reports each step to out; debug logs, when enabled, go to logOut. It
// returns 1 at the first failing check.
func run(args []string, out, logOut io.Writer) int {
	bundleDir := "."
	if len(args) > 0 {
		bundleDir = args[0]
	}

	fmt.Fprintf(out, "🔧 Validating bid model bundle at %s...\n", bundleDir)

	// Load configuration (applies bundle .env and config.yaml)
	cfg, err := config.Load(bundleDir)
	if err != nil {
		fmt.Fprintf(out, "❌ Failed to load configuration: %v\n", err)
		return 1
	}
	rules := cfg.Rules
	fmt.Fprintf(out, "✅ Pricing rules: floor x%s, early bonus x%s under %v days\n",
		rules.FloorMultiplier, rules.EarlyBonus, rules.EarlyWindowDays)

	// Check model artifact
	path := cfg.ModelPath()
	model, err := regression.Load(path)
	if err != nil {
		fmt.Fprintf(out, "❌ Failed to load model: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "✅ Model loaded from %s\n", path)

	if err := regression.RequireFeatures(model, models.FeatureColumns()); err != nil {
		fmt.Fprintf(out, "❌ Model features do not match: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "✅ Model features: %v\n", model.FeatureNames())

	// Run the reference prediction
	predictor, err := services.NewPredictor(model, rules, logging.WithInvocation(logging.NewLogger(cfg.LogLevel, logOut), "validate-model"))
	if err != nil {
		fmt.Fprintf(out, "❌ Failed to build predictor: %v\n", err)
		return 1
	}
	result, err := predictor.Predict(sampleInput)
	if err != nil {
		fmt.Fprintf(out, "❌ Sample prediction failed: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "✅ Sample prediction (openbid=%v, bidderrate=%d, bidtime_days=%v): raw %v, final %s\n",
		sampleInput.OpenBid, sampleInput.BidderRate, sampleInput.BidTimeDays,
		result.RawPrediction, models.FormatPrice(result.FinalPrice))

	fmt.Fprintln(out, "\n🎉 All bid model bundle checks passed!")
	return 0
}
