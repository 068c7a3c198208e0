package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/irfndi/bidpredict/internal/config"
	"github.com/irfndi/bidpredict/internal/logging"
	"github.com/irfndi/bidpredict/internal/models"
	"github.com/irfndi/bidpredict/internal/services"
	"github.com/irfndi/bidpredict/internal/utils"
)

const serviceName = "bidpredict"

// executable locates the running binary; tests replace it.
var executable = os.Executable

// main serves as the entry point for the application.
// It delegates execution to the run function and exits with its status.
func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one prediction. On success it writes the price as the only
// stdout line and returns 0; on any failure it writes a single "ERROR:" line
// to stderr and returns 1.
func run(args []string, stdout, stderr io.Writer) int {
	price, err := predict(args, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: %s\n", singleLine(err.Error()))
		return 1
	}
	fmt.Fprintln(stdout, price)
	return 0
}

func predict(args []string, logOut io.Writer) (string, error) {
	input, err := parseArgs(args)
	if err != nil {
		return "", err
	}

	exe, err := executable()
	if err != nil {
		return "", fmt.Errorf("failed to locate executable: %w", err)
	}
	bundleDir, err := config.BundleDir(exe)
	if err != nil {
		return "", err
	}

	cfg, err := config.Load(bundleDir)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logging.WithInvocation(logging.NewLogger(cfg.LogLevel, logOut), serviceName)
	log.WithField("model_path", cfg.ModelPath()).Debug("Loading bid model")

	predictor, err := services.NewPredictorFromFile(cfg.ModelPath(), cfg.Rules, log)
	if err != nil {
		return "", err
	}

	result, err := predictor.Predict(input)
	if err != nil {
		return "", err
	}
	return models.FormatPrice(result.FinalPrice), nil
}

// parseArgs reads the positional openbid, bidderrate and bidtime_days
// arguments. Anything after the third is ignored.
func parseArgs(args []string) (models.BidInput, error) {
	if len(args) < 3 {
		return models.BidInput{}, utils.NewValidationErrorf(
			"usage: predict <openbid> <bidderrate> <bidtime_days> (got %d arguments)", len(args))
	}

	openBid, err := parseFloat(models.ColumnOpenBid, args[0])
	if err != nil {
		return models.BidInput{}, err
	}

	raw := strings.TrimSpace(args[1])
	bidderRate, err := strconv.Atoi(raw)
	if err != nil {
		return models.BidInput{}, utils.NewFieldError(models.ColumnBidderRate,
			"invalid literal for int: %q", args[1])
	}

	bidTimeDays, err := parseFloat("bidtime_days", args[2])
	if err != nil {
		return models.BidInput{}, err
	}

	return models.BidInput{
		OpenBid:     openBid,
		BidderRate:  bidderRate,
		BidTimeDays: bidTimeDays,
	}, nil
}

func parseFloat(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, utils.NewFieldError(field, "could not convert string to float: %q", s)
	}
	return v, nil
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
