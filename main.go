package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ssimonc/NeoRL/datasets"
	"github.com/ssimonc/NeoRL/sweep"
)

func main() {
	var (
		dataDir = flag.String("data", "./data",
			"directory holding logged transition datasets")
		outDir = flag.String("out", "./dynamics_model",
			"directory trial artifacts and the summary are written under")
		tasks = flag.String("tasks",
			"HalfCheetah-v3,Walker2d-v3,Hopper-v3,ib,finance,citylearn",
			"comma-separated tasks to sweep")
		levels = flag.String("levels", strings.Join([]string{
			datasets.Low, datasets.Medium, datasets.High}, ","),
			"comma-separated dataset difficulty levels")
		amounts = flag.String("amounts", "100,1000,10000",
			"comma-separated dataset sizes")
		workers = flag.Int("workers", 3, "number of concurrent trials")
		rollout = flag.Uint64("rollout-seed", 0,
			"seed for regenerating datasets missing from the data directory")
	)
	flag.Parse()

	amountGrid, err := parseAmounts(*amounts)
	if err != nil {
		log.Fatalf("could not parse amounts: %v", err)
	}

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("could not create output directory: %v", err)
	}

	config := sweep.Config{
		Tasks:   strings.Split(*tasks, ","),
		Levels:  strings.Split(*levels, ","),
		Amounts: amountGrid,
		Seeds:   sweep.DefaultSeeds,

		NbLayers:         4,
		EnsembleSize:     7,
		EnsembleSelected: 5,
		LearningRate:     1e-3,
		OptimWD:          0.000075,
		BatchSize:        256,

		OutputDir: *outDir,
		Workers:   *workers,
	}

	// Logged datasets on disk take priority; anything missing is
	// regenerated from seeded environment rollouts.
	loader := datasets.NewChain(
		datasets.NewFileLoader(*dataDir),
		datasets.NewRolloutLoader(*rollout),
	)

	rows, err := sweep.Run(config, loader)
	if err != nil {
		log.Fatalf("sweep failed: %v", err)
	}

	if err := sweep.WriteSummary(*outDir, rows); err != nil {
		log.Fatalf("could not write sweep summary: %v", err)
	}

	failures := 0
	for _, row := range rows {
		if row.Error != "" {
			failures++
		}
	}
	fmt.Printf("ran %v trials (%v failed), summary written to %v\n",
		len(rows), failures, *outDir)
}

// parseAmounts parses a comma-separated list of dataset sizes
func parseAmounts(s string) ([]int, error) {
	fields := strings.Split(s, ",")
	amounts := make([]int, len(fields))

	for i, field := range fields {
		amount, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, err
		}
		amounts[i] = amount
	}

	return amounts, nil
}
