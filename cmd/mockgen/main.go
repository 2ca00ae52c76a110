package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"sprint-pulse/cmd/mockgen/engine"
	"sprint-pulse/internal/logging"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:8090", "Address to serve the mock Productive API on")
	seed := flag.Int64("seed", 1, "Random seed; the same seed and date give the same dataset")
	sprints := flag.Int("sprints", 4, "Number of sprints (task lists) to generate")
	tasks := flag.Int("tasks", 12, "Tasks per sprint")
	people := flag.Int("people", 5, "Number of people")
	today := flag.String("today", "", "Anchor date YYYY-MM-DD (default: today)")
	token := flag.String("token", "", "Require this X-Auth-Token (default: any non-empty token)")
	org := flag.String("org", "", "Require this X-Organization-Id (default: any non-empty id)")
	latency := flag.Duration("latency", 0, "Artificial delay per page")
	outDir := flag.String("out", "", "Write the dataset as JSON files to this directory instead of serving")
	verbose := flag.Bool("v", false, "enable verbose logging")
	flag.Parse()

	logging.Init(*verbose)

	now := time.Now()
	if *today != "" {
		t, err := time.Parse("2006-01-02", *today)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid -today %q: %v\n", *today, err)
			os.Exit(2)
		}
		now = t
	}

	ds := engine.Generate(engine.GeneratorConfig{
		Seed:           *seed,
		Sprints:        *sprints,
		TasksPerSprint: *tasks,
		People:         *people,
		Now:            now,
	})

	if *outDir != "" {
		fmt.Printf("Writing %d sprints to %s...\n", *sprints, *outDir)
		if err := engine.Save(*outDir, ds); err != nil {
			fmt.Printf("Failed to save mock data: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Done.")
		return
	}

	log.Info().
		Str("addr", *addr).
		Strs("task_lists", ds.TaskListIDs()).
		Msgf("Mock Productive API ready; set PRODUCTIVE_BASE_URL=http://%s/api/v2", *addr)

	handler := engine.NewHandler(ds, engine.ServerConfig{Token: *token, OrganizationID: *org, Latency: *latency})
	if err := http.ListenAndServe(*addr, handler); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Mock server failed")
	}
}
