package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/paynetra/reports_backend/config"
	"github.com/paynetra/reports_backend/models"
	"github.com/paynetra/reports_backend/utils"
	"github.com/paynetra/reports_backend/workflow"
)

func main() {
	days := flag.Int("days", 30, "How many trailing days to rebuild (including today)")
	from := flag.String("from", "", "Optional: rebuild a fixed range starting here (YYYY-MM-DD); overrides -days")
	to := flag.String("to", "", "Optional: end of the fixed range (YYYY-MM-DD). Defaults to today.")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil)")
		os.Exit(1)
	}
	// Redis is optional here: without it the passes run unlocked, which is
	// fine for a one-off invocation.
	if os.Getenv("REDIS_ADDRESS") != "" {
		config.ConnectRedisWithRetry()
	}

	models.MigrateTable()

	loc := utils.ReportLocation()
	now := time.Now().In(loc)

	rebuildDays := *days
	if *from != "" {
		start, err := time.ParseInLocation("2006-01-02", *from, loc)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -from date: %v\n", err)
			os.Exit(1)
		}
		end := now
		if *to != "" {
			end, err = time.ParseInLocation("2006-01-02", *to, loc)
			if err != nil {
				fmt.Fprintf(os.Stderr, "invalid -to date: %v\n", err)
				os.Exit(1)
			}
		}
		if end.Before(start) {
			fmt.Fprintln(os.Stderr, "-to must not be before -from")
			os.Exit(1)
		}
		rebuildDays = int(end.Sub(start).Hours()/24) + 1
		now = end
	}

	fmt.Printf("Rebuilding summaries for %d day(s) ending %s\n", rebuildDays, now.Format("2006-01-02"))

	result, err := workflow.BackfillSummaries(ctx, rebuildDays, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "backfill failed: %v\n", err)
		os.Exit(1)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "partial failure: %s\n", e)
	}
	fmt.Printf("Backfill complete bucket=%s processed=%d errors=%d in %s\n",
		result.Bucket, result.Processed, len(result.Errors), result.Duration)
	if len(result.Errors) > 0 {
		os.Exit(1)
	}
}
