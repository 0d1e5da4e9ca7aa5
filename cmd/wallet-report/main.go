// Command wallet-report prints the expense summary for a month from the
// configured backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"wallet/internal/cli"
	"wallet/internal/config"
	"wallet/internal/core"
	"wallet/internal/log"
)

func main() {
	cli.LoadEnvFile()

	var f core.FilterState
	defaults := core.DefaultFilterState(time.Now())
	flag.StringVar(&f.Month, "month", defaults.Month, "month prefix to report (YYYY-MM)")
	category := flag.String("category", string(core.CategoryAll), "category to include, or All")
	flag.StringVar(&f.Search, "search", "", "case-insensitive note filter")
	list := flag.Bool("list", false, "also print the matching expenses")
	flag.Parse()

	if *category == string(core.CategoryAll) {
		f.Category = core.CategoryAll
	} else if c, ok := core.ParseCategory(*category); ok {
		f.Category = c
	} else {
		fmt.Fprintf(os.Stderr, "unknown category %q\n", *category)
		os.Exit(2)
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	quietLogs(cfg)
	logger := cli.SetupLogger(cfg)

	if err := run(context.Background(), cfg, logger, os.Stdout, f, *list); err != nil {
		logger.Error("Report failed", log.FieldError, err)
		os.Exit(1)
	}
}

// quietLogs keeps logs to warnings and above so they do not clutter the
// report, unless LOG_LEVEL asks for something else.
func quietLogs(cfg *config.Config) {
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.LogLevel = "warn"
	}
}

// run loads the store, writes the report and closes the backend on every
// path.
func run(ctx context.Context, cfg *config.Config, logger *log.Logger, out io.Writer, f core.FilterState, list bool) (err error) {
	store, backend, err := cli.InitStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer func() {
		if cerr := backend.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close backend: %w", cerr)
		}
	}()

	if err := writeReport(out, store.ListAll(), f, store.Currency(), list); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func writeReport(out io.Writer, all []core.Expense, f core.FilterState, cur core.Currency, list bool) error {
	ov := core.Summarize(all, f)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Month\t%s\n", ov.Month)
	fmt.Fprintf(tw, "Month total\t%s\n", cur.Format(ov.Total))
	fmt.Fprintf(tw, "Lifetime total\t%s\n", cur.Format(ov.Lifetime))
	fmt.Fprintf(tw, "Expenses shown\t%d\n", ov.Count)
	fmt.Fprintln(tw)

	if len(ov.ByCategory) == 0 {
		fmt.Fprintln(tw, "No expenses match the filter.")
	} else {
		fmt.Fprintln(tw, "Category\tAmount\tShare")
		for _, c := range ov.ByCategory {
			fmt.Fprintf(tw, "%s\t%s\t%s%%\n", c.Category, cur.Format(c.Amount), c.Share.StringFixed(1))
		}
	}

	if list {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Date\tCategory\tAmount\tNote")
		for _, e := range core.Filter(all, f) {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Date(), e.Category(), cur.Format(e.Amount()), e.Note())
		}
	}
	return tw.Flush()
}
