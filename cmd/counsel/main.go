// Command counsel runs counsel searches from the terminal.
//
//	counsel company <ticker|name|cik> [-years N]
//	counsel lawyer <name>
//	counsel firm <name>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"legal_counsel_finder/pkg/core/config"
	"legal_counsel_finder/pkg/core/errs"
	"legal_counsel_finder/pkg/core/logger"
	"legal_counsel_finder/pkg/core/pipeline"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  counsel [-config path] [-v] company <ticker|name|cik> [-years N]
  counsel [-config path] [-v] lawyer <name>
  counsel [-config path] [-v] firm <name>`)
}

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to counsel.yaml")
	verbose := flag.Bool("v", false, "print progress events")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 2 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	level := "warn"
	if *verbose {
		level = cfg.Logging.Level
	}
	if err := logger.Init(level, "console", "stderr"); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	orch, _, closeCache := pipeline.Build(ctx, cfg)
	defer closeCache()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	if err := run(ctx, orch, cmd, args, *verbose, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, errs.ErrEmptyResultSet) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, orch *pipeline.Orchestrator, cmd string, args []string, verbose bool, out io.Writer) error {
	events, wait := progressPrinter(verbose)
	defer wait()

	switch cmd {
	case "company":
		fs := flag.NewFlagSet("company", flag.ExitOnError)
		years := fs.Int("years", 0, "years of filings to scan (default from config)")
		// Accept the identifier before or after the flags.
		ident := args[0]
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() > 0 {
			ident = strings.Join(append([]string{ident}, fs.Args()...), " ")
		}

		report, err := orch.SearchCompanyForLawyers(ctx, ident, *years, events)
		closeEvents(events)
		if report != nil {
			printCompanyReport(out, report)
		}
		return err

	case "lawyer", "firm":
		kind, _ := pipeline.ParseEntityKind(cmd)
		report, err := orch.SearchEntityForCompanies(ctx, strings.Join(args, " "), kind, events)
		closeEvents(events)
		if report != nil {
			printEntityReport(out, report)
		}
		return err
	}

	closeEvents(events)
	usage()
	return fmt.Errorf("unknown command %q", cmd)
}

// progressPrinter returns an events channel drained to stderr, or nil when quiet.
func progressPrinter(verbose bool) (chan pipeline.ProgressEvent, func()) {
	if !verbose {
		return nil, func() {}
	}
	events := make(chan pipeline.ProgressEvent, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if ev.Total > 0 {
				fmt.Fprintf(os.Stderr, "[%s] %s %d/%d %s\n", ev.Step, ev.Status, ev.Done, ev.Total, ev.Detail)
			} else {
				fmt.Fprintf(os.Stderr, "[%s] %s %s\n", ev.Step, ev.Status, ev.Detail)
			}
		}
	}()
	return events, func() { <-done }
}

func closeEvents(events chan pipeline.ProgressEvent) {
	if events != nil {
		close(events)
	}
}

func printCompanyReport(out io.Writer, r *pipeline.CompanyReport) {
	fmt.Fprintf(out, "%s, %d legal filings %s\n%s\n\n", r.Company.Display(), r.Filings, r.Window, r.Summary)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LAW FIRM\tLAWYER")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s\n", row.Firm, row.Lawyer)
	}
	tw.Flush()
}

func printEntityReport(out io.Writer, r *pipeline.EntityReport) {
	fmt.Fprintf(out, "%q: %d companies over %s (%d index hits)\n\n", r.Term, len(r.Rows), r.Decision.Label, r.TotalHits)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "COMPANY\tTICKER\tFILING DATE\tFORM\tCIK")
	for _, row := range r.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", row.Company, row.Ticker, row.FilingDate, row.FilingType, row.CIK)
	}
	tw.Flush()
}
