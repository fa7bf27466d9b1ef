package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"

	"github.com/MJE43/gbwild/internal/batch"
	"github.com/MJE43/gbwild/internal/config"
)

func runBatch(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("batch", stderr)
	var rf runFlags
	rf.register(fs)
	outDir := fs.String("out-dir", "", "output directory (default: next to each input)")
	configPath := fs.String("config", "", "JSON config file (default $"+config.EnvConfig+")")
	workers := fs.Int("workers", 0, "concurrent jobs (default from config, $"+config.EnvWorkers+" or the CPU count)")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("%w: want at least one <rom>", errUsage)
	}
	if *workers < 0 {
		return fmt.Errorf("%w: -workers must be positive", errUsage)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *workers == 0 {
		*workers = cfg.Workers
	}
	if *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	jobs := batch.JobsFor(fs.Args(), *outDir)
	bar := progressbar.NewOptions(len(jobs),
		progressbar.OptionSetWriter(stderr),
		progressbar.OptionSetDescription("randomize"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	outcomes, err := batch.Run(ctx, jobs, rf.config(), batch.Options{
		Workers: *workers,
		OnDone: func(o batch.Outcome) {
			bar.Describe(fmt.Sprintf("randomize: %s", o.Job.Input))
			bar.Add(1)
		},
	})

	var total uint64
	ok := 0
	for _, o := range outcomes {
		if o.Err != nil {
			fmt.Fprintf(stderr, "FAIL %v\n", o.Err)
			continue
		}
		ok++
		total += uint64(o.Result.Image.Len())
		fmt.Fprintf(stdout, "%s -> %s\n", o.Job.Input, o.Job.Output)
		fmt.Fprintln(stdout, "  "+o.Result.Summary())
	}
	fmt.Fprintf(stdout, "%d of %d ROMs randomized (%s written).\n", ok, len(outcomes), humanize.IBytes(total))

	if err != nil {
		return fmt.Errorf("%d job(s) failed", len(outcomes)-ok)
	}
	return nil
}
