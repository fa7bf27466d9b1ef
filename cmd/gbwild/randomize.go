package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/multierr"

	"github.com/MJE43/gbwild/internal/api"
	"github.com/MJE43/gbwild/internal/randomizer"
	"github.com/MJE43/gbwild/internal/store"
)

func runRandomize(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("randomize", stderr)
	var rf runFlags
	rf.register(fs)
	history := fs.Bool("history", false, "record the run in the history database")
	dbPath := fs.String("db", "", "history database path (default from config)")
	progress := fs.Bool("progress", false, "show a progress bar while encoding tables")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("%w: want <rom> <out>, got %d arguments", errUsage, fs.NArg())
	}
	in, out := fs.Arg(0), fs.Arg(1)

	var opts randomizer.Options
	if *progress {
		var bar *progressbar.ProgressBar
		opts.OnTable = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetWriter(stderr),
					progressbar.OptionSetDescription("encode"),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			bar.Set(done)
		}
	}

	res, err := randomizer.RandomizeFile(in, out, rf.config(), opts)
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, res.Summary())

	if *history {
		if err := recordRun(*dbPath, res, stdout); err != nil {
			return fmt.Errorf("history: %w", err)
		}
	}
	return nil
}

func recordRun(dbPath string, res *randomizer.Result, stdout io.Writer) (err error) {
	db, err := openHistory(dbPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	run, err := store.Record(db, res, api.EngineVersion)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Recorded run %s.\n", run.ID)
	return nil
}

func ensureDir(path string) error {
	if path == ":memory:" {
		return nil
	}
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
