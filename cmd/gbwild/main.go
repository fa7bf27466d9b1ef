// Command gbwild randomizes wild encounters in Generation I and II
// Game Boy cartridges.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/MJE43/gbwild/internal/config"
	"github.com/MJE43/gbwild/internal/engine"
	"github.com/MJE43/gbwild/internal/store"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errUsage marks errors that should print usage and exit 2.
var errUsage = errors.New("usage")

type command struct {
	name    string
	summary string
	run     func(args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{"randomize", "randomize one ROM: randomize [flags] <rom> <out>", runRandomize},
	{"inspect", "show header and encounter tables: inspect [flags] <rom>", runInspect},
	{"batch", "randomize many ROMs: batch [flags] <rom>...", runBatch},
	{"serve", "run the HTTP API", runServe},
	{"history", "list recorded runs or show one: history [flags] [id]", runHistory},
	{"version", "print build metadata", runVersion},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	for _, c := range commands {
		if c.name != args[0] {
			continue
		}
		err := c.run(args[1:], stdout, stderr)
		switch {
		case err == nil:
			return exitOK
		case errors.Is(err, flag.ErrHelp):
			return exitOK
		case errors.Is(err, errUsage):
			fmt.Fprintf(stderr, "gbwild %s: %v\n", c.name, err)
			return exitUsage
		default:
			fmt.Fprintf(stderr, "gbwild %s: %v\n", c.name, err)
			return exitError
		}
	}
	fmt.Fprintf(stderr, "gbwild: unknown command %q\n", args[0])
	usage(stderr)
	return exitUsage
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: gbwild <command> [flags] [args]")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.summary)
	}
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("gbwild "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// runFlags are the randomization flags shared by randomize and batch.
type runFlags struct {
	seed             string
	allowLegendaries bool
	noWild           bool
}

func (f *runFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.seed, "seed", "", "seed (integer or any text); random when empty")
	fs.BoolVar(&f.allowLegendaries, "allow-legendaries", false, "allow legendary species in encounters")
	fs.BoolVar(&f.noWild, "no-wild", false, "leave wild encounters unchanged")
}

func (f *runFlags) config() engine.Config {
	cfg := engine.DefaultConfig()
	cfg.Seed = engine.ParseSeed(f.seed)
	cfg.AllowLegendaries = f.allowLegendaries
	cfg.RandomizeWild = !f.noWild
	return cfg
}

// openHistory opens and migrates the history database at path, or the
// configured default when path is empty.
func openHistory(path string) (*store.SQLiteDB, error) {
	if path == "" {
		cfg, err := config.Load("")
		if err != nil {
			return nil, err
		}
		path = cfg.DBPath
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	db, err := store.NewSQLiteDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
