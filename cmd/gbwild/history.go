package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"

	"github.com/MJE43/gbwild/internal/game"
	"github.com/MJE43/gbwild/internal/store"
)

func runHistory(args []string, stdout, stderr io.Writer) (err error) {
	fs := newFlagSet("history", stderr)
	dbPath := fs.String("db", "", "history database path (default from config)")
	page := fs.Int("page", 1, "page number")
	perPage := fs.Int("per-page", 20, "runs per page")
	generation := fs.String("generation", "", "only runs of this generation (1, 2, I, II)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() > 1 {
		return fmt.Errorf("%w: want at most one run id", errUsage)
	}

	query := store.RunsQuery{Page: *page, PerPage: *perPage}
	if *generation != "" {
		g, err := game.ParseGeneration(*generation)
		if err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
		query.Generation = g.String()
	}

	db, err := openHistory(*dbPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, db.Close()) }()

	if fs.NArg() == 1 {
		return showRun(db, fs.Arg(0), *asJSON, stdout)
	}

	list, err := db.ListRuns(query)
	if err != nil {
		return err
	}
	if *asJSON {
		return json.NewEncoder(stdout).Encode(list)
	}

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tWHEN\tTITLE\tGEN\tSEED\tSLOTS")
	for _, r := range list.Runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d\n", r.ID, humanize.Time(r.CreatedAt), r.Title, r.Generation, r.Seed, r.SlotsRandomized)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "page %d of %d (%d runs)\n", list.Page, list.TotalPages, list.TotalCount)
	return nil
}

func showRun(db store.DB, id string, asJSON bool, stdout io.Writer) error {
	run, err := db.GetRun(id)
	if err != nil {
		return err
	}
	tables, err := db.GetTables(id)
	if err != nil {
		return err
	}
	if asJSON {
		return json.NewEncoder(stdout).Encode(struct {
			Run    *store.Run          `json:"run"`
			Tables []store.TableRecord `json:"tables"`
		}{run, tables})
	}

	fmt.Fprintf(stdout, "Run %s\n", run.ID)
	fmt.Fprintf(stdout, "  Title:        %s (Generation %s)\n", run.Title, run.Generation)
	fmt.Fprintf(stdout, "  Seed:         %s (input %q)\n", run.Seed, run.SeedInput)
	fmt.Fprintf(stdout, "  Legendaries:  %t\n", run.AllowLegendaries)
	fmt.Fprintf(stdout, "  Wild:         %t\n", run.RandomizeWild)
	fmt.Fprintf(stdout, "  Tables:       %d, %d slots randomized\n", run.TableCount, run.SlotsRandomized)
	fmt.Fprintf(stdout, "  Input:        %s\n", run.InputSHA256)
	fmt.Fprintf(stdout, "  Output:       %s\n", run.OutputSHA256)
	fmt.Fprintf(stdout, "  Recorded:     %s by %s\n", humanize.Time(run.CreatedAt), run.EngineVersion)
	return nil
}
