package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/MJE43/gbwild/internal/codec"
	"github.com/MJE43/gbwild/internal/randomizer"
	"github.com/MJE43/gbwild/internal/rom"
)

func runInspect(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("inspect", stderr)
	asJSON := fs.Bool("json", false, "print the full report as JSON")
	tables := fs.Bool("tables", false, "list every table and its species")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("%w: want <rom>, got %d arguments", errUsage, fs.NArg())
	}

	img, err := rom.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	r, err := randomizer.Inspect(img)
	if err != nil {
		return err
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}

	fmt.Fprintf(stdout, "Title:       %s (%s)\n", r.Info.Title, r.Info.Name)
	fmt.Fprintf(stdout, "Generation:  %s\n", r.Info.Generation)
	fmt.Fprintf(stdout, "Size:        %s (%d banks)\n", humanize.IBytes(uint64(r.Info.Size)), img.Banks())
	fmt.Fprintf(stdout, "CGB flag:    0x%02X\n", r.Header.CGBFlag)
	fmt.Fprintf(stdout, "Checksums:   header %s, global %s\n", okString(r.HeaderChecksumOK), okString(r.GlobalChecksumOK))
	fmt.Fprintf(stdout, "SHA-256:     %s\n", r.SHA256)
	fmt.Fprintf(stdout, "Tables:      %d grass, %d water\n", r.Categories[codec.CategoryGrass], r.Categories[codec.CategoryWater])
	fmt.Fprintf(stdout, "Slots:       %s (%s empty)\n", humanize.Comma(int64(r.Slots)), humanize.Comma(int64(r.EmptySlots)))

	if *tables {
		for _, t := range r.Tables {
			fmt.Fprintf(stdout, "  %-26s 0x%06X %-5s %v\n", t.Name(), t.Offset, t.Category, t.Species())
		}
	}
	return nil
}

func okString(ok bool) string {
	if ok {
		return "ok"
	}
	return "mismatch"
}
