package main

import (
	"flag"
	"fmt"
	"os"
)

func (a *app) cmdImport(args []string) int {
	flags := flag.NewFlagSet("import", flag.ContinueOnError)
	file := flags.String("file", "", "ephemeris records, one JSON object per line ('-' for stdin)")
	if err := flags.Parse(args); err != nil {
		return 1
	}
	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: suncal import --file <records.jsonl>")
		return 1
	}

	r := os.Stdin
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "suncal: import: %v\n", err)
			return 1
		}
		defer f.Close()
		r = f
	}

	n, err := a.source.ImportJSONL(r)
	if err != nil {
		fmt.Fprintf(os.Stderr, "suncal: import: %v (after %d record(s))\n", err, n)
		return 1
	}
	fmt.Printf("imported %d ephemeris record(s)\n", n)
	return 0
}
