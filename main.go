package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/lectorlab/bookpipe/internal/ingest"
)

func main() {
	app := &cli.App{
		Name:  "bookpipe",
		Usage: "extract paragraphs and chapter structure from EPUB files",
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "parse one EPUB into paragraphs and chapters",
				Action: ingest.Action,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "path to the EPUB file",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "write the summary to this file instead of stdout",
					},
					&cli.StringFlag{
						Name:  "format",
						Value: "yaml",
						Usage: "summary format: yaml or json",
					},
					&cli.IntFlag{
						Name:  "max-paragraphs",
						Usage: "cap the number of extracted paragraphs (0 = no cap)",
					},
					&cli.StringFlag{
						Name:  "db",
						Usage: "SQLite database path; when set, the book is persisted",
					},
					&cli.BoolFlag{
						Name:  "quiet",
						Usage: "log errors only",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
