package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/gopak/gopak/internal/pathutil"
)

func newCmd_Get() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Read a single entry to stdout.",
		ArgsUsage: "<pak> <path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strip-prefix",
				Aliases: []string{"s"},
				Value:   pathutil.MountPrefix,
				Usage:   "prefix the given path was stripped with",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("expected an archive path and an entry path")
			}
			reader, f, err := openReader(c, c.Args().Get(0))
			if err != nil {
				return err
			}
			defer f.Close()

			want := c.Args().Get(1)
			if _, err := reader.GetEntry(want); err == nil {
				return streamTo(os.Stdout, reader, f, want)
			}

			// Accept the stripped form the list command prints.
			entryPaths, stripped, err := strippedPaths(reader, c.String("strip-prefix"))
			if err != nil {
				return err
			}
			for i, s := range stripped {
				if s == want {
					return streamTo(os.Stdout, reader, f, entryPaths[i])
				}
			}

			return fmt.Errorf("no entry found: %q", want)
		},
	}
}
