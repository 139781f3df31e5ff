package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/gopak/gopak/internal/pathutil"
)

func newCmd_List() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "List archive entry paths.",
		ArgsUsage: "<pak>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strip-prefix",
				Aliases: []string{"s"},
				Value:   pathutil.MountPrefix,
				Usage:   "prefix to strip from entry paths",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one archive path")
			}
			reader, f, err := openReader(c, c.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()

			_, stripped, err := strippedPaths(reader, c.String("strip-prefix"))
			if err != nil {
				return err
			}
			for _, p := range stripped {
				fmt.Println(p)
			}

			return nil
		},
	}
}
