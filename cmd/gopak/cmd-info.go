package main

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

func newCmd_Info() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Print archive info.",
		ArgsUsage: "<pak>",
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one archive path")
			}
			reader, f, err := openReader(c, c.Args().First())
			if err != nil {
				return err
			}
			defer f.Close()

			fmt.Printf("mount point: %s\n", reader.MountPoint())
			fmt.Printf("version: %s\n", reader.Version())
			fmt.Printf("version major: %d\n", reader.Version().Major())
			fmt.Printf("encrypted index: %v\n", reader.EncryptedIndex())
			fmt.Printf("encryption guid: %032X\n", reader.EncryptionGUID())
			fmt.Printf("path hash seed: %08X\n", reader.PathHashSeed())
			fmt.Printf("%d file entries\n", len(reader.Files()))

			return nil
		},
	}
}
