package main

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/gopak/gopak/internal/hash"
	"github.com/gopak/gopak/internal/pathutil"
)

func newCmd_HashList() *cli.Command {
	return &cli.Command{
		Name:      "hash-list",
		Usage:     "List entry paths with the SHA-256 of their contents. Useful for diffing archives.",
		ArgsUsage: "<pak>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "strip-prefix",
				Aliases: []string{"s"},
				Value:   pathutil.MountPrefix,
				Usage:   "prefix to strip from entry paths",
			},
			&cli.BoolFlag{
				Name:  "fast",
				Usage: "print xxHash64 fingerprints instead of SHA-256",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one archive path")
			}
			input := c.Args().First()
			reader, f, err := openReader(c, input)
			if err != nil {
				return err
			}
			defer f.Close()

			entryPaths, stripped, err := strippedPaths(reader, c.String("strip-prefix"))
			if err != nil {
				return err
			}
			fast := c.Bool("fast")

			// Each entry task opens its own handle; the reader itself
			// is read-only after parsing.
			digests := make([]string, len(entryPaths))
			var g errgroup.Group
			g.SetLimit(runtime.NumCPU())
			for i, entryPath := range entryPaths {
				g.Go(func() error {
					src, err := os.Open(input)
					if err != nil {
						return err
					}
					defer src.Close()

					data, err := reader.Get(entryPath, src)
					if err != nil {
						return err
					}
					if fast {
						var buf [8]byte
						binary.BigEndian.PutUint64(buf[:], hash.Fingerprint(data))
						digests[i] = hex.EncodeToString(buf[:])
					} else {
						sum := sha256.Sum256(data)
						digests[i] = hex.EncodeToString(sum[:])
					}

					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			for i, p := range stripped {
				fmt.Printf("%s %s\n", digests[i], p)
			}

			return nil
		},
	}
}
