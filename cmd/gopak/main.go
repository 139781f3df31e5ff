package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/gopak/gopak/format"
	"github.com/gopak/gopak/internal/pathutil"
	"github.com/gopak/gopak/pak"
)

func main() {
	app := &cli.App{
		Name:  "gopak",
		Usage: "inspect, unpack and build PAK game-asset archives",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "aes-key",
				Aliases: []string{"a"},
				Usage:   "256-bit AES key as hex or base64, for encrypted archives",
			},
		},
		Commands: []*cli.Command{
			newCmd_Info(),
			newCmd_List(),
			newCmd_HashList(),
			newCmd_Unpack(),
			newCmd_Pack(),
			newCmd_Get(),
			newCmd_Version(),
		},
	}

	sort.Sort(cli.CommandsByName(app.Commands))

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// newBuilder assembles a pak builder from the global CLI flags.
func newBuilder(c *cli.Context, compression []format.Compression) (*pak.Builder, error) {
	var opts []pak.Option
	if keyStr := c.String("aes-key"); keyStr != "" {
		opts = append(opts, pak.WithKeyString(keyStr))
	}
	if len(compression) > 0 {
		opts = append(opts, pak.WithCompression(compression...))
	}

	return pak.NewBuilder(opts...)
}

// openReader opens one archive for reading. The returned file is the handle
// the reader was parsed from; callers extracting in parallel open more.
func openReader(c *cli.Context, path string) (*pak.Reader, *os.File, error) {
	builder, err := newBuilder(c, nil)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	reader, err := builder.Reader(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	return reader, f, nil
}

// strippedPaths maps every entry path to its mount-joined, prefix-stripped
// form, preserving the reader's sorted order.
func strippedPaths(reader *pak.Reader, prefix string) ([]string, []string, error) {
	entryPaths := reader.Files()
	stripped := make([]string, len(entryPaths))
	for i, p := range entryPaths {
		full := pathutil.Join(reader.MountPoint(), p)
		s, err := pathutil.StripPrefix(full, prefix)
		if err != nil {
			return nil, nil, err
		}
		stripped[i] = s
	}

	return entryPaths, stripped, nil
}

func streamTo(w io.Writer, reader *pak.Reader, src *os.File, path string) error {
	return reader.ReadFile(path, src, w)
}
