package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/gopak/gopak/format"
	"github.com/gopak/gopak/internal/pathutil"
	"github.com/gopak/gopak/pak"
)

func newCmd_Pack() *cli.Command {
	return &cli.Command{
		Name:      "pack",
		Usage:     "Pack a directory into an archive.",
		ArgsUsage: "<dir> [output]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "mount-point",
				Aliases: []string{"m"},
				Value:   pathutil.MountPrefix,
				Usage:   "mount point stored in the archive",
			},
			&cli.StringFlag{
				Name:  "version",
				Value: format.V8B.String(),
				Usage: "archive format version (V1..V11)",
			},
			&cli.StringFlag{
				Name:  "compression",
				Usage: "compression to use (Zlib, Gzip, Zstd, LZ4, Oodle); default stores uncompressed",
			},
			&cli.Uint64Flag{
				Name:    "path-hash-seed",
				Aliases: []string{"p"},
				Usage:   "path hash seed for V10+ archives",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log each packed file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "hide the progress bar and completion status",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 || c.NArg() > 2 {
				return fmt.Errorf("expected an input directory and an optional output path")
			}

			return pack(c, c.Args().Get(0), c.Args().Get(1))
		},
	}
}

func pack(c *cli.Context, input, output string) error {
	info, err := os.Stat(input)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("input %q is not a directory", input)
	}
	if output == "" {
		// not filepath.Ext trimming: "mod_v1.1" should become "mod_v1.1.pak"
		output = input + ".pak"
	}

	version, err := format.ParseVersion(c.String("version"))
	if err != nil {
		return err
	}
	var compression []format.Compression
	if name := c.String("compression"); name != "" {
		algo, err := format.ParseCompression(name)
		if err != nil {
			return err
		}
		compression = append(compression, algo)
	}

	var paths []string
	err = filepath.WalkDir(input, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			paths = append(paths, p)
		}

		return nil
	})
	if err != nil {
		return err
	}
	sort.Strings(paths)

	builder, err := newBuilder(c, compression)
	if err != nil {
		return err
	}
	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := builder.Writer(out, version, c.String("mount-point"), c.Uint64("path-hash-seed"))

	var bar *progressbar.ProgressBar
	if !c.Bool("quiet") {
		bar = progressbar.Default(int64(len(paths)), "packing")
	}
	verbose := c.Bool("verbose")

	// Workers compress and hash in memory; this goroutine is the only
	// writer and commits in input order, so output is deterministic.
	type future struct {
		rel  string
		pe   *pak.PartialEntry
		done chan struct{}
		err  error
	}
	entryBuilder := writer.EntryBuilder()
	queue := make(chan *future, runtime.NumCPU())

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	go func() {
		defer close(queue)
		for _, p := range paths {
			rel, err := filepath.Rel(input, p)
			if err != nil {
				rel = p
			}
			f := &future{rel: filepath.ToSlash(rel), done: make(chan struct{})}
			queue <- f
			g.Go(func() error {
				defer close(f.done)
				data, err := os.ReadFile(p)
				if err != nil {
					f.err = err
					return err
				}
				f.pe, f.err = entryBuilder.BuildEntry(true, data, f.rel)

				return f.err
			})
		}
	}()

	// The queue must be drained even after a failure so the producer and
	// workers can finish.
	var commitErr error
	for f := range queue {
		<-f.done
		if commitErr != nil || f.err != nil {
			continue
		}
		if verbose {
			klog.Infof("packing %s", f.rel)
		}
		if err := writer.WriteEntry(f.rel, f.pe); err != nil {
			commitErr = err
			continue
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if commitErr != nil {
		return commitErr
	}

	if _, err := writer.WriteIndex(); err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if !c.Bool("quiet") {
		fmt.Printf("Packed %d files into %s\n", len(paths), output)
	}

	return nil
}
