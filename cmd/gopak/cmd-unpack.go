package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ryanuber/go-glob"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"

	"github.com/gopak/gopak/errs"
	"github.com/gopak/gopak/internal/pathutil"
)

func newCmd_Unpack() *cli.Command {
	return &cli.Command{
		Name:      "unpack",
		Usage:     "Unpack archives into a directory.",
		ArgsUsage: "<pak>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output directory (defaults to next to the input archive)",
			},
			&cli.StringFlag{
				Name:    "strip-prefix",
				Aliases: []string{"s"},
				Value:   pathutil.MountPrefix,
				Usage:   "prefix to strip from entry paths",
			},
			&cli.StringSliceFlag{
				Name:    "include",
				Aliases: []string{"i"},
				Usage:   "glob of files or directories to extract; may repeat, default everything",
			},
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "extract into a non-empty output directory",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "log each extracted file",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "hide the progress bar and completion status",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return fmt.Errorf("expected at least one archive path")
			}
			for _, input := range c.Args().Slice() {
				if err := unpackOne(c, input); err != nil {
					return err
				}
			}

			return nil
		},
	}
}

type unpackItem struct {
	entryPath string
	outPath   string
}

func unpackOne(c *cli.Context, input string) error {
	reader, f, err := openReader(c, input)
	if err != nil {
		return err
	}
	defer f.Close()

	output := c.String("output")
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input))
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return err
	}
	if c.String("output") == "" && !c.Bool("force") {
		dir, err := os.ReadDir(output)
		if err != nil {
			return err
		}
		if len(dir) > 0 {
			return fmt.Errorf("output directory %q is not empty, pass --force to overwrite", output)
		}
	}

	entryPaths, stripped, err := strippedPaths(reader, c.String("strip-prefix"))
	if err != nil {
		return err
	}
	includes := c.StringSlice("include")

	absOutput, err := filepath.Abs(output)
	if err != nil {
		return err
	}

	var items []unpackItem
	for i, entryPath := range entryPaths {
		if len(includes) > 0 && !matchesInclude(includes, stripped[i]) {
			continue
		}
		outPath := filepath.Clean(filepath.Join(absOutput, filepath.FromSlash(stripped[i])))
		if outPath != absOutput && !strings.HasPrefix(outPath, absOutput+string(filepath.Separator)) {
			return fmt.Errorf("%w: %q", errs.ErrWriteOutsideOutput, stripped[i])
		}
		items = append(items, unpackItem{entryPath: entryPath, outPath: outPath})
	}

	var bar *progressbar.ProgressBar
	if !c.Bool("quiet") {
		bar = progressbar.Default(int64(len(items)), "unpacking")
	}
	verbose := c.Bool("verbose")

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for _, item := range items {
		g.Go(func() error {
			if verbose {
				klog.Infof("unpacking %s", item.entryPath)
			}
			src, err := os.Open(input)
			if err != nil {
				return err
			}
			defer src.Close()

			if err := os.MkdirAll(filepath.Dir(item.outPath), 0o755); err != nil {
				return err
			}
			out, err := os.Create(item.outPath)
			if err != nil {
				return err
			}
			if err := reader.ReadFile(item.entryPath, src, out); err != nil {
				out.Close()
				return err
			}
			if err := out.Close(); err != nil {
				return err
			}
			if bar != nil {
				_ = bar.Add(1)
			}

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if bar != nil {
		_ = bar.Finish()
	}
	if !c.Bool("quiet") {
		fmt.Printf("Unpacked %d files to %s from %s\n", len(items), output, input)
	}

	return nil
}

// matchesInclude reports whether the stripped path or any of its ancestor
// directories matches one of the include globs.
func matchesInclude(includes []string, stripped string) bool {
	for _, pattern := range includes {
		if glob.Glob(pattern, stripped) {
			return true
		}
		for _, ancestor := range pathutil.Ancestors(stripped) {
			if glob.Glob(pattern, ancestor) || glob.Glob(pattern, strings.TrimSuffix(ancestor, "/")) {
				return true
			}
		}
	}

	return false
}
