package main

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/urfave/cli/v2"
)

func newCmd_Version() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print version information of this binary.",
		Action: func(c *cli.Context) error {
			fmt.Printf("gopak (%s/%s, %s)\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
			if info, ok := debug.ReadBuildInfo(); ok {
				for _, setting := range info.Settings {
					switch setting.Key {
					case "vcs.revision", "vcs.time", "vcs.modified":
						fmt.Printf("%s: %s\n", setting.Key, setting.Value)
					}
				}
			}

			return nil
		},
	}
}
