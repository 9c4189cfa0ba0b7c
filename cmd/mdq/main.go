// Command mdq inspects persistent deque directories: it prints the metadata
// record, dumps committed elements and exports them to a (compressed) file.
// It never writes to the store.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	deque "github.com/luhtfiimanal/go-mmap-deque"
)

var logger = logrus.WithField("name", "mdq")

func setLoggerLevel(ctx *cli.Context) {
	if ctx.Bool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
		deque.SetLogLevel(logrus.DebugLevel)
	} else if ctx.Bool("quiet") {
		logrus.SetLevel(logrus.WarnLevel)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "mdq",
		Usage: "inspect persistent mmap deque directories",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug log",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only warning and errors",
			},
		},
		Before: func(ctx *cli.Context) error {
			setLoggerLevel(ctx)
			return nil
		},
		Commands: []*cli.Command{
			infoFlags(),
			dumpFlags(),
			exportFlags(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Fatal(err)
	}
}
