package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	"github.com/mattn/go-isatty"
	"github.com/pierrec/lz4/v4"
	"github.com/urfave/cli/v2"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

func exportFlags() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "write the raw bytes of committed elements to a file",
		ArgsUsage: "DIR OUT",
		Action:    export,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "codec",
				Aliases: []string{"c"},
				Value:   "zstd",
				Usage:   "compression: none, zstd or lz4",
			},
		},
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func compressor(codec string, w io.Writer) (io.WriteCloser, error) {
	switch codec {
	case "none", "":
		return nopWriteCloser{w}, nil
	case "zstd":
		return zstd.NewWriter(w)
	case "lz4":
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", codec)
	}
}

// exportStore streams the committed elements of dir into w. progress, when
// set, is called with the number of elements written so far.
func exportStore(dir string, w io.Writer, codec string, progress func(done uint64)) (uint64, error) {
	r, err := openCommitted(dir)
	if err != nil {
		return 0, err
	}
	zw, err := compressor(codec, w)
	if err != nil {
		return 0, err
	}
	var n uint64
	err = r.each(0, func(i uint64, elem []byte) error {
		if _, err := zw.Write(elem); err != nil {
			return err
		}
		n = i + 1
		if progress != nil && n%4096 == 0 {
			progress(n)
		}
		return nil
	})
	if err != nil {
		zw.Close()
		return n, err
	}
	if progress != nil {
		progress(n)
	}
	return n, zw.Close()
}

func newProgressBar(title string, total int64, quiet bool) (*mpb.Progress, *mpb.Bar) {
	var progress *mpb.Progress
	if !quiet && isatty.IsTerminal(os.Stdout.Fd()) {
		progress = mpb.New(mpb.WithWidth(64))
	} else {
		progress = mpb.New(mpb.WithWidth(64), mpb.WithOutput(nil))
	}
	bar := progress.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(title, decor.WCSyncWidth),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
		),
	)
	return progress, bar
}

func export(ctx *cli.Context) error {
	if ctx.Args().Len() < 2 {
		return fmt.Errorf("DIR and OUT are needed")
	}
	dir, out := ctx.Args().Get(0), ctx.Args().Get(1)
	r, err := openCommitted(dir)
	if err != nil {
		return err
	}

	f, err := os.Create(out)
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(f, 1<<20)

	progress, bar := newProgressBar("export", int64(r.meta.Len()), ctx.Bool("quiet"))
	n, err := exportStore(dir, bw, ctx.String("codec"), func(done uint64) {
		bar.SetCurrent(int64(done))
	})
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		bar.Abort(false)
		progress.Wait()
		return err
	}
	bar.SetTotal(int64(n), true)
	progress.Wait()
	logger.Infof("exported %d elements (%d bytes each) to %s", n, r.meta.ElementSize, out)
	return nil
}
