package main

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"
)

func dumpFlags() *cli.Command {
	return &cli.Command{
		Name:      "dump",
		Usage:     "print committed elements from front to back",
		ArgsUsage: "DIR",
		Action:    dump,
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "print at most N elements (0 = all)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "hex",
				Usage:   "element format: hex, uint or int (uint/int need 1, 2, 4 or 8 byte little-endian elements)",
			},
		},
	}
}

func formatElement(format string, elem []byte) (string, error) {
	switch format {
	case "hex":
		return hex.EncodeToString(elem), nil
	case "uint", "int":
		var u uint64
		switch len(elem) {
		case 1:
			u = uint64(elem[0])
		case 2:
			u = uint64(binary.LittleEndian.Uint16(elem))
		case 4:
			u = uint64(binary.LittleEndian.Uint32(elem))
		case 8:
			u = binary.LittleEndian.Uint64(elem)
		default:
			return "", fmt.Errorf("format %s needs 1, 2, 4 or 8 byte elements, got %d", format, len(elem))
		}
		if format == "uint" {
			return fmt.Sprint(u), nil
		}
		shift := 64 - 8*uint(len(elem))
		return fmt.Sprint(int64(u<<shift) >> shift), nil
	default:
		return "", fmt.Errorf("unknown format %q", format)
	}
}

func dumpStore(dir string, w io.Writer, format string, limit uint64) error {
	r, err := openCommitted(dir)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	err = r.each(limit, func(i uint64, elem []byte) error {
		s, err := formatElement(format, elem)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(bw, "%d\t%s\n", i, s)
		return err
	})
	if err != nil {
		return err
	}
	return bw.Flush()
}

func dump(ctx *cli.Context) error {
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("DIR is needed")
	}
	return dumpStore(ctx.Args().Get(0), ctx.App.Writer, ctx.String("format"), ctx.Uint64("limit"))
}
