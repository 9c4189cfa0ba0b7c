package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	deque "github.com/luhtfiimanal/go-mmap-deque"
)

type chunkInfo struct {
	Index uint64 `json:"index"`
	Size  int64  `json:"size"`
	InUse bool   `json:"in_use"`
}

type storeInfo struct {
	Dir           string      `json:"dir"`
	SchemaID      string      `json:"schema_id"`
	ElementSize   int         `json:"element_size"`
	ChunkCapacity int         `json:"chunk_capacity"`
	Start         uint64      `json:"start"`
	End           uint64      `json:"end"`
	Len           uint64      `json:"len"`
	FirstChunk    uint64      `json:"first_chunk"`
	LastChunk     uint64      `json:"last_chunk"`
	Chunks        []chunkInfo `json:"chunks"`
	DiskBytes     int64       `json:"disk_bytes"`
	OrphanBytes   int64       `json:"orphan_bytes"`
}

func infoFlags() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "show metadata and chunk files of a store",
		ArgsUsage: "DIR",
		Action:    info,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print as JSON",
			},
		},
	}
}

func collectInfo(dir string) (*storeInfo, error) {
	meta, err := deque.ReadMetadata(dir)
	if err != nil {
		return nil, err
	}
	first, last := meta.ChunkRange()
	si := &storeInfo{
		Dir:           dir,
		SchemaID:      meta.SchemaID,
		ElementSize:   meta.ElementSize,
		ChunkCapacity: meta.ChunkCapacity,
		Start:         meta.Start,
		End:           meta.End,
		Len:           meta.Len(),
		FirstChunk:    first,
		LastChunk:     last,
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "chunk_") || !strings.HasSuffix(name, ".bin") {
			continue
		}
		idx, err := strconv.ParseUint(strings.TrimSuffix(strings.TrimPrefix(name, "chunk_"), ".bin"), 10, 64)
		if err != nil {
			logger.Warnf("skip unexpected file %s", name)
			continue
		}
		fi, err := e.Info()
		if err != nil {
			return nil, err
		}
		inUse := meta.Len() > 0 && idx >= first && idx <= last
		si.Chunks = append(si.Chunks, chunkInfo{Index: idx, Size: fi.Size(), InUse: inUse})
		si.DiskBytes += fi.Size()
		if !inUse {
			si.OrphanBytes += fi.Size()
		}
	}
	sort.Slice(si.Chunks, func(i, j int) bool { return si.Chunks[i].Index < si.Chunks[j].Index })
	return si, nil
}

func info(ctx *cli.Context) error {
	if ctx.Args().Len() < 1 {
		return fmt.Errorf("DIR is needed")
	}
	for i := 0; i < ctx.Args().Len(); i++ {
		si, err := collectInfo(ctx.Args().Get(i))
		if err != nil {
			return err
		}
		if ctx.Bool("json") {
			output, err := json.MarshalIndent(si, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, string(output))
			continue
		}
		w := ctx.App.Writer
		fmt.Fprintf(w, "%s:\n", si.Dir)
		fmt.Fprintf(w, "  schema:   %s (%d bytes/element, %d elements/chunk)\n", si.SchemaID, si.ElementSize, si.ChunkCapacity)
		fmt.Fprintf(w, "  range:    [%d, %d) len=%d\n", si.Start, si.End, si.Len)
		fmt.Fprintf(w, "  chunks:   %d..%d in use, %d files on disk\n", si.FirstChunk, si.LastChunk, len(si.Chunks))
		fmt.Fprintf(w, "  disk:     %s (%s orphaned)\n", humanize.IBytes(uint64(si.DiskBytes)), humanize.IBytes(uint64(si.OrphanBytes)))
	}
	return nil
}
