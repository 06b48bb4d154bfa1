package main

import (
	"bytes"
	"fmt"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Akamitori/nes-emulator-sub000/hw"
	"github.com/Akamitori/nes-emulator-sub000/ines"
)

// romInfosMain prints the header infos of each ROM. ROMs are decoded
// concurrently, their infos are printed in argument order.
func romInfosMain(w io.Writer, args RomInfos) error {
	infos := make([]bytes.Buffer, len(args.RomPaths))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())

	for i, path := range args.RomPaths {
		g.Go(func() error {
			rom, err := ines.Open(path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			buf := &infos[i]
			fmt.Fprintf(buf, "%s:\n", path)
			rom.PrintInfos(buf)
			if name, ok := hw.MapperName(rom.Mapper()); ok {
				fmt.Fprintf(buf, "supported mapper: %s\n", name)
			} else {
				fmt.Fprintf(buf, "unsupported mapper: %d\n", rom.Mapper())
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i := range infos {
		if _, err := infos[i].WriteTo(w); err != nil {
			return err
		}
	}
	return nil
}
