package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/wavecraft/wave"
)

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "Print a container's format and metadata summary",
		ArgsUsage: "<file>",
		Action:    runInfo,
	}
}

func runInfo(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	path := cmd.Args().First()

	file, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified audio files.
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()

	reader, err := wave.Open(file)
	if err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	defer reader.Close()

	snap := reader.Snapshot
	spec := snap.Spec

	fmt.Printf("codec:          %s\n", spec.Codec)
	fmt.Printf("channels:       %d (mask 0x%08X)\n", spec.Channels, spec.ChannelMask)
	fmt.Printf("sample rate:    %d Hz\n", spec.SampleRate)
	fmt.Printf("bits per sample: %d\n", spec.BitsPerSample)
	fmt.Printf("data offset:    %d\n", snap.DataOffset)
	fmt.Printf("data size:      %d bytes\n", snap.DataSize)

	printPresence("fact", snap.Fact != nil)
	printPresence("ds64", snap.DS64 != nil)
	printPresence("bext", snap.Bext != nil)
	printPresence("smpl", snap.Smpl != nil)
	printPresence("inst", snap.Inst != nil)
	printPresence("cue ", snap.Cue != nil)
	printPresence("plst", snap.Plst != nil)
	printPresence("acid", snap.Acid != nil)
	printPresence("trkn", snap.Trkn != nil)
	printPresence("LIST/INFO", snap.Info != nil)
	printPresence("LIST/adtl", snap.Adtl != nil)
	printPresence("axml", snap.Axml != nil)
	printPresence("iXML", snap.Ixml != nil)
	printPresence("id3 ", snap.ID3 != nil)

	if n := len(snap.Junks); n > 0 {
		fmt.Printf("JUNK chunks:    %d\n", n)
	}

	return nil
}

func printPresence(name string, present bool) {
	if !present {
		return
	}

	fmt.Printf("%-15s present\n", name+":")
}
