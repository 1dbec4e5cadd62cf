package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/wavecraft/chunkio"
	"github.com/farcloser/wavecraft/sample"
	"github.com/farcloser/wavecraft/wave"
)

func encodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode raw interleaved PCM into a WAVE/RF64 container",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "-",
				Usage:   "output file path (- for stdout)",
			},
			&cli.IntFlag{
				Name:     "sample-rate",
				Aliases:  []string{"r"},
				Required: true,
				Usage:    "sample rate in Hz",
			},
			&cli.IntFlag{
				Name:     "channels",
				Aliases:  []string{"c"},
				Required: true,
				Usage:    "number of channels",
			},
			&cli.IntFlag{
				Name:    "bit-depth",
				Aliases: []string{"b"},
				Value:   16,
				Usage:   "bits per sample (8, 16, 24, 32, 64)",
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "int",
				Usage: "sample format: int, uint, or float",
			},
			&cli.StringFlag{
				Name:  "policy",
				Value: "allow",
				Usage: "4GB+ file policy: never, allow, or force",
			},
			&cli.StringFlag{
				Name:  "bext-description",
				Usage: "stamp a bext chunk with this description",
			},
			&cli.StringFlag{
				Name:  "bext-originator",
				Usage: "originator name for the bext chunk (requires --bext-description)",
			},
		},
		Action: runEncode,
	}
}

func parseSampleFormat(s string) (wave.SampleFormat, error) {
	switch s {
	case "int":
		return wave.FormatInt, nil
	case "uint":
		return wave.FormatUInt, nil
	case "float":
		return wave.FormatFloat, nil
	default:
		return wave.FormatUnknown, fmt.Errorf("%w: %q", errUnknownFormat, s)
	}
}

func parsePolicy(s string) (wave.FileSizePolicy, error) {
	switch s {
	case "never":
		return wave.NeverLargerThan4GB, nil
	case "allow":
		return wave.AllowLargerThan4GB, nil
	case "force":
		return wave.ForceUse4GBFormat, nil
	default:
		return 0, fmt.Errorf("%w: %q", errUnknownPolicy, s)
	}
}

func runEncode(_ context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	path := cmd.Args().First()

	in, err := os.Open(path) //nolint:gosec // CLI tool opens user-specified PCM files.
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer in.Close()

	format, err := parseSampleFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	policy, err := parsePolicy(cmd.String("policy"))
	if err != nil {
		return err
	}

	spec := wave.Spec{
		Channels:      uint16(cmd.Int("channels")),   //nolint:gosec // CLI-validated small positive count.
		SampleRate:    uint32(cmd.Int("sample-rate")), //nolint:gosec // CLI-validated positive rate.
		BitsPerSample: uint16(cmd.Int("bit-depth")),   //nolint:gosec // CLI-validated small positive depth.
		SampleFormat:  format,
	}

	out, closeOut, err := openOutput(cmd.String("output"))
	if err != nil {
		return err
	}
	defer closeOut()

	ws, ok := out.(io.WriteSeeker)
	if !ok {
		return fmt.Errorf("output %q must be a seekable file, not stdout", cmd.String("output"))
	}

	writer, err := wave.NewPCMWriter(ws, spec, policy)
	if err != nil {
		return fmt.Errorf("opening writer: %w", err)
	}

	if desc := cmd.String("bext-description"); desc != "" {
		bext := chunkio.NewBext(desc, cmd.String("bext-originator"))
		writer.InheritFrom(wave.Snapshot{Bext: &bext}, true)
	}

	target, err := spec.WaveSampleType()
	if err != nil {
		return err
	}

	if err := streamFrames(bufio.NewReader(in), writer, target, int(spec.Channels)); err != nil {
		return err
	}

	if err := writer.Finish(); err != nil {
		return fmt.Errorf("finishing container: %w", err)
	}

	return nil
}

func streamFrames(in io.Reader, writer *wave.Writer, target sample.Type, channels int) error {
	width := target.BytesPerSample()
	buf := make([]byte, width*channels)
	frame := make([]sample.Value, channels)

	for {
		if _, err := io.ReadFull(in, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		for i := range frame {
			frame[i] = sample.Decode(target, buf[i*width:(i+1)*width])
		}

		if err := writer.WriteFrame(frame); err != nil {
			return fmt.Errorf("writing frame: %w", err)
		}
	}
}
