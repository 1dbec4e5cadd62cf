package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/wavecraft/sample"
	"github.com/farcloser/wavecraft/wave"
)

func decodeCommand() *cli.Command {
	return &cli.Command{
		Name:      "decode",
		Usage:     "Decode a WAVE/RF64 container to raw interleaved PCM",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "-",
				Usage:   "output file path (- for stdout)",
			},
			&cli.StringFlag{
				Name:  "channels-mode",
				Value: "frame",
				Usage: "frame (all channels), mono (downmixed), or stereo",
			},
		},
		Action: runDecode,
	}
}

func runDecode(_ context.Context, cmd *cli.Command) error {
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

	out, closeOut, err := openOutput(cmd.String("output"))
	if err != nil {
		return err
	}
	defer closeOut()

	progress := newProgressLine()
	defer progress.done()

	switch cmd.String("channels-mode") {
	case "mono":
		return decodeMono(reader, out, progress)
	case "stereo":
		return decodeStereo(reader, out, progress)
	default:
		return decodeFrames(reader, out, progress)
	}
}

func decodeFrames(reader *wave.Reader, out io.Writer, progress *progressLine) error {
	it, err := reader.Frames()
	if err != nil {
		return fmt.Errorf("opening frame iterator: %w", err)
	}

	var count uint64

	for {
		frame, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("decoding frame: %w", err)
		}

		if err := writeValues(out, frame); err != nil {
			return err
		}

		count++
		if count%4096 == 0 {
			progress.update(count)
		}
	}

	progress.update(count)

	return nil
}

func decodeMono(reader *wave.Reader, out io.Writer, progress *progressLine) error {
	it, err := reader.Mono()
	if err != nil {
		return fmt.Errorf("opening mono iterator: %w", err)
	}

	var count uint64

	for {
		v, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("decoding frame: %w", err)
		}

		if err := writeValues(out, []sample.Value{v}); err != nil {
			return err
		}

		count++
		if count%4096 == 0 {
			progress.update(count)
		}
	}

	progress.update(count)

	return nil
}

func decodeStereo(reader *wave.Reader, out io.Writer, progress *progressLine) error {
	it, err := reader.Stereo()
	if err != nil {
		return fmt.Errorf("opening stereo iterator: %w", err)
	}

	var count uint64

	for {
		pair, err := it.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("decoding frame: %w", err)
		}

		if err := writeValues(out, []sample.Value{pair.Left, pair.Right}); err != nil {
			return err
		}

		count++
		if count%4096 == 0 {
			progress.update(count)
		}
	}

	progress.update(count)

	return nil
}

func writeValues(out io.Writer, frame []sample.Value) error {
	buf := make([]byte, 0, len(frame)*8)

	for _, v := range frame {
		width := v.Type.BytesPerSample()
		start := len(buf)
		buf = buf[:start+width]
		sample.Encode(v.Type, v, buf[start:start+width])
	}

	if _, err := out.Write(buf); err != nil {
		return fmt.Errorf("writing pcm bytes: %w", err)
	}

	return nil
}
