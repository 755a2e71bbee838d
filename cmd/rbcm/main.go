// SPDX-License-Identifier: MIT

// Command rbcm runs fusion or partitioning on a YAML (or JSON) document and
// prints the JSON result to stdout.
//
//	rbcm fuse -in doc.yaml [-workers N] [-verbose]
//	rbcm partition -in doc.yaml [-seed N] [-verbose]
//	rbcm version
//
// "-in -" (the default) reads the document from stdin.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/katalvlaran/rbcm/fusion"
	"github.com/katalvlaran/rbcm/internal/api"
	"github.com/katalvlaran/rbcm/internal/buildinfo"
	"github.com/katalvlaran/rbcm/internal/logging"
	"github.com/katalvlaran/rbcm/partition"
)

var errUsage = errors.New("usage: rbcm fuse|partition|version [flags]")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			_, _ = fmt.Fprintf(os.Stderr, "rbcm: %v\n", err)
		}
		os.Exit(2)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	fs := flag.NewFlagSet("rbcm "+args[0], flag.ContinueOnError)
	fs.SetOutput(stderr)
	in := fs.String("in", "-", "input document, - for stdin")
	verbose := fs.Bool("verbose", false, "log debug output to stderr")

	switch args[0] {
	case "fuse":
		workers := fs.Int("workers", fusion.DefaultWorkers, "concurrent location chunks")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *workers < 1 {
			return fmt.Errorf("-workers must be >= 1, got %d", *workers)
		}
		logger := logging.NewConsole(stderr, *verbose)

		var req api.FuseRequest
		if err := readDoc(*in, stdin, &req); err != nil {
			return err
		}
		start := time.Now()
		resp, err := api.Fuse(&req, fusion.WithWorkers(*workers))
		if err != nil {
			return err
		}
		if len(resp.Unstable) > 0 {
			logger.Warnw("unstable locations in result", "locations", resp.Unstable)
		}
		logger.Debugw("fused", "locations", len(resp.Variance), "elapsed", time.Since(start))

		return writeJSON(stdout, resp)

	case "partition":
		seed := fs.Int64("seed", 0, "overrides the document seed")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		logger := logging.NewConsole(stderr, *verbose)

		var req api.PartitionRequest
		if err := readDoc(*in, stdin, &req); err != nil {
			return err
		}
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "seed" {
				req.Seed = *seed
			}
		})
		start := time.Now()
		resp, err := api.Partition(&req)
		if err != nil {
			return err
		}
		logger.Debugw("partitioned",
			"points", len(req.X),
			"groups", len(resp.Groups),
			"threshold", thresholdOf(&req),
			"elapsed", time.Since(start),
		)

		return writeJSON(stdout, resp)

	case "version":
		_, err := fmt.Fprintln(stdout, buildinfo.Info.String())

		return err

	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func thresholdOf(req *api.PartitionRequest) float64 {
	if req.Threshold != nil {
		return *req.Threshold
	}

	return partition.DefaultThreshold
}

func readDoc(path string, stdin io.Reader, v any) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	return api.DecodeYAML(r, v)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
