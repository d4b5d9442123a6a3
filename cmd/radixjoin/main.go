// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Command radixjoin drives the join engine: it discovers the machine's
// cache topology, generates synthetic R/S relations, runs the join, and
// reports the resulting match count and checksum.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ajroetker/radixjoin/internal/affinity"
	"github.com/ajroetker/radixjoin/internal/clock"
	"github.com/ajroetker/radixjoin/internal/genrel"
	"github.com/ajroetker/radixjoin/internal/sysinfo"
	"github.com/ajroetker/radixjoin/join"
)

type flags struct {
	threads          int
	rSize            uint64
	sSize            uint64
	skew             float64
	radix            int
	radixR           int
	radixS           int
	favorHyperthread bool
	seed             uint64
	randomPayload    bool
	verbose          bool
	jsonOutput       bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	f := &flags{radix: -1, radixR: -1, radixS: -1}

	cmd := &cobra.Command{
		Use:   "radixjoin",
		Short: "Parallel, cache- and NUMA-aware radix hash join over synthetic relations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return execute(cmd.Context(), f)
		},
	}

	cmd.Flags().IntVar(&f.threads, "threads", runtime.NumCPU(), "worker thread count")
	cmd.Flags().Uint64Var(&f.rSize, "r", 1<<20, "|R| (build-side relation size, tuples)")
	cmd.Flags().Uint64Var(&f.sSize, "s", 1<<20, "|S| (probe-side relation size, tuples)")
	cmd.Flags().Float64Var(&f.skew, "skew", 0, "Zipf exponent for S's foreign-key distribution (0 = uniform)")
	cmd.Flags().IntVar(&f.radix, "radix", -1, "override both R_bits and S_bits; disables skew-triggered rewrites")
	cmd.Flags().IntVar(&f.radixR, "radixR", -1, "override R_bits only; disables skew-triggered rewrites")
	cmd.Flags().IntVar(&f.radixS, "radixS", -1, "override S_bits only; disables skew-triggered rewrites")
	cmd.Flags().BoolVar(&f.favorHyperthread, "favor_hyperthreading", false, "pack onto fewer LLCs using sibling hw-threads before spreading across LLCs")
	cmd.Flags().Uint64Var(&f.seed, "seed", 1, "PRNG seed for relation generation")
	cmd.Flags().BoolVar(&f.randomPayload, "random-payload", false, "draw payloads independently instead of payload=key")
	cmd.Flags().BoolVar(&f.verbose, "verbose", false, "log per-phase timing")
	cmd.Flags().BoolVar(&f.jsonOutput, "json", false, "emit the result as a JSON object instead of text")

	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

type jsonResult struct {
	Model    string `json:"model"`
	Matches  uint64 `json:"matches"`
	Checksum uint64 `json:"checksum"`
}

func execute(ctx context.Context, f *flags) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	sw := &clock.Stopwatch{}

	var topo sysinfo.Topology
	var r, s *join.Relation

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sw.Time("topology-discovery", func() error {
			t, err := sysinfo.Discover()
			if err != nil {
				logger.Warn("topology discovery degraded to fallback", "error", err)
			}
			topo = t
			return nil
		})
	})
	g.Go(func() error {
		return sw.Time("relation-generation", func() error {
			var err error
			r, s, err = genrel.Generate(genrel.Options{
				RSize:         f.rSize,
				SSize:         f.sSize,
				Skew:          f.skew,
				Seed:          f.seed,
				RandomPayload: f.randomPayload,
			})
			return err
		})
	})
	if err := g.Wait(); err != nil {
		return err
	}

	radixR, radixS := f.radixR, f.radixS
	if f.radix >= 0 {
		radixR, radixS = f.radix, f.radix
	}

	opts := join.RunOptions{
		Topology:           topo.Facts(),
		Resolve:            topo.CPU,
		NumThreads:         f.threads,
		FavorPhysicalCores: !f.favorHyperthread,
		UserRadixR:         radixR,
		UserRadixS:         radixS,
		Pinner:             affinity.Default,
	}

	var result join.Result
	var model join.Model
	err := sw.Time("join", func() error {
		var err error
		result, model, err = join.Run(r, s, opts)
		return err
	})
	if err != nil {
		return err
	}

	if f.verbose {
		sw.LogAll(logger)
	}

	if f.jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		return enc.Encode(jsonResult{Model: model.String(), Matches: result.Matches, Checksum: result.Checksum})
	}

	fmt.Printf("model=%s matches=%d checksum=%d\n", model, result.Matches, result.Checksum)
	return nil
}
