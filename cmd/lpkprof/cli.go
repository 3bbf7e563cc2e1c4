// Copyright 2025 The go-mgard Authors. SPDX-License-Identifier: Apache-2.0

package main

import (
	"cmp"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-mgard/mgard/device"
	"github.com/go-mgard/mgard/grid"
	"github.com/go-mgard/mgard/internal/envconfig"
	"github.com/go-mgard/mgard/internal/logutil"
	"github.com/go-mgard/mgard/lpk"
	"github.com/go-mgard/mgard/nd"
)

// errMismatch is returned by verify when two configurations disagree.
var errMismatch = errors.New("configurations disagree")

type deviceFlags struct {
	workers   int
	queues    int
	sharedMem int
}

func (f *deviceFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().IntVar(&f.workers, "workers", int(envconfig.NumWorkers()), "worker goroutines (0 = GOMAXPROCS)")
	cmd.PersistentFlags().IntVar(&f.queues, "queues", int(envconfig.NumQueues()), "streams per device")
	cmd.PersistentFlags().IntVar(&f.sharedMem, "shared-mem", int(envconfig.SharedMemPerBlock()), "shared memory per block in bytes")
}

func (f *deviceFlags) handle(log *slog.Logger) *device.Handle {
	return device.NewHandle(
		device.WithWorkers(f.workers),
		device.WithQueues(f.queues),
		device.WithSharedMemPerBlock(f.sharedMem),
		device.WithLogger(log),
	)
}

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}
	envUsage := "\nEnvironment Variables:\n"
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-28s   %s\n", e.Name, e.Description)
	}
	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

// NewCLI returns the root command.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	var flags deviceFlags
	var log *slog.Logger
	rootCmd := &cobra.Command{
		Use:           "lpkprof",
		Short:         "Profile the linear processing kernels",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			log = logutil.NewLogger(cmd.ErrOrStderr(), envconfig.LogLevel())
		},
	}
	flags.register(rootCmd)

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show the emulated device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := flags.handle(log)
			defer h.Close()
			return infoHandler(cmd.OutOrStdout(), h.Properties())
		},
	}

	var dims int
	var double bool
	configsCmd := &cobra.Command{
		Use:   "configs",
		Short: "List the tile configurations and their shared memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return configsHandler(cmd.OutOrStdout(), dims, elemSize(double))
		},
	}
	configsCmd.Flags().IntVarP(&dims, "dims", "d", 3, "field dimensionality")
	configsCmd.Flags().BoolVar(&double, "float64", false, "64-bit samples")

	var shape []int
	var seed uint64
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Time every tile configuration of each kernel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := flags.handle(log)
			defer h.Close()
			if double {
				return profileHandler[float64](cmd.OutOrStdout(), h, shape, seed)
			}
			return profileHandler[float32](cmd.OutOrStdout(), h, shape, seed)
		},
	}
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that every tile configuration writes the same output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			h := flags.handle(log)
			defer h.Close()
			if double {
				return verifyHandler[float64](cmd.OutOrStdout(), h, shape, seed)
			}
			return verifyHandler[float32](cmd.OutOrStdout(), h, shape, seed)
		},
	}
	for _, c := range []*cobra.Command{profileCmd, verifyCmd} {
		c.Flags().IntSliceVar(&shape, "shape", []int{129, 65, 33}, "field extents, fastest first")
		c.Flags().Uint64Var(&seed, "seed", 1, "random field seed")
		c.Flags().BoolVar(&double, "float64", false, "64-bit samples")
	}

	envVars := envconfig.AsMap()
	for _, cmd := range []*cobra.Command{infoCmd, configsCmd, profileCmd, verifyCmd} {
		switch cmd {
		case configsCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{envVars["MGARD_KERNEL_CONFIG"]})
		default:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["MGARD_DEBUG"],
				envVars["MGARD_NUM_WORKERS"],
				envVars["MGARD_NUM_QUEUES"],
				envVars["MGARD_SHARED_MEM_PER_BLOCK"],
			})
		}
	}

	rootCmd.AddCommand(infoCmd, configsCmd, profileCmd, verifyCmd)
	return rootCmd
}

func elemSize(double bool) int {
	if double {
		return 8
	}
	return 4
}

func infoHandler(w io.Writer, p device.Properties) error {
	table := newTable(w, []string{"PROPERTY", "VALUE"})
	table.AppendBulk([][]string{
		{"name", p.Name},
		{"arch", p.Arch},
		{"features", strings.Join(p.Features, " ")},
		{"cache line", strconv.Itoa(p.CacheLineSize)},
		{"workers", strconv.Itoa(p.Workers)},
		{"queues", strconv.Itoa(p.Queues)},
		{"shared mem per block", strconv.Itoa(p.SharedMemPerBlock)},
		{"max threads per block", strconv.Itoa(p.MaxThreadsPerBlock)},
		{"max block", p.MaxBlockDim.String()},
		{"max grid", p.MaxGridDim.String()},
	})
	table.Render()
	return nil
}

func configsHandler(w io.Writer, d, size int) error {
	if d < 1 {
		return fmt.Errorf("dimensionality %d: %w", d, lpk.ErrDimensionality)
	}
	header := append([]string{"CONFIG", "TILE", "LANES"},
		lo.Map(lpk.Roles, func(r lpk.Role, _ int) string { return strings.ToUpper(r.String()) + " BYTES" })...)
	table := newTable(w, header)
	for c := range lpk.NumConfigs {
		t := lpk.TileFor(d, c)
		row := []string{strconv.Itoa(c), t.String(), strconv.Itoa(t.Lanes())}
		row = append(row, lo.Map(lpk.Roles, func(r lpk.Role, _ int) string {
			if d < r.MinDims() {
				return "-"
			}
			return strconv.Itoa(lpk.SharedMemBytes(r, t, d, size))
		})...)
		table.Append(row)
	}
	fmt.Fprintf(w, "class %v, %d-byte samples\n", lpk.ClassOf(d), size)
	table.Render()
	return nil
}

// stepInput is one chain step with a synthetic input.
type stepInput[T lpk.Float] struct {
	step lpk.Step
	ops  *lpk.Operands[T]
}

func syntheticSteps[T lpk.Float](shape []int, seed uint64) ([]stepInput[T], error) {
	steps, err := lpk.PlanChain(shape)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewPCG(seed, 0x9e3779b97f4a7c15))
	return lo.Map(steps, func(st lpk.Step, _ int) stepInput[T] {
		in := make([]T, nd.Volume(st.In))
		for i := range in {
			in[i] = T(rng.NormFloat64())
		}
		out := make([]T, nd.Volume(st.Out))
		sp := grid.UniformSpacing[T](shape[int(st.Role)])
		return stepInput[T]{step: st, ops: lpk.StepOperands(st, in, out, sp)}
	}), nil
}

func profileHandler[T lpk.Float](w io.Writer, h *device.Handle, shape []int, seed uint64) error {
	l, err := lpk.NewLauncher[T](h, len(shape))
	if err != nil {
		return err
	}
	inputs, err := syntheticSteps[T](shape, seed)
	if err != nil {
		return err
	}

	// Steps get their own inputs, so they profile concurrently. Each queue
	// is driven by one goroutine.
	results := make([][]lpk.Timing, len(inputs))
	nq := min(h.NumQueues(), len(inputs))
	var g errgroup.Group
	for q := range nq {
		g.Go(func() error {
			for i := q; i < len(inputs); i += nq {
				in := inputs[i]
				t, err := l.Profile(in.step.Role, in.step.Meta, in.ops, lpk.Options{Queue: q})
				if err != nil {
					return err
				}
				results[i] = t
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	table := newTable(w, []string{"KERNEL", "CONFIG", "TILE", "BLOCK", "GRID", "SHARED", "ELAPSED"})
	for i, timings := range results {
		best := slices.MinFunc(timings, func(a, b lpk.Timing) int { return cmp.Compare(a.Elapsed, b.Elapsed) })
		table.AppendBulk(lo.Map(timings, func(t lpk.Timing, _ int) []string {
			mark := ""
			if t.Config == best.Config {
				mark = " *"
			}
			return []string{
				inputs[i].step.Role.String(),
				strconv.Itoa(t.Config),
				t.Tile.String(),
				t.Launch.Block.String(),
				t.Launch.Grid.String(),
				strconv.Itoa(t.Bytes),
				t.Elapsed.Round(time.Microsecond).String() + mark,
			}
		}))
	}
	fmt.Fprintf(w, "shape %v\n", shape)
	table.Render()
	return nil
}

func verifyHandler[T lpk.Float](w io.Writer, h *device.Handle, shape []int, seed uint64) error {
	l, err := lpk.NewLauncher[T](h, len(shape))
	if err != nil {
		return err
	}
	inputs, err := syntheticSteps[T](shape, seed)
	if err != nil {
		return err
	}

	table := newTable(w, []string{"KERNEL", "CONFIGS", "RESULT"})
	var failed []string
	for _, in := range inputs {
		var want []T
		status := "ok"
		for c := range lpk.NumConfigs {
			ops := *in.ops
			ops.W = make([]T, len(in.ops.W))
			if err := l.Launch(in.step.Role, in.step.Meta, &ops, lpk.Options{Tuning: lpk.Tuning{Config: c}}); err != nil {
				return err
			}
			if err := h.Synchronize(); err != nil {
				return err
			}
			if want == nil {
				want = ops.W
				continue
			}
			if i := firstDiff(want, ops.W); i >= 0 {
				status = fmt.Sprintf("config %d differs at %d", c, i)
				failed = append(failed, in.step.Role.String())
				break
			}
		}
		table.Append([]string{in.step.Role.String(), fmt.Sprintf("0-%d", lpk.NumConfigs-1), status})
	}
	table.Render()
	if len(failed) > 0 {
		return fmt.Errorf("%s: %w", strings.Join(failed, ", "), errMismatch)
	}
	return nil
}

func firstDiff[T comparable](a, b []T) int {
	for i := range a {
		if a[i] != b[i] {
			return i
		}
	}
	return -1
}
