package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dawg-ai/claphost/internal/core/host"
	"github.com/dawg-ai/claphost/internal/core/ports"
	"github.com/dawg-ai/claphost/internal/interfaces/di"
)

// runFlags holds the command-line flags for the run command.
type runFlags struct {
	pluginID   string
	sampleRate float64
	minFrames  uint32
	maxFrames  uint32
	blocks     int
	frames     uint32
}

// newRunCommand drives one plugin through its full lifecycle: load,
// initialize, activate, process a few blocks, then tear everything
// back down. Useful as a smoke test for a plugin binary.
func newRunCommand(container *di.Container) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <library>",
		Short: "Load a plugin and drive it through a full lifecycle",
		Long: `Run loads the given library, initializes and activates the selected
plugin, pushes a few process blocks through it, dumps its parameters,
and unloads it again.

Examples:
  claphost run ~/.clap/diode.clap
  claphost run ./synth.clap --plugin-id com.example.synth --blocks 16`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLifecycle(cmd, container, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.pluginID, "plugin-id", "", "Descriptor ID to instantiate (default: first available)")
	cmd.Flags().Float64Var(&flags.sampleRate, "sample-rate", 0, "Sample rate in Hz (default: configured value)")
	cmd.Flags().Uint32Var(&flags.minFrames, "min-frames", 0, "Minimum block size in frames (default: configured value)")
	cmd.Flags().Uint32Var(&flags.maxFrames, "max-frames", 0, "Maximum block size in frames (default: configured value)")
	cmd.Flags().IntVar(&flags.blocks, "blocks", 8, "Number of process blocks to push")
	cmd.Flags().Uint32Var(&flags.frames, "frames", 256, "Frames per process block")

	return cmd
}

func runLifecycle(cmd *cobra.Command, container *di.Container, path string, flags *runFlags) error {
	cfg := container.Config
	sampleRate := flags.sampleRate
	if sampleRate <= 0 {
		sampleRate = cfg.SampleRate
	}
	minFrames := flags.minFrames
	if minFrames == 0 {
		minFrames = cfg.MinFrames
	}
	maxFrames := flags.maxFrames
	if maxFrames == 0 {
		maxFrames = cfg.MaxFrames
	}

	h := container.Host
	out := cmd.OutOrStdout()

	handle, err := h.LoadPluginID(cmd.Context(), path, flags.pluginID)
	if err != nil {
		return err
	}
	defer h.UnloadPlugin(handle)

	fmt.Fprintf(out, "loaded %s (handle %d)\n", path, handle)

	if ok, err := h.Initialize(handle); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("plugin refused to initialize")
	}
	fmt.Fprintln(out, "initialized")

	if ok, err := h.Activate(handle, sampleRate, minFrames, maxFrames); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("plugin refused to activate at %gHz", sampleRate)
	}
	fmt.Fprintf(out, "activated at %gHz (%d..%d frames)\n", sampleRate, minFrames, maxFrames)

	if err := dumpParameters(cmd, h, handle); err != nil {
		return err
	}

	if ok, err := h.StartProcessing(handle); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("plugin refused to start processing")
	}

	steadyTime := int64(0)
	for i := 0; i < flags.blocks; i++ {
		status, err := h.Process(handle, &ports.ProcessBlock{
			SteadyTime:  steadyTime,
			FramesCount: flags.frames,
		})
		if err != nil {
			return err
		}
		if status == ports.ProcessError {
			return fmt.Errorf("process returned error status on block %d", i)
		}
		steadyTime += int64(flags.frames)
	}
	fmt.Fprintf(out, "processed %d blocks of %d frames\n", flags.blocks, flags.frames)

	if err := h.StopProcessing(handle); err != nil {
		return err
	}
	if err := h.Deactivate(handle); err != nil {
		return err
	}
	fmt.Fprintln(out, "deactivated")

	return nil
}

// dumpParameters prints the current value of every parameter id the
// plugin answers for. Parameter ids are probed densely from zero; a
// plugin with sparse ids simply prints fewer rows than its count.
func dumpParameters(cmd *cobra.Command, h *host.Host, handle host.Handle) error {
	count, err := h.ParameterCount(handle)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d parameter(s)\n", count)

	for id := uint32(0); id < count; id++ {
		value, ok, err := h.ParameterValue(handle, id)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(cmd.OutOrStdout(), "  param %d = %g\n", id, value)
		}
	}
	return nil
}
