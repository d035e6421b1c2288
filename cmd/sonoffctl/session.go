package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/sonoffctl/internal/config"
	"github.com/muurk/sonoffctl/internal/logging"
	"github.com/muurk/sonoffctl/internal/resolve"
	"github.com/muurk/sonoffctl/internal/sonoff"
	"github.com/muurk/sonoffctl/internal/ui"
)

// session is a resolved device plus the registry it may have come from
type session struct {
	target   *resolve.Target
	registry *config.Registry
	printer  *ui.Printer
}

func (s *session) device() sonoff.Device {
	return s.target.Device
}

// expect warns when the registry recorded a different kind for the device
func (s *session) expect(kind sonoff.Kind) {
	if s.target.Kind != "" && s.target.Kind != kind {
		logging.Warn("Device kind mismatch",
			zap.String("address", s.target.Device.Address),
			zap.String("recorded", string(s.target.Kind)),
			zap.String("command", string(kind)))
	}
}

// finish records a successful use of an aliased device
func (s *session) finish() {
	if s.target.Source != resolve.SourceAlias {
		return
	}
	s.registry.TouchDevice(s.target.Alias)
	if err := s.registry.Save(); err != nil {
		logging.Warn("Failed to update device registry", zap.Error(err))
	}
}

func openSession(ctx context.Context) (*session, error) {
	if deviceAddress == "" {
		return nil, sonoff.NewInvalidCommandError("no device address given")
	}

	reg, err := config.Load()
	if err != nil {
		return nil, err
	}
	resolver := &resolve.Resolver{Registry: reg, Timeout: reg.Timeout()}
	target, err := resolver.Resolve(ctx, deviceAddress)
	if err != nil {
		return nil, err
	}
	if deviceIDFlag != "" {
		target.Device = target.Device.WithID(deviceIDFlag)
	}
	return &session{target: target, registry: reg, printer: newPrinter()}, nil
}

// deviceRun adapts a device operation into a cobra RunE
func deviceRun(fn func(ctx context.Context, s *session, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		s, err := openSession(ctx)
		if err != nil {
			return err
		}
		if err := fn(ctx, s, args); err != nil {
			return err
		}
		s.finish()
		return nil
	}
}

// requireSubcommand rejects a group command invoked without a known
// sub-command before anything is sent
func requireSubcommand(cmd *cobra.Command, args []string) error {
	names := make([]string, 0, len(cmd.Commands()))
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	if len(args) > 0 {
		return sonoff.NewInvalidCommandError(fmt.Sprintf("unknown %s sub-command %q (use %s)",
			cmd.Name(), args[0], strings.Join(names, ", ")))
	}
	return sonoff.NewInvalidCommandError(fmt.Sprintf("%s needs a sub-command (%s)",
		cmd.Name(), strings.Join(names, ", ")))
}

func parseUint8(name, s string, lo, hi int) (uint8, error) {
	v, err := strconv.Atoi(s)
	if err != nil || v < lo || v > hi {
		return 0, sonoff.NewInvalidCommandError(fmt.Sprintf("invalid %s %q (use %d-%d)", name, s, lo, hi))
	}
	return uint8(v), nil
}

// parseByte accepts any 0-255 value; range checks are left to the device
func parseByte(name, s string) (uint8, error) {
	return parseUint8(name, s, 0, 255)
}

func parseUint32(name, s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, sonoff.NewInvalidCommandError(fmt.Sprintf("invalid %s %q", name, s))
	}
	return uint32(v), nil
}

func responseFields(resp *sonoff.Response) [][2]string {
	fields := [][2]string{
		{"seq", strconv.FormatUint(uint64(resp.Seq), 10)},
		{"error", strconv.Itoa(resp.Error)},
	}
	if resp.HasData() {
		fields = append(fields, [2]string{"data", string(resp.Data)})
	}
	return fields
}

func (s *session) printResponse(title string, resp *sonoff.Response) {
	s.printer.Success(title, responseFields(resp))
}

func switchFields(on bool) [][2]string {
	state := sonoff.SwitchOff
	if on {
		state = sonoff.SwitchOn
	}
	return [][2]string{{"switch", string(state)}}
}

func stdinInteractive() bool {
	return ui.IsTerminal(os.Stdin) && ui.IsTerminal(os.Stdout)
}
