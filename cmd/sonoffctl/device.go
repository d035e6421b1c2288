package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/sonoffctl/internal/sonoff"
	"github.com/muurk/sonoffctl/internal/ui"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device information",
	Long: `Query /info and print the fields every device reports.

When the device kind is known from the registry, its kind-specific state
is printed as well.`,
	Example: `  sonoffctl 192.168.1.50 info
  sonoffctl --plain kitchen info`,
	Args: cobra.NoArgs,
	RunE: deviceRun(runInfo),
}

func runInfo(ctx context.Context, s *session, _ []string) error {
	info, err := s.device().Info(ctx)
	if err != nil {
		return err
	}

	fields := info.Fields()
	var bars []ui.Bar
	extra, extraBars, err := kindFields(s.target.Kind, info)
	if err != nil {
		return err
	}
	fields = append(fields, extra...)
	bars = append(bars, extraBars...)

	s.printer.Status("Device "+info.DeviceID, fields, bars...)
	return nil
}

// kindFields decodes the kind-specific part of info for display
func kindFields(kind sonoff.Kind, info *sonoff.Info) ([][2]string, []ui.Bar, error) {
	switch kind {
	case sonoff.KindSwitch:
		var st sonoff.SwitchStatus
		if err := info.DecodeExtra(&st); err != nil {
			return nil, nil, err
		}
		return switchStatusFields(&st), nil, nil

	case sonoff.KindBulb:
		var st sonoff.BulbStatus
		if err := info.DecodeExtra(&st); err != nil {
			return nil, nil, err
		}
		fields, bars := bulbStatusFields(&st)
		return fields, bars, nil

	case sonoff.KindDimmer:
		var st sonoff.DimmerStatus
		if err := info.DecodeExtra(&st); err != nil {
			return nil, nil, err
		}
		fields, bars := dimmerStatusFields(&st)
		return fields, bars, nil

	case sonoff.KindRelay:
		var st sonoff.RelayData
		if err := info.DecodeExtra(&st); err != nil {
			return nil, nil, err
		}
		return relayStatusFields(&st), nil, nil
	}
	return nil, nil, nil
}

var wifiCmd = &cobra.Command{
	Use:   "wifi <ssid> <password>",
	Short: "Move the device to another Wi-Fi network",
	Long: `Send new Wi-Fi credentials to the device.

The device drops off the current network immediately. If the credentials
are wrong it has to be paired again, so the command asks for confirmation
unless --yes is given or input is not a terminal.`,
	Example: `  sonoffctl 192.168.1.50 wifi HomeNet s3cret
  sonoffctl --yes 192.168.1.50 wifi HomeNet s3cret`,
	Args: cobra.ExactArgs(2),
	RunE: deviceRun(runWiFi),
}

// errAborted is returned when the user declines a confirmation prompt
var errAborted = errors.New("aborted")

func runWiFi(ctx context.Context, s *session, args []string) error {
	ssid, password := args[0], args[1]
	if ssid == "" {
		return sonoff.NewInvalidCommandError("ssid must not be empty")
	}

	if !yesFlag && stdinInteractive() {
		ok, err := ui.Confirm(
			fmt.Sprintf("Move %s to network %q?", s.device().Address, ssid),
			[]string{"The device disconnects from the current network immediately."},
			os.Stdin, os.Stdout)
		if err != nil {
			return err
		}
		if !ok {
			return errAborted
		}
	}

	resp, err := s.device().SetWiFi(ctx, ssid, password)
	if err != nil {
		return err
	}
	s.printResponse("Wi-Fi credentials sent", resp)
	return nil
}

var otaCmd = &cobra.Command{
	Use:   "ota",
	Short: "Unlock or flash firmware over the air",
	Args:  cobra.ArbitraryArgs,
	RunE:  requireSubcommand,
}

var otaUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Enable OTA flashing",
	Args:  cobra.NoArgs,
	RunE: deviceRun(func(ctx context.Context, s *session, _ []string) error {
		resp, err := s.device().UnlockOTA(ctx)
		if err != nil {
			return err
		}
		s.printResponse("OTA unlocked", resp)
		return nil
	}),
}

var otaFlashCmd = &cobra.Command{
	Use:     "flash <url> <sha256>",
	Short:   "Flash a firmware image",
	Example: `  sonoffctl 192.168.1.50 ota flash http://192.168.1.10/fw.bin 3b0f...`,
	Args:    cobra.ExactArgs(2),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		if len(args[1]) != 64 {
			return sonoff.NewInvalidCommandError("sha256 must be 64 hex characters")
		}
		if !yesFlag && stdinInteractive() {
			ok, err := ui.Confirm("Flash "+args[0]+"?",
				[]string{"A bad image can leave the device unusable."},
				os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			if !ok {
				return errAborted
			}
		}
		resp, err := s.device().FlashOTA(ctx, args[0], args[1])
		if err != nil {
			return err
		}
		s.printResponse("Firmware flash started", resp)
		return nil
	}),
}

func init() {
	otaCmd.AddCommand(otaUnlockCmd, otaFlashCmd)
}

func switchStatusFields(st *sonoff.SwitchStatus) [][2]string {
	return [][2]string{
		{"switch", string(st.Switch)},
		{"startup", string(st.Startup)},
		{"pulse", string(st.Pulse)},
		{"pulse_width", strconv.FormatUint(uint64(st.PulseWidth), 10)},
	}
}
