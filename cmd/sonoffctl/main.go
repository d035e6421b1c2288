// Sonoffctl controls Sonoff devices running in DIY mode over the local network.
//
// The device address comes first and every other argument names the
// operation:
//
//	sonoffctl [flags] <address> <command> [args]
//
// The address can be a registry alias, an mDNS instance (mdns:<deviceid> or
// eWeLink_<deviceid>) or a URL / host:port. Commands that don't talk to a
// device (devices, version) take no address.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/muurk/sonoffctl/internal/logging"
	"github.com/muurk/sonoffctl/internal/sonoff"
	"github.com/muurk/sonoffctl/internal/ui"
	"github.com/muurk/sonoffctl/internal/version"
)

// Global flags
var (
	debugFlag    bool
	yesFlag      bool
	plainFlag    bool
	deviceIDFlag string

	// deviceAddress is the positional address taken out of the arguments
	// before cobra parses them
	deviceAddress string

	stdout io.Writer = os.Stdout
)

func main() {
	address, args := splitAddress(os.Args[1:])
	deviceAddress = address
	rootCmd.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		reportError(err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sonoffctl [flags] <address> <command>",
	Short: "Control Sonoff DIY-mode devices on the local network",
	Long: `A command line client for Sonoff devices in DIY mode.

Switches, bulbs, dimmers, multi-outlet relays and power meters are
controlled over their local HTTP API. The device is named by a registry
alias, an mDNS instance name or its address.`,
	Example: `  sonoffctl 192.168.1.50 info
  sonoffctl 192.168.1.50:8081 switch toggle
  sonoffctl mdns:1000abcdef bulb rgb 80 255 0 0
  sonoffctl kitchen dimmer dim 40
  sonoffctl devices add kitchen 192.168.1.51 --kind dimmer`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debugFlag {
			return logging.Initialize("debug")
		}
		return logging.InitializeFromEnv()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if deviceAddress != "" {
			return sonoff.NewInvalidCommandError(fmt.Sprintf("no command given for %s", deviceAddress))
		}
		return cmd.Help()
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "Log every request and response")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "Don't ask for confirmation")
	rootCmd.PersistentFlags().BoolVar(&plainFlag, "plain", false, "Print key=value lines even on a terminal")
	rootCmd.PersistentFlags().StringVar(&deviceIDFlag, "device-id", "", "Device id sent in the request envelope")

	rootCmd.AddCommand(infoCmd, wifiCmd, otaCmd)
	rootCmd.AddCommand(switchCmd, bulbCmd, dimmerCmd, relayCmd, meterCmd)
	rootCmd.AddCommand(devicesCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		newPrinter().Status("sonoffctl", version.Fields())
	},
}

// localCommands never take a device address
var localCommands = map[string]bool{
	"devices":    true,
	"version":    true,
	"help":       true,
	"completion": true,
}

// flagsWithValue are the global flags whose value is a separate argument
var flagsWithValue = map[string]bool{
	"--device-id": true,
}

// splitAddress removes the positional device address from args. The address
// is the first non-flag argument unless that argument names a command that
// works without a device.
func splitAddress(args []string) (string, []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return "", args
		}
		if strings.HasPrefix(arg, "-") {
			if flagsWithValue[arg] {
				i++
			}
			continue
		}
		if localCommands[arg] {
			return "", args
		}
		rest := make([]string, 0, len(args)-1)
		rest = append(rest, args[:i]...)
		rest = append(rest, args[i+1:]...)
		return arg, rest
	}
	return "", args
}

func stylesEnabled(f *os.File) bool {
	return !plainFlag && ui.IsTerminal(f)
}

func newPrinter() *ui.Printer {
	return ui.NewPrinter(stdout, stdout == os.Stdout && stylesEnabled(os.Stdout))
}

func reportError(err error) {
	if !stylesEnabled(os.Stderr) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	title := "Command failed"
	var devErr *sonoff.DeviceError
	if errors.As(err, &devErr) {
		title = sonoff.ShortMessage(err)
	}
	ui.NewPrinter(os.Stderr, true).Error(title, err, sonoff.TroubleshootingHint(err))
}
