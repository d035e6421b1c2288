// Sonoff-sim emulates one Sonoff DIY-mode device on the local machine.
//
// It answers the /zeroconf HTTP API the way the real firmware does, so the
// client can be exercised without hardware. With --advertise the device is
// also registered over mDNS as eWeLink_<deviceid>.
//
// Usage:
//
//	sonoff-sim [flags]
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/sonoffctl/internal/logging"
	"github.com/muurk/sonoffctl/internal/simulator"
	"github.com/muurk/sonoffctl/internal/sonoff"
	"github.com/muurk/sonoffctl/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	kindName  string
	host      string
	port      int
	deviceID  string
	advertise bool
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "sonoff-sim",
	Short: "Sonoff DIY-mode device simulator",
	Long: `Serve the DIY-mode HTTP API of one emulated device.

Every request gets the {seq, error, data} envelope with an incrementing
sequence number. Operations the emulated kind does not support answer with
device error 400.`,
	Example: `  # Emulate a bulb on the DIY-mode port
  sonoff-sim --kind bulb

  # Emulate a relay and advertise it over mDNS
  sonoff-sim --kind relay --port 8082 --device-id 1000abcdef --advertise`,
	Version:      version.Version,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runSimulator,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.Flags().StringVar(&kindName, "kind", string(sonoff.KindSwitch), "Device kind (switch, bulb, dimmer, relay, powermeter)")
	rootCmd.Flags().StringVar(&host, "host", "0.0.0.0", "Host to bind to")
	rootCmd.Flags().IntVar(&port, "port", sonoff.DefaultPort, "Port to listen on")
	rootCmd.Flags().StringVar(&deviceID, "device-id", "", "Device id to report (default: built-in id)")
	rootCmd.Flags().BoolVar(&advertise, "advertise", false, "Register the device over mDNS")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

func runSimulator(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	kind, err := sonoff.ParseKind(kindName)
	if err != nil {
		return err
	}
	if kind == "" {
		return fmt.Errorf("--kind must not be empty")
	}

	var opts []simulator.Option
	if deviceID != "" {
		opts = append(opts, simulator.WithDeviceID(deviceID))
	}
	if kind == sonoff.KindPowerMeter {
		opts = append(opts, simulator.WithSubDevice("a4e57c0001", 0, sonoff.SubDevStatus{FWVersion: "1.0.4"}))
	}

	srv := simulator.NewServer(&simulator.Config{
		Host:      host,
		Port:      port,
		Advertise: advertise,
	}, simulator.New(kind, opts...))
	return srv.Start()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sonoff-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}
