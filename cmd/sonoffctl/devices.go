package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/sonoffctl/internal/config"
	"github.com/muurk/sonoffctl/internal/resolve"
	"github.com/muurk/sonoffctl/internal/sonoff"
)

var (
	addKind     string
	addDeviceID string
	addNickname string
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage device aliases",
	Long: `Manage the aliases stored in the configuration file.

An alias can be used in place of a device address in every command.`,
	Args: cobra.ArbitraryArgs,
	RunE: requireSubcommand,
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List aliases",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.Load()
		if err != nil {
			return err
		}

		p := newPrinter()
		aliases := reg.Aliases()
		if len(aliases) == 0 {
			p.Status("Devices", [][2]string{{"devices", "none"}})
			return nil
		}
		fields := make([][2]string, 0, len(aliases))
		for _, alias := range aliases {
			fields = append(fields, [2]string{alias, describeDevice(reg.GetDevice(alias))})
		}
		p.Status("Devices", fields)
		return nil
	},
}

func describeDevice(dev *config.Device) string {
	s := dev.Address
	if dev.Kind != "" {
		s += " " + dev.Kind
	}
	if dev.DeviceID != "" {
		s += " id=" + dev.DeviceID
	}
	if dev.Nickname != "" {
		s += fmt.Sprintf(" %q", dev.Nickname)
	}
	if !dev.LastSeen.IsZero() {
		s += " seen=" + dev.LastSeen.Format(time.RFC3339)
	}
	return s
}

var devicesAddCmd = &cobra.Command{
	Use:   "add <alias> <address>",
	Short: "Add or replace an alias",
	Example: `  sonoffctl devices add kitchen 192.168.1.51 --kind dimmer
  sonoffctl devices add porch http://porch.lan:8081 --kind switch --nickname "Porch light"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		alias := args[0]
		address, err := resolve.ParseAddress(args[1])
		if err != nil {
			return err
		}
		kind, err := sonoff.ParseKind(addKind)
		if err != nil {
			return sonoff.NewInvalidCommandError(err.Error())
		}

		reg, err := config.Load()
		if err != nil {
			return err
		}
		dev := &config.Device{
			Address:  address,
			DeviceID: addDeviceID,
			Kind:     string(kind),
			Nickname: addNickname,
		}
		if err := reg.SetDevice(alias, dev); err != nil {
			return sonoff.NewInvalidCommandError(err.Error())
		}
		if err := reg.Save(); err != nil {
			return err
		}
		newPrinter().Success("Alias saved", [][2]string{{alias, describeDevice(dev)}})
		return nil
	},
}

var devicesRemoveCmd = &cobra.Command{
	Use:   "remove <alias>",
	Short: "Remove an alias",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.Load()
		if err != nil {
			return err
		}
		if !reg.RemoveDevice(args[0]) {
			return sonoff.NewInvalidCommandError(fmt.Sprintf("no device named %q", args[0]))
		}
		if err := reg.Save(); err != nil {
			return err
		}
		newPrinter().Success("Alias removed", [][2]string{{"removed", args[0]}})
		return nil
	},
}

func init() {
	devicesAddCmd.Flags().StringVar(&addKind, "kind", "", "Device kind (switch, bulb, dimmer, relay, powermeter)")
	devicesAddCmd.Flags().StringVar(&addDeviceID, "id", "", "Device id sent in the request envelope")
	devicesAddCmd.Flags().StringVar(&addNickname, "nickname", "", "Friendly name")

	devicesCmd.AddCommand(devicesListCmd, devicesAddCmd, devicesRemoveCmd)
}
