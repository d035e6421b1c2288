package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/muurk/sonoffctl/internal/sonoff"
	"github.com/muurk/sonoffctl/internal/ui"
)

// switchableCommands builds the on/off/toggle sub-commands shared by every
// single-switch variant
func switchableCommands(kind sonoff.Kind) []*cobra.Command {
	wrap := func(s *session) sonoff.Switchable {
		s.expect(kind)
		sw, _ := kind.Switchable(s.device())
		return sw
	}

	set := func(use, short string, fn func(context.Context, sonoff.Switchable) (*sonoff.Response, error)) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: deviceRun(func(ctx context.Context, s *session, _ []string) error {
				resp, err := fn(ctx, wrap(s))
				if err != nil {
					return err
				}
				s.printResponse(fmt.Sprintf("%s %s", kind, use), resp)
				return nil
			}),
		}
	}

	return []*cobra.Command{
		set("on", "Switch on", sonoff.On),
		set("off", "Switch off", sonoff.Off),
		set("toggle", "Read the current state and switch to the opposite", sonoff.Toggle),
	}
}

func startupCommand(kind sonoff.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "startup <on|off|stay>",
		Short: "Set the state after power loss",
		Args:  cobra.ExactArgs(1),
		RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
			state, err := sonoff.ParseStartupState(args[0])
			if err != nil {
				return err
			}
			s.expect(kind)
			sw, _ := kind.Switchable(s.device())
			resp, err := sonoff.SetStartup(ctx, sw, state)
			if err != nil {
				return err
			}
			s.printResponse("Startup state set", resp)
			return nil
		}),
	}
}

// Switch

var switchCmd = &cobra.Command{
	Use:   "switch",
	Short: "Control a single-channel switch",
	Example: `  sonoffctl 192.168.1.50 switch toggle
  sonoffctl 192.168.1.50 switch pulse 1500`,
	Args: cobra.ArbitraryArgs,
	RunE: requireSubcommand,
}

var switchGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the switch state",
	Args:  cobra.NoArgs,
	RunE: deviceRun(func(ctx context.Context, s *session, _ []string) error {
		s.expect(sonoff.KindSwitch)
		st, err := sonoff.NewSwitch(s.device()).Status(ctx)
		if err != nil {
			return err
		}
		s.printer.Status("Switch", switchStatusFields(st))
		return nil
	}),
}

var switchPulseCmd = &cobra.Command{
	Use:   "pulse <milliseconds>",
	Short: "Switch back off after the given time (multiple of 500, 0 disables)",
	Args:  cobra.ExactArgs(1),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		width, err := parseUint32("pulse width", args[0])
		if err != nil {
			return err
		}
		s.expect(sonoff.KindSwitch)
		resp, err := sonoff.NewSwitch(s.device()).Pulse(ctx, width)
		if err != nil {
			return err
		}
		s.printResponse("Pulse set", resp)
		return nil
	}),
}

// Bulb

var bulbCmd = &cobra.Command{
	Use:   "bulb",
	Short: "Control a colour/white bulb",
	Example: `  sonoffctl 192.168.1.60 bulb rgb 80 255 120 1
  sonoffctl 192.168.1.60 bulb white 50 30`,
	Args: cobra.ArbitraryArgs,
	RunE: requireSubcommand,
}

var bulbGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the bulb state and colour",
	Args:  cobra.NoArgs,
	RunE: deviceRun(func(ctx context.Context, s *session, _ []string) error {
		s.expect(sonoff.KindBulb)
		st, err := sonoff.NewBulb(s.device()).Status(ctx)
		if err != nil {
			return err
		}
		fields, bars := bulbStatusFields(st)
		s.printer.Status("Bulb", fields, bars...)
		return nil
	}),
}

var bulbRGBCmd = &cobra.Command{
	Use:   "rgb <brightness> <red> <green> <blue>",
	Short: "Set an RGB colour (device accepts brightness 1-100, channels 1-255)",
	Args:  cobra.ExactArgs(4),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		br, err := parseByte("brightness", args[0])
		if err != nil {
			return err
		}
		var rgb [3]uint8
		for i, name := range []string{"red", "green", "blue"} {
			if rgb[i], err = parseByte(name, args[i+1]); err != nil {
				return err
			}
		}
		s.expect(sonoff.KindBulb)
		resp, err := sonoff.NewBulb(s.device()).Color(ctx, br, rgb[0], rgb[1], rgb[2])
		if err != nil {
			return err
		}
		s.printResponse("Colour set", resp)
		return nil
	}),
}

var bulbWhiteCmd = &cobra.Command{
	Use:   "white <brightness> <temperature>",
	Short: "Set white light (device accepts brightness 1-100, temperature 0-100)",
	Args:  cobra.ExactArgs(2),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		br, err := parseByte("brightness", args[0])
		if err != nil {
			return err
		}
		ct, err := parseByte("temperature", args[1])
		if err != nil {
			return err
		}
		s.expect(sonoff.KindBulb)
		resp, err := sonoff.NewBulb(s.device()).White(ctx, br, ct)
		if err != nil {
			return err
		}
		s.printResponse("White set", resp)
		return nil
	}),
}

var bulbDimCmd = &cobra.Command{
	Use:   "dim <brightness>",
	Short: "Set white light at the given brightness",
	Args:  cobra.ExactArgs(1),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		br, err := parseByte("brightness", args[0])
		if err != nil {
			return err
		}
		s.expect(sonoff.KindBulb)
		resp, err := sonoff.NewBulb(s.device()).Dim(ctx, br)
		if err != nil {
			return err
		}
		s.printResponse("Brightness set", resp)
		return nil
	}),
}

func bulbStatusFields(st *sonoff.BulbStatus) ([][2]string, []ui.Bar) {
	fields := [][2]string{{"switch", string(st.Switch)}}
	switch m := st.Mode.(type) {
	case sonoff.Color:
		fields = append(fields,
			[2]string{"ltype", string(sonoff.LampColor)},
			[2]string{"brightness", strconv.Itoa(int(m.Br))},
			[2]string{"red", strconv.Itoa(int(m.R))},
			[2]string{"green", strconv.Itoa(int(m.G))},
			[2]string{"blue", strconv.Itoa(int(m.B))},
		)
		return fields, []ui.Bar{ui.BrightnessBar("brightness", int(m.Br))}
	case sonoff.White:
		fields = append(fields,
			[2]string{"ltype", string(sonoff.LampWhite)},
			[2]string{"brightness", strconv.Itoa(int(m.Br))},
			[2]string{"temperature", strconv.Itoa(int(m.CT))},
		)
		return fields, []ui.Bar{
			ui.BrightnessBar("brightness", int(m.Br)),
			{Label: "temperature", Value: int(m.CT), Max: 100},
		}
	}
	return fields, nil
}

// Dimmer

var dimmerCmd = &cobra.Command{
	Use:     "dimmer",
	Short:   "Control a wall dimmer",
	Example: `  sonoffctl 192.168.1.70 dimmer dim 40`,
	Args:    cobra.ArbitraryArgs,
	RunE:    requireSubcommand,
}

var dimmerGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the dimmer state",
	Args:  cobra.NoArgs,
	RunE: deviceRun(func(ctx context.Context, s *session, _ []string) error {
		s.expect(sonoff.KindDimmer)
		st, err := sonoff.NewDimmer(s.device()).Status(ctx)
		if err != nil {
			return err
		}
		fields, bars := dimmerStatusFields(st)
		s.printer.Status("Dimmer", fields, bars...)
		return nil
	}),
}

var dimmerDimCmd = &cobra.Command{
	Use:   "dim <brightness>",
	Short: "Switch on at the given brightness (device accepts 0-100)",
	Args:  cobra.ExactArgs(1),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		br, err := parseByte("brightness", args[0])
		if err != nil {
			return err
		}
		s.expect(sonoff.KindDimmer)
		resp, err := sonoff.NewDimmer(s.device()).Dim(ctx, br)
		if err != nil {
			return err
		}
		s.printResponse("Brightness set", resp)
		return nil
	}),
}

func dimmerStatusFields(st *sonoff.DimmerStatus) ([][2]string, []ui.Bar) {
	return [][2]string{
		{"switch", string(st.Switch)},
		{"startup", string(st.Startup)},
		{"brightness", strconv.Itoa(int(st.Brightness))},
		{"mode", strconv.Itoa(int(st.Mode))},
		{"brightmin", strconv.Itoa(int(st.BrightMin))},
		{"brightmax", strconv.Itoa(int(st.BrightMax))},
	}, []ui.Bar{ui.BrightnessBar("brightness", int(st.Brightness))}
}

// Relay

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Control the outlets of a multi-outlet relay",
	Long: `Control individual outlets of a multi-outlet relay.

Each command changes only the outlet it names.`,
	Example: `  sonoffctl 192.168.1.80 relay switch 2 on
  sonoffctl 192.168.1.80 relay pulse 0 on 2000`,
	Args: cobra.ArbitraryArgs,
	RunE: requireSubcommand,
}

var relayGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show every outlet",
	Args:  cobra.NoArgs,
	RunE: deviceRun(func(ctx context.Context, s *session, _ []string) error {
		s.expect(sonoff.KindRelay)
		st, err := sonoff.NewRelay(s.device()).Status(ctx)
		if err != nil {
			return err
		}
		s.printer.Status("Relay", relayStatusFields(st))
		return nil
	}),
}

var relaySwitchCmd = &cobra.Command{
	Use:   "switch <outlet> <on|off>",
	Short: "Switch one outlet",
	Args:  cobra.ExactArgs(2),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		outlet, err := parseByte("outlet", args[0])
		if err != nil {
			return err
		}
		state, err := sonoff.ParseSwitchState(args[1])
		if err != nil {
			return err
		}
		s.expect(sonoff.KindRelay)
		resp, err := sonoff.NewRelay(s.device()).SetSwitches(ctx,
			[]sonoff.OutletSwitch{{Outlet: outlet, Switch: state}})
		if err != nil {
			return err
		}
		s.printResponse("Outlet switched", resp)
		return nil
	}),
}

var relayStartupCmd = &cobra.Command{
	Use:   "startup <outlet> <on|off|stay>",
	Short: "Set one outlet's state after power loss",
	Args:  cobra.ExactArgs(2),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		outlet, err := parseByte("outlet", args[0])
		if err != nil {
			return err
		}
		state, err := sonoff.ParseStartupState(args[1])
		if err != nil {
			return err
		}
		s.expect(sonoff.KindRelay)
		resp, err := sonoff.NewRelay(s.device()).SetStartups(ctx,
			[]sonoff.OutletStartup{{Outlet: outlet, Startup: state}})
		if err != nil {
			return err
		}
		s.printResponse("Startup state set", resp)
		return nil
	}),
}

var relayPulseCmd = &cobra.Command{
	Use:   "pulse <outlet> <on|off> <milliseconds>",
	Short: "Configure inching on one outlet (width a multiple of 500)",
	Args:  cobra.ExactArgs(3),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		outlet, err := parseByte("outlet", args[0])
		if err != nil {
			return err
		}
		pulse, err := sonoff.ParseSwitchState(args[1])
		if err != nil {
			return err
		}
		width, err := parseUint32("pulse width", args[2])
		if err != nil {
			return err
		}
		s.expect(sonoff.KindRelay)
		resp, err := sonoff.NewRelay(s.device()).SetPulses(ctx, []sonoff.OutletPulse{{
			Outlet: outlet,
			Pulse:  pulse,
			Switch: sonoff.SwitchOn,
			Width:  width,
		}})
		if err != nil {
			return err
		}
		s.printResponse("Pulse set", resp)
		return nil
	}),
}

func relayStatusFields(st *sonoff.RelayData) [][2]string {
	var fields [][2]string
	for _, sw := range st.Switches {
		fields = append(fields, [2]string{fmt.Sprintf("outlet_%d", sw.Outlet), string(sw.Switch)})
	}
	for _, c := range st.Configure {
		fields = append(fields, [2]string{fmt.Sprintf("startup_%d", c.Outlet), string(c.Startup)})
	}
	for _, p := range st.Pulses {
		fields = append(fields, [2]string{fmt.Sprintf("pulse_%d", p.Outlet),
			fmt.Sprintf("%s %dms", p.Pulse, p.Width)})
	}
	return fields
}

// Power meter

var meterCmd = &cobra.Command{
	Use:   "meter",
	Short: "Query and switch a power-metering hub",
	Example: `  sonoffctl 192.168.1.90 meter subdevs
  sonoffctl 192.168.1.90 meter subdev a4e57c0001
  sonoffctl 192.168.1.90 meter switch a4e57c0001 1 off`,
	Args: cobra.ArbitraryArgs,
	RunE: requireSubcommand,
}

var meterSubdevsCmd = &cobra.Command{
	Use:   "subdevs",
	Short: "List the hub's sub-devices",
	Args:  cobra.NoArgs,
	RunE: deviceRun(func(ctx context.Context, s *session, _ []string) error {
		s.expect(sonoff.KindPowerMeter)
		subs, err := sonoff.NewPowerMeter(s.device()).SubDevices(ctx)
		if err != nil {
			return err
		}
		fields := make([][2]string, 0, len(subs))
		for _, sub := range subs {
			fields = append(fields, [2]string{sub.SubDevID, strconv.Itoa(sub.Type)})
		}
		s.printer.Status("Sub-devices", fields)
		return nil
	}),
}

var meterStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the hub's own status",
	Args:  cobra.NoArgs,
	RunE: deviceRun(func(ctx context.Context, s *session, _ []string) error {
		s.expect(sonoff.KindPowerMeter)
		st, err := sonoff.NewPowerMeter(s.device()).Status(ctx)
		if err != nil {
			return err
		}
		s.printer.Status("Power meter "+st.DeviceID, [][2]string{
			{"deviceid", st.DeviceID},
			{"ssid", st.SSID},
			{"bssid", st.BSSID},
			{"signal_strength", strconv.Itoa(st.SignalStrength)},
			{"fw_version", st.FWVersion},
			{"subchip_fw_version", st.SubChipFWVer},
			{"sled_online", st.SledOnline},
			{"wifi_connected", strconv.FormatBool(st.WiFiConnected)},
		})
		return nil
	}),
}

var meterSubdevCmd = &cobra.Command{
	Use:   "subdev <id>",
	Short: "Show the readings of one sub-device",
	Args:  cobra.ExactArgs(1),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		s.expect(sonoff.KindPowerMeter)
		st, err := sonoff.NewPowerMeter(s.device()).SubDevStatus(ctx, args[0])
		if err != nil {
			return err
		}
		s.printer.Status("Sub-device "+args[0], subDevFields(st))
		return nil
	}),
}

var meterSwitchCmd = &cobra.Command{
	Use:   "switch <id> <outlet> <on|off>",
	Short: "Switch one outlet of a sub-device",
	Args:  cobra.ExactArgs(3),
	RunE: deviceRun(func(ctx context.Context, s *session, args []string) error {
		outlet, err := parseByte("outlet", args[1])
		if err != nil {
			return err
		}
		state, err := sonoff.ParseSwitchState(args[2])
		if err != nil {
			return err
		}
		s.expect(sonoff.KindPowerMeter)
		resp, err := sonoff.NewPowerMeter(s.device()).SetSwitches(ctx, args[0],
			[]sonoff.OutletSwitch{{Outlet: outlet, Switch: state}})
		if err != nil {
			return err
		}
		s.printResponse("Outlet switched", resp)
		return nil
	}),
}

func subDevFields(st *sonoff.SubDevStatus) [][2]string {
	fields := [][2]string{{"fw_version", st.FWVersion}}
	for _, sw := range st.Switches {
		fields = append(fields, [2]string{fmt.Sprintf("outlet_%d", sw.Outlet), string(sw.Switch)})
	}
	for ch := 0; ch < sonoff.ChannelCount; ch++ {
		r := st.Readings[ch]
		prefix := fmt.Sprintf("ch%d_", ch)
		fields = append(fields,
			[2]string{prefix + "ok", strconv.FormatBool(st.FaultState.ChannelOK(ch))},
			[2]string{prefix + "voltage", strconv.FormatUint(uint64(r.Voltage), 10)},
			[2]string{prefix + "current", strconv.FormatUint(uint64(r.Current), 10)},
			[2]string{prefix + "act_pow", strconv.FormatUint(uint64(r.ActPow), 10)},
			[2]string{prefix + "react_pow", strconv.FormatUint(uint64(r.ReactPow), 10)},
			[2]string{prefix + "apparent_pow", strconv.FormatUint(uint64(r.ApparentPow), 10)},
		)
	}
	return fields
}

func init() {
	switchCmd.AddCommand(switchableCommands(sonoff.KindSwitch)...)
	switchCmd.AddCommand(switchGetCmd, switchPulseCmd, startupCommand(sonoff.KindSwitch))

	bulbCmd.AddCommand(switchableCommands(sonoff.KindBulb)...)
	bulbCmd.AddCommand(bulbGetCmd, bulbRGBCmd, bulbWhiteCmd, bulbDimCmd)

	dimmerCmd.AddCommand(switchableCommands(sonoff.KindDimmer)...)
	dimmerCmd.AddCommand(dimmerGetCmd, dimmerDimCmd, startupCommand(sonoff.KindDimmer))

	relayCmd.AddCommand(relayGetCmd, relaySwitchCmd, relayStartupCmd, relayPulseCmd)

	meterCmd.AddCommand(meterSubdevsCmd, meterStatusCmd, meterSubdevCmd, meterSwitchCmd)
}
