// Command syntacts is an interactive demo driving a Session: list output
// devices, load a cue bank, open a stream, and play/stop/pause/volume
// cues from the keyboard.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/doismellburning/syntacts/config"
	"github.com/doismellburning/syntacts/device"
	"github.com/doismellburning/syntacts/internal/logging"
	"github.com/doismellburning/syntacts/session"
	"github.com/lestrrat-go/strftime"
	"github.com/pkg/term"
	"github.com/spf13/pflag"
)

func main() {
	var listDevices = pflag.Bool("list-devices", false, "List available output devices and exit.")
	var cueBankPath = pflag.StringP("cue-bank", "b", "", "Path to a cue bank YAML file.")
	var deviceName = pflag.StringP("device", "d", "", "Output device name substring; empty for default device.")
	var channels = pflag.IntP("channels", "c", 0, "Number of channels to open; 0 for device max.")
	var rate = pflag.Float64P("rate", "r", 0, "Sample rate to open; 0 for device default.")
	pflag.Parse()

	var log = logging.New("syntacts")

	var s, err = session.New()
	if err != nil {
		log.Error("failed to construct session", "err", err)
		os.Exit(1)
	}
	defer func() { _ = s.Shutdown() }()

	if *listDevices {
		printDevices(s)
		return
	}

	var dev, devErr = chooseDevice(s, *deviceName)
	if devErr != nil {
		log.Error("no matching device", "err", devErr)
		os.Exit(1)
	}

	var wantChannels = *channels
	if wantChannels <= 0 {
		wantChannels = dev.MaxChannels
	}

	if err := s.Open(dev, wantChannels, *rate); err != nil {
		log.Error("failed to open session", "err", err)
		os.Exit(1)
	}
	defer func() { _ = s.Close() }()

	log.Info("session open", "device", dev.Name, "channels", s.GetChannelCount(), "rate", s.GetSampleRate())

	var bank *config.CueBank
	if *cueBankPath != "" {
		bank, err = config.Load(*cueBankPath)
		if err != nil {
			log.Error("failed to load cue bank", "err", err)
			os.Exit(1)
		}
		log.Info("cue bank loaded", "cues", len(bank.Cues))
	}

	runInteractive(s, bank, log)
}

func chooseDevice(s *session.Session, nameFilter string) (device.Device, error) {
	if nameFilter == "" {
		if d, ok := s.GetDefaultDevice(); ok {
			return d, nil
		}
		var all = s.GetAvailableDevices()
		if len(all) == 0 {
			return device.None, fmt.Errorf("no output devices available")
		}
		return all[0], nil
	}

	for _, d := range s.GetAvailableDevices() {
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(nameFilter)) {
			return d, nil
		}
	}
	return device.None, fmt.Errorf("no device matching %q", nameFilter)
}

func printDevices(s *session.Session) {
	for _, d := range s.GetAvailableDevices() {
		var marker = " "
		if d.IsDefaultDevice {
			marker = "*"
		}
		fmt.Printf("%s [%d] %-40s api=%s channels=%d rates=%v\n", marker, d.Index, d.Name, d.APIName, d.MaxChannels, d.SampleRates)
	}
}

func runInteractive(s *session.Session, bank *config.CueBank, log *logging.Logger) {
	var tty, err = term.Open("/dev/tty", term.RawMode)
	if err != nil {
		log.Warn("could not open controlling terminal for raw keyboard input; interactive mode disabled", "err", err)
		return
	}
	defer func() { _ = tty.Restore(); _ = tty.Close() }()

	fmt.Println("syntacts interactive mode — digits play a cue on that channel, p/r pause/resume channel 0, s stops all, +/- volume on channel 0, q quits")
	if bank != nil {
		for i, name := range bank.Order {
			fmt.Printf("  %d -> %s\n", i, name)
		}
	}

	var buf = make([]byte, 1)
	var volume = 1.0
	for {
		var n, readErr = tty.Read(buf)
		if readErr != nil || n == 0 {
			return
		}

		var stamp, _ = strftime.Format("%H:%M:%S", time.Now())

		switch c := buf[0]; {
		case c == 'q':
			log.Info(stamp + " quitting")
			return
		case c == 's':
			log.Info(stamp + " stop all")
			_ = s.StopAll()
		case c == 'p':
			log.Info(stamp + " pause channel 0")
			_ = s.Pause(0)
		case c == 'r':
			log.Info(stamp + " resume channel 0")
			_ = s.Resume(0)
		case c == '+':
			volume += 0.1
			log.Info(stamp+" volume up", "volume", volume)
			_ = s.SetVolume(0, volume)
		case c == '-':
			volume -= 0.1
			log.Info(stamp+" volume down", "volume", volume)
			_ = s.SetVolume(0, volume)
		case c >= '0' && c <= '9':
			var idx = int(c - '0')
			if bank == nil || idx >= len(bank.Order) {
				continue
			}
			var name = bank.Order[idx]
			log.Info(stamp+" play", "cue", name, "channel", idx%s.GetChannelCount())
			_ = s.Play(idx%s.GetChannelCount(), bank.Cues[name], 0)
		}
	}
}
