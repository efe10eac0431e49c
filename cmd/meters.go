package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/wavetools/slxd/client"
	"github.com/wavetools/slxd/protocol"
)

var metersFlags = struct {
	rate int
}{}

var metersCmd = &cobra.Command{
	Use:   "meters host",
	Short: "Show live audio and RF meters for all channels.",
	Run:   meters,
}

func init() {
	metersCmd.Flags().IntVar(&metersFlags.rate, "rate", 100, "metering rate in milliseconds")
	rootCmd.AddCommand(metersCmd)
}

var (
	metersTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#FAFAFA")).
				Background(lipgloss.Color("#575B7E")).
				Padding(0, 1)

	channelTitleStyle = lipgloss.NewStyle().Bold(true)
	meterLabelStyle   = lipgloss.NewStyle().Width(9).Padding(0, 1)
	meterValueStyle   = lipgloss.NewStyle().Width(10).Align(lipgloss.Right)
	antennaStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("226"))
	footerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func meters(_ *cobra.Command, args []string) {
	hostArg := ""
	if len(args) > 0 {
		hostArg = args[0]
	}
	host, err := parseHostArg(hostArg)
	if err != nil {
		log.Fatalf("invalid host address: %v", err)
	}

	c, err := client.Open(host.IP.String(), host.Port)
	if err != nil {
		log.Fatalf("cannot connect to %s: %v", host.String(), err)
	}
	model, err := c.GetModel()
	c.Disconnect()
	if err != nil {
		log.Fatalf("cannot read the device model: %v", err)
	}
	channels := protocol.ChannelCountForModel(model)

	meter, err := client.OpenMeter(host.IP.String(), host.Port)
	if err != nil {
		log.Fatalf("cannot connect to %s: %v", host.String(), err)
	}
	defer meter.Close()
	for channel := 1; channel <= channels; channel++ {
		if err := meter.Start(channel, metersFlags.rate); err != nil {
			log.Fatalf("cannot start metering on channel %d: %v", channel, err)
		}
	}

	program := tea.NewProgram(newMetersModel(model, host.String(), channels, meter), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("cannot run the meter view: %v", err)
	}
	for channel := 1; channel <= channels; channel++ {
		meter.Stop(channel)
	}
}

type sampleMsg client.Sample

type metersModel struct {
	device   string
	host     string
	channels int
	meter    *client.Meter

	latest [protocol.MaxChannels]client.Sample
	seen   [protocol.MaxChannels]bool

	bar progress.Model
}

func newMetersModel(device, host string, channels int, meter *client.Meter) metersModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.ShowPercentage = false
	bar.Width = 40

	return metersModel{
		device:   device,
		host:     host,
		channels: channels,
		meter:    meter,
		bar:      bar,
	}
}

func waitForSample(samples <-chan client.Sample) tea.Cmd {
	return func() tea.Msg {
		sample, ok := <-samples
		if !ok {
			return tea.Quit()
		}
		return sampleMsg(sample)
	}
}

func (m metersModel) Init() tea.Cmd {
	return waitForSample(m.meter.Samples())
}

func (m metersModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		width := msg.Width - 24
		if width < 10 {
			width = 10
		}
		if width > 60 {
			width = 60
		}
		m.bar.Width = width

	case sampleMsg:
		sample := client.Sample(msg)
		if sample.Channel >= 1 && sample.Channel <= m.channels {
			m.latest[sample.Channel-1] = sample
			m.seen[sample.Channel-1] = true
		}
		return m, waitForSample(m.meter.Samples())
	}

	return m, nil
}

func (m metersModel) View() string {
	var content strings.Builder
	content.WriteString(metersTitleStyle.Render(fmt.Sprintf("%s meters  %s", m.device, m.host)) + "\n\n")

	for channel := 1; channel <= m.channels; channel++ {
		sample := m.latest[channel-1]
		content.WriteString(channelTitleStyle.Render(fmt.Sprintf("Channel %d", channel)))
		if m.seen[channel-1] {
			content.WriteString(antennaStyle.Render(fmt.Sprintf("  antenna %c", 'A'+sample.Antenna-1)))
		} else {
			content.WriteString(footerStyle.Render("  waiting for samples"))
		}
		content.WriteString("\n")
		content.WriteString(m.renderMeter("peak", sample.PeakRaw, fmt.Sprintf("%d dBFS", sample.PeakDBFS())))
		content.WriteString(m.renderMeter("rms", sample.RMSRaw, fmt.Sprintf("%d dBFS", sample.RMSDBFS())))
		content.WriteString(m.renderMeter("rssi A", sample.RSSIAntenna1Raw, fmt.Sprintf("%d dBm", sample.RSSIAntenna1DBm())))
		content.WriteString(m.renderMeter("rssi B", sample.RSSIAntenna2Raw, fmt.Sprintf("%d dBm", sample.RSSIAntenna2DBm())))
		content.WriteString("\n")
	}

	content.WriteString(footerStyle.Render("(q) to quit"))
	return content.String()
}

func (m metersModel) renderMeter(label string, raw int, value string) string {
	percent := float64(raw) / float64(protocol.MeterRawMax)
	return lipgloss.JoinHorizontal(lipgloss.Left,
		meterLabelStyle.Render(label),
		m.bar.ViewAs(percent),
		meterValueStyle.Render(value),
	) + "\n"
}
