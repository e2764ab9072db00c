package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/dawg-ai/claphost/internal/core/host"
	"github.com/dawg-ai/claphost/internal/infrastructure/discovery"
	"github.com/dawg-ai/claphost/internal/interfaces/di"
)

// dashboardFlags holds command-line flags for the dashboard command.
type dashboardFlags struct {
	refreshRate time.Duration
	maxPlugins  int
}

// newDashboardCommand launches an interactive terminal view of the
// plugin registry. Every library discovered in the configured plugin
// directories is loaded, and the keyboard drives lifecycle commands
// against the selected plugin.
func newDashboardCommand(container *di.Container) *cobra.Command {
	flags := &dashboardFlags{}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive terminal view of the plugin registry",
		Long: `Dashboard loads the plugin libraries found in the configured
directories and shows them live, one row per handle. Lifecycle
commands run against the selected row:

  i  initialize      a  activate       s  start/stop processing
  d  deactivate      u  unload         q  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), container, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.refreshRate, "refresh", 500*time.Millisecond, "Refresh rate for live updates")
	cmd.Flags().IntVar(&flags.maxPlugins, "max-plugins", 16, "Maximum number of libraries to load")

	return cmd
}

// runDashboard loads the discovered plugins and starts the Bubble Tea
// program. Everything still loaded is unloaded on exit.
func runDashboard(ctx context.Context, container *di.Container, flags *dashboardFlags) error {
	files := discovery.Scan(container.Config.PluginDirs)
	if len(files) > flags.maxPlugins {
		files = files[:flags.maxPlugins]
	}

	for _, file := range files {
		if _, err := container.Host.LoadPlugin(ctx, file.Path); err != nil {
			container.Logger.Warn("skipping library", "path", file.Path, "error", err)
		}
	}
	defer container.Host.Close(context.Background())

	model := newDashboardModel(container, flags)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	return nil
}

// dashboardModel holds the state for the Bubble Tea dashboard.
type dashboardModel struct {
	container   *di.Container
	flags       *dashboardFlags
	plugins     []host.PluginStatus
	selectedRow int
	lastUpdate  time.Time
	lastAction  string
	windowWidth int
}

type tickMsg time.Time

func newDashboardModel(container *di.Container, flags *dashboardFlags) dashboardModel {
	return dashboardModel{
		container:  container,
		flags:      flags,
		plugins:    container.Host.Snapshot(),
		lastUpdate: time.Now(),
	}
}

func (m dashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.flags.refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements the Bubble Tea init method.
func (m dashboardModel) Init() tea.Cmd {
	return m.tickCmd()
}

// Update implements the Bubble Tea update method.
func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.selectedRow > 0 {
				m.selectedRow--
			}
			return m, nil

		case "down", "j":
			if m.selectedRow < len(m.plugins)-1 {
				m.selectedRow++
			}
			return m, nil

		case "i", "a", "s", "d", "u":
			m.lastAction = m.runCommand(msg.String())
			m.refresh()
			return m, nil
		}

	case tickMsg:
		m.refresh()
		return m, m.tickCmd()
	}

	return m, nil
}

// refresh re-reads the registry snapshot and clamps the selection.
func (m *dashboardModel) refresh() {
	m.plugins = m.container.Host.Snapshot()
	if m.selectedRow >= len(m.plugins) {
		m.selectedRow = len(m.plugins) - 1
	}
	if m.selectedRow < 0 {
		m.selectedRow = 0
	}
	m.lastUpdate = time.Now()
}

// runCommand issues one lifecycle command against the selected plugin
// and returns a one-line result for the footer.
func (m *dashboardModel) runCommand(key string) string {
	if m.selectedRow >= len(m.plugins) {
		return "no plugin selected"
	}
	selected := m.plugins[m.selectedRow]
	h := m.container.Host
	cfg := m.container.Config

	switch key {
	case "i":
		ok, err := h.Initialize(selected.Handle)
		return commandResult("initialize", selected.Handle, ok, err)
	case "a":
		ok, err := h.Activate(selected.Handle, cfg.SampleRate, cfg.MinFrames, cfg.MaxFrames)
		return commandResult("activate", selected.Handle, ok, err)
	case "s":
		if selected.State == host.StateProcessing {
			err := h.StopProcessing(selected.Handle)
			return commandResult("stop", selected.Handle, err == nil, err)
		}
		ok, err := h.StartProcessing(selected.Handle)
		return commandResult("start", selected.Handle, ok, err)
	case "d":
		err := h.Deactivate(selected.Handle)
		return commandResult("deactivate", selected.Handle, err == nil, err)
	case "u":
		err := h.UnloadPlugin(selected.Handle)
		return commandResult("unload", selected.Handle, err == nil, err)
	}
	return ""
}

func commandResult(command string, handle host.Handle, ok bool, err error) string {
	if err != nil {
		return fmt.Sprintf("%s #%d: %v", command, handle, err)
	}
	if !ok {
		return fmt.Sprintf("%s #%d: refused (wrong state?)", command, handle)
	}
	return fmt.Sprintf("%s #%d: ok", command, handle)
}

// View implements the Bubble Tea view method.
func (m dashboardModel) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderTable(),
		m.renderFooter(),
	)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	headerRowStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("245"))

	selectedRowStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("229")).
				Background(lipgloss.Color("57"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

// stateColors maps lifecycle states to display colors.
var stateColors = map[host.LifecycleState]lipgloss.Color{
	host.StateLoaded:      lipgloss.Color("245"),
	host.StateInitialized: lipgloss.Color("75"),
	host.StateActivated:   lipgloss.Color("220"),
	host.StateProcessing:  lipgloss.Color("46"),
}

func (m dashboardModel) renderHeader() string {
	title := titleStyle.Render("claphost dashboard")
	info := fmt.Sprintf("  plugins: %d | updated: %s | refresh: %v",
		len(m.plugins),
		m.lastUpdate.Format("15:04:05"),
		m.flags.refreshRate,
	)
	return lipgloss.JoinHorizontal(lipgloss.Left, title, info) + "\n"
}

func (m dashboardModel) renderTable() string {
	if len(m.plugins) == 0 {
		return "\n  (no plugins loaded)\n"
	}

	var b strings.Builder
	b.WriteString(headerRowStyle.Render(
		fmt.Sprintf("  %-8s %-32s %-24s %-12s", "HANDLE", "PLUGIN", "VENDOR", "STATE")))
	b.WriteString("\n")

	for i, plugin := range m.plugins {
		stateStyle := lipgloss.NewStyle().Foreground(stateColors[plugin.State])
		row := fmt.Sprintf("  %-8d %-32s %-24s %s",
			plugin.Handle,
			truncate(plugin.Descriptor.Name, 32),
			truncate(plugin.Descriptor.Vendor, 24),
			stateStyle.Render(string(plugin.State)),
		)
		if i == m.selectedRow {
			row = selectedRowStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}
	return b.String()
}

func (m dashboardModel) renderFooter() string {
	controls := "i init | a activate | s start/stop | d deactivate | u unload | ↑/↓ select | q quit"
	if m.lastAction != "" {
		controls = m.lastAction + "\n" + controls
	}
	return "\n" + footerStyle.Render(controls)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
