package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"medbox-server/entities"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type step int

const (
	stepLoadingDevices step = iota
	stepSelectingDevice
	stepLoadingDetail
	stepViewingDevice
	stepEnteringName
	stepEnteringQty
	stepEnteringHour
	stepEnteringMinute
	stepEnteringLed
	stepSendingCommand
)

type deviceDetail struct {
	Snapshot *entities.Snapshot
	Pending  []entities.Command
}

type model struct {
	serverURL    string
	step         step
	devices      []entities.DeviceRow
	cursor       int
	selected     *entities.DeviceRow
	detail       deviceDetail
	currentInput string
	draft        struct {
		Name   string
		Qty    int
		Hour   int
		Minute int
		Led    int
	}
	message  string
	quitting bool
}

type devicesLoadedMsg []entities.DeviceRow
type detailLoadedMsg deviceDetail
type commandQueuedMsg struct{}
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func serverURL() string {
	if v := os.Getenv("MEDBOX_SERVER"); v != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://localhost:8000"
}

func initialModel() model {
	return model{
		serverURL: serverURL(),
		step:      stepLoadingDevices,
	}
}

func (m model) Init() tea.Cmd {
	return loadDevices(m.serverURL)
}

func loadDevices(base string) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 10 * time.Second}
		resp, err := client.Get(base + "/api/v1/devices")
		if err != nil {
			return errMsg{fmt.Errorf("server not reachable: %w", err)}
		}
		defer resp.Body.Close()

		var body struct {
			Data []entities.DeviceRow `json:"data"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return errMsg{fmt.Errorf("bad device list: %w", err)}
		}
		return devicesLoadedMsg(body.Data)
	}
}

func loadDetail(base, deviceID string) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 10 * time.Second}

		var detail deviceDetail

		resp, err := client.Get(base + "/medbox/" + deviceID + "/snapshot")
		if err != nil {
			return errMsg{fmt.Errorf("snapshot fetch failed: %w", err)}
		}
		if resp.StatusCode == http.StatusOK {
			var snap entities.Snapshot
			if err := json.NewDecoder(resp.Body).Decode(&snap); err == nil {
				detail.Snapshot = &snap
			}
		}
		resp.Body.Close()

		resp, err = client.Get(base + "/medbox/" + deviceID + "/pending")
		if err != nil {
			return errMsg{fmt.Errorf("pending fetch failed: %w", err)}
		}
		defer resp.Body.Close()
		var body struct {
			Pending []entities.Command `json:"pending"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return errMsg{fmt.Errorf("bad pending list: %w", err)}
		}
		detail.Pending = body.Pending

		return detailLoadedMsg(detail)
	}
}

func queueAddCommand(base, deviceID, name string, qty, hour, minute, led int) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 10 * time.Second}

		payload := map[string]interface{}{
			"name":   name,
			"qty":    qty,
			"hour":   hour,
			"minute": minute,
			"led":    led,
		}
		b, _ := json.Marshal(payload)

		resp, err := client.Post(base+"/medbox/"+deviceID+"/command/add", "application/json", bytes.NewBuffer(b))
		if err != nil {
			return errMsg{fmt.Errorf("failed to queue command: %w", err)}
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return errMsg{fmt.Errorf("server returned %d", resp.StatusCode)}
		}
		return commandQueuedMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.step != stepEnteringName {
				m.quitting = true
				return m, tea.Quit
			}
			m.currentInput += "q"

		case "up", "k":
			if m.step == stepSelectingDevice && m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.step == stepSelectingDevice && m.cursor < len(m.devices)-1 {
				m.cursor++
			}

		case "r":
			if m.step == stepSelectingDevice {
				m.step = stepLoadingDevices
				return m, loadDevices(m.serverURL)
			}

		case "a":
			if m.step == stepViewingDevice {
				m.currentInput = ""
				m.step = stepEnteringName
				return m, nil
			}

		case "esc", "b":
			if m.step == stepViewingDevice {
				m.selected = nil
				m.step = stepLoadingDevices
				return m, loadDevices(m.serverURL)
			}

		case "backspace":
			if len(m.currentInput) > 0 {
				m.currentInput = m.currentInput[:len(m.currentInput)-1]
			}

		case "enter":
			return m.handleEnter()

		default:
			if m.inputStep() {
				m.currentInput += msg.String()
			}
		}

	case devicesLoadedMsg:
		m.devices = []entities.DeviceRow(msg)
		m.cursor = 0
		m.step = stepSelectingDevice

	case detailLoadedMsg:
		m.detail = deviceDetail(msg)
		m.step = stepViewingDevice

	case commandQueuedMsg:
		m.message = successStyle.Render("Command queued")
		m.step = stepLoadingDetail
		return m, loadDetail(m.serverURL, m.selected.DeviceID)

	case errMsg:
		m.message = errorStyle.Render(msg.err.Error())
		if m.selected != nil {
			m.step = stepViewingDevice
		} else {
			m.step = stepSelectingDevice
		}
	}

	return m, nil
}

func (m model) inputStep() bool {
	switch m.step {
	case stepEnteringName, stepEnteringQty, stepEnteringHour, stepEnteringMinute, stepEnteringLed:
		return true
	}
	return false
}

func (m model) handleEnter() (tea.Model, tea.Cmd) {
	switch m.step {
	case stepSelectingDevice:
		if len(m.devices) > 0 {
			m.selected = &m.devices[m.cursor]
			m.message = ""
			m.step = stepLoadingDetail
			return m, loadDetail(m.serverURL, m.selected.DeviceID)
		}

	case stepEnteringName:
		if m.currentInput != "" {
			m.draft.Name = m.currentInput
			m.currentInput = ""
			m.step = stepEnteringQty
		}

	case stepEnteringQty:
		if v, err := strconv.Atoi(m.currentInput); err == nil && v > 0 {
			m.draft.Qty = v
			m.currentInput = ""
			m.step = stepEnteringHour
		}

	case stepEnteringHour:
		if v, err := strconv.Atoi(m.currentInput); err == nil && v >= 0 && v <= 23 {
			m.draft.Hour = v
			m.currentInput = ""
			m.step = stepEnteringMinute
		}

	case stepEnteringMinute:
		if v, err := strconv.Atoi(m.currentInput); err == nil && v >= 0 && v <= 59 {
			m.draft.Minute = v
			m.currentInput = ""
			m.step = stepEnteringLed
		}

	case stepEnteringLed:
		if v, err := strconv.Atoi(m.currentInput); err == nil && v >= 0 {
			m.draft.Led = v
			m.currentInput = ""
			m.step = stepSendingCommand
			return m, queueAddCommand(m.serverURL, m.selected.DeviceID,
				m.draft.Name, m.draft.Qty, m.draft.Hour, m.draft.Minute, m.draft.Led)
		}
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("MedBox Admin") + "\n\n")

	if m.message != "" {
		s.WriteString(m.message + "\n\n")
	}

	switch m.step {
	case stepLoadingDevices:
		s.WriteString("Loading devices...\n")

	case stepSelectingDevice:
		if len(m.devices) == 0 {
			s.WriteString("No devices known to the server yet.\n")
			s.WriteString(dimStyle.Render("r to refresh, q to quit") + "\n")
			break
		}
		s.WriteString(promptStyle.Render("Select a device:") + "\n\n")
		for i, d := range m.devices {
			cursor := " "
			style := normalStyle
			if m.cursor == i {
				cursor = ">"
				style = selectedStyle
			}
			online := ""
			if d.Online {
				online = successStyle.Render(" ●")
			}
			s.WriteString(fmt.Sprintf("%s %s (%s, %d meds, %d pending)%s\n",
				cursor, style.Render(d.FriendlyName), d.DeviceID, d.MedsCount, d.PendingCount, online))
		}
		s.WriteString("\n" + dimStyle.Render("↑/↓ select, Enter open, r refresh, q quit") + "\n")

	case stepLoadingDetail:
		s.WriteString("Loading device state...\n")

	case stepViewingDevice:
		s.WriteString(promptStyle.Render("Device: "+m.selected.FriendlyName) + "  " + dimStyle.Render(m.selected.DeviceID) + "\n\n")
		if m.detail.Snapshot != nil {
			s.WriteString(fmt.Sprintf("Snapshot (%d meds):\n", m.detail.Snapshot.Count))
			for _, med := range m.detail.Snapshot.Meds {
				state := "on"
				if !med.Enabled {
					state = "off"
				}
				s.WriteString(fmt.Sprintf("  #%d %s x%d at %02d:%02d led=%d [%s]\n",
					med.ID, med.Name, med.Qty, med.Hour, med.Minute, med.Led, state))
			}
		} else {
			s.WriteString("No snapshot uploaded yet.\n")
		}
		s.WriteString(fmt.Sprintf("\nPending commands: %d\n", len(m.detail.Pending)))
		for i, cmd := range m.detail.Pending {
			s.WriteString(fmt.Sprintf("  %d. %s\n", i+1, cmd.Op))
		}
		s.WriteString("\n" + dimStyle.Render("a add command, b back, q quit") + "\n")

	case stepEnteringName:
		s.WriteString(promptStyle.Render("Medicine name:") + "\n")
		s.WriteString(inputStyle.Render("> "+m.currentInput) + "\n")

	case stepEnteringQty:
		s.WriteString(promptStyle.Render("Quantity per dose:") + "\n")
		s.WriteString(inputStyle.Render("> "+m.currentInput) + "\n")

	case stepEnteringHour:
		s.WriteString(promptStyle.Render("Hour (0-23):") + "\n")
		s.WriteString(inputStyle.Render("> "+m.currentInput) + "\n")

	case stepEnteringMinute:
		s.WriteString(promptStyle.Render("Minute (0-59):") + "\n")
		s.WriteString(inputStyle.Render("> "+m.currentInput) + "\n")

	case stepEnteringLed:
		s.WriteString(promptStyle.Render("LED slot:") + "\n")
		s.WriteString(inputStyle.Render("> "+m.currentInput) + "\n")

	case stepSendingCommand:
		s.WriteString("Queuing command...\n")
	}

	return s.String()
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
