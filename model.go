package main

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qsimterm/sim"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusRegister focus = iota
	focusMenu
	focusSelectTarget
	focusSelectControl
	focusInputParam
	focusInputShots
)

const (
	minQubits = 1
	maxQubits = 10

	defaultShots = 1024
)

// Model represents the TUI application state. Every register access goes
// through the sim registry, so the explorer exercises the same handle-based
// surface a host process would.
type Model struct {
	reg       *sim.Registry
	cur       sim.Handle
	numQubits int

	snap    sim.Handle
	hasSnap bool

	cursorQubit int
	width       int
	height      int
	focus       focus
	statusMsg   string

	// Menu state
	menuCat  int
	menuItem int

	// Gate placement state (for multi-qubit and parameterized gates)
	pendingGate   string
	pendingParams []float64
	targetQubit   int
	controlQubits []int

	paramInput textinput.Model
	shotsInput textinput.Model

	history   []string
	counts    map[string]int
	lastShots int
}

func initialModel(rng *rand.Rand) Model {
	pi := textinput.New()
	pi.Placeholder = "pi/2"
	pi.CharLimit = 48
	pi.Width = 24

	si := textinput.New()
	si.Placeholder = strconv.Itoa(defaultShots)
	si.CharLimit = 8
	si.Width = 24

	reg := sim.NewRegistry(rng)
	h, _ := reg.Create(3)

	return Model{
		reg:        reg,
		cur:        h,
		numQubits:  3,
		paramInput: pi,
		shotsInput: si,
		focus:      focusRegister,
	}
}

// resetRegister replaces the current register with a fresh |00...0⟩ of n
// qubits. Measurement counts and gate history refer to the old register, so
// they are dropped.
func (m *Model) resetRegister(n int) {
	m.reg.Destroy(m.cur)
	h, err := m.reg.Create(n)
	if err != nil {
		m.statusMsg = err.Error()
		return
	}
	m.cur = h
	m.numQubits = n
	m.cursorQubit = min(m.cursorQubit, n-1)
	m.history = nil
	m.counts = nil
	m.lastShots = 0
}

// clearPending resets multi-step gate placement state.
func (m *Model) clearPending() {
	m.pendingGate = ""
	m.pendingParams = nil
	m.controlQubits = nil
}

// placeGate applies the pending gate through the registry. The cursor qubit
// is the first qubit (control for two-qubit gates, first control for CCX);
// targetQ is -1 for single-qubit gates.
func (m *Model) placeGate(gateType string, targetQ int) bool {
	var qubits []int
	switch gateType {
	case "CNOT", "CZ", "SWAP", "CP":
		qubits = []int{m.cursorQubit, targetQ}
	case "CCX":
		qubits = append([]int{m.cursorQubit}, append(m.controlQubits, targetQ)...)
	default:
		qubits = []int{m.cursorQubit}
	}

	err := m.reg.Apply(m.cur, gateType, qubits, m.pendingParams)
	if err != nil {
		m.statusMsg = err.Error()
		m.clearPending()
		return false
	}

	m.history = append(m.history, describeGate(gateType, qubits, m.pendingParams))
	m.statusMsg = fmt.Sprintf("Applied %s", m.history[len(m.history)-1])
	m.clearPending()
	return true
}

// describeGate formats an applied gate for the history panel, e.g.
// "RX(pi/2) q[1]" or "CNOT q[0]→q[1]".
func describeGate(gateType string, qubits []int, params []float64) string {
	name := gateType
	if len(params) > 0 {
		parts := make([]string, len(params))
		for i, p := range params {
			parts[i] = formatParam(p)
		}
		name = fmt.Sprintf("%s(%s)", gateType, strings.Join(parts, ","))
	}
	if len(qubits) == 1 {
		return fmt.Sprintf("%s q[%d]", name, qubits[0])
	}
	ctrl := make([]string, len(qubits)-1)
	for i, q := range qubits[:len(qubits)-1] {
		ctrl[i] = fmt.Sprintf("q[%d]", q)
	}
	return fmt.Sprintf("%s %s→q[%d]", name, strings.Join(ctrl, ","), qubits[len(qubits)-1])
}

// startTargetSelection moves focus into target picking, preferring the qubit
// below the cursor.
func (m *Model) startTargetSelection() {
	m.focus = focusSelectTarget
	m.targetQubit = m.nextFreeQubit(m.cursorQubit+1, +1)
	if m.targetQubit < 0 {
		m.targetQubit = m.nextFreeQubit(m.cursorQubit-1, -1)
	}
}

// nextFreeQubit scans from start in the given direction for a qubit that is
// neither the cursor nor an already-chosen control. Returns -1 if none.
func (m *Model) nextFreeQubit(start, dir int) int {
	for q := start; q >= 0 && q < m.numQubits; q += dir {
		if q != m.cursorQubit && !slicesContains(m.controlQubits, q) {
			return q
		}
	}
	return -1
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusRegister:
			switch key {
			case "q":
				return m, tea.Quit
			case "up", "k":
				if m.cursorQubit > 0 {
					m.cursorQubit--
				}
			case "down", "j":
				if m.cursorQubit < m.numQubits-1 {
					m.cursorQubit++
				}
			case "+", "=":
				if m.numQubits < maxQubits {
					m.resetRegister(m.numQubits + 1)
				}
			case "-":
				if m.numQubits > minQubits {
					m.resetRegister(m.numQubits - 1)
				}
			case "a":
				m.focus = focusMenu
				m.menuCat = 0
				m.menuItem = 0
			case "m":
				m.shotsInput.SetValue("")
				m.shotsInput.Focus()
				m.focus = focusInputShots
				cmds = append(cmds, textinput.Blink)
			case "p":
				if m.hasSnap {
					m.reg.Destroy(m.snap)
				}
				if snap, ok := m.reg.Clone(m.cur); ok {
					m.snap = snap
					m.hasSnap = true
					m.statusMsg = "Snapshot taken"
				}
			case "f":
				if !m.hasSnap {
					m.statusMsg = "No snapshot — press p first"
				} else {
					m.statusMsg = fmt.Sprintf("Fidelity vs snapshot: %.6f", m.reg.Fidelity(m.cur, m.snap))
				}
			case "n":
				m.reg.Normalize(m.cur)
				m.statusMsg = "Normalized"
			case "ctrl+r":
				m.resetRegister(m.numQubits)
				m.statusMsg = "Register reset to |0...0⟩"
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusRegister
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(gateMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(gateMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				item := gateMenu[m.menuCat].items[m.menuItem]
				m.pendingGate = item.gateType
				m.pendingParams = nil
				m.controlQubits = nil

				if item.gateType == "CCX" && m.numQubits < 3 {
					m.statusMsg = "Toffoli needs at least 3 qubits"
					m.clearPending()
					break
				}
				if item.needsTarget && m.numQubits < 2 {
					m.statusMsg = "Two-qubit gates need at least 2 qubits"
					m.clearPending()
					break
				}

				if item.needsParams {
					m.paramInput.SetValue("")
					m.paramInput.Focus()
					m.focus = focusInputParam
					cmds = append(cmds, textinput.Blink)
					break
				}

				if item.gateType == "CCX" {
					m.focus = focusSelectControl
					m.targetQubit = m.nextFreeQubit(m.cursorQubit+1, +1)
					break
				}

				if item.needsTarget {
					m.startTargetSelection()
					break
				}
				m.placeGate(item.gateType, -1)
				m.focus = focusRegister
			}

		case focusSelectControl:
			switch key {
			case "esc":
				m.clearPending()
				m.focus = focusRegister
			case "up", "k":
				if next := m.nextFreeQubit(m.targetQubit-1, -1); next >= 0 {
					m.targetQubit = next
				}
			case "down", "j":
				if next := m.nextFreeQubit(m.targetQubit+1, +1); next >= 0 {
					m.targetQubit = next
				}
			case "enter":
				m.controlQubits = append(m.controlQubits, m.targetQubit)
				m.startTargetSelection()
			}

		case focusSelectTarget:
			switch key {
			case "esc":
				m.clearPending()
				m.focus = focusRegister
			case "up", "k":
				if next := m.nextFreeQubit(m.targetQubit-1, -1); next >= 0 {
					m.targetQubit = next
				}
			case "down", "j":
				if next := m.nextFreeQubit(m.targetQubit+1, +1); next >= 0 {
					m.targetQubit = next
				}
			case "enter":
				m.placeGate(m.pendingGate, m.targetQubit)
				m.focus = focusRegister
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.clearPending()
				m.paramInput.Blur()
				m.focus = focusRegister
			case "enter":
				params := m.parseParams(m.paramInput.Value())
				if params == nil {
					m.statusMsg = "Invalid parameter — use numbers or pi expressions (e.g. pi/2, 3*pi/4)"
					break
				}
				m.pendingParams = params
				m.paramInput.Blur()
				item := gateMenu[m.menuCat].items[m.menuItem]
				if item.needsTarget {
					m.startTargetSelection()
					break
				}
				m.placeGate(m.pendingGate, -1)
				m.focus = focusRegister
			default:
				var cmd tea.Cmd
				m.paramInput, cmd = m.paramInput.Update(msg)
				cmds = append(cmds, cmd)
			}

		case focusInputShots:
			switch key {
			case "esc":
				m.shotsInput.Blur()
				m.focus = focusRegister
			case "enter":
				shots := defaultShots
				if v := strings.TrimSpace(m.shotsInput.Value()); v != "" {
					parsed, err := strconv.Atoi(v)
					if err != nil || parsed <= 0 {
						m.statusMsg = "Shots must be a positive integer"
						break
					}
					shots = parsed
				}
				m.counts = m.reg.Measure(m.cur, shots)
				m.lastShots = shots
				m.statusMsg = fmt.Sprintf("Measured %d shots, %d distinct outcomes", shots, len(m.counts))
				m.shotsInput.Blur()
				m.focus = focusRegister
			default:
				var cmd tea.Cmd
				m.shotsInput, cmd = m.shotsInput.Update(msg)
				cmds = append(cmds, cmd)
			}
		}
	}

	return m, tea.Batch(cmds...)
}

// Helper function
func slicesContains(slice []int, val int) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	leftWidth := m.width / 3
	rightWidth := m.width - leftWidth - 4
	controlsHeight := 6
	bodyHeight := max(m.height-controlsHeight-2, 8)

	registerPanel := m.renderRegisterPanel(leftWidth, bodyHeight/2)
	countsPanel := m.renderCountsPanel(leftWidth, bodyHeight-bodyHeight/2)
	probPanel := m.renderProbPanel(rightWidth, bodyHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	left := lipgloss.JoinVertical(lipgloss.Left, registerPanel, countsPanel)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, probPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, body, controlsPanel)

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	case focusInputShots:
		frame = overlayAt(frame, m.renderShotsInput(), 2, 2)
	}

	return frame
}
