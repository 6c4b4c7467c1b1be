package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hatlock/sixfiveoh2/bus"
	"github.com/hatlock/sixfiveoh2/cpu"
	"github.com/hatlock/sixfiveoh2/disasm"
)

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// watchModel is a bubbletea Model driving one CPU step per keypress,
// rendering registers, flags, and the next instruction, adapted from
// mgnes/cmd/pure6502's register/flag debugger layout.
type watchModel struct {
	c      *cpu.Chip
	ram    *bus.RAM
	lastErr error
	halted bool
}

func (m watchModel) Init() tea.Cmd { return nil }

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "n":
			if m.halted {
				return m, nil
			}
			_, err := m.c.StepInstruction()
			if err != nil {
				m.lastErr = err
				m.halted = true
			}
		}
	}
	return m, nil
}

func (m watchModel) registers() string {
	return fmt.Sprintf(
		"PC: $%04X\nA:  $%02X\nX:  $%02X\nY:  $%02X\nS:  $%02X\ncycles: %d",
		m.c.PC, m.c.A, m.c.X, m.c.Y, m.c.S, m.c.Cycles(),
	)
}

func (m watchModel) flags() string {
	return "NV-BDIZC\n" + m.c.P.String()
}

func (m watchModel) nextInstruction() string {
	text, _ := disasm.Instruction(m.ram, m.c.PC)
	return text
}

func (m watchModel) View() string {
	rows := []string{
		lipgloss.JoinHorizontal(lipgloss.Top,
			boxStyle.Render(labelStyle.Render("registers")+"\n"+m.registers()),
			boxStyle.Render(labelStyle.Render("flags")+"\n"+m.flags()),
		),
		boxStyle.Render(labelStyle.Render("next")+"\n"+m.nextInstruction()),
	}
	if m.lastErr != nil {
		rows = append(rows, errStyle.Render(m.lastErr.Error()))
	}
	rows = append(rows, labelStyle.Render("space/n: step    q: quit"))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func runWatch(c *cpu.Chip, ram *bus.RAM) error {
	_, err := tea.NewProgram(watchModel{c: c, ram: ram}).Run()
	return err
}
