// midimonitor lists MIDI ports and prints incoming note and control
// messages, to help author controller.yaml.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/PixPMusic/gopher-soundboard/internal/midi"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	noteOnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	noteOffStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	ctrlStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func main() {
	port := flag.String("port", "", "input port to monitor (omit to list ports)")
	flag.Parse()

	m := midi.NewManager()
	defer m.Close()

	if *port == "" {
		listPorts(m)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := monitor(ctx, m, *port); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func listPorts(m *midi.Manager) {
	fmt.Println(headerStyle.Render("=== MIDI Input Ports ==="))
	for i, name := range m.ListInPorts() {
		fmt.Printf("  %d: %s\n", i, name)
	}
	fmt.Println(headerStyle.Render("\n=== MIDI Output Ports ==="))
	for i, name := range m.ListOutPorts() {
		fmt.Printf("  %d: %s\n", i, name)
	}
}

func monitor(ctx context.Context, m *midi.Manager, name string) error {
	p := m.Open(name, "", nil)
	defer p.Close()
	if in, _ := p.Available(); !in {
		return fmt.Errorf("cannot open input port %q", name)
	}

	fmt.Println(headerStyle.Render("Listening on " + name))
	fmt.Println(dimStyle.Render("Ctrl+C to quit"))

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for _, msg := range p.Poll() {
				if line, ok := describe(msg); ok {
					fmt.Println(line)
				}
			}
		}
	}
}

// describe renders a message the way the key map is written: by id code
func describe(msg midi.Message) (string, bool) {
	switch msg.Kind() {
	case midi.KindNoteOn:
		if msg.Data2 == 0 {
			return noteOffStyle.Render(fmt.Sprintf("Note Off -- Key: %d", msg.Data1)), true
		}
		return noteOnStyle.Render(fmt.Sprintf("Note On -- Key: %d", msg.Data1)), true
	case midi.KindNoteOff:
		return noteOffStyle.Render(fmt.Sprintf("Note Off -- Key: %d", msg.Data1)), true
	case midi.KindControlChange:
		return ctrlStyle.Render(fmt.Sprintf("Control -- Key: %d Data: %d", msg.Data1, msg.Data2)), true
	}
	return "", false
}
