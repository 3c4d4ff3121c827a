package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"qviz/internal/demo"
	"qviz/internal/tui"
	"qviz/internal/visualize"
	"qviz/pkg/logger"
)

func main() {
	file := flag.String("file", "", "QASM program to open")
	save := flag.String("save", tui.DefaultSavePath, "file written by ctrl+s")
	logPath := flag.String("log", "", "write debug logs to this file")
	reverse := flag.Bool("reverse", false, "list Bloch vectors from the highest qubit")
	flag.Parse()

	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	log := logger.New(logger.Config{Level: "debug", Output: out})

	source := demo.EditorQASM
	if *file != "" {
		data, err := os.ReadFile(*file)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		source = string(data)
	}

	m := tui.New(visualize.New(log), source, tui.WithSavePath(*save), tui.WithReverseBits(*reverse))
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
