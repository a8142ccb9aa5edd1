package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#4ade80")).
		Bold(true).
		Render("F R I D G E")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("What is in the fridge, and what goes off next.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"fridge", "Open the interactive client"},
		{"fridge login", "Log in and store the session"},
		{"fridge register", "Create an account and log in"},
		{"fridge logout", "Clear the stored session"},
		{"fridge scan CODE", "Send one EAN barcode (-type to force a symbology)"},
		{"fridge version", "Show version"},
		{"fridge help", "You are here"},
	}
	flags := []struct{ flag, desc string }{
		{"-api URL", "API base URL (FRIDGE_API_URL)"},
		{"-config PATH", "config file, default $FRIDGE_HOME/config.yaml"},
		{"-debug", "log HTTP traffic to the log file"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}
	fmt.Fprint(w, "\n  Flags:\n")
	for _, f := range flags {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", f.flag)), descStyle.Render(f.desc))
	}
	fmt.Fprintln(w)
}
