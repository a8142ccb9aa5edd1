package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 256

// editKey applies a key press to an inline text input. Typed runes are
// appended (a paste or a barcode scanner burst arrives as several runes in one
// message), backspace removes the last rune, and other keys leave text as is.
// Input is clamped to maxInputLen runes.
func editKey(text string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		if text == "" {
			return text
		}
		runes := []rune(text)
		return string(runes[:len(runes)-1])
	case tea.KeySpace:
		return appendRunes(text, []rune{' '})
	case tea.KeyRunes:
		return appendRunes(text, msg.Runes)
	}
	return text
}

func appendRunes(text string, add []rune) string {
	room := maxInputLen - utf8.RuneCountInString(text)
	if room <= 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	for _, r := range add {
		if room == 0 {
			break
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
		room--
	}
	return b.String()
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// renderField renders one labelled form input with a blinking cursor when
// focused. masked hides the value behind bullets.
func renderField(label, value, placeholder string, focused, masked bool, frame int) string {
	prefix := "   "
	labelStyle := metaStyle
	if focused {
		prefix = " " + accentStyle.Render("▸") + " "
		labelStyle = selectedStyle
	}
	shown := value
	if masked {
		shown = strings.Repeat("•", utf8.RuneCountInString(value))
	}

	line := prefix + labelStyle.Render(padLabel(label)) + " "
	switch {
	case shown == "" && !focused:
		line += inputPlaceholderStyle.Render(placeholder)
	case !focused:
		line += normalStyle.Render(shown)
	default:
		cursor := " "
		if (frame/4)%2 == 0 {
			cursor = accentStyle.Render("█")
		}
		line += selectedStyle.Render(shown) + cursor
	}
	return line
}

func padLabel(label string) string {
	const width = 12
	n := utf8.RuneCountInString(label)
	if n >= width {
		return label
	}
	return label + strings.Repeat(" ", width-n)
}
