package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/fridge/internal/forms"
)

type authField int

const (
	authLogin authField = iota
	authPassword
	numAuthFields
)

type authModel struct {
	session  Session
	fields   [numAuthFields]string
	focus    authField
	register bool
	busy     bool
	status   string
	frame    int
}

type authDoneMsg struct {
	err error
}

func newAuthModel(s Session) authModel {
	return authModel{session: s}
}

func (m authModel) Update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case shimmerTickMsg:
		m.frame++
	case authDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.fields[authPassword] = ""
		m.status = ""
	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m authModel) updateKeys(msg tea.KeyMsg) (authModel, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	switch msg.String() {
	case "tab", "down", "shift+tab", "up":
		m.focus = (m.focus + 1) % numAuthFields
	case "ctrl+t":
		m.register = !m.register
		m.status = ""
	case "enter":
		if m.focus == authLogin {
			m.focus = authPassword
			return m, nil
		}
		return m.submit()
	default:
		f := &m.fields[m.focus]
		*f = editKey(*f, msg)
	}
	return m, nil
}

func (m authModel) submit() (authModel, tea.Cmd) {
	creds, err := forms.LoginForm{Login: m.fields[authLogin], Password: m.fields[authPassword]}.Validate()
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.busy = true
	m.status = ""
	s, register := m.session, m.register
	return m, func() tea.Msg {
		var err error
		if register {
			_, err = s.Register(context.Background(), creds.Login, creds.Password)
		} else {
			_, err = s.Login(context.Background(), creds.Login, creds.Password)
		}
		return authDoneMsg{err: err}
	}
}

func (m authModel) title() string {
	if m.register {
		return "create account"
	}
	return "log in"
}

func (m authModel) View() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(renderField("login", m.fields[authLogin], "email or username", m.focus == authLogin, false, m.frame) + "\n")
	b.WriteString(renderField("password", m.fields[authPassword], "password", m.focus == authPassword, true, m.frame) + "\n\n")

	switch {
	case m.busy && m.register:
		b.WriteString(" " + dimStyle.Render("creating account...") + "\n")
	case m.busy:
		b.WriteString(" " + dimStyle.Render("logging in...") + "\n")
	case m.status != "":
		b.WriteString(" " + errorStyle.Render(m.status) + "\n")
	}

	other := "need an account? ctrl+t"
	if m.register {
		other = "have an account? ctrl+t"
	}
	b.WriteString("\n " + metaStyle.Render(other) + "\n")
	return b.String()
}

func (m authModel) helpKeys() string {
	action := "log in"
	if m.register {
		action = "register"
	}
	return helpBar(helpEntry("tab", "next"), helpEntry("enter", action), helpEntry("ctrl+t", "switch"), helpEntry("ctrl+c", "quit"))
}
