package login

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/util"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type Step int

const (
	UsernameStep Step = iota
	EmailStep
	PasswordStep
	BirthdayStep
)

const stepCount = 4

type availabilityMsg struct {
	username  string
	available bool
}

// Wizard is the four step sign-up form. Each step is validated before the
// next one is shown.
type Wizard struct {
	Step       Step
	Err        string
	Checking   bool
	Submitting bool

	inputs [stepCount]textinput.Model
	now    func() time.Time
}

func NewWizard() Wizard {
	var w Wizard
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 30
	username.Width = 30
	username.Focus()

	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.CharLimit = 100
	email.Width = 36

	password := textinput.New()
	password.Placeholder = fmt.Sprintf("at least %d characters", util.MinPasswordLength)
	password.EchoMode = textinput.EchoPassword
	password.CharLimit = 100
	password.Width = 36

	birthday := textinput.New()
	birthday.Placeholder = util.BirthdayLayout
	birthday.CharLimit = len(util.BirthdayLayout)
	birthday.Width = 12

	w.inputs = [stepCount]textinput.Model{username, email, password, birthday}
	w.now = time.Now
	return w
}

func (w Wizard) Value(s Step) string {
	return w.inputs[s].Value()
}

func (w *Wizard) SetValue(s Step, v string) {
	w.inputs[s].SetValue(v)
}

func (w *Wizard) goTo(s Step) tea.Cmd {
	w.inputs[w.Step].Blur()
	w.Step = s
	w.Err = ""
	return w.inputs[s].Focus()
}

func checkUsername(s *auth.Session, username string) tea.Cmd {
	return func() tea.Msg {
		return availabilityMsg{username: username, available: s.IsUsernameAvailable(context.Background(), username)}
	}
}

func (w Wizard) submit(s *auth.Session) tea.Cmd {
	username := strings.TrimSpace(w.Value(UsernameStep))
	email := strings.TrimSpace(w.Value(EmailStep))
	password := w.Value(PasswordStep)
	birthday, _ := util.ParseBirthday(w.Value(BirthdayStep))
	return authCmd(func(ctx context.Context) error {
		return s.SignUp(ctx, email, password, username, birthday)
	})
}

// validate checks the current step without touching the backend.
func (w Wizard) validate() error {
	value := w.Value(w.Step)
	switch w.Step {
	case UsernameStep:
		return util.ValidateUsername(strings.TrimSpace(value))
	case EmailStep:
		return util.ValidateEmail(strings.TrimSpace(value))
	case PasswordStep:
		return util.ValidatePassword(value)
	case BirthdayStep:
		birthday, err := util.ParseBirthday(value)
		if err != nil {
			return err
		}
		return util.ValidateBirthday(birthday, w.now())
	}
	return nil
}

func (w Wizard) Update(msg tea.Msg, s *auth.Session) (Wizard, tea.Cmd) {
	switch msg := msg.(type) {
	case availabilityMsg:
		if !w.Checking || msg.username != strings.TrimSpace(w.Value(UsernameStep)) {
			return w, nil
		}
		w.Checking = false
		if !msg.available {
			w.Err = "Username is already taken"
			return w, nil
		}
		return w, w.goTo(EmailStep)

	case authedMsg:
		w.Submitting = false
		return w, nil

	case tea.KeyMsg:
		if w.Checking || w.Submitting {
			return w, nil
		}
		switch msg.Type {
		case tea.KeyEsc:
			if w.Step > UsernameStep {
				return w, w.goTo(w.Step - 1)
			}
			return w, nil
		case tea.KeyEnter:
			if err := w.validate(); err != nil {
				w.Err = err.Error()
				return w, nil
			}
			switch w.Step {
			case UsernameStep:
				w.Checking = true
				w.Err = ""
				return w, checkUsername(s, strings.TrimSpace(w.Value(UsernameStep)))
			case BirthdayStep:
				w.Submitting = true
				w.Err = ""
				return w, w.submit(s)
			default:
				return w, w.goTo(w.Step + 1)
			}
		}
	}

	var cmd tea.Cmd
	w.inputs[w.Step], cmd = w.inputs[w.Step].Update(msg)
	return w, cmd
}

var stepPrompts = [stepCount]string{
	"Pick a username",
	"What's your email?",
	"Choose a password",
	"When is your birthday?",
}

func (w Wizard) View() string {
	var s strings.Builder
	s.WriteString(common.MutedStyle.Render(fmt.Sprintf("Create account • step %d of %d", w.Step+1, stepCount)))
	s.WriteString("\n\n")
	if w.Step > UsernameStep {
		s.WriteString(common.MutedStyle.Render("@" + strings.TrimSpace(w.Value(UsernameStep))))
		s.WriteString("\n\n")
	}
	s.WriteString(common.Bold.Style().Render(stepPrompts[w.Step]))
	s.WriteString("\n")
	s.WriteString(w.inputs[w.Step].View())
	if w.Checking {
		s.WriteString("\n\n")
		s.WriteString(common.MutedStyle.Render("checking availability..."))
	}
	if w.Err != "" {
		s.WriteString("\n\n")
		s.WriteString(common.ErrorStyle.Render(w.Err))
	}
	return s.String()
}

func (w Wizard) Help() string {
	if w.Step == BirthdayStep {
		return "(enter to sign up, esc to go back)"
	}
	if w.Step == UsernameStep {
		return "(enter to continue, esc to sign in instead)"
	}
	return "(enter to continue, esc to go back)"
}
