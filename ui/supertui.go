package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/AustinHatem/crema-live/auth"
	"github.com/AustinHatem/crema-live/backend"
	"github.com/AustinHatem/crema-live/ui/chat"
	"github.com/AustinHatem/crema-live/ui/common"
	"github.com/AustinHatem/crema-live/ui/feed"
	"github.com/AustinHatem/crema-live/ui/golive"
	"github.com/AustinHatem/crema-live/ui/header"
	"github.com/AustinHatem/crema-live/ui/login"
	"github.com/AustinHatem/crema-live/ui/nav"
	"github.com/AustinHatem/crema-live/ui/notifications"
	"github.com/AustinHatem/crema-live/ui/profile"
	"github.com/AustinHatem/crema-live/ui/search"
	"github.com/AustinHatem/crema-live/ui/settings"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	tabStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_GRAY)).Padding(0, 2)
	activeTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_PRIMARY)).Bold(true).Padding(0, 2)

	alertStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(common.COLOR_PRIMARY)).
			Padding(1, 3).
			Align(lipgloss.Center)
)

// RootTabs are the destinations of the bottom tab bar, in order.
var RootTabs = []common.Screen{
	common.FeedScreen,
	common.SearchScreen,
	common.LiveScreen,
	common.NotificationsScreen,
	common.ProfileScreen,
}

type restoredMsg struct {
	restored bool
}

// MainModel is the shell: a splash until the terminal size and the
// remembered session are known, then either the login flow or the tabbed
// main screens with their navigation stack.
type MainModel struct {
	width  int
	height int

	ready    bool
	restored bool
	signedIn bool
	userId   uuid.UUID
	alert    *common.AlertMsg

	provider backend.Provider
	session  *auth.Session
	spinner  spinner.Model
	stack    nav.Stack

	headerModel        header.Model
	loginModel         login.Model
	feedModel          feed.Model
	searchModel        search.Model
	liveModel          golive.Model
	notificationsModel notifications.Model
	profileModel       profile.Model
	userModel          profile.UserModel
	settingsModel      settings.Model
	streamModel        chat.Model
}

func NewModel(p backend.Provider, s *auth.Session, width int, height int) MainModel {
	m := MainModel{
		provider: p,
		session:  s,
		width:    width,
		height:   height,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(common.AccentStyle)),
		stack:    nav.NewStack(common.FeedScreen),
	}
	m.headerModel = header.Model{Width: width}
	m.loginModel = login.New(s)
	m.buildMain()
	return m
}

func restoreCmd(s *auth.Session) tea.Cmd {
	return func() tea.Msg {
		ok, err := s.Restore(context.Background())
		if err != nil {
			log.Warn("Could not restore session", "err", err)
		}
		return restoredMsg{restored: ok}
	}
}

func (m MainModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, restoreCmd(m.session))
}

// Ready reports whether the splash has been replaced by a real screen.
func (m MainModel) Ready() bool {
	return m.ready
}

func (m MainModel) SignedIn() bool {
	return m.signedIn
}

func (m MainModel) Current() nav.Entry {
	return m.stack.Current()
}

func (m MainModel) Alert() *common.AlertMsg {
	return m.alert
}

func (m MainModel) contentHeight() int {
	return common.ContentHeight(m.height)
}

func (m *MainModel) buildMain() {
	w, h := m.width, m.contentHeight()
	m.feedModel = feed.New(m.provider, m.session, w, h)
	m.searchModel = search.New(m.provider, w, h)
	m.liveModel = golive.New(m.provider, m.session, w, h)
	m.notificationsModel = notifications.New(m.provider, m.session, w, h)
	m.profileModel = profile.New(m.session, w, h)
	m.settingsModel = settings.New(m.session)
	m.streamModel = chat.New(chat.Modal, m.provider, m.session, w, h)
}

func (m *MainModel) resize() {
	w, h := m.width, m.contentHeight()
	m.headerModel.Width = w
	m.feedModel.Resize(w, h)
	m.searchModel.Resize(w, h)
	m.liveModel.Width, m.liveModel.Height = w, h
	m.notificationsModel.Width, m.notificationsModel.Height = w, h
	m.profileModel.Width, m.profileModel.Height = w, h
	m.userModel.Width, m.userModel.Height = w, h
	m.streamModel.Resize(w, h)
}

func (m *MainModel) maybeReady() tea.Cmd {
	if m.ready || !m.restored || m.width == 0 {
		return nil
	}
	m.ready = true
	return m.enter()
}

// enter switches to the flow matching the session's current user, building
// the main screens from scratch for a new user.
func (m *MainModel) enter() tea.Cmd {
	m.feedModel.Close()
	m.streamModel.Close()
	m.alert = nil
	m.stack.Reset(common.FeedScreen)

	user := m.session.CurrentUser()
	m.headerModel.User = user
	if user == nil {
		m.signedIn = false
		m.userId = uuid.Nil
		m.loginModel = login.New(m.session)
		return m.loginModel.Init()
	}
	m.signedIn = true
	m.userId = user.Id
	m.buildMain()
	return tea.Batch(
		m.feedModel.Init(),
		m.searchModel.Init(),
		m.liveModel.Init(),
		m.notificationsModel.Init(),
	)
}

func (m *MainModel) navigate(msg common.NavigateMsg) tea.Cmd {
	for _, root := range RootTabs {
		if msg.Screen == root {
			m.leaveStreamView()
			m.stack.Reset(root)
			return m.screenInitCmd(root)
		}
	}

	m.stack.Navigate(msg.Screen, msg.Params)
	w, h := m.width, m.contentHeight()
	switch msg.Screen {
	case common.UserProfileScreen:
		m.userModel = profile.NewUser(m.provider, m.session, msg.Params.UserId, w, h)
		return m.userModel.Init()
	case common.StreamViewScreen:
		if msg.Params.Stream == nil {
			m.stack.GoBack()
			return nil
		}
		return m.streamModel.Open(*msg.Params.Stream)
	case common.SettingsScreen:
		m.settingsModel = settings.New(m.session)
	}
	return nil
}

// screenInitCmd reloads the data of a root tab when it is selected.
func (m MainModel) screenInitCmd(screen common.Screen) tea.Cmd {
	switch screen {
	case common.NotificationsScreen:
		return m.notificationsModel.Init()
	case common.LiveScreen:
		return m.liveModel.Init()
	default:
		return nil
	}
}

func (m *MainModel) leaveStreamView() {
	if m.stack.Current().Screen == common.StreamViewScreen {
		m.streamModel.Close()
	}
}

func (m *MainModel) back() {
	m.leaveStreamView()
	m.stack.GoBack()
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, m.maybeReady()

	case restoredMsg:
		m.restored = true
		return m, m.maybeReady()

	case spinner.TickMsg:
		if m.ready {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}
	if !m.ready {
		return m, nil
	}

	if !m.signedIn {
		if changed, ok := msg.(common.SessionChangedMsg); ok && changed.User != nil {
			return m, m.enter()
		}
		if alert, ok := msg.(common.AlertMsg); ok {
			m.alert = &alert
			return m, nil
		}
		if key, ok := msg.(tea.KeyMsg); ok && m.alert != nil {
			return m.updateAlert(key), nil
		}
		m.loginModel, cmd = m.loginModel.Update(msg)
		return m, cmd
	}

	switch msg := msg.(type) {
	case common.AlertMsg:
		m.alert = &msg
		return m, nil

	case common.SessionChangedMsg:
		if msg.User == nil || msg.User.Id != m.userId {
			return m, m.enter()
		}
		m.headerModel.User = msg.User

	case common.NavigateMsg:
		return m, m.navigate(msg)

	case common.BackMsg:
		m.back()
		return m, nil

	case chat.ClosedMsg:
		if m.stack.Current().Screen == common.StreamViewScreen && !m.streamModel.IsOpen() {
			m.back()
		}
		return m, nil

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.KeyMsg:
		if m.alert != nil {
			return m.updateAlert(msg), nil
		}
		if cmd, handled := m.shellKey(msg); handled {
			return m, cmd
		}
		return m.updateFocused(msg)
	}

	// Non-key messages reach every screen so that loads and timers land
	// wherever they were started from.
	m.headerModel, _ = m.headerModel.Update(msg)
	m.feedModel, cmd = m.feedModel.Update(msg)
	cmds = append(cmds, cmd)
	m.searchModel, cmd = m.searchModel.Update(msg)
	cmds = append(cmds, cmd)
	m.liveModel, cmd = m.liveModel.Update(msg)
	cmds = append(cmds, cmd)
	m.notificationsModel, cmd = m.notificationsModel.Update(msg)
	cmds = append(cmds, cmd)
	m.profileModel, cmd = m.profileModel.Update(msg)
	cmds = append(cmds, cmd)
	m.userModel, cmd = m.userModel.Update(msg)
	cmds = append(cmds, cmd)
	m.settingsModel, cmd = m.settingsModel.Update(msg)
	cmds = append(cmds, cmd)
	m.streamModel, cmd = m.streamModel.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// Close releases the chat subscriptions of both overlays. Safe to call more
// than once.
func (m *MainModel) Close() {
	m.feedModel.Close()
	m.streamModel.Close()
}

// QuitFilter tears the model down when the program quits, whether from a
// key or from the SSH session ending.
func QuitFilter(model tea.Model, msg tea.Msg) tea.Msg {
	if _, ok := msg.(tea.QuitMsg); ok {
		if m, ok := model.(MainModel); ok {
			m.Close()
		}
	}
	return msg
}

func (m MainModel) updateAlert(msg tea.KeyMsg) MainModel {
	switch msg.String() {
	case "enter", "esc":
		m.alert = nil
	}
	return m
}

// shellKey handles the keys that belong to the shell rather than a screen.
func (m *MainModel) shellKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "alt+1", "alt+2", "alt+3", "alt+4", "alt+5":
		i := int(msg.String()[4] - '1')
		return m.navigate(common.NavigateMsg{Screen: RootTabs[i]}), true
	case "esc":
		switch m.stack.Current().Screen {
		case common.UserProfileScreen:
			m.back()
			return nil, true
		case common.SettingsScreen:
			if m.settingsModel.Confirm == settings.NoConfirm {
				m.back()
				return nil, true
			}
		}
	}
	return nil, false
}

func (m MainModel) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.stack.Current().Screen {
	case common.FeedScreen:
		m.feedModel, cmd = m.feedModel.Update(msg)
	case common.SearchScreen:
		m.searchModel, cmd = m.searchModel.Update(msg)
	case common.LiveScreen:
		m.liveModel, cmd = m.liveModel.Update(msg)
	case common.NotificationsScreen:
		m.notificationsModel, cmd = m.notificationsModel.Update(msg)
	case common.ProfileScreen:
		m.profileModel, cmd = m.profileModel.Update(msg)
	case common.UserProfileScreen:
		m.userModel, cmd = m.userModel.Update(msg)
	case common.SettingsScreen:
		m.settingsModel, cmd = m.settingsModel.Update(msg)
	case common.StreamViewScreen:
		m.streamModel, cmd = m.streamModel.Update(msg)
	}
	return m, cmd
}

// updateMouse hit-tests the tab bar and hands everything else to the focused
// screen in screen-relative coordinates.
func (m MainModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.alert != nil {
		return m, nil
	}
	if msg.Y == m.height-1 {
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if i := m.tabAt(msg.X); i >= 0 {
				return m, m.navigate(common.NavigateMsg{Screen: RootTabs[i]})
			}
		}
		return m, nil
	}
	if msg.Y < common.HeaderHeight || msg.Y >= common.HeaderHeight+m.contentHeight() {
		return m, nil
	}
	msg.Y -= common.HeaderHeight
	return m.updateFocused(msg)
}

func (m MainModel) tabLabel(screen common.Screen) string {
	switch screen {
	case common.LiveScreen:
		return "Go Live"
	case common.NotificationsScreen:
		if n := m.notificationsModel.Unread(); n > 0 {
			return fmt.Sprintf("Alerts (%d)", n)
		}
		return "Alerts"
	default:
		return screen.String()
	}
}

func (m MainModel) tabAt(x int) int {
	left := 0
	for i, screen := range RootTabs {
		w := lipgloss.Width(tabStyle.Render(m.tabLabel(screen)))
		if x >= left && x < left+w {
			return i
		}
		left += w
	}
	return -1
}

func (m MainModel) tabBar() string {
	root := m.stack.Root()
	var tabs []string
	for _, screen := range RootTabs {
		style := tabStyle
		if screen == root {
			style = activeTabStyle
		}
		tabs = append(tabs, style.Render(m.tabLabel(screen)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m MainModel) focusedView() (string, string) {
	switch m.stack.Current().Screen {
	case common.SearchScreen:
		return m.searchModel.View(), m.searchModel.Help()
	case common.LiveScreen:
		return m.liveModel.View(), m.liveModel.Help()
	case common.NotificationsScreen:
		return m.notificationsModel.View(), m.notificationsModel.Help()
	case common.ProfileScreen:
		return m.profileModel.View(), m.profileModel.Help()
	case common.UserProfileScreen:
		return m.userModel.View(), m.userModel.Help()
	case common.SettingsScreen:
		return m.settingsModel.View(), m.settingsModel.Help()
	case common.StreamViewScreen:
		return m.streamModel.View(), "enter: send • tab: messages • g: gifts • esc/x: close"
	default:
		return m.feedModel.View(), m.feedModel.Help()
	}
}

func (m MainModel) alertView() string {
	body := common.Bold.Style().Render(m.alert.Title)
	if m.alert.Body != "" {
		body += "\n\n" + m.alert.Body
	}
	body += "\n\n" + common.ButtonStyle.Render("OK")
	return lipgloss.Place(m.width, m.contentHeight(), lipgloss.Center, lipgloss.Center,
		alertStyle.Width(min(50, max(20, m.width-4))).Render(body))
}

func (m MainModel) View() string {
	if !m.ready {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" loading crema live")
	}
	if !m.signedIn {
		if m.alert != nil {
			return m.alertView()
		}
		return m.loginModel.ViewWithWidth(m.width, m.height)
	}

	content, help := m.focusedView()
	if m.alert != nil {
		content = m.alertView()
		help = "enter: dismiss"
	}
	height := m.contentHeight()
	rows := strings.Split(content, "\n")
	if len(rows) > height {
		rows = rows[:height]
	}
	content = lipgloss.NewStyle().Width(m.width).Height(height).MaxHeight(height).Render(strings.Join(rows, "\n"))

	m.headerModel.Title = m.stack.Current().Screen.String()
	helpLine := common.HelpStyle.Render(help + " • alt+1-5: tabs • ctrl+c: exit")

	return lipgloss.JoinVertical(lipgloss.Left,
		m.headerModel.View(),
		content,
		lipgloss.NewStyle().MaxWidth(m.width).Render(helpLine),
		m.tabBar(),
	)
}
