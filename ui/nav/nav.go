// Package nav keeps the stack of screens pushed over the bottom tab shell.
package nav

import "github.com/AustinHatem/crema-live/ui/common"

type Entry struct {
	Screen common.Screen
	Params common.Params
}

// Stack is never empty: its root is the active bottom tab.
type Stack struct {
	entries []Entry
}

func NewStack(root common.Screen) Stack {
	return Stack{entries: []Entry{{Screen: root}}}
}

func (s *Stack) Navigate(screen common.Screen, params common.Params) {
	s.entries = append(s.entries, Entry{Screen: screen, Params: params})
}

// GoBack pops the top screen and reports false when only the root is left.
func (s *Stack) GoBack() bool {
	if len(s.entries) <= 1 {
		return false
	}
	s.entries = s.entries[:len(s.entries)-1]
	return true
}

func (s Stack) Current() Entry {
	if len(s.entries) == 0 {
		return Entry{}
	}
	return s.entries[len(s.entries)-1]
}

func (s Stack) Root() common.Screen {
	if len(s.entries) == 0 {
		return common.FeedScreen
	}
	return s.entries[0].Screen
}

func (s Stack) Depth() int {
	return len(s.entries)
}

// Reset drops every pushed screen and makes root the new base.
func (s *Stack) Reset(root common.Screen) {
	s.entries = []Entry{{Screen: root}}
}
