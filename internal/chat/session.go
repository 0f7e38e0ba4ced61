package chat

import "fmt"

// Message roles within a conversation thread.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Greetings shown when a thread is created or reset.
const (
	greetingInitial = "Hi 👋, I'm your Gmail AI assistant.\n\nHow can I help you today?"
	greetingNewChat = "New chat started. Hi 👋, how can I help you?"
	greetingCleared = "Chat cleared. Hi 👋, how can I help you now?"
)

// ChatMessage is a single turn in a conversation thread.
type ChatMessage struct {
	Role    string
	Content string
}

// Session holds a set of named conversation threads and tracks which one is
// active. Threads are named "Chat 1", "Chat 2", and so on in creation order.
// Session is not safe for concurrent use; the REPL drives it from one
// goroutine.
type Session struct {
	threads map[string][]ChatMessage
	order   []string
	current string
}

// NewSession creates a session with an initial greeted thread.
func NewSession() *Session {
	s := &Session{threads: make(map[string][]ChatMessage)}
	name := s.nextName()
	s.threads[name] = []ChatMessage{{Role: RoleAssistant, Content: greetingInitial}}
	s.order = append(s.order, name)
	s.current = name
	return s
}

func (s *Session) nextName() string {
	return fmt.Sprintf("Chat %d", len(s.threads)+1)
}

// Current returns the name of the active thread.
func (s *Session) Current() string { return s.current }

// Threads returns all thread names in creation order.
func (s *Session) Threads() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Messages returns the active thread's messages.
func (s *Session) Messages() []ChatMessage {
	return s.threads[s.current]
}

// Append adds a turn to the active thread.
func (s *Session) Append(role, content string) {
	s.threads[s.current] = append(s.threads[s.current], ChatMessage{Role: role, Content: content})
}

// NewThread creates a fresh greeted thread and switches to it. It returns
// the new thread's name.
func (s *Session) NewThread() string {
	name := s.nextName()
	s.threads[name] = []ChatMessage{{Role: RoleAssistant, Content: greetingNewChat}}
	s.order = append(s.order, name)
	s.current = name
	return name
}

// Switch makes the named thread active. It reports whether the thread
// exists; the active thread is unchanged when it does not.
func (s *Session) Switch(name string) bool {
	if _, ok := s.threads[name]; !ok {
		return false
	}
	s.current = name
	return true
}

// Clear resets the active thread to a single greeting.
func (s *Session) Clear() {
	s.threads[s.current] = []ChatMessage{{Role: RoleAssistant, Content: greetingCleared}}
}
