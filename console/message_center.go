package console

import (
	"sync"
	"time"

	"github.com/noah-isme/sma-adp-console/models"
)

const defaultMessageTTL = 5 * time.Second

// MessageCenter holds the single dismissible status banner. Setting a
// message replaces any previous one, and messages clear themselves after
// the TTL.
type MessageCenter struct {
	mu       sync.Mutex
	ttl      time.Duration
	current  *models.Message
	timer    *time.Timer
	onChange func(*models.Message)
}

// NewMessageCenter builds a center with the given auto-clear TTL.
func NewMessageCenter(ttl time.Duration) *MessageCenter {
	if ttl <= 0 {
		ttl = defaultMessageTTL
	}
	return &MessageCenter{ttl: ttl}
}

// OnChange registers a single observer for banner transitions; nil on clear.
func (m *MessageCenter) OnChange(fn func(*models.Message)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Set replaces the banner and restarts the auto-clear timer.
func (m *MessageCenter) Set(kind models.MessageKind, text string) {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
	}
	msg := &models.Message{Kind: kind, Text: text, At: time.Now().UTC()}
	m.current = msg
	m.timer = time.AfterFunc(m.ttl, func() { m.expire(msg) })
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn(msg)
	}
}

// Success posts a success banner.
func (m *MessageCenter) Success(text string) { m.Set(models.MessageSuccess, text) }

// Error posts an error banner.
func (m *MessageCenter) Error(text string) { m.Set(models.MessageError, text) }

// Warning posts a warning banner.
func (m *MessageCenter) Warning(text string) { m.Set(models.MessageWarning, text) }

// Info posts an informational banner.
func (m *MessageCenter) Info(text string) { m.Set(models.MessageInfo, text) }

// Current returns a copy of the visible banner, or nil.
func (m *MessageCenter) Current() *models.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	msg := *m.current
	return &msg
}

// Dismiss clears the banner immediately.
func (m *MessageCenter) Dismiss() {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.current = nil
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn(nil)
	}
}

// expire drops the banner only if it is still the one the timer was armed
// for; a replacement posted in the meantime stays up for its own TTL.
func (m *MessageCenter) expire(msg *models.Message) {
	m.mu.Lock()
	if m.current != msg {
		m.mu.Unlock()
		return
	}
	m.current = nil
	m.timer = nil
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn(nil)
	}
}

func (m *MessageCenter) stop() {
	m.mu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()
}
