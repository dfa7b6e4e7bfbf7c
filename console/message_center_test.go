package console

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-adp-console/models"
)

func TestMessageCenterReplacesCurrent(t *testing.T) {
	m := NewMessageCenter(time.Minute)
	defer m.stop()

	m.Error("first")
	m.Success("second")

	msg := m.Current()
	require.NotNil(t, msg)
	require.Equal(t, models.MessageSuccess, msg.Kind)
	require.Equal(t, "second", msg.Text)
}

func TestMessageCenterAutoClears(t *testing.T) {
	m := NewMessageCenter(20 * time.Millisecond)
	defer m.stop()

	m.Info("transient")
	require.NotNil(t, m.Current())

	require.Eventually(t, func() bool {
		return m.Current() == nil
	}, time.Second, 5*time.Millisecond)
}

func TestMessageCenterReplacementGetsFullTTL(t *testing.T) {
	m := NewMessageCenter(50 * time.Millisecond)
	defer m.stop()

	m.Info("first")
	time.Sleep(30 * time.Millisecond)
	m.Info("second")

	time.Sleep(30 * time.Millisecond)
	msg := m.Current()
	require.NotNil(t, msg)
	require.Equal(t, "second", msg.Text)

	require.Eventually(t, func() bool {
		return m.Current() == nil
	}, time.Second, 5*time.Millisecond)
}

func TestMessageCenterDismiss(t *testing.T) {
	m := NewMessageCenter(time.Minute)
	defer m.stop()

	m.Warning("pending")
	m.Dismiss()
	require.Nil(t, m.Current())
}

func TestMessageCenterNotifiesObserver(t *testing.T) {
	m := NewMessageCenter(time.Minute)
	defer m.stop()

	var mu sync.Mutex
	var seen []string
	m.OnChange(func(msg *models.Message) {
		mu.Lock()
		defer mu.Unlock()
		if msg == nil {
			seen = append(seen, "<clear>")
			return
		}
		seen = append(seen, msg.Text)
	})

	m.Success("saved")
	m.Dismiss()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"saved", "<clear>"}, seen)
}
