package service

// Notifier is the fan-out transport. Delivery is best-effort and happens
// after the owning transaction commits; a missed push is recovered by the
// next history pull, so neither method returns an error.
type Notifier interface {
	// DeliverToUser pushes the payload to the user's private channel.
	DeliverToUser(telegramID string, payload any)
	// DeliverToChatTopic pushes the payload once to the chat's shared topic.
	DeliverToChatTopic(chatID uint, payload any)
}

// NopNotifier discards everything; used where fan-out is not wired.
type NopNotifier struct{}

func (NopNotifier) DeliverToUser(string, any)    {}
func (NopNotifier) DeliverToChatTopic(uint, any) {}
