package realtime

// TypingNotifier relays typing indicators. Nothing is stored and offline
// targets are silently skipped.
type TypingNotifier struct {
	pub Publisher
}

func NewTypingNotifier(pub Publisher) *TypingNotifier {
	return &TypingNotifier{pub: pub}
}

// Notify tells every connection of toUserID that fromUserID started or
// stopped typing, and returns how many connections were reached.
func (n *TypingNotifier) Notify(fromUserID, toUserID int64, isTyping bool) int {
	return n.pub.EmitToUser(toUserID, Event{
		Name: EventTypingNotify,
		Data: TypingNotice{UserID: fromUserID, IsTyping: isTyping},
	})
}
