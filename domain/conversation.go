package domain

// ConversationKey identifies the unordered pair of users a message belongs to.
// Lo is always the lexicographically smaller user id, so the key is identical
// regardless of which side sent the message.
type ConversationKey struct {
	Lo string
	Hi string
}

func NewConversationKey(userA, userB string) ConversationKey {
	if userB < userA {
		userA, userB = userB, userA
	}
	return ConversationKey{Lo: userA, Hi: userB}
}

// Key returns the key of the conversation this message belongs to.
func (m Message) Key() ConversationKey {
	return NewConversationKey(m.SenderID, m.ReceiverID)
}
