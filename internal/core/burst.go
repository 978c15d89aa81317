package core

import "time"

// SameBurst reports whether two messages from the same tenant and author
// carry identical content or an identical sticker set. Both empty is not a
// match.
func SameBurst(a, b *Message) bool {
	if a.TenantID != b.TenantID || a.Author.ID != b.Author.ID {
		return false
	}
	if a.Content != "" && a.Content == b.Content {
		return true
	}
	if len(a.Stickers) > 0 && len(a.Stickers) == len(b.Stickers) {
		for i := range a.Stickers {
			if a.Stickers[i] != b.Stickers[i] {
				return false
			}
		}
		return true
	}
	return false
}

// RelatedMessages returns the cached messages forming a burst with msg. A
// window of zero or less means no time bound, which is how the deletion
// coordinator collects the whole burst regardless of age.
func RelatedMessages(msg *Message, recent []*Message, window time.Duration) []*Message {
	var related []*Message
	now := time.Now()
	for _, m := range recent {
		if window > 0 && now.Sub(m.CreatedAt) >= window {
			continue
		}
		if SameBurst(msg, m) {
			related = append(related, m)
		}
	}
	return related
}
