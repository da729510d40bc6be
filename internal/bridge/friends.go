package bridge

import (
	"context"

	"github.com/GriffinCanCode/mist/internal/protocol"
)

// Friends manages rich presence.
type Friends struct{ b *Bridge }

// Friends returns the friends client.
func (b *Bridge) Friends() Friends { return Friends{b} }

// ClearRichPresence removes every rich presence key.
func (f Friends) ClearRichPresence(ctx context.Context) error {
	return f.b.invoke(ctx, protocol.OpFriendsClearRichPresence, nil, nil)
}

// SetRichPresence sets key to value. A nil or empty value deletes the key.
// Limits on key and value length are enforced by the helper.
func (f Friends) SetRichPresence(ctx context.Context, key string, value *string) error {
	if err := f.b.checkStrings("rich presence key", key); err != nil {
		return err
	}
	if value != nil {
		if err := f.b.checkStrings("rich presence value", *value); err != nil {
			return err
		}
	}
	return f.b.invoke(ctx, protocol.OpFriendsSetRichPresence, protocol.RichPresenceArgs{Key: key, Value: value}, nil)
}
