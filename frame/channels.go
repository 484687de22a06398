// Package frame holds per-observation data: a typed channel store and the
// VisualFrame that attaches it to a camera.
package frame

import (
	"reflect"
	"sort"

	"github.com/pkg/errors"
)

// ErrChannelType is wrapped by accessors when a channel is accessed with a type
// other than the one it was registered with. The stored bytes are never
// reinterpreted; a mismatch is a programming error surfaced to the caller.
var ErrChannelType = errors.New("channel type mismatch")

// ChannelGroup maps channel names to typed, owned data. Many unrelated types
// can live side by side, but once a name is registered with a type, every
// access under that name must use the same type. The zero value is ready to use.
type ChannelGroup struct {
	channels map[string]interface{}
}

// AddChannel registers a new channel of type T under name, holding a
// default-valued T. It fails if the name is already taken.
func AddChannel[T any](group *ChannelGroup, name string) error {
	if group.channels == nil {
		group.channels = make(map[string]interface{})
	}
	if existing, ok := group.channels[name]; ok {
		return errors.Errorf("channel %q already exists with type %s", name, storedTypeName(existing))
	}
	group.channels[name] = new(T)
	return nil
}

// HasChannel reports whether a channel with this name exists, regardless of type.
func (group *ChannelGroup) HasChannel(name string) bool {
	_, ok := group.channels[name]
	return ok
}

// ChannelNames returns the registered channel names in sorted order.
func (group *ChannelGroup) ChannelNames() []string {
	names := make([]string, 0, len(group.channels))
	for name := range group.channels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ChannelData returns the value stored in the named channel. T must be the
// type the channel was registered with.
func ChannelData[T any](group *ChannelGroup, name string) (T, error) {
	ptr, err := channelPointer[T](group, name)
	if err != nil {
		var zero T
		return zero, err
	}
	return *ptr, nil
}

// MutableChannelData returns a pointer to the value stored in the named
// channel, which can be used to swap in new data.
func MutableChannelData[T any](group *ChannelGroup, name string) (*T, error) {
	return channelPointer[T](group, name)
}

// SetChannelData stores data under name, creating the channel if it does not
// exist. The previous value is replaced wholesale; there are no merge semantics.
func SetChannelData[T any](group *ChannelGroup, name string, data T) error {
	if !group.HasChannel(name) {
		if err := AddChannel[T](group, name); err != nil {
			return err
		}
	}
	ptr, err := channelPointer[T](group, name)
	if err != nil {
		return err
	}
	*ptr = data
	return nil
}

func channelPointer[T any](group *ChannelGroup, name string) (*T, error) {
	value, ok := group.channels[name]
	if !ok {
		return nil, errors.Errorf("channel %q does not exist", name)
	}
	ptr, ok := value.(*T)
	if !ok {
		return nil, errors.Wrapf(ErrChannelType, "channel %q holds %s, not %s",
			name, storedTypeName(value), reflect.TypeOf((*T)(nil)).Elem())
	}
	return ptr, nil
}

func storedTypeName(value interface{}) string {
	return reflect.TypeOf(value).Elem().String()
}
