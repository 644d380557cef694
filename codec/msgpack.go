package codec

import (
	ugcodec "github.com/ugorji/go/codec"
)

// msgpackHandle is configured once and shared; handles are safe for
// concurrent use after configuration.
var msgpackHandle = func() *ugcodec.MsgpackHandle {
	h := &ugcodec.MsgpackHandle{}
	h.Canonical = true
	return h
}()

// Msgpack is a MessagePack codec backed by github.com/ugorji/go/codec.
// Struct fields are named by their `codec` tag.
type Msgpack struct{}

// Marshal encodes the value to MessagePack.
func (Msgpack) Marshal(v any) ([]byte, error) {
	var out []byte
	if err := ugcodec.NewEncoderBytes(&out, msgpackHandle).Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

// Unmarshal decodes MessagePack data into v.
func (Msgpack) Unmarshal(data []byte, v any) error {
	return ugcodec.NewDecoderBytes(data, msgpackHandle).Decode(v)
}

// Name returns the unique name of the codec ("msgpack").
func (Msgpack) Name() string { return "msgpack" }
