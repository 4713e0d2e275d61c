package loyalty

import "fmt"

// ContextBlobSize is the fixed length of an encoded swap context: the payer
// address followed by the restaurant identifier.
const ContextBlobSize = 20 + 32

// EncodeContext serialises a swap context into the per-call payload format.
func EncodeContext(ctx SwapContext) []byte {
	blob := make([]byte, ContextBlobSize)
	copy(blob[:20], ctx.User[:])
	copy(blob[20:], ctx.Restaurant[:])
	return blob
}

// DecodeContext parses the per-call payload. A blob shorter than the full
// two-field encoding, including an empty one, is treated as absent and yields
// (nil, nil): the swap passes through with no loyalty effects. A longer blob
// is garbled input and fails hard with ErrMalformedContext rather than being
// silently ignored.
func DecodeContext(blob []byte) (*SwapContext, error) {
	if len(blob) < ContextBlobSize {
		return nil, nil
	}
	if len(blob) > ContextBlobSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMalformedContext, len(blob))
	}
	ctx := &SwapContext{}
	copy(ctx.User[:], blob[:20])
	copy(ctx.Restaurant[:], blob[20:])
	return ctx, nil
}
