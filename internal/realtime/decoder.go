// Package realtime owns the push channel to the backend: the websocket
// transport, the frame decoder, the subscription bus that fans decoded
// messages out to consumers, and the fallback poller that keeps counters
// correct when push delivery cannot be relied on.
package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/subops/console-realtime/internal/core/domain"
	apperrors "github.com/subops/console-realtime/internal/core/errors"
)

// Decoder turns raw inbound frames into typed messages. Malformed frames
// are rejected with an error and never reach the bus; well-formed frames
// with an unrecognized type pass through so new server event types do not
// require a console redeploy.
type Decoder struct {
	logger *slog.Logger
}

func NewDecoder(logger *slog.Logger) *Decoder {
	return &Decoder{logger: logger.With("component", "decoder")}
}

// Decode parses one frame. The returned error wraps ErrMalformedFrame when
// the frame is not JSON or carries no string type field.
func (d *Decoder) Decode(frame []byte) (domain.Message, error) {
	var msg domain.Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		d.logger.Warn("dropping malformed frame", "error", err, "bytes", len(frame))
		return domain.Message{}, fmt.Errorf("%w: %v", apperrors.ErrMalformedFrame, err)
	}

	if msg.Type == "" {
		d.logger.Warn("dropping frame without type field", "bytes", len(frame))
		return domain.Message{}, apperrors.ErrMissingType
	}

	msg.Raw = append(json.RawMessage(nil), frame...)
	return msg, nil
}
