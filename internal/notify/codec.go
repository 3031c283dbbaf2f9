package notify

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// ParseNotification decodes a JSON-encoded notification.
//
// The document must carry a non-empty "state" string. "params" and "source"
// are optional:
//
//	{"state": "login", "params": {"user": "ada"}, "source": "auth"}
//
// Params preserve their JSON shape (objects become map[string]any, arrays
// []any, numbers float64).
//
// The returned notification never aliases data: gjson results share the
// input's backing array, and callers feed reused read buffers (bufio.Scanner),
// so the input is copied before decoding.
func ParseNotification(data []byte) (Notification, error) {
	data = append([]byte(nil), data...)

	if !gjson.ValidBytes(data) {
		return Notification{}, ErrInvalidJSON
	}

	state := gjson.GetBytes(data, "state")
	if !state.Exists() || state.String() == "" {
		return Notification{}, fmt.Errorf("parse notification: %w", ErrMissingState)
	}

	n := Notification{
		State: state.String(),
		Meta: Meta{
			ID:        uuid.NewString(),
			Timestamp: time.Now(),
			Source:    gjson.GetBytes(data, "source").String(),
		},
	}

	if params := gjson.GetBytes(data, "params"); params.Exists() {
		n.Params = params.Value()
	}

	return n, nil
}
