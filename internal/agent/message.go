// internal/agent/message.go
package agent

import (
	"fmt"
	"maps"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// DispatcherID is the sender identity used for messages that originate outside any worker.
const DispatcherID = "orchestrator"

// Payload is the opaque body of a Message. Its schema is a private contract
// between the sending and receiving workers.
type Payload map[string]any

// Message is the unit of communication between workers.
// It is passed by value and must not be modified after construction.
type Message struct {
	Sender    string    `json:"sender"`
	Recipient string    `json:"recipient"`
	Kind      string    `json:"kind"`
	Payload   Payload   `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage builds a message stamped with the current time. The payload map is
// copied so the producer can keep using its own map.
func NewMessage(sender, recipient, kind string, payload Payload) Message {
	return Message{
		Sender:    sender,
		Recipient: recipient,
		Kind:      kind,
		Payload:   maps.Clone(payload),
		Timestamp: time.Now(),
	}
}

func (m Message) validate() error {
	if m.Recipient == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidMessage)
	}
	if m.Kind == "" {
		return fmt.Errorf("%w: kind is required", ErrInvalidMessage)
	}
	return nil
}

func (m Message) String() string {
	return fmt.Sprintf("Message{Sender: %s, Recipient: %s, Kind: %s}", m.Sender, m.Recipient, m.Kind)
}

// String returns the string stored under key, or "" if absent or not a string.
func (p Payload) String(key string) string {
	s, _ := p[key].(string)
	return s
}

// Strings returns the string slice stored under key. Both []string and []any
// holding strings are accepted, since payloads decoded from JSON use the latter.
func (p Payload) Strings(key string) []string {
	switch v := p[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// Float returns the number stored under key as a float64.
func (p Payload) Float(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

// Decode stores the value under key into out, which must be a non-nil pointer.
// Values already of the target type are assigned directly; anything else, such
// as maps decoded from JSON, goes through mapstructure using json tags.
func (p Payload) Decode(key string, out any) error {
	v, ok := p[key]
	if !ok || v == nil {
		return fmt.Errorf("payload key %q is missing", key)
	}

	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode %q: target must be a non-nil pointer", key)
	}
	if reflect.TypeOf(v).AssignableTo(rv.Elem().Type()) {
		rv.Elem().Set(reflect.ValueOf(v))
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode %q: %w", key, err)
	}
	return nil
}
