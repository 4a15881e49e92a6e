package protocol

import (
	"encoding/json"
	"fmt"
)

// Kind identifies which variant a Frame holds.
type Kind int

const (
	KindProduce Kind = iota
	KindConsume
	KindConsumeNext
	KindResponse
	KindPing
	KindPong
)

func (k Kind) String() string {
	switch k {
	case KindProduce:
		return "Produce"
	case KindConsume:
		return "Consume"
	case KindConsumeNext:
		return "ConsumeNext"
	case KindResponse:
		return "Response"
	case KindPing:
		return "Ping"
	case KindPong:
		return "Pong"
	default:
		return "Unknown"
	}
}

// ProduceFrame requests that message be appended to topic.
type ProduceFrame struct {
	Topic   string    `json:"topic"`
	Message ByteSlice `json:"message"`
}

// ConsumeFrame requests the message at an explicit offset within a
// partition.
type ConsumeFrame struct {
	Topic       string `json:"topic"`
	PartitionID int    `json:"partition_id"`
	Offset      int    `json:"offset"`
}

// ConsumeNextFrame requests the head message of a partition, advancing its
// offset.
type ConsumeNextFrame struct {
	Topic       string `json:"topic"`
	PartitionID int    `json:"partition_id"`
}

// ResponseFrame carries the result of a Produce/Consume/ConsumeNext request.
type ResponseFrame struct {
	Status  Status    `json:"status"`
	Data    ByteSlice `json:"data"`
	Message *string   `json:"message"`
}

// Frame is one protocol message, request or response, as a tagged union
// keyed by variant name the way the source's serde-derived enum is encoded:
// struct variants as a single-key object ({"Produce":{...}}), unit variants
// as a bare string ("Ping").
type Frame struct {
	kind Kind

	produce     *ProduceFrame
	consume     *ConsumeFrame
	consumeNext *ConsumeNextFrame
	response    *ResponseFrame
}

// Kind reports which variant the frame holds.
func (f Frame) Kind() Kind { return f.kind }

// NewProduce builds a Produce frame.
func NewProduce(topic string, message []byte) Frame {
	return Frame{kind: KindProduce, produce: &ProduceFrame{Topic: topic, Message: message}}
}

// NewConsume builds a Consume frame.
func NewConsume(topic string, partitionID, offset int) Frame {
	return Frame{kind: KindConsume, consume: &ConsumeFrame{Topic: topic, PartitionID: partitionID, Offset: offset}}
}

// NewConsumeNext builds a ConsumeNext frame.
func NewConsumeNext(topic string, partitionID int) Frame {
	return Frame{kind: KindConsumeNext, consumeNext: &ConsumeNextFrame{Topic: topic, PartitionID: partitionID}}
}

// NewResponse builds a Response frame. message may be nil.
func NewResponse(status Status, data []byte, message *string) Frame {
	return Frame{kind: KindResponse, response: &ResponseFrame{Status: status, Data: data, Message: message}}
}

// NewResponseOK is a convenience constructor for the common Ok case.
func NewResponseOK(data []byte, message string) Frame {
	return NewResponse(StatusOK(), data, &message)
}

// NewResponseError is a convenience constructor for the common Error case,
// where status and message carry the same text.
func NewResponseError(message string) Frame {
	return NewResponse(StatusError(message), nil, &message)
}

// Ping is the unit Ping frame.
func Ping() Frame { return Frame{kind: KindPing} }

// Pong is the unit Pong frame.
func Pong() Frame { return Frame{kind: KindPong} }

// AsProduce returns the frame's ProduceFrame and whether it holds one.
func (f Frame) AsProduce() (ProduceFrame, bool) {
	if f.kind != KindProduce {
		return ProduceFrame{}, false
	}
	return *f.produce, true
}

// AsConsume returns the frame's ConsumeFrame and whether it holds one.
func (f Frame) AsConsume() (ConsumeFrame, bool) {
	if f.kind != KindConsume {
		return ConsumeFrame{}, false
	}
	return *f.consume, true
}

// AsConsumeNext returns the frame's ConsumeNextFrame and whether it holds one.
func (f Frame) AsConsumeNext() (ConsumeNextFrame, bool) {
	if f.kind != KindConsumeNext {
		return ConsumeNextFrame{}, false
	}
	return *f.consumeNext, true
}

// AsResponse returns the frame's ResponseFrame and whether it holds one.
func (f Frame) AsResponse() (ResponseFrame, bool) {
	if f.kind != KindResponse {
		return ResponseFrame{}, false
	}
	return *f.response, true
}

// Equal reports whether two Frame values are equivalent. Defined so go-cmp
// (used by the roundtrip property test) can compare Frame despite its
// unexported fields without cmp.AllowUnexported.
func (f Frame) Equal(other Frame) bool {
	if f.kind != other.kind {
		return false
	}
	switch f.kind {
	case KindProduce:
		return f.produce.Topic == other.produce.Topic &&
			string(f.produce.Message) == string(other.produce.Message)
	case KindConsume:
		return *f.consume == *other.consume
	case KindConsumeNext:
		return *f.consumeNext == *other.consumeNext
	case KindResponse:
		a, b := f.response, other.response
		if !a.Status.Equal(b.Status) {
			return false
		}
		if string(a.Data) != string(b.Data) {
			return false
		}
		switch {
		case a.Message == nil && b.Message == nil:
			return true
		case a.Message == nil || b.Message == nil:
			return false
		default:
			return *a.Message == *b.Message
		}
	default: // Ping, Pong
		return true
	}
}

// taggedVariant is the single-key-object shape struct variants serialize as.
type taggedVariant struct {
	Produce     *ProduceFrame     `json:"Produce,omitempty"`
	Consume     *ConsumeFrame     `json:"Consume,omitempty"`
	ConsumeNext *ConsumeNextFrame `json:"ConsumeNext,omitempty"`
	Response    *ResponseFrame    `json:"Response,omitempty"`
}

func (f Frame) MarshalJSON() ([]byte, error) {
	switch f.kind {
	case KindPing:
		return json.Marshal("Ping")
	case KindPong:
		return json.Marshal("Pong")
	case KindProduce:
		return json.Marshal(taggedVariant{Produce: f.produce})
	case KindConsume:
		return json.Marshal(taggedVariant{Consume: f.consume})
	case KindConsumeNext:
		return json.Marshal(taggedVariant{ConsumeNext: f.consumeNext})
	case KindResponse:
		return json.Marshal(taggedVariant{Response: f.response})
	default:
		return nil, fmt.Errorf("protocol: unknown frame kind %v", f.kind)
	}
}

func (f *Frame) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		switch asString {
		case "Ping":
			*f = Ping()
		case "Pong":
			*f = Pong()
		default:
			return fmt.Errorf("protocol: unknown unit frame %q", asString)
		}
		return nil
	}

	var tv taggedVariant
	if err := json.Unmarshal(data, &tv); err != nil {
		return fmt.Errorf("protocol: invalid frame: %w", err)
	}
	switch {
	case tv.Produce != nil:
		*f = Frame{kind: KindProduce, produce: tv.Produce}
	case tv.Consume != nil:
		*f = Frame{kind: KindConsume, consume: tv.Consume}
	case tv.ConsumeNext != nil:
		*f = Frame{kind: KindConsumeNext, consumeNext: tv.ConsumeNext}
	case tv.Response != nil:
		*f = Frame{kind: KindResponse, response: tv.Response}
	default:
		return fmt.Errorf("protocol: frame object carries no known variant")
	}
	return nil
}
