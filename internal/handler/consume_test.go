package handler

import (
	"strings"
	"testing"
)

// TestHandleConsumeByOffset mirrors spec scenario S1's consume half.
func TestHandleConsumeByOffset(t *testing.T) {
	h := newTestHandlers(10, 1_000_000, 10_000_000)
	h.HandleProduce("t", []byte{65, 66})

	resp := h.HandleConsume("t", 0, 0)
	rf, ok := resp.AsResponse()
	if !ok {
		t.Fatalf("HandleConsume returned a non-Response frame: %v", resp.Kind())
	}
	if !rf.Status.IsOK() {
		t.Fatalf("Status = Error(%s), want Ok", rf.Status.ErrorMessage())
	}
	if string(rf.Data) != "AB" {
		t.Fatalf("Data = %q, want %q", rf.Data, "AB")
	}
	if rf.Message == nil || *rf.Message != "AB" {
		t.Fatalf("Message = %v, want %q", rf.Message, "AB")
	}
}

// TestHandleConsumeUnknownTopic mirrors spec scenario S6.
func TestHandleConsumeUnknownTopic(t *testing.T) {
	h := newTestHandlers(10, 1_000_000, 10_000_000)

	resp := h.HandleConsume("nope", 0, 0)
	rf, _ := resp.AsResponse()
	if rf.Status.IsOK() {
		t.Fatal("expected Error for unknown topic")
	}
	const want = "Topic not found: nope"
	if rf.Status.ErrorMessage() != want {
		t.Fatalf("ErrorMessage = %q, want %q", rf.Status.ErrorMessage(), want)
	}
}

func TestHandleConsumeUnknownPartition(t *testing.T) {
	h := newTestHandlers(10, 1_000_000, 10_000_000)
	h.HandleProduce("t", []byte("x"))

	resp := h.HandleConsume("t", 99, 0)
	rf, _ := resp.AsResponse()
	if rf.Status.IsOK() {
		t.Fatal("expected Error for unknown partition id")
	}
}

func TestHandleConsumeOffsetOutOfRange(t *testing.T) {
	h := newTestHandlers(10, 1_000_000, 10_000_000)
	h.HandleProduce("t", []byte("x"))

	resp := h.HandleConsume("t", 0, 5)
	rf, _ := resp.AsResponse()
	if rf.Status.IsOK() {
		t.Fatal("expected Error for out-of-range offset")
	}
	if !strings.HasPrefix(rf.Status.ErrorMessage(), "Current offset: 0 Requested offset: 5") {
		t.Fatalf("ErrorMessage = %q, want prefix %q", rf.Status.ErrorMessage(), "Current offset: 0 Requested offset: 5")
	}
}

// TestHandleConsumeNextEmptyPartition mirrors spec scenario S2: a
// consume-next on an empty partition is Ok, not Error.
func TestHandleConsumeNextEmptyPartition(t *testing.T) {
	h := newTestHandlers(10, 1_000_000, 10_000_000)
	h.HandleProduce("t2", []byte("seed")) // lazily creates the topic

	resp := h.HandleConsumeNext("t2", 1) // round-robin put "seed" on partition 0
	rf, ok := resp.AsResponse()
	if !ok {
		t.Fatalf("HandleConsumeNext returned a non-Response frame: %v", resp.Kind())
	}
	if !rf.Status.IsOK() {
		t.Fatalf("Status = Error(%s), want Ok", rf.Status.ErrorMessage())
	}
	if rf.Data != nil {
		t.Fatalf("Data = %v, want nil", rf.Data)
	}
	if rf.Message == nil || !strings.HasPrefix(*rf.Message, "No new messages.") {
		t.Fatalf("Message = %v, want prefix %q", rf.Message, "No new messages.")
	}
}

// TestHandleConsumeNextAdvancesOffset mirrors spec scenario S3.
func TestHandleConsumeNextAdvancesOffset(t *testing.T) {
	h := newTestHandlers(10, 1_000_000, 10_000_000)
	h.HandleProduce("t", []byte{1}) // partition 0
	h.HandleProduce("t", []byte{2}) // partition 1

	resp := h.HandleConsumeNext("t", 0)
	rf, _ := resp.AsResponse()
	if !rf.Status.IsOK() {
		t.Fatalf("first ConsumeNext: Status = Error(%s), want Ok", rf.Status.ErrorMessage())
	}
	if rf.Message == nil || !strings.HasPrefix(*rf.Message, "offset=0:") {
		t.Fatalf("first ConsumeNext Message = %v, want prefix %q", rf.Message, "offset=0:")
	}

	resp = h.HandleConsumeNext("t", 0)
	rf, _ = resp.AsResponse()
	if !rf.Status.IsOK() {
		t.Fatalf("second ConsumeNext: Status = Error(%s), want Ok", rf.Status.ErrorMessage())
	}
	if rf.Data != nil {
		t.Fatalf("second ConsumeNext Data = %v, want nil (partition now empty)", rf.Data)
	}
}
