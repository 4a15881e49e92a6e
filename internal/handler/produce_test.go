package handler

import (
	"testing"

	"github.com/dlworhd/meier/internal/protocol"
)

func mustOK(t *testing.T, f protocol.Frame) bool {
	t.Helper()
	rf, ok := f.AsResponse()
	if !ok {
		t.Fatalf("expected a Response frame, got %v", f.Kind())
	}
	return rf.Status.IsOK()
}

// TestHandleProduceSuccess mirrors spec scenario S1's produce half: a
// produce succeeds with the fixed success message and null data.
func TestHandleProduceSuccess(t *testing.T) {
	h := newTestHandlers(10, 1_000_000, 10_000_000)

	resp := h.HandleProduce("t", []byte{65, 66})
	rf, ok := resp.AsResponse()
	if !ok {
		t.Fatalf("HandleProduce returned a non-Response frame: %v", resp.Kind())
	}
	if !rf.Status.IsOK() {
		t.Fatalf("Status = Error(%s), want Ok", rf.Status.ErrorMessage())
	}
	if rf.Data != nil {
		t.Fatalf("Data = %v, want nil", rf.Data)
	}
	if rf.Message == nil || *rf.Message != "Message produced successfully" {
		t.Fatalf("Message = %v, want %q", rf.Message, "Message produced successfully")
	}
}

// TestHandleProduceTopicCapExceeded mirrors spec scenario S5: a third topic
// beyond max_topics=2 fails with the exact error text.
func TestHandleProduceTopicCapExceeded(t *testing.T) {
	h := newTestHandlers(2, 1_000_000, 10_000_000)

	if resp := h.HandleProduce("a", []byte("x")); !mustOK(t, resp) {
		t.Fatal("produce to a: expected Ok")
	}
	if resp := h.HandleProduce("b", []byte("x")); !mustOK(t, resp) {
		t.Fatal("produce to b: expected Ok")
	}

	resp := h.HandleProduce("c", []byte("x"))
	rf, _ := resp.AsResponse()
	if rf.Status.IsOK() {
		t.Fatal("produce to c: expected Error at topic cap")
	}
	const want = "Maximum topics limit reached: 2"
	if rf.Status.ErrorMessage() != want {
		t.Fatalf("ErrorMessage = %q, want %q", rf.Status.ErrorMessage(), want)
	}
	if rf.Message == nil || *rf.Message != want {
		t.Fatalf("Message = %v, want %q", rf.Message, want)
	}
}

func TestHandleProduceRoundRobinSurvivesEviction(t *testing.T) {
	h := newTestHandlers(10, 1, 1_000_000)

	if resp := h.HandleProduce("t", []byte{1}); !mustOK(t, resp) {
		t.Fatal("first produce: expected Ok")
	}

	// Round-robin sends the second produce to a different partition. It
	// still succeeds: the first produce's eviction loop already dropped [1]
	// when the count hit the 1-message cap, so the buffer was empty again.
	if resp := h.HandleProduce("t", []byte{2}); !mustOK(t, resp) {
		t.Fatal("second produce (different partition): expected Ok via eviction of the first")
	}
}
