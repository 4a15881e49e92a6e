package brokererr

import (
	"errors"
	"testing"
)

func TestErrorStringIncludesKind(t *testing.T) {
	err := New(KindStorage, "topic already exists: t")
	want := "Storage: topic already exists: t"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrapIncludesCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(KindIO, "failed to bind", cause)
	if !errors.Is(err, cause) {
		t.Fatal("errors.Is: Wrap should unwrap to its cause")
	}
	want := "Io: failed to bind: disk full"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestMessageStripsKindPrefix(t *testing.T) {
	err := New(KindTopicNotFound, "Topic not found: t1")
	if got := Message(err); got != "Topic not found: t1" {
		t.Fatalf("Message() = %q, want %q", got, "Topic not found: t1")
	}
}

func TestMessageFallsBackForPlainErrors(t *testing.T) {
	plain := errors.New("plain failure")
	if got := Message(plain); got != "plain failure" {
		t.Fatalf("Message() = %q, want %q", got, "plain failure")
	}
}

func TestIsKind(t *testing.T) {
	err := New(KindBufferOverflow, "no room")
	if !IsKind(err, KindBufferOverflow) {
		t.Fatal("IsKind: expected true for matching kind")
	}
	if IsKind(err, KindStorage) {
		t.Fatal("IsKind: expected false for mismatched kind")
	}
	if IsKind(errors.New("not ours"), KindStorage) {
		t.Fatal("IsKind: expected false for a non-*Error")
	}
}
