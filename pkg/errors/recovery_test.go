package errors

import (
	"errors"
	"strings"
	"testing"
)

// TestRecover_WithPanic tests the Recover function when a panic occurs
func TestRecover_WithPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("test panic message")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error from recovered panic, got nil")
	}

	var panicErr *PanicError
	if !errors.As(err, &panicErr) {
		t.Fatalf("Expected PanicError, got %T", err)
	}

	if panicErr.Operation != "TestOperation" {
		t.Errorf("Expected operation 'TestOperation', got '%s'", panicErr.Operation)
	}
	if panicErr.PanicValue != "test panic message" {
		t.Errorf("Expected panic value 'test panic message', got '%v'", panicErr.PanicValue)
	}
	if panicErr.StackTrace == "" {
		t.Error("Expected non-empty stack trace")
	}

	expectedMsg := "panic in TestOperation: test panic message"
	if panicErr.Error() != expectedMsg {
		t.Errorf("Expected error message '%s', got '%s'", expectedMsg, panicErr.Error())
	}
	if Code(err) != CodePanic {
		t.Errorf("Code() = %s, want %s", Code(err), CodePanic)
	}
}

// TestRecover_WithoutPanic tests the Recover function when no panic occurs
func TestRecover_WithoutPanic(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}

	if err := testFunc(); err != nil {
		t.Fatalf("Expected no error when no panic occurs, got: %v", err)
	}
}

// TestRecover_WithExistingError keeps the original error as the cause
func TestRecover_WithExistingError(t *testing.T) {
	testFunc := func() (err error) {
		defer Recover(&err, "TestOperation")
		err = NewValueError("TestOperation", "bad value")
		panic("after error")
	}

	err := testFunc()
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !strings.Contains(err.Error(), "after error") {
		t.Errorf("Expected panic value in message, got %q", err.Error())
	}
	if !Is(err, ErrInvalidInput) {
		t.Error("Expected original error kind to survive wrapping")
	}
	var valErr *ValueError
	if !As(err, &valErr) {
		t.Error("Expected *ValueError in chain")
	}
}

// TestPanicError_String includes the stack trace
func TestPanicError_String(t *testing.T) {
	p := NewPanicError("kernel.Gram", 42)
	s := p.String()
	if !strings.Contains(s, "panic in kernel.Gram: 42") {
		t.Errorf("unexpected String(): %q", s)
	}
	if !strings.Contains(s, "Stack trace:") {
		t.Error("Expected stack trace section")
	}
}
