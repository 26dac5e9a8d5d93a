package errs

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorFormattingIncludesFieldsAndCause(t *testing.T) {
	err := New(
		"pool/manager",
		CodeInvalidTemplate,
		WithMessage("template required"),
		WithField("key", "bullet"),
		WithField("operation", "create"),
		WithField("  ", "ignored"),
		WithCause(errors.New("nil template")),
	)

	out := err.Error()
	if !strings.Contains(out, "component=pool/manager") {
		t.Fatalf("expected component marker in error string: %s", out)
	}
	if !strings.Contains(out, "code=invalid_template") {
		t.Fatalf("expected code in error string: %s", out)
	}
	if !strings.Contains(out, "message=\"template required\"") {
		t.Fatalf("expected message in error string: %s", out)
	}
	expectedFields := "fields=key=\"bullet\",operation=\"create\""
	if !strings.Contains(out, expectedFields) {
		t.Fatalf("expected fields %q in error string: %s", expectedFields, out)
	}
	if !strings.Contains(out, "cause=\"nil template\"") {
		t.Fatalf("expected wrapped cause in error string: %s", out)
	}
}

func TestErrorDefaultsUnknownComponentAndCode(t *testing.T) {
	err := New("   ", "")
	out := err.Error()
	if !strings.Contains(out, "component=unknown") || !strings.Contains(out, "code=unknown") {
		t.Fatalf("expected unknown defaults, got %s", out)
	}
}

func TestNilEnvelopeFormats(t *testing.T) {
	var e *E
	if got := e.Error(); got != "<nil>" {
		t.Fatalf("expected <nil>, got %s", got)
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	sentinel := errors.New("pool not found")
	err := New("pool/manager", CodeNotFound, WithCause(sentinel))
	if !errors.Is(err, sentinel) {
		t.Fatal("expected errors.Is to reach the cause")
	}
}

func TestIsMatchesCodeThroughWrapping(t *testing.T) {
	inner := New("pool", CodeForeignInstance)
	outer := New("pool/manager", CodeNotFound, WithCause(inner))
	wrapped := fmt.Errorf("spawn: %w", outer)

	if !Is(wrapped, CodeNotFound) {
		t.Fatal("expected outer code to match")
	}
	if !Is(wrapped, CodeForeignInstance) {
		t.Fatal("expected nested code to match")
	}
	if Is(wrapped, CodeDuplicateKey) {
		t.Fatal("unexpected match for absent code")
	}
	if Is(errors.New("plain"), CodeNotFound) {
		t.Fatal("plain errors never match")
	}
	if Is(nil, CodeNotFound) {
		t.Fatal("nil never matches")
	}
}
