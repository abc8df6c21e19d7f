package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestAppErrorMessage(t *testing.T) {
	cause := stderrors.New("tesseract: no image")
	err := Wrap(cause, OCRFailed, "recognize options").WithMetadata("region", "options")

	msg := err.Error()
	for _, want := range []string{"[OCR_FAILED]", "recognize options", "region:options", "caused by: tesseract: no image"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
	if !stderrors.Is(err, cause) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestCodeOfThroughWrapping(t *testing.T) {
	err := fmt.Errorf("step: %w", New(NoPrompt, "no letters"))

	if CodeOf(err) != NoPrompt {
		t.Errorf("CodeOf = %v, want %v", CodeOf(err), NoPrompt)
	}
	if !IsCode(err, NoPrompt) {
		t.Error("IsCode should see through fmt wrapping")
	}
	if CodeOf(nil) != CodeUnspecified {
		t.Errorf("CodeOf(nil) = %v, want UNSPECIFIED", CodeOf(nil))
	}
	if CodeOf(stderrors.New("plain")) != Unknown {
		t.Error("plain errors should map to UNKNOWN")
	}
}

func TestIsSkip(t *testing.T) {
	tests := []struct {
		code Code
		want bool
	}{
		{NoChange, true},
		{NoPrompt, true},
		{NoTranslation, true},
		{NoMatch, true},
		{OCRFailed, false},
		{CaptureFailed, false},
		{Internal, false},
	}

	for _, tt := range tests {
		if got := IsSkip(New(tt.code, "x")); got != tt.want {
			t.Errorf("IsSkip(%v) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(New(Unavailable, "down")) {
		t.Error("UNAVAILABLE should be retryable")
	}
	if !IsRetryable(New(RateLimited, "slow down")) {
		t.Error("RATE_LIMITED should be retryable")
	}
	if IsRetryable(New(InvalidArgument, "bad")) {
		t.Error("INVALID_ARGUMENT should not be retryable")
	}
	if IsRetryable(stderrors.New("plain")) {
		t.Error("plain errors should not be retryable")
	}
}

func TestFromGRPCError(t *testing.T) {
	err := FromGRPCError(status.Error(codes.Unavailable, "sidecar down"))

	if err.Code != Unavailable {
		t.Errorf("Code = %v, want %v", err.Code, Unavailable)
	}
	if err.Metadata["grpc_code"] != codes.Unavailable.String() {
		t.Errorf("grpc_code metadata = %q", err.Metadata["grpc_code"])
	}

	plain := FromGRPCError(stderrors.New("boom"))
	if plain.Code != Unknown {
		t.Errorf("non-status error Code = %v, want UNKNOWN", plain.Code)
	}

	orig := New(OCRFailed, "already typed")
	if FromGRPCError(orig) != orig {
		t.Error("AppError should pass through unchanged")
	}
}

func TestCodeString(t *testing.T) {
	if NoMatch.String() != "NO_MATCH" {
		t.Errorf("NoMatch.String() = %q", NoMatch.String())
	}
	if Code(999).String() != "CODE(999)" {
		t.Errorf("unknown code String() = %q", Code(999).String())
	}
}
