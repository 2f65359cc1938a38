package apperr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			err:      New(CodeOutOfRangeVertex, "vertex 9000 >= n=128"),
			expected: "[OUT_OF_RANGE_VERTEX] vertex 9000 >= n=128",
		},
		{
			name:     "with underlying error",
			err:      Wrap(CodeUnreadableArtifact, "label-core-20.bin", errors.New("unexpected EOF")),
			expected: "[UNREADABLE_ARTIFACT] label-core-20.bin: unexpected EOF",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	underlying := errors.New("disk full")
	err := Wrap(CodeBudgetExceeded, "build aborted", underlying)

	assert.Equal(t, underlying, err.Unwrap())
}

func TestAppError_Is(t *testing.T) {
	err1 := New(CodeMalformedInput, "bad edge list 1")
	err2 := New(CodeMalformedInput, "bad edge list 2")
	err3 := New(CodeFatal, "different code")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, err3))
}

func TestIsOutOfRangeVertex(t *testing.T) {
	assert.True(t, IsOutOfRangeVertex(ErrOutOfRangeVertex))
	assert.False(t, IsOutOfRangeVertex(ErrMalformedInput))
	assert.False(t, IsOutOfRangeVertex(nil))
}

func TestIsMalformedInput(t *testing.T) {
	assert.True(t, IsMalformedInput(Wrap(CodeMalformedInput, "dup edge", errors.New("u==v"))))
	assert.False(t, IsMalformedInput(ErrFatal))
}

func TestIsBudgetExceeded(t *testing.T) {
	assert.True(t, IsBudgetExceeded(ErrBudgetExceeded))
	assert.False(t, IsBudgetExceeded(ErrNotFound))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"app error", New(CodeFatal, "core contradiction"), CodeFatal},
		{"wrapped app error", Wrap(CodeUnreadableArtifact, "bad header", errors.New("inner")), CodeUnreadableArtifact},
		{"standard error", errors.New("standard error"), CodeUnknown},
		{"nil error", nil, CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorCode(tt.err))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"app error", New(CodeFatal, "core contradiction"), "core contradiction"},
		{"standard error", errors.New("standard error"), "standard error"},
		{"nil error", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetErrorMessage(tt.err))
		})
	}
}
