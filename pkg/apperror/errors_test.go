package apperror

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		expected string
	}{
		{
			name:     "without field",
			err:      New(CodeNotFound, "courier not found"),
			expected: "[NOT_FOUND] courier not found",
		},
		{
			name:     "with field",
			err:      NewWithField(CodeBadRequest, "rating out of range", "rating"),
			expected: "[BAD_REQUEST] rating out of range (field: rating)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, CodeInternal, "wrapped")

	assert.ErrorIs(t, err, cause)
}

func TestGRPCStatus_MapsCodesCorrectly(t *testing.T) {
	tests := []struct {
		code     ErrorCode
		expected codes.Code
	}{
		{CodeBadRequest, codes.InvalidArgument},
		{CodeNotFound, codes.NotFound},
		{CodeConflict, codes.AlreadyExists},
		{CodeNoAvailableCouriers, codes.Unavailable},
		{CodeInternal, codes.Internal},
	}

	for _, tt := range tests {
		st := New(tt.code, "message").GRPCStatus()
		assert.Equal(t, tt.expected, st.Code())
	}
}

func TestToGRPC_PassesThroughExistingStatus(t *testing.T) {
	original := status.Error(codes.PermissionDenied, "denied")
	assert.Equal(t, original, ToGRPC(original))
}

func TestToGRPC_WrapsPlainError(t *testing.T) {
	err := ToGRPC(errors.New("plain"))
	st, ok := status.FromError(err)
	assert.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
}

func TestFromGRPC_RoundTrips(t *testing.T) {
	original := New(CodeConflict, "already assigned")
	grpcErr := ToGRPC(original)

	recovered := FromGRPC(grpcErr)
	assert.Equal(t, CodeConflict, recovered.Code)
	assert.Equal(t, "already assigned", recovered.Message)
}

func TestIs_MatchesCode(t *testing.T) {
	err := New(CodeNotFound, "missing")
	assert.True(t, Is(err, CodeNotFound))
	assert.False(t, Is(err, CodeConflict))
}

func TestCode_DefaultsToInternalForPlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, Code(errors.New("plain")))
}

func TestValidationErrors_CollectsMultipleErrors(t *testing.T) {
	v := NewValidationErrors()
	assert.False(t, v.HasErrors())

	v.AddError(CodeBadRequest, "missing name")
	v.AddErrorWithField(CodeBadRequest, "capacity must be positive", "capacity")

	assert.True(t, v.HasErrors())
	assert.Len(t, v.Errors, 2)
	assert.Equal(t, []string{
		"[BAD_REQUEST] missing name",
		"[BAD_REQUEST] capacity must be positive (field: capacity)",
	}, v.ErrorMessages())
}
