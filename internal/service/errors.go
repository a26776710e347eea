package service

import (
	"context"
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"github.com/mmynk/eventsplit/internal/calculator"
	"github.com/mmynk/eventsplit/internal/models"
)

// toConnectError maps domain errors onto connect codes.
func toConnectError(err error) *connect.Error {
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}

	code := connect.CodeInternal
	switch {
	case errors.Is(err, models.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, models.ErrImproperState):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, models.ErrAlreadyExists):
		code = connect.CodeAlreadyExists
	case errors.Is(err, models.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, models.ErrInvalidAmount), errors.Is(err, calculator.ErrInvalidShareCount):
		code = connect.CodeInvalidArgument
	}
	return connect.NewError(code, err)
}

func invalidArgument(format string, args ...any) *connect.Error {
	return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf(format, args...))
}
