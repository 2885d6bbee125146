package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string) Response {
	return Response{Success: false, Message: message}
}

var validate = validator.New()

// ValidateRequest runs struct tag validation and converts the first failure
// into a client-facing 400.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return fiber.NewError(fiber.StatusBadRequest,
				"validation failed on field '"+first.Field()+"' ("+first.Tag()+")")
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	return nil
}

// ErrorHandlerMiddleware converts unhandled errors into the JSON envelope.
// Internal error details stay in the logs, not the response.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}
