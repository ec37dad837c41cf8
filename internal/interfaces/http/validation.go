package http

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/jhoicas/cargo-placement/internal/application/dto"
)

var validate = validator.New()

// validationError valida los tags `validate` del DTO; nil si es válido.
func validationError(in any) *dto.ErrorResponse {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return &dto.ErrorResponse{Code: "VALIDATION", Message: strings.Join(msgs, "; ")}
}
