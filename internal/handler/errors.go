package handler

import (
	"net/http"

	"github.com/Junaid-Ahmadd/cart-booster-for-woocommerce/internal/usecase"

	"github.com/labstack/echo/v4"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// usecaseのエラーをHTTPに変換
func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, ErrorResponse{Error: he.Message})
	}

	//500
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// 更新系は {success:false, error} で返す
type FailureResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func writeFailure(c echo.Context, err error) error {
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, FailureResponse{Success: false, Error: he.Message})
	}
	return c.JSON(http.StatusInternalServerError, FailureResponse{Success: false, Error: "internal error"})
}
