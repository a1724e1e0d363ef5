package middleware

import (
	"encoding/json"
	"net/http"

	"go-shop-api/internal/model"
	"go-shop-api/pkg/apierror"
)

func writeAPIError(w http.ResponseWriter, apiErr *apierror.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{
		Status:  apiErr.HTTPStatus,
		Kind:    string(apiErr.Kind),
		Message: apiErr.Message,
		Errors:  apiErr.Fields,
	})
}
