package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wonny/mcrisk/internal/risk"
)

// ErrorResponse 에러 응답 본문
type ErrorResponse struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

// StatusForError 에러 분류 → HTTP 상태
// ⭐ SSOT: 에러 → 상태코드 매핑은 여기서만
func StatusForError(err error) int {
	switch {
	case errors.Is(err, risk.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, risk.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, risk.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, risk.ErrDataUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondJSON 버퍼에 먼저 인코딩 (NaN/Inf 등 인코딩 실패 시 빈 200 대신 500)
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(ErrorResponse{Error: "failed to encode response"})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// respondRiskError 분류된 에러 응답 (500은 내부 메시지 노출 안 함)
func respondRiskError(w http.ResponseWriter, err error) {
	status := StatusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondJSON(w, status, ErrorResponse{
		Error:     message,
		Retryable: risk.IsRetryable(err),
	})
}
