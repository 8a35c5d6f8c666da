package apiclient

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
)

// ErrRemote — общий признак ошибки удалённого API.
var ErrRemote = errors.New("ошибка удалённого API")

// GenericMessage — сообщение, когда сервер не прислал своего.
const GenericMessage = "Falha na comunicação com o servidor"

// RemoteError — ошибка удалённого API.
// Status == 0 означает сетевую ошибку (ответ не получен).
type RemoteError struct {
	Status  int
	Code    string
	Message string
	// Err — исходная причина (сеть, декодирование)
	Err error
}

// Error возвращает сообщение для пользователя.
func (e *RemoteError) Error() string {
	return e.Message
}

// Unwrap позволяет errors.Is(err, ErrRemote) и доступ к причине.
func (e *RemoteError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRemote, e.Err}
	}
	return []error{ErrRemote}
}

// StatusOf возвращает HTTP-статус ошибки API или 0.
func StatusOf(err error) int {
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// errorBody — формат ошибки API: {"error":{"code","message"}}.
type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// decodeError строит RemoteError из ответа с кодом != 2xx.
func decodeError(resp *http.Response) *RemoteError {
	re := &RemoteError{Status: resp.StatusCode, Message: GenericMessage}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		re.Code = body.Error.Code
		if msg := strings.TrimSpace(body.Error.Message); msg != "" {
			re.Message = msg
		}
	}
	return re
}
