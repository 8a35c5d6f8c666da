// errors.go — ошибки сервисного слоя.
// Тексты показываются пользователю, поэтому на португальском.
package service

import "errors"

var (
	// ErrInvalidCredentials — неверный e-mail или пароль.
	ErrInvalidCredentials = errors.New("e-mail ou senha inválidos")
	// ErrInactiveUser — учётная запись отключена.
	ErrInactiveUser = errors.New("usuário inativo")
	// ErrInvalidToken — токен не прошёл проверку.
	ErrInvalidToken = errors.New("token inválido")
	// ErrAdminRegistration — самостоятельная регистрация администратора запрещена.
	ErrAdminRegistration = errors.New("cadastro de administrador não permitido")
	// ErrLocalAuthDisabled — сервер принимает только токены внешнего IdP.
	ErrLocalAuthDisabled = errors.New("autenticação local desativada")
)
