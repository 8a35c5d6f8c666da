package model

import "time"

// Role — роль пользователя.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleExaminer  Role = "perito"
	RoleAssistant Role = "assistente"
)

// Valid проверяет, что роль входит в допустимый набор.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleExaminer, RoleAssistant:
		return true
	}
	return false
}

// CanWrite сообщает, разрешено ли роли изменять данные дел.
// Ассистент работает только на чтение.
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleExaminer
}

// UserStatus — статус учётной записи.
type UserStatus string

const (
	UserActive   UserStatus = "ativo"
	UserInactive UserStatus = "inativo"
)

// User — пользователь системы (Usuário).
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"nome"`
	Email     string     `json:"email"`
	Role      Role       `json:"cargo"`
	Status    UserStatus `json:"status"`
	CreatedAt time.Time  `json:"dataCriacao"`
	UpdatedAt time.Time  `json:"dataAtualizacao"`
}

// UserPatch — частичное обновление пользователя.
type UserPatch struct {
	Name   *string     `json:"nome,omitempty"`
	Email  *string     `json:"email,omitempty"`
	Role   *Role       `json:"cargo,omitempty"`
	Status *UserStatus `json:"status,omitempty"`
}

// Apply переносит заданные поля патча на пользователя.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
}

// Credential — хэш пароля пользователя. ID совпадает с ID пользователя.
// Хранится в отдельной коллекции и никогда не отдаётся через API.
type Credential struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"senhaHash"`
}

// CredentialPatch — замена хэша пароля.
type CredentialPatch struct {
	Email        *string `json:"email,omitempty"`
	PasswordHash *string `json:"senhaHash,omitempty"`
}

// Apply переносит заданные поля патча на учётные данные.
func (p CredentialPatch) Apply(c *Credential) {
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.PasswordHash != nil {
		c.PasswordHash = *p.PasswordHash
	}
}
