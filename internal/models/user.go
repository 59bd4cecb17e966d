// Package models содержит доменные структуры Padayon: учётные записи,
// сессии, публикации Freedom Wall, сообщения сообщества и справочные
// данные. Структуры используются в бизнес-логике, хранилище и HTTP-слое.
package models

import "time"

// User is an email-based account. Anonymous identities never get a row.
type User struct {
	UUID         string    // account id, also the identity id once signed in
	Email        string    // unique, lower-cased
	PasswordHash string    // bcrypt hash
	CreatedAt    time.Time // assigned by the database
}
