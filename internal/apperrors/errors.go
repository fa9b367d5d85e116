package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrInvalidPassword   = errors.New("invalid password")

	ErrTokenMissing = errors.New("token missing")
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")

	ErrArticleNotFound     = errors.New("article not found")
	ErrArticleAccessDenied = errors.New("article access denied")

	ErrCommentNotFound     = errors.New("comment not found")
	ErrCommentAccessDenied = errors.New("comment access denied")

	ErrAssociationExists   = errors.New("association already exists")
	ErrAssociationNotFound = errors.New("association not found")
)
