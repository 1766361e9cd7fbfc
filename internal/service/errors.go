package service

import "errors"

var (
	ErrNotFound     = errors.New("licitação não encontrada")
	ErrInvalidInput = errors.New("invalid input")
)
