package domain

import "github.com/cockroachdb/errors"

// Classes de erro do domínio. Quem chama embrulha com contexto e compara com errors.Is.
var (
	// ErrReference: a viagem referenciada não está no agendamento.
	ErrReference = errors.New("reference error")
	// ErrConsistency: o dado contradiz uma invariante do agendamento.
	ErrConsistency  = errors.New("consistency error")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
)
