package web

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"
)

// validEmail retorna erro para e-mails inválidos.
func validEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("Informe o e-mail")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("E-mail inválido")
	}
	return nil
}

// validPassword verifica requisitos mínimos de senha.
func validPassword(password string) error {
	if len(password) < 8 {
		return errors.New("A senha deve ter pelo menos 8 caracteres")
	}
	return nil
}

// requireField garante valor não vazio em campo obrigatório.
func requireField(value, field string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("Informe o campo " + field)
	}
	return nil
}

// formFloat converte um campo numérico de formulário, tratando vazio como
// zero.
func formFloat(value string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(value), 64)
	return f
}

// formInt converte um campo inteiro com valor default.
func formInt(value string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return def
	}
	return n
}
