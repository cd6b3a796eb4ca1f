// Package pert valida estimativas de esforço no formato otimista /
// mais provável / pessimista antes do envio à API.
package pert

import (
	"strconv"
	"strings"
)

// Phases lista as quatro fases estimadas de toda tarefa, na ordem dos
// formulários.
var Phases = []string{"analiseModelagem", "execucao", "reteste", "documentacao"}

// Labels mapeia o nome de cada fase para o rótulo exibido ao usuário.
var Labels = map[string]string{
	"analiseModelagem": "Análise e Modelagem",
	"execucao":         "Execução",
	"reteste":          "Reteste",
	"documentacao":     "Documentação",
}

// Estimate carrega os valores crus de um formulário para uma fase.
type Estimate struct {
	Phase       string
	Optimistic  string
	MostLikely  string
	Pessimistic string
}

// Violation descreve uma falha de validação em uma fase.
type Violation struct {
	Phase  string
	Reason string
}

// Values devolve os três valores numéricos da estimativa. Só deve ser
// chamado após Validate não apontar violações para a fase.
func (e Estimate) Values() (o, m, p float64) {
	o, _ = strconv.ParseFloat(strings.TrimSpace(e.Optimistic), 64)
	m, _ = strconv.ParseFloat(strings.TrimSpace(e.MostLikely), 64)
	p, _ = strconv.ParseFloat(strings.TrimSpace(e.Pessimistic), 64)
	return o, m, p
}

// Validate verifica cada fase: os três valores precisam ser numéricos e
// respeitar otimista <= provável <= pessimista. Devolve a lista de
// violações; vazia significa estimativas válidas.
func Validate(estimates []Estimate) []Violation {
	var violations []Violation
	for _, est := range estimates {
		label := Labels[est.Phase]
		if label == "" {
			label = est.Phase
		}

		o, errO := parse(est.Optimistic)
		m, errM := parse(est.MostLikely)
		p, errP := parse(est.Pessimistic)
		if errO != nil || errM != nil || errP != nil {
			violations = append(violations, Violation{
				Phase:  est.Phase,
				Reason: "valores de " + label + " devem ser numéricos",
			})
			continue
		}

		if o > m || m > p {
			violations = append(violations, Violation{
				Phase:  est.Phase,
				Reason: "em " + label + ", otimista <= provável <= pessimista",
			})
		}
	}
	return violations
}

func parse(value string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(value), 64)
}
