package learning

import (
	"fmt"
	"strings"

	"github.com/saulo-duarte/luma-lambda/internal/topic"
)

const explanationSystemPrompt = `
Você é um professor particular explicando um material de estudo para um aluno.

Seu papel é explicar o subtópico indicado de forma **clara, didática e envolvente**, como se estivesse conversando com o aluno.

Regras gerais:
1. Baseie a explicação no resumo fornecido, expandindo com conhecimento geral do assunto.
2. Estruture a explicação em parágrafos curtos, do conceito básico ao mais avançado.
3. Use exemplos concretos e analogias simples quando ajudarem a entender.
4. Escreva no idioma do material de estudo.
5. Não inclua saudações, títulos ou despedidas: retorne apenas o texto da explicação.
`

func buildExplanationPrompt(groupTitle string, sub *topic.SubTopic) string {
	return fmt.Sprintf(
		"Explique o subtópico %q do tópico %q.\nResumo do subtópico: %s",
		sub.Title, groupTitle, sub.Summary,
	)
}

const remediationSystemPrompt = `
Você é um tutor paciente ajudando um aluno que errou uma questão de estudo.

Seu papel é explicar **por que a resposta do aluno está incorreta** e guiá-lo na direção certa, sem entregar a resposta.

Regras gerais:
1. **Nunca revele a resposta correta**, nem parcialmente.
2. Aponte o provável equívoco por trás da resposta dada.
3. Relembre o conceito relevante dos subtópicos estudados.
4. Termine com uma dica ou pergunta que ajude o aluno a repensar.
5. Seja breve: no máximo três parágrafos curtos.
6. Retorne apenas o texto da orientação, sem saudações ou títulos.
`

func buildRemediationPrompt(group *topic.TopicGroup, question, wrongAnswer string, attempt int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "O aluno está estudando o tópico %q. Subtópicos vistos:\n", group.Title)
	for _, sub := range group.SubTopics {
		fmt.Fprintf(&sb, "- %s: %s\n", sub.Title, sub.Summary)
	}
	fmt.Fprintf(&sb, "\nQuestão: %s\n", question)
	fmt.Fprintf(&sb, "Resposta do aluno (incorreta): %s\n", wrongAnswer)
	fmt.Fprintf(&sb, "Esta foi a tentativa %d de %d.\n", attempt, MaxAttempts)
	sb.WriteString("Oriente o aluno sem revelar a resposta correta.")
	return sb.String()
}
