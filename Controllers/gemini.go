package Controllers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Canned message bodies per type. These endpoints keep the /api/gemini shape
// the SPA calls, but the text comes from templates, not model inference.
var messageTemplates = map[string]string{
	"agendamento":   "Olá %s, tudo bem? Gostaria de confirmar nosso horário. %s Qualquer imprevisto, é só me avisar. — Com carinho, Dra. Mirelli.",
	"agradecimento": "Olá %s! Obrigada pela presença na sessão de hoje. %s Estou à disposição para o que precisar. — Com carinho, Dra. Mirelli.",
	"explicar":      "Olá %s, tudo bem? Sobre o tratamento: %s Qualquer dúvida, me escreva. — Com carinho, Dra. Mirelli.",
	"followup":      "Olá %s, como você está se sentindo desde nossa última sessão? %s — Com carinho, Dra. Mirelli.",
	"aniversario":   "Feliz aniversário, %s! 🎉 Desejo um ano de muita saúde e equilíbrio. %s — Com carinho, Dra. Mirelli.",
	"general":       "Olá %s, tudo bem? %s — Com carinho, Dra. Mirelli.",
}

type GenerateInput struct {
	MessageType string `json:"messageType"`
	Context     string `json:"context"`
	PatientName string `json:"patientName"`
	Tone        string `json:"tone"`
}

func GenerateText(c *gin.Context) {
	input := GenerateInput{MessageType: "general", PatientName: "Paciente"}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.PatientName == "" {
		input.PatientName = "Paciente"
	}

	template, ok := messageTemplates[input.MessageType]
	if !ok {
		template = messageTemplates["general"]
	}

	c.JSON(http.StatusOK, gin.H{"text": fmt.Sprintf(template, input.PatientName, input.Context)})
}

func GenerateStrategy(c *gin.Context) {
	var input struct {
		Niche string `json:"niche"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Niche == "" {
		input.Niche = "geral"
	}

	c.JSON(http.StatusOK, gin.H{
		"persona":         fmt.Sprintf("Paciente %s", input.Niche),
		"pains":           []string{"falta de tempo", "ansiedade"},
		"contentIdeas":    []string{"posts", "stories"},
		"outreachMessage": fmt.Sprintf("Olá! Tenho vagas para %s.", input.Niche),
	})
}
