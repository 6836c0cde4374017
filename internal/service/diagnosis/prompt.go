package diagnosis

import (
	"EyewearAdvisor/internal/service/survey"
	"fmt"
)

// MaxDescriptionChars ограничение длины описания, которое передаётся модели.
const MaxDescriptionChars = 250

const resultTemplate = `You are a professional eyewear designer. Based on the following user preferences, recommend the best eyeglass design for a %s.

Face Impression: %s
Desired Atmosphere: %s
Fashion Style: %s
Usage Scene: %s

Provide the eyeglass design name and a stylish description in %s (within %d characters).`

// ResultPrompt собирает промпт для текстовой модели. answers: ответы по ключам ролей вопросов.
func ResultPrompt(answers map[string]string, language string) string {
	if language == "" {
		language = "Japanese"
	}
	return fmt.Sprintf(resultTemplate,
		answers[survey.KeyGender],
		answers[survey.KeyFace],
		answers[survey.KeyAtmosphere],
		answers[survey.KeyStyle],
		answers[survey.KeyScene],
		language,
		MaxDescriptionChars,
	)
}

// ImagePrompt собирает промпт для модели изображений. Зависит только от пола.
func ImagePrompt(gender string) string {
	return "A simple and stylish " + gender + " eyeglass design. Minimalist, clean, no text, no background elements."
}
