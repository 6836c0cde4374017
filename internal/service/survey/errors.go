package survey

import (
	"errors"
	"fmt"
)

// ErrComplete возвращается при попытке ответить после завершения анкеты.
var ErrComplete = errors.New("survey already complete")

// ErrInvalidChoice: вариант не входит в список допустимых для текущего вопроса.
var ErrInvalidChoice = errors.New("invalid choice")

// InvalidChoiceError уточняет ErrInvalidChoice вопросом и присланным вариантом.
type InvalidChoiceError struct {
	Question string
	Choice   string
}

func (e *InvalidChoiceError) Error() string {
	return fmt.Sprintf("invalid choice %q for question %q", e.Choice, e.Question)
}

func (e *InvalidChoiceError) Unwrap() error { return ErrInvalidChoice }

// IsInvalidChoice проверяет, является ли ошибка ошибкой выбора.
func IsInvalidChoice(err error) bool {
	return errors.Is(err, ErrInvalidChoice)
}
