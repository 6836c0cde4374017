package diagnosis

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete: результат запрошен до ответа на все вопросы.
	ErrIncomplete = errors.New("survey is not complete")
	// ErrNoResult: изображение запрошено до получения текстового результата.
	ErrNoResult = errors.New("text result is not generated yet")
	// ErrGeneration: внешний генератор вернул ошибку или ответ неожиданной формы.
	ErrGeneration = errors.New("generation failed")
)

// GenerationError описывает сбой одного обращения к генератору.
type GenerationError struct {
	Stage Stage
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Is позволяет проверять errors.Is(err, ErrGeneration).
func (e *GenerationError) Is(target error) bool { return target == ErrGeneration }

// IsGenerationError проверяет, является ли ошибка сбоем генерации.
func IsGenerationError(err error) bool {
	return errors.Is(err, ErrGeneration)
}
