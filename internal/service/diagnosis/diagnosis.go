package diagnosis

import (
	"EyewearAdvisor/internal/ai"
	"EyewearAdvisor/internal/service/survey"
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Stage этап генерации, о котором сообщается наблюдателю прогресса.
type Stage string

const (
	StageResult Stage = "result"
	StageImage  Stage = "image"
	StageDone   Stage = "done"
)

const defaultTimeout = 90 * time.Second

// Options параметры генерации.
type Options struct {
	Language string        // Язык описания, по умолчанию Japanese
	Timeout  time.Duration // Таймаут одного обращения к генератору
}

// Diagnoser строит промпты из ответов и обращается к генераторам.
// Результаты запоминаются в состоянии сессии, поэтому каждый генератор вызывается не более одного раза.
type Diagnoser struct {
	engine *survey.Engine
	text   ai.TextGenerator
	image  ai.ImageGenerator
	opts   Options
	logger *zap.SugaredLogger
}

func New(engine *survey.Engine, text ai.TextGenerator, image ai.ImageGenerator, opts Options, logger *zap.SugaredLogger) *Diagnoser {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Language == "" {
		opts.Language = "Japanese"
	}
	return &Diagnoser{engine: engine, text: text, image: image, opts: opts, logger: logger}
}

// GenerateResult запрашивает текст рекомендации. Если результат уже есть, возвращает состояние как есть.
func (d *Diagnoser) GenerateResult(ctx context.Context, st survey.State) (survey.State, error) {
	if st.Result != "" {
		return st, nil
	}
	if d.engine.Phase(st) != survey.PhaseComplete {
		return st, ErrIncomplete
	}
	answers, err := d.engine.AnswersByKey(st)
	if err != nil {
		return st, fmt.Errorf("%w: %v", ErrIncomplete, err)
	}

	prompt := ResultPrompt(answers, d.opts.Language)
	text, err := d.call(ctx, StageResult, func(ctx context.Context) (string, error) {
		return d.text.GenerateText(ctx, prompt)
	})
	if err != nil {
		return st, err
	}

	next := st.Clone()
	next.Result = text
	return next, nil
}

// GenerateImage запрашивает изображение дизайна. Требует готовый текстовый результат.
func (d *Diagnoser) GenerateImage(ctx context.Context, st survey.State) (survey.State, error) {
	if st.ImageURL != "" {
		return st, nil
	}
	if st.Result == "" {
		return st, ErrNoResult
	}
	gender, ok := d.engine.Answer(st, survey.KeyGender)
	if !ok {
		return st, fmt.Errorf("%w: no gender answer", ErrIncomplete)
	}

	prompt := ImagePrompt(gender)
	url, err := d.call(ctx, StageImage, func(ctx context.Context) (string, error) {
		return d.image.GenerateImage(ctx, prompt)
	})
	if err != nil {
		return st, err
	}

	next := st.Clone()
	next.ImageURL = url
	return next, nil
}

// Ensure выполняет оба этапа по порядку. progress может быть nil.
// При ошибке возвращается состояние с тем, что успело сгенерироваться.
func (d *Diagnoser) Ensure(ctx context.Context, st survey.State, progress func(Stage)) (survey.State, error) {
	report := func(s Stage) {
		if progress != nil {
			progress(s)
		}
	}
	if st.Result == "" {
		report(StageResult)
		next, err := d.GenerateResult(ctx, st)
		if err != nil {
			return st, err
		}
		st = next
	}
	if st.ImageURL == "" {
		report(StageImage)
		next, err := d.GenerateImage(ctx, st)
		if err != nil {
			return st, err
		}
		st = next
	}
	report(StageDone)
	return st, nil
}

// Ready сообщает, что оба результата уже получены.
func Ready(st survey.State) bool {
	return st.Result != "" && st.ImageURL != ""
}

func (d *Diagnoser) call(parent context.Context, stage Stage, fn func(ctx context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeoutCause(parent, d.opts.Timeout, errors.New("generation timeout"))
	defer cancel()

	start := time.Now()
	out, err := fn(ctx)
	if err == nil && out == "" {
		err = ai.ErrEmptyResponse
	}
	if err != nil {
		if cause := context.Cause(ctx); cause != nil && ctx.Err() != nil {
			err = fmt.Errorf("%w (%v)", err, cause)
		}
		d.logger.Errorw("Generation failed", "stage", stage, "duration", time.Since(start).String(), "error", err)
		return "", &GenerationError{Stage: stage, Err: err}
	}
	d.logger.Infow("Generation done", "stage", stage, "duration", time.Since(start).String())
	return out, nil
}
