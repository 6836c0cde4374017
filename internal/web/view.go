package web

import (
	"EyewearAdvisor/internal/service/diagnosis"
	"EyewearAdvisor/internal/service/share"
	"EyewearAdvisor/internal/service/survey"
	"html/template"
)

// Kind тип страницы.
type Kind string

const (
	KindQuestion Kind = "question"
	KindWait     Kind = "wait"
	KindResult   Kind = "result"
	KindError    Kind = "error"
)

const (
	busyResultText = "診断中..."
	busyImageText  = "画像を生成中..."
)

// View содержит всё, что нужно шаблону для отрисовки одной страницы.
type View struct {
	Kind Kind

	// Вопрос
	Question string
	Choices  []string
	Step     int
	Total    int

	// Ожидание
	BusyText string

	// Результат
	Result   string
	ImageURL template.URL
	ShareURL string

	// Ошибка
	Error    string
	CanRetry bool
}

// BuildView строит страницу по состоянию сессии. Ничего не генерирует и не меняет.
func BuildView(engine *survey.Engine, st survey.State, shareBaseURL string) View {
	if q, ok := engine.Current(st); ok {
		answered, total := engine.Progress(st)
		return View{
			Kind:     KindQuestion,
			Question: q.Text,
			Choices:  q.Choices,
			Step:     answered + 1,
			Total:    total,
		}
	}
	if !diagnosis.Ready(st) {
		busy := busyResultText
		if st.Result != "" {
			busy = busyImageText
		}
		return View{Kind: KindWait, BusyText: busy}
	}
	// URL пришла от генератора, в том числе data URL, шаблон не должен её вырезать.
	return View{
		Kind:     KindResult,
		Result:   st.Result,
		ImageURL: template.URL(st.ImageURL),
		ShareURL: share.Link(shareBaseURL, share.Message(st.Result)),
	}
}

// errorView страница ошибки.
func errorView(msg string, canRetry bool) View {
	return View{Kind: KindError, Error: msg, CanRetry: canRetry}
}
