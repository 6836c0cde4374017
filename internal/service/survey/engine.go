package survey

import (
	"fmt"
	"maps"
)

// State состояние одной сессии анкеты.
// Index растёт ровно на единицу на каждый принятый ответ и лежит в [0, N].
// Result задаётся только после завершения анкеты, ImageURL только после Result.
type State struct {
	Index    int               `json:"index"`
	Answers  map[string]string `json:"answers"`
	Result   string            `json:"result,omitempty"`
	ImageURL string            `json:"image_url,omitempty"`
}

// NewState возвращает начальное состояние Asking(0).
func NewState() State {
	return State{Answers: make(map[string]string)}
}

// Clone возвращает копию состояния с независимой картой ответов.
func (s State) Clone() State {
	s.Answers = maps.Clone(s.Answers)
	if s.Answers == nil {
		s.Answers = make(map[string]string)
	}
	return s
}

// Phase фаза конечного автомата анкеты.
type Phase int

const (
	PhaseAsking Phase = iota
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseAsking:
		return "asking"
	case PhaseComplete:
		return "complete"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Engine хранит упорядоченный список вопросов и выполняет переходы Asking(i) -> Asking(i+1) -> Complete.
type Engine struct {
	questions []Question
}

// NewEngine проверяет список вопросов и создаёт движок. Вопросы копируются.
func NewEngine(questions []Question) (*Engine, error) {
	if err := validate(questions); err != nil {
		return nil, err
	}
	qs := make([]Question, len(questions))
	for i, q := range questions {
		qs[i] = q.clone()
	}
	return &Engine{questions: qs}, nil
}

// Default возвращает движок со встроенными вопросами.
func Default() *Engine {
	e, err := NewEngine(DefaultQuestions())
	if err != nil {
		panic(err)
	}
	return e
}

// Len количество вопросов.
func (e *Engine) Len() int { return len(e.questions) }

// Question возвращает i-й вопрос.
func (e *Engine) Question(i int) (Question, bool) {
	if i < 0 || i >= len(e.questions) {
		return Question{}, false
	}
	return e.questions[i].clone(), true
}

// ByKey возвращает вопрос с заданной ролью.
func (e *Engine) ByKey(key string) (Question, bool) {
	for _, q := range e.questions {
		if q.Key == key {
			return q.clone(), true
		}
	}
	return Question{}, false
}

// Phase определяет фазу состояния.
func (e *Engine) Phase(st State) Phase {
	if st.Index >= len(e.questions) {
		return PhaseComplete
	}
	return PhaseAsking
}

// Current возвращает текущий вопрос; false, если анкета завершена.
func (e *Engine) Current(st State) (Question, bool) {
	if e.Phase(st) == PhaseComplete {
		return Question{}, false
	}
	return e.Question(st.Index)
}

// Progress возвращает число отвеченных вопросов и их общее количество.
func (e *Engine) Progress(st State) (answered, total int) {
	return min(max(st.Index, 0), len(e.questions)), len(e.questions)
}

// Advance записывает ответ на текущий вопрос и переходит к следующему.
// Исходное состояние не изменяется.
func (e *Engine) Advance(st State, choice string) (State, error) {
	q, ok := e.Current(st)
	if !ok {
		return st, ErrComplete
	}
	if !q.HasChoice(choice) {
		return st, &InvalidChoiceError{Question: q.Text, Choice: choice}
	}
	next := st.Clone()
	next.Answers[q.Text] = choice
	next.Index++
	return next, nil
}

// Answer возвращает ответ на вопрос с заданной ролью.
func (e *Engine) Answer(st State, key string) (string, bool) {
	q, ok := e.ByKey(key)
	if !ok {
		return "", false
	}
	a, ok := st.Answers[q.Text]
	return a, ok
}

// AnswersByKey собирает ответы по ролям. Ошибка, если на какой-либо обязательный вопрос нет ответа.
func (e *Engine) AnswersByKey(st State) (map[string]string, error) {
	out := make(map[string]string, len(requiredKeys))
	for _, k := range requiredKeys {
		a, ok := e.Answer(st, k)
		if !ok {
			return nil, fmt.Errorf("no answer for %q", k)
		}
		out[k] = a
	}
	return out, nil
}
