package survey

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Ключи ролей вопросов. По ним генераторы находят нужные ответы при сборке промптов.
const (
	KeyGender     = "gender"
	KeyFace       = "face"
	KeyAtmosphere = "atmosphere"
	KeyStyle      = "style"
	KeyScene      = "scene"
)

var requiredKeys = []string{KeyGender, KeyFace, KeyAtmosphere, KeyStyle, KeyScene}

// Question неизменяемый вопрос анкеты. Text уникален и служит ключом в наборе ответов.
type Question struct {
	Key     string   `yaml:"key"`
	Text    string   `yaml:"text"`
	Choices []string `yaml:"choices"`
}

// HasChoice проверяет, входит ли вариант в список допустимых.
func (q Question) HasChoice(choice string) bool {
	return slices.Contains(q.Choices, choice)
}

func (q Question) clone() Question {
	q.Choices = slices.Clone(q.Choices)
	return q
}

// DefaultQuestions возвращает пять вопросов диагностики (Q1: пол).
func DefaultQuestions() []Question {
	return []Question{
		{Key: KeyGender, Text: "Q1. あなたの性別を選んでください", Choices: []string{"男性", "女性"}},
		{Key: KeyFace, Text: "Q2. あなたの顔の印象に近いのは？", Choices: []string{"丸みがあり、やわらかい印象", "直線的で、シャープな印象", "スッキリと縦のラインが際立つ"}},
		{Key: KeyAtmosphere, Text: "Q3. あなたの理想の雰囲気は？", Choices: []string{"知的で洗練された印象", "柔らかく親しみやすい雰囲気", "独自のスタイルを際立たせたい"}},
		{Key: KeyStyle, Text: "Q4. あなたのファッションスタイルは？", Choices: []string{"シンプルで洗練されたスタイル", "自然体でリラックスしたファッション", "個性的でトレンドを意識"}},
		{Key: KeyScene, Text: "Q5. 眼鏡を主に使うシーンは？", Choices: []string{"仕事やフォーマルな場面で活躍させたい", "日常の相棒として、自然に取り入れたい", "ファッションのアクセントとして楽しみたい"}},
	}
}

type questionsFile struct {
	Questions []Question `yaml:"questions"`
}

// LoadQuestions читает альтернативный список вопросов из YAML-файла вида
//
//	questions:
//	  - key: gender
//	    text: "Q1. ..."
//	    choices: ["男性", "女性"]
func LoadQuestions(path string) ([]Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read questions file: %w", err)
	}
	var f questionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse questions file %s: %w", path, err)
	}
	if err := validate(f.Questions); err != nil {
		return nil, fmt.Errorf("questions file %s: %w", path, err)
	}
	return f.Questions, nil
}

func validate(questions []Question) error {
	if len(questions) == 0 {
		return errors.New("no questions")
	}
	texts := make(map[string]struct{}, len(questions))
	keys := make(map[string]int, len(questions))
	for i, q := range questions {
		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d: empty text", i+1)
		}
		if _, dup := texts[q.Text]; dup {
			return fmt.Errorf("question %d: duplicate text %q", i+1, q.Text)
		}
		texts[q.Text] = struct{}{}
		if len(q.Choices) == 0 {
			return fmt.Errorf("question %d: no choices", i+1)
		}
		if q.Key != "" {
			keys[q.Key]++
		}
	}
	for _, k := range requiredKeys {
		switch keys[k] {
		case 0:
			return fmt.Errorf("missing question with key %q", k)
		case 1:
		default:
			return fmt.Errorf("key %q used %d times", k, keys[k])
		}
	}
	return nil
}
