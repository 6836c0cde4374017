package web

import (
	"EyewearAdvisor/internal/service/share"
	"EyewearAdvisor/internal/service/survey"
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completeState(t *testing.T, e *survey.Engine) survey.State {
	t.Helper()
	st := survey.NewState()
	for _, a := range answers {
		var err error
		st, err = e.Advance(st, a)
		require.NoError(t, err)
	}
	return st
}

func TestBuildView(t *testing.T) {
	e := survey.Default()

	t.Run("first question", func(t *testing.T) {
		v := BuildView(e, survey.NewState(), share.DefaultBaseURL)
		assert.Equal(t, KindQuestion, v.Kind)
		assert.Equal(t, "Q1. あなたの性別を選んでください", v.Question)
		assert.Equal(t, []string{"男性", "女性"}, v.Choices)
		assert.Equal(t, 1, v.Step)
		assert.Equal(t, 5, v.Total)
	})

	t.Run("complete without result waits", func(t *testing.T) {
		v := BuildView(e, completeState(t, e), share.DefaultBaseURL)
		assert.Equal(t, KindWait, v.Kind)
		assert.Equal(t, busyResultText, v.BusyText)
	})

	t.Run("result without image waits for image", func(t *testing.T) {
		st := completeState(t, e)
		st.Result = "Test"
		v := BuildView(e, st, share.DefaultBaseURL)
		assert.Equal(t, KindWait, v.Kind)
		assert.Equal(t, busyImageText, v.BusyText)
	})

	t.Run("result", func(t *testing.T) {
		st := completeState(t, e)
		st.Result = "Test"
		st.ImageURL = "http://example.com/image.jpg"
		v := BuildView(e, st, share.DefaultBaseURL)
		assert.Equal(t, KindResult, v.Kind)
		assert.Equal(t, "Test", v.Result)
		assert.Equal(t, template.URL("http://example.com/image.jpg"), v.ImageURL)
		assert.Equal(t, share.Link(share.DefaultBaseURL, share.Message("Test")), v.ShareURL)
	})

	t.Run("does not mutate state", func(t *testing.T) {
		st := completeState(t, e)
		before := st.Clone()
		_ = BuildView(e, st, share.DefaultBaseURL)
		assert.Equal(t, before, st)
	})
}
