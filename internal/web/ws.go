package web

import (
	"EyewearAdvisor/internal/service/diagnosis"
	"EyewearAdvisor/internal/service/survey"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const wsWriteTimeout = 10 * time.Second

// progressEvent сообщение о ходе генерации для страницы ожидания.
type progressEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message,omitempty"`
}

const stageError = "error"

var stageMessages = map[diagnosis.Stage]string{
	diagnosis.StageResult: busyResultText,
	diagnosis.StageImage:  busyImageText,
}

// handleProgress запускает генерацию для завершённой анкеты и сообщает этапы по websocket.
// Пока генерация идёт, сессия заблокирована и новые ответы не принимаются.
func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		http.Error(w, "no session", http.StatusBadRequest)
		return
	}
	sess, err := h.opts.Store.Get(r.Context(), c.Value)
	if err != nil {
		http.Error(w, "no session", http.StatusBadRequest)
		return
	}
	if h.opts.Engine.Phase(sess.State) != survey.PhaseComplete {
		http.Error(w, "survey is not complete", http.StatusConflict)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.logger.Warnw("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	send := func(ev progressEvent) {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(ev); err != nil {
			h.logger.Debugw("websocket write failed", "stage", ev.Stage, "error", err)
		}
	}

	doneSent := false
	_, err = h.generate(r.Context(), sess.ID, func(s diagnosis.Stage) {
		doneSent = doneSent || s == diagnosis.StageDone
		send(progressEvent{Stage: string(s), Message: stageMessages[s]})
	})
	if err != nil {
		msg := msgInternal
		if errors.Is(err, diagnosis.ErrGeneration) {
			msg = msgGeneration
		}
		h.logger.Errorw("Progress generation failed", "session", sess.ID, "error", err)
		send(progressEvent{Stage: stageError, Message: msg})
	} else if !doneSent {
		// Всё уже было сгенерировано другим запросом
		send(progressEvent{Stage: string(diagnosis.StageDone)})
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
}
