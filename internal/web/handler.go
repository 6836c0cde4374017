package web

import (
	"EyewearAdvisor/internal/service/diagnosis"
	"EyewearAdvisor/internal/service/session"
	"EyewearAdvisor/internal/service/survey"
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionCookie = "session_id"

const (
	msgBusy          = "処理中です。しばらくお待ちください。"
	msgInvalidChoice = "選択肢が正しくありません。"
	msgInternal      = "エラーが発生しました。もう一度お試しください。"
	msgGeneration    = "診断結果の生成に失敗しました。"
)

// Options зависимости обработчика.
type Options struct {
	Engine       *survey.Engine
	Diagnoser    *diagnosis.Diagnoser
	Store        session.Store
	Locker       *session.Locker
	ShareBaseURL string
	SessionTTL   time.Duration
	Logger       *zap.SugaredLogger
	// StartupErr фатальная ошибка запуска. Если задана, любая страница показывает её,
	// и анкета не отображается.
	StartupErr error
}

// Handler веб-интерфейс анкеты.
type Handler struct {
	opts     Options
	tmpl     *template.Template
	mux      *http.ServeMux
	upgrader websocket.Upgrader
	logger   *zap.SugaredLogger
}

func NewHandler(opts Options) (*Handler, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	if opts.Locker == nil {
		opts.Locker = session.NewLocker()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	h := &Handler{
		opts:   opts,
		tmpl:   tmpl,
		mux:    http.NewServeMux(),
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	h.mux.HandleFunc("GET /healthz", h.handleHealth)
	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	h.mux.HandleFunc("POST /answer", h.handleAnswer)
	h.mux.HandleFunc("POST /reset", h.handleReset)
	h.mux.HandleFunc("GET /ws", h.handleProgress)
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.opts.StartupErr != nil {
		if r.URL.Path == "/healthz" {
			http.Error(w, "misconfigured", http.StatusServiceUnavailable)
			return
		}
		h.render(w, http.StatusInternalServerError, errorView(h.opts.StartupErr.Error(), false))
		return
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// handleIndex показывает текущий вопрос, ожидание или результат.
// С ?sync=1 генерация выполняется прямо в запросе (без JavaScript).
func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, err := h.loadOrCreate(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}

	e := h.opts.Engine
	if e.Phase(sess.State) == survey.PhaseComplete && !diagnosis.Ready(sess.State) && r.URL.Query().Get("sync") == "1" {
		sess, err = h.generate(r.Context(), sess.ID, nil)
		if err != nil {
			h.fail(w, err)
			return
		}
		h.setSessionCookie(w, sess.ID)
	}
	h.render(w, http.StatusOK, BuildView(e, sess.State, h.opts.ShareBaseURL))
}

func (h *Handler) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess, err := h.loadOrCreate(w, r)
	if err != nil {
		h.fail(w, err)
		return
	}
	unlock, ok := h.opts.Locker.TryLock(sess.ID)
	if !ok {
		h.render(w, http.StatusConflict, errorView(msgBusy, true))
		return
	}
	defer unlock()

	// Перечитываем под блокировкой: параллельный запрос мог успеть изменить состояние.
	sess, err = h.opts.Store.Get(r.Context(), sess.ID)
	if err != nil {
		h.fail(w, err)
		return
	}

	next, err := h.opts.Engine.Advance(sess.State, r.PostFormValue("choice"))
	switch {
	case errors.Is(err, survey.ErrComplete):
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	case survey.IsInvalidChoice(err):
		h.logger.Warnw("Rejected answer", "session", sess.ID, "error", err)
		h.render(w, http.StatusBadRequest, errorView(msgInvalidChoice, true))
		return
	case err != nil:
		h.fail(w, err)
		return
	}

	sess.State = next
	if err := h.opts.Store.Save(r.Context(), sess); err != nil {
		h.fail(w, err)
		return
	}
	h.setSessionCookie(w, sess.ID)
	h.logger.Infow("Answer accepted", "session", sess.ID, "index", next.Index)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		unlock, ok := h.opts.Locker.TryLock(c.Value)
		if !ok {
			h.render(w, http.StatusConflict, errorView(msgBusy, true))
			return
		}
		err := h.opts.Store.Delete(r.Context(), c.Value)
		unlock()
		if err != nil {
			h.fail(w, err)
			return
		}
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// generate запускает генерацию под блокировкой сессии и сохраняет всё, что удалось получить.
func (h *Handler) generate(ctx context.Context, id string, progress func(diagnosis.Stage)) (*session.Session, error) {
	unlock := h.opts.Locker.Lock(id)
	defer unlock()

	sess, err := h.opts.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if diagnosis.Ready(sess.State) {
		return sess, nil
	}

	next, genErr := h.opts.Diagnoser.Ensure(ctx, sess.State, progress)
	if next.Result != sess.State.Result || next.ImageURL != sess.State.ImageURL {
		sess.State = next
		// Генерация уже оплачена, сохраняем даже при отменённом запросе.
		if err := h.opts.Store.Save(context.WithoutCancel(ctx), sess); err != nil {
			return nil, err
		}
	}
	if genErr != nil {
		return sess, genErr
	}
	return sess, nil
}

// loadOrCreate находит сессию по cookie или создаёт новую.
func (h *Handler) loadOrCreate(w http.ResponseWriter, r *http.Request) (*session.Session, error) {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		sess, err := h.opts.Store.Get(r.Context(), c.Value)
		if err == nil {
			return sess, nil
		}
		if !errors.Is(err, session.ErrNotFound) {
			return nil, err
		}
	}

	sess, err := h.opts.Store.Create(r.Context())
	if err != nil {
		return nil, err
	}
	h.setSessionCookie(w, sess.ID)
	h.logger.Infow("Session created", "session", sess.ID)
	return sess, nil
}

// setSessionCookie выдаёт cookie сессии. Вызывается после каждого Save:
// TTL хранилища отсчитывается от последнего сохранения.
func (h *Handler) setSessionCookie(w http.ResponseWriter, id string) {
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if h.opts.SessionTTL > 0 {
		cookie.MaxAge = int(h.opts.SessionTTL / time.Second)
	}
	http.SetCookie(w, cookie)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if diagnosis.IsGenerationError(err) {
		h.logger.Errorw("Generation error", "error", err)
		h.render(w, http.StatusBadGateway, errorView(msgGeneration, true))
		return
	}
	h.logger.Errorw("Request failed", "error", err)
	h.render(w, http.StatusInternalServerError, errorView(msgInternal, true))
}

func (h *Handler) render(w http.ResponseWriter, status int, v View) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, "page", v); err != nil {
		h.logger.Errorw("Template error", "kind", v.Kind, "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
