package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kbukum/linguacast/auth"
	"github.com/kbukum/linguacast/auth/authctx"
	apperrors "github.com/kbukum/linguacast/errors"
	"github.com/kbukum/linguacast/history"
	"github.com/kbukum/linguacast/logger"
	"github.com/kbukum/linguacast/observability"
	"github.com/kbukum/linguacast/pipeline"
	"github.com/kbukum/linguacast/server"
	"github.com/kbukum/linguacast/server/middleware"
)

// Messages returned in 200 bodies by GET /translate.
const (
	MsgEmptyText   = "Please enter text to translate"
	MsgRateLimited = "Translation service is rate limited. Please try again in a few seconds."
	MsgRunning     = "AI Translator API is running"
)

// Processor runs the speech pipeline over one WAV buffer.
type Processor interface {
	ProcessBytes(ctx context.Context, data []byte, src, tgt, userID string) pipeline.Response
}

// TextTranslator translates plain text. On failure it returns the input
// text together with the error.
type TextTranslator interface {
	Translate(ctx context.Context, text, src, tgt string) (string, error)
}

// TranslateResponse is the success body of GET /translate.
type TranslateResponse struct {
	OriginalText   string `json:"original_text"`
	TranslatedText string `json:"translated_text"`
}

// Deps are the collaborators of the API handlers. Repo, Recorder, Validator
// and Metrics are optional.
type Deps struct {
	Processor  Processor
	Translator TextTranslator
	Repo       history.Repository
	Recorder   history.Recorder
	Validator  auth.TokenValidator
	Hub        *Hub
	Metrics    *observability.Metrics
	Logger     *logger.Logger
}

// Handlers serves the public HTTP and websocket API.
type Handlers struct {
	cfg        Config
	processor  Processor
	translator TextTranslator
	repo       history.Repository
	recorder   history.Recorder
	validator  auth.TokenValidator
	hub        *Hub
	metrics    *observability.Metrics
	log        *logger.Logger
	upgrader   websocket.Upgrader
}

// NewHandlers validates deps and builds the handlers.
func NewHandlers(cfg Config, deps Deps) (*Handlers, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Processor == nil {
		return nil, apperrors.MissingField("processor")
	}
	if deps.Translator == nil {
		return nil, apperrors.MissingField("translator")
	}
	log := deps.Logger
	if log == nil {
		log = logger.WithComponent("api")
	}
	hub := deps.Hub
	if hub == nil {
		hub = NewHub(log)
	}
	h := &Handlers{
		cfg:        cfg,
		processor:  deps.Processor,
		translator: deps.Translator,
		repo:       deps.Repo,
		recorder:   deps.Recorder,
		validator:  deps.Validator,
		hub:        hub,
		metrics:    deps.Metrics,
		log:        log,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(cfg.WebSocket.AllowedOrigins),
	}
	return h, nil
}

// Hub returns the session hub.
func (h *Handlers) Hub() *Hub { return h.hub }

// Register mounts the routes on r.
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/translate",
		middleware.OptionalAuth(h.validator),
		middleware.RateLimit(h.cfg.RateLimit),
		h.Translate)
	r.GET("/translations", middleware.RequireAuth(h.validator), h.Translations)
	r.GET("/ws/:client_id", middleware.OptionalAuth(h.validator), h.WebSocket)
}

func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": MsgRunning})
}

// Translate handles GET /translate.
func (h *Handlers) Translate(c *gin.Context) {
	text := c.Query("text")
	src := c.Query("source_lang")
	tgt := c.Query("target_lang")
	if src == "" {
		server.RespondWithError(c, apperrors.MissingField("source_lang"))
		return
	}
	if tgt == "" {
		server.RespondWithError(c, apperrors.MissingField("target_lang"))
		return
	}
	if strings.TrimSpace(text) == "" {
		c.JSON(http.StatusOK, gin.H{"error": MsgEmptyText})
		return
	}

	ctx := c.Request.Context()
	translated, err := h.translator.Translate(ctx, text, src, tgt)
	if err != nil {
		h.log.WithContext(ctx).Warn("text translation failed", logger.ErrorFields("translate", err))
	}
	if translated == text && src != tgt {
		c.JSON(http.StatusOK, gin.H{"error": MsgRateLimited})
		return
	}
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"error": errorMessage(err)})
		return
	}

	if userID := authctx.UserID(ctx); userID != "" && h.recorder != nil {
		h.record(ctx, userID, text, translated, src, tgt)
	}
	c.JSON(http.StatusOK, TranslateResponse{OriginalText: text, TranslatedText: translated})
}

// record stores a text translation. Failures are logged; the client already
// has its translation.
func (h *Handlers) record(ctx context.Context, userID, text, translated, src, tgt string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.cfg.RecordTimeout)
	defer cancel()
	rec := history.Record{
		OriginalText:   text,
		TranslatedText: translated,
		SourceLang:     src,
		TargetLang:     tgt,
	}
	if err := h.recorder.Record(ctx, userID, rec); err != nil {
		h.log.WithContext(ctx).Error("recording text translation failed", logger.ErrorFields("record", err))
	}
}

// Translations handles GET /translations. Repository failures answer an
// empty list.
func (h *Handlers) Translations(c *gin.Context) {
	ctx := c.Request.Context()
	records := []history.Record{}
	if h.repo != nil {
		list, err := h.repo.ListByUser(ctx, authctx.UserID(ctx), h.cfg.HistoryLimit)
		if err != nil {
			h.log.WithContext(ctx).Error("listing translations failed", logger.ErrorFields("list_translations", err))
		} else if list != nil {
			records = list
		}
	}
	c.JSON(http.StatusOK, records)
}

// WebSocket upgrades GET /ws/:client_id and serves the session until it
// ends.
func (h *Handlers) WebSocket(c *gin.Context) {
	clientID := c.Param("client_id")
	if clientID == "" {
		server.RespondWithError(c, apperrors.MissingField("client_id"))
		return
	}
	src := c.DefaultQuery("source_lang", h.cfg.DefaultSourceLang)
	tgt := c.DefaultQuery("target_lang", h.cfg.DefaultTargetLang)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written the error response.
		h.log.Warn("websocket upgrade failed", logger.ErrorFields("ws_upgrade", err))
		return
	}

	ctx := logger.ContextWithSessionID(c.Request.Context(), clientID)
	userID := authctx.UserID(ctx)
	log := h.log.WithContext(ctx)
	s := newSession(clientID, userID, conn, src, tgt, h.cfg.WebSocket, log)

	h.hub.Register(s)
	h.metrics.SessionOpened(ctx)
	log.Info("websocket client connected", logger.Fields("source_lang", src, "target_lang", tgt))
	defer func() {
		h.hub.Unregister(s)
		h.metrics.SessionClosed(context.WithoutCancel(ctx))
		log.Info("websocket client disconnected")
	}()

	s.serve(ctx, h.processor)
}

func originChecker(allowed []string) func(*http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[strings.TrimRight(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

func errorMessage(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Message
	}
	return err.Error()
}
