package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"vmm-exam-service/internal/app"
	"vmm-exam-service/internal/domain"
)

// ContextHeader carries the browsing context id that owns the "current result" slot.
const ContextHeader = "X-Context-ID"

const contextKey = "context_id"

// API serves the REST surface of the exam engine.
type API struct {
	exam        *app.ExamService
	lookup      *app.ResultLookupService
	leaderboard *app.LeaderboardManager
	practice    *app.PracticeService
	ws          *WSHandler
	log         zerolog.Logger
}

func NewAPI(exam *app.ExamService, lookup *app.ResultLookupService, leaderboard *app.LeaderboardManager, practice *app.PracticeService, log zerolog.Logger) *API {
	return &API{
		exam:        exam,
		lookup:      lookup,
		leaderboard: leaderboard,
		practice:    practice,
		ws:          NewWSHandler(exam, log),
		log:         log.With().Str("component", "http").Logger(),
	}
}

type envelope struct {
	Data  any        `json:"data"`
	Error *errorBody `json:"error,omitempty"`
}

type errorBody struct {
	Message    string            `json:"message"`
	Fields     map[string]string `json:"fields,omitempty"`
	Unanswered []int             `json:"unanswered,omitempty"`
}

type practiceRequest struct {
	Answers domain.AnswerSet `json:"answers"`
}

// Router builds the gin engine. An empty origin list allows every origin.
func (a *API) Router(allowedOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), a.accessLog(), browsingContext())

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) > 0 {
		corsConfig.AllowOrigins = allowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", ContextHeader}
	corsConfig.ExposeHeaders = []string{ContextHeader}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/ws", gin.WrapF(a.ws.ServeWS))

	api := router.Group("/api")
	{
		api.GET("/questions", a.questions)
		api.GET("/session", a.session)
		api.GET("/results/:identifier", a.result)
		api.POST("/results/:identifier/regenerate", a.regenerate)
		api.GET("/leaderboard", a.listLeaderboard)
		api.GET("/practice", a.practiceQuestions)
		api.POST("/practice", a.gradePractice)
	}
	return router
}

func (a *API) questions(c *gin.Context) {
	bank, err := a.exam.Questions(c.Request.Context())
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Data: bank})
}

// session reports the state of the caller's exam session.
func (a *API) session(c *gin.Context) {
	snap, err := a.exam.Session(c.Request.Context(), c.GetString(contextKey))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Data: snap})
}

func (a *API) result(c *gin.Context) {
	r, err := a.lookup.Resolve(c.Request.Context(), c.GetString(contextKey), c.Param("identifier"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Data: a.lookup.View(r)})
}

func (a *API) regenerate(c *gin.Context) {
	r, err := a.lookup.Regenerate(c.Request.Context(), c.Param("identifier"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Data: a.lookup.View(r)})
}

func (a *API) listLeaderboard(c *gin.Context) {
	c.JSON(http.StatusOK, envelope{Data: a.leaderboard.List(c.Request.Context())})
}

func (a *API) practiceQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, envelope{Data: a.practice.Bank().Public()})
}

func (a *API) gradePractice(c *gin.Context) {
	var req practiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.fail(c, domain.NewValidationError("answers", "must be an object of question id to option id"))
		return
	}
	report, err := a.practice.Grade(req.Answers)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, envelope{Data: report})
}

// fail maps domain errors onto HTTP statuses.
func (a *API) fail(c *gin.Context, err error) {
	status, body := errorResponse(err)
	if status >= http.StatusInternalServerError {
		a.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	c.JSON(status, envelope{Error: &body})
}

func errorResponse(err error) (int, errorBody) {
	body := errorBody{Message: err.Error()}

	var verr *domain.ValidationError
	var incomplete *domain.IncompleteSubmissionError
	switch {
	case errors.As(err, &verr):
		body.Message = domain.ErrValidation.Error()
		body.Fields = verr.Fields
		return http.StatusBadRequest, body
	case errors.As(err, &incomplete):
		body.Unanswered = incomplete.Unanswered
		return http.StatusConflict, body
	case errors.Is(err, domain.ErrInvalidState),
		errors.Is(err, domain.ErrAlreadySubmitted),
		errors.Is(err, domain.ErrSessionInProgress):
		return http.StatusConflict, body
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrBankNotFound):
		return http.StatusNotFound, body
	case errors.Is(err, domain.ErrQuestionNotFound), errors.Is(err, domain.ErrOptionNotFound):
		return http.StatusBadRequest, body
	}
	body.Message = "internal error"
	return http.StatusInternalServerError, body
}

// browsingContext resolves the context id from the header, minting one when absent.
func browsingContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(ContextHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(contextKey, id)
		c.Header(ContextHeader, id)
		c.Next()
	}
}

func (a *API) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		a.log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
