/*
2019 © Postgres.ai
*/

// Package bot provides the HTTP application serving chat requests.
package bot

import (
	"context"
	"fmt"
	"html"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gitlab.com/postgres-ai/database-lab/v2/pkg/log"

	"gitlab.com/postgres-ai/askdb/pkg/bot/api"
	"gitlab.com/postgres-ai/askdb/pkg/config"
	"gitlab.com/postgres-ai/askdb/pkg/llm"
	"gitlab.com/postgres-ai/askdb/pkg/models"
	"gitlab.com/postgres-ai/askdb/pkg/services/msgproc"
	"gitlab.com/postgres-ai/askdb/pkg/services/storage"
	"gitlab.com/postgres-ai/askdb/pkg/services/usermanager"
)

const (
	// ClientIDHeader identifies a chat client for request quotas.
	ClientIDHeader = "X-User-ID"

	// EmptyMessageError is the answer given to an empty chat message.
	EmptyMessageError = "Message cannot be empty."

	maxRequestBodyBytes = 4 << 20

	idleUserTimeout     = time.Hour
	idleUserCheckPeriod = 10 * time.Minute
)

// MessageProcessor defines the interface of the chat pipeline.
type MessageProcessor interface {
	ProcessMessage(ctx context.Context, message string, history []models.ChatTurn) (*msgproc.Result, error)
}

// App defines a application struct.
type App struct {
	Config      *config.Config
	processor   MessageProcessor
	userManager *usermanager.UserManager
	store       storage.TextStore
	httpSrv     *http.Server
}

// HealthResponse represents a response for heath-check requests.
type HealthResponse struct {
	Version  string `json:"version"`
	Model    string `json:"model"`
	Database string `json:"database"`
}

// NewApp creates a new application.
func NewApp(cfg *config.Config, processor MessageProcessor, users *usermanager.UserManager, store storage.TextStore) *App {
	return &App{
		Config:      cfg,
		processor:   processor,
		userManager: users,
		store:       store,
	}
}

// Handler builds the HTTP routes of the application.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /chat", a.chat)
	mux.HandleFunc("GET /{$}", a.healthCheck)

	return mux
}

// RunServer starts a server for message processing.
func (a *App) RunServer(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", a.Config.App.Host, a.Config.App.Port)

	log.Msg(fmt.Sprintf("Server start listening on %s", addr))

	if a.userManager != nil {
		go a.removeIdleUsers(ctx, idleUserCheckPeriod)
	}

	a.httpSrv = &http.Server{
		Addr:        addr,
		Handler:     a.Handler(),
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	return a.httpSrv.ListenAndServe()
}

// Shutdown gracefully shuts down the server and dumps cached data.
func (a *App) Shutdown(ctx context.Context) error {
	if a.httpSrv != nil {
		if err := a.httpSrv.Shutdown(ctx); err != nil {
			log.Msg(err)
		}
	}

	if persistent, ok := a.store.(storage.PersistentTextStore); ok {
		if err := persistent.Save(); err != nil {
			return errors.Wrap(err, "unable to dump stored data")
		}
	}

	return nil
}

// removeIdleUsers periodically forgets clients which have not sent requests for a while.
func (a *App) removeIdleUsers(ctx context.Context, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			if removed := a.userManager.RemoveIdleUsers(idleUserTimeout); removed > 0 {
				log.Dbg("Idle clients removed:", removed)
			}
		}
	}
}

// healthCheck handles health-check requests.
func (a *App) healthCheck(w http.ResponseWriter, r *http.Request) {
	log.Msg("Health check received:", html.EscapeString(r.URL.Path))

	api.WriteJSON(w, http.StatusOK, HealthResponse{
		Version:  a.Config.App.Version,
		Model:    a.Config.LLM.Model,
		Database: a.Config.Database.Driver,
	})
}

// chat handles chat messages.
func (a *App) chat(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if p := recover(); p != nil {
			log.Err("Chat handler panic:", p)
			api.SendError(w, r, http.StatusInternalServerError, fmt.Sprintf("unexpected failure: %v", p))
		}
	}()

	if a.userManager != nil {
		if err := a.userManager.RequestQuota(clientID(r)); err != nil {
			api.SendError(w, r, http.StatusTooManyRequests, err.Error())
			return
		}
	}

	var chatRequest models.ChatRequest
	if err := api.ReadJSON(r, maxRequestBodyBytes, &chatRequest); err != nil {
		api.SendError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if strings.TrimSpace(chatRequest.Message) == "" {
		api.SendError(w, r, http.StatusBadRequest, EmptyMessageError)
		return
	}

	result, err := a.processor.ProcessMessage(r.Context(), chatRequest.Message, chatRequest.ConversationHistory)
	if err != nil {
		api.SendError(w, r, statusCode(err), err.Error())
		return
	}

	log.Dbg("Chat request", result.RequestID, "finished with state", result.State)

	api.SendMessage(w, result.Response)
}

// clientID identifies a client by the header or by the remote address.
func clientID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(ClientIDHeader)); id != "" {
		return id
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, msgproc.ErrEmptyMessage):
		return http.StatusBadRequest

	case errors.Is(err, llm.ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge

	case errors.Is(err, llm.ErrUpstreamUnavailable), errors.Is(err, llm.ErrMalformedUpstreamResponse):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
