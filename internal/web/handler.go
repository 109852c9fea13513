package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/2beens/onthego/internal/activity"
	"github.com/2beens/onthego/internal/dashboard"
	"github.com/2beens/onthego/internal/garmin"
	"github.com/2beens/onthego/internal/middleware"
	"github.com/2beens/onthego/internal/session"
	"github.com/2beens/onthego/internal/telemetry/metrics"
	"github.com/2beens/onthego/internal/telemetry/tracing"
	"github.com/2beens/onthego/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Handler struct {
	store             *session.Store
	sessionMiddleware *middleware.SessionMiddlewareHandler
	metricsManager    *metrics.Manager
}

func NewHandler(
	store *session.Store,
	sessionMiddleware *middleware.SessionMiddlewareHandler,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		store:             store,
		sessionMiddleware: sessionMiddleware,
		metricsManager:    metricsManager,
	}
}

type RouteParams struct {
	// RateLimiter guards POST /login; nil disables the limit.
	RateLimiter        middleware.RequestRateLimiter
	LoginAllowedPerMin int
	AllowedOrigins     []string
}

func (handler *Handler) SetupRoutes(mainRouter *mux.Router, params RouteParams) {
	// only the entry pages start sessions
	pages := mainRouter.NewRoute().Subrouter()
	pages.Use(handler.sessionMiddleware.Attach())

	pages.HandleFunc("/", handler.handleDashboard).Methods("GET").Name("dashboard")

	var loginHandler http.Handler = http.HandlerFunc(handler.handleLogin)
	if params.RateLimiter != nil {
		loginHandler = middleware.RateLimit(
			params.RateLimiter,
			"login",
			params.LoginAllowedPerMin,
			handler.metricsManager,
		)(loginHandler)
	}
	pages.Handle("/login", loginHandler).Methods("POST").Name("login")

	resolved := mainRouter.NewRoute().Subrouter()
	resolved.Use(handler.sessionMiddleware.Resolve())

	resolved.HandleFunc("/logout", handler.handleLogout).Methods("POST").Name("logout")

	chartsRouter := resolved.PathPrefix("/charts").Subrouter()
	chartsRouter.HandleFunc("/{activityId:[0-9]+}/{chart}", handler.handleChart).Methods("GET").Name("chart")
	chartsRouter.Use(handler.sessionMiddleware.RequireLogin())

	apiRouter := resolved.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/activities", handler.handleListActivities).Methods("GET", "OPTIONS").Name("api-activities")
	apiRouter.HandleFunc("/activities/{activityId:[0-9]+}/metrics", handler.handleActivityMetrics).Methods("GET", "OPTIONS").Name("api-metrics")
	apiRouter.Use(middleware.Cors(params.AllowedOrigins))
	apiRouter.Use(handler.sessionMiddleware.RequireLogin())
}

func (handler *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "webHandler.dashboard")
	defer span.End()

	state, ok := middleware.SessionFromContext(ctx)
	if !ok {
		http.Error(w, "no session", http.StatusInternalServerError)
		return
	}

	if !state.LoggedIn() {
		handler.writePage(w, loginPage(state))
		return
	}

	if countParam := r.URL.Query().Get("count"); countParam != "" {
		if count, err := strconv.Atoi(countParam); err == nil {
			state.SetActivityCount(count)
		}
	}
	if activityParam := r.URL.Query().Get("activity"); activityParam != "" {
		if activityID, err := strconv.ParseInt(activityParam, 10, 64); err == nil {
			state.SelectActivity(activityID)
		}
	}

	span.SetAttributes(attribute.Int("activity.count", state.ActivityCount()))
	page := buildDashboard(ctx, state)
	span.SetAttributes(attribute.Int64("activity.id", page.SelectedActivity))
	handler.writePage(w, page)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "webHandler.login")
	defer span.End()

	state, ok := middleware.SessionFromContext(ctx)
	if !ok {
		http.Error(w, "no session", http.StatusInternalServerError)
		return
	}

	if err := r.ParseForm(); err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("parse form: %s", err))
		http.Error(w, "bad login form", http.StatusBadRequest)
		return
	}

	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	span.SetAttributes(attribute.String("user.name", username))

	err := handler.store.SubmitCredentials(ctx, state.Token, username, password)
	switch {
	case err == nil:
		span.SetStatus(codes.Ok, "logged-in")
		log.Infof("user %s logged in", username)
		handler.writePage(w, buildDashboard(ctx, state, Banner{Level: LevelSuccess, Message: msgLoggedIn}))
	case errors.Is(err, session.ErrEmptyCredentials):
		span.SetStatus(codes.Error, "empty-credentials")
		handler.writePage(w, loginPage(state, Banner{Level: LevelError, Message: msgEmptyCredentials}))
	default:
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("login %s: %s", username, err)
		handler.writePage(w, loginPage(state, errorBanner(err)))
	}
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "webHandler.logout")
	defer span.End()

	banner := Banner{Level: LevelInfo, Message: msgLoggedOut}
	if state, ok := middleware.SessionFromContext(ctx); ok {
		if err := handler.store.End(ctx, state.Token); err != nil && !errors.Is(err, session.ErrSessionNotFound) {
			span.SetStatus(codes.Error, err.Error())
			banner = Banner{Level: LevelWarning, Message: fmt.Sprintf("Logout failed: %s", err)}
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:   middleware.SessionCookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
	handler.writePage(w, &Page{Banners: []Banner{banner}})
}

func (handler *Handler) handleChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "webHandler.chart")
	defer span.End()

	vars := mux.Vars(r)
	kind, err := dashboard.ParseChartKind(vars["chart"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, status, err := handler.activityTable(ctx, r)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, errorBanner(err).Message, status)
		return
	}
	span.SetAttributes(attribute.String("chart.kind", string(kind)))

	buf := &bytes.Buffer{}
	if err := dashboard.RenderChart(buf, kind, table); err != nil {
		if errors.Is(err, dashboard.ErrNoData) || errors.Is(err, activity.ErrMissingColumn) {
			log.Debugf("chart %s: %s", kind, err)
			w.Header().Set("Content-Type", pkg.ContentType.HTML)
			if err := renderMessage(w, fmt.Sprintf("No data for the %s chart.", kind.Title())); err != nil {
				log.Errorf("render chart message: %s", err)
			}
			return
		}
		span.SetStatus(codes.Error, err.Error())
		log.Errorf("render %s chart: %s", kind, err)
		http.Error(w, "failed to render chart", http.StatusInternalServerError)
		return
	}

	span.SetStatus(codes.Ok, "rendered")
	pkg.WriteResponseBytesOK(w, pkg.ContentType.HTML, buf.Bytes())
}

type activityResponse struct {
	ID             int64  `json:"activityId"`
	Name           string `json:"activityName"`
	StartTimeLocal string `json:"startTimeLocal"`
	Label          string `json:"label"`
}

func (handler *Handler) handleListActivities(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "webHandler.listActivities")
	defer span.End()

	state, ok := middleware.SessionFromContext(ctx)
	if !ok {
		http.Error(w, errorBanner(garmin.ErrNotLoggedIn).Message, http.StatusUnauthorized)
		return
	}
	client := state.Client()
	if client == nil {
		http.Error(w, errorBanner(garmin.ErrNotLoggedIn).Message, http.StatusUnauthorized)
		return
	}

	count := state.ActivityCount()
	if countParam := r.URL.Query().Get("count"); countParam != "" {
		parsed, err := strconv.Atoi(countParam)
		if err != nil {
			http.Error(w, "invalid count", http.StatusBadRequest)
			return
		}
		count = session.ClampActivityCount(parsed)
	}
	span.SetAttributes(attribute.Int("activity.count", count))

	activities, err := client.ListActivities(ctx, 0, count)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, errorBanner(err).Message, statusForError(err))
		return
	}

	resp := make([]activityResponse, 0, len(activities))
	for _, a := range activities {
		resp = append(resp, activityResponse{
			ID:             a.ID,
			Name:           a.Name,
			StartTimeLocal: a.StartTimeLocal,
			Label:          a.Label(),
		})
	}

	respBytes, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal activities: %s", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteJSONResponseOK(w, string(respBytes))
}

type metricsResponse struct {
	ActivityID int64            `json:"activityId"`
	Columns    []string         `json:"columns"`
	Rows       [][]*float64     `json:"rows"`
	Tiles      []dashboard.Tile `json:"tiles"`
}

func (handler *Handler) handleActivityMetrics(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "webHandler.activityMetrics")
	defer span.End()

	table, status, err := handler.activityTable(ctx, r)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		http.Error(w, errorBanner(err).Message, status)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", pkg.ContentType.CSV)
		if err := table.WriteCSV(w); err != nil {
			log.Errorf("write metrics csv: %s", err)
		}
		return
	}

	activityID, _ := strconv.ParseInt(mux.Vars(r)["activityId"], 10, 64)
	resp := metricsResponse{
		ActivityID: activityID,
		Columns:    table.Columns(),
		Rows:       table.Records(),
	}
	if stats, err := dashboard.Summarize(table); err == nil {
		resp.Tiles = stats.Tiles()
	}

	respBytes, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal activity metrics: %s", err)
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respBytes)
}

// activityTable fetches and flattens the activity named by the route. The
// returned status is meant for the error response.
func (handler *Handler) activityTable(ctx context.Context, r *http.Request) (*activity.Table, int, error) {
	state, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return nil, http.StatusUnauthorized, garmin.ErrNotLoggedIn
	}
	client := state.Client()
	if client == nil {
		return nil, http.StatusUnauthorized, garmin.ErrNotLoggedIn
	}

	activityID, err := strconv.ParseInt(mux.Vars(r)["activityId"], 10, 64)
	if err != nil {
		return nil, http.StatusBadRequest, fmt.Errorf("invalid activity id: %w", err)
	}

	details, err := client.ActivityDetails(ctx, activityID)
	if err != nil {
		return nil, statusForError(err), err
	}

	table, err := activity.Flatten(details)
	if err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}

	return table, http.StatusOK, nil
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, garmin.ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, garmin.ErrConnection):
		return http.StatusBadGateway
	case errors.Is(err, garmin.ErrNotLoggedIn):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (handler *Handler) writePage(w http.ResponseWriter, page *Page) {
	handler.metricsManager.CounterDashboardRenders.WithLabelValues(string(worstLevel(page.Banners))).Inc()

	buf := &bytes.Buffer{}
	if err := renderPage(buf, page); err != nil {
		log.Errorf("render page: %s", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.HTML, buf.Bytes())
}
