package api

import (
	"net/http"
	"time"

	"TickPulse/internal/domain/models"
	drepo "TickPulse/internal/domain/repository"
	"TickPulse/internal/engine"
	apphttp "TickPulse/pkg/http"
	applogger "TickPulse/pkg/logger"
	"TickPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// SignalHandler serves the polling API: latest snapshot, history, order book
// and recent quotes, plus a liveness probe.
type SignalHandler struct {
	registry *engine.Registry
	store    drepo.SignalStore
	stream   drepo.MarketStream
	log      *applogger.Logger
}

func NewSignalHandler(registry *engine.Registry, store drepo.SignalStore, stream drepo.MarketStream, log *applogger.Logger) *SignalHandler {
	return &SignalHandler{
		registry: registry,
		store:    store,
		stream:   stream,
		log:      log,
	}
}

func (h *SignalHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/signal", h.GetSignal)
	g.GET("/signals/history", h.GetHistory)
	g.GET("/book", h.GetBook)
	g.GET("/quotes", h.GetQuotes)
	g.GET("/health", h.GetHealth)
}

// GetSignal returns the latest generated signal for a symbol. Returns the
// snapshot as-is; generation happens on the poller cadence, never here.
func (h *SignalHandler) GetSignal(c echo.Context) error {
	req := new(models.SignalRequest)
	if errs := apphttp.ReadAndValidateRequest(c, req); errs != nil {
		return apphttp.BadRequestResponse(c, errs)
	}

	eng, ok := h.registry.Lookup(req.Symbol)
	if !ok {
		return apphttp.NotFoundResponse(c, "unknown symbol")
	}
	sig := eng.Latest()
	if sig == nil {
		return apphttp.NotFoundResponse(c, "no signal generated yet")
	}
	return apphttp.SuccessResponse(c, sig)
}

// GetHistory returns recent persisted signals, newest first.
func (h *SignalHandler) GetHistory(c echo.Context) error {
	req := new(models.HistoryRequest)
	if errs := apphttp.ReadAndValidateRequest(c, req); errs != nil {
		return apphttp.BadRequestResponse(c, errs)
	}

	now := time.Now()
	from := util.ParseTimeDefault(req.From, now.Add(-24*time.Hour))
	to := util.ParseTimeDefault(req.To, now)

	rows, err := h.store.Recent(c.Request().Context(), req.Symbol, from, to, req.N)
	if err != nil {
		h.log.Error("history query failed", applogger.String("symbol", req.Symbol), applogger.Error(err))
		return apphttp.InternalServerErrorResponse(c)
	}
	return apphttp.ListResponse(c, rows, int64(len(rows)))
}

// GetBook returns the latest order book snapshot for a symbol.
func (h *SignalHandler) GetBook(c echo.Context) error {
	req := new(models.BookRequest)
	if errs := apphttp.ReadAndValidateRequest(c, req); errs != nil {
		return apphttp.BadRequestResponse(c, errs)
	}

	eng, ok := h.registry.Lookup(req.Symbol)
	if !ok {
		return apphttp.NotFoundResponse(c, "unknown symbol")
	}
	book := eng.Book()
	if book == nil {
		return apphttp.NotFoundResponse(c, "no book snapshot yet")
	}
	return apphttp.SuccessResponse(c, book)
}

// GetQuotes returns up to n recent streaming quotes for a symbol.
func (h *SignalHandler) GetQuotes(c echo.Context) error {
	req := new(models.QuotesRequest)
	if errs := apphttp.ReadAndValidateRequest(c, req); errs != nil {
		return apphttp.BadRequestResponse(c, errs)
	}

	eng, ok := h.registry.Lookup(req.Symbol)
	if !ok {
		return apphttp.NotFoundResponse(c, "unknown symbol")
	}
	quotes := eng.Quotes(req.N)
	return apphttp.ListResponse(c, quotes, int64(len(quotes)))
}

type healthStatus struct {
	Status          string         `json:"status"`
	StreamConnected bool           `json:"stream_connected"`
	StoreHealthy    bool           `json:"store_healthy"`
	WindowSizes     map[string]int `json:"window_sizes"`
	Timestamp       time.Time      `json:"timestamp"`
}

// GetHealth reports stream, store and per-symbol window state.
func (h *SignalHandler) GetHealth(c echo.Context) error {
	windows := make(map[string]int)
	for _, eng := range h.registry.All() {
		windows[eng.Symbol()] = eng.WindowSize()
	}

	storeHealthy := h.store.Health(c.Request().Context()) == nil
	streamUp := h.stream.IsConnected()

	status := "ok"
	code := http.StatusOK
	if !streamUp || !storeHealthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	return apphttp.DataResponse(c, code, healthStatus{
		Status:          status,
		StreamConnected: streamUp,
		StoreHealthy:    storeHealthy,
		WindowSizes:     windows,
		Timestamp:       time.Now(),
	})
}
