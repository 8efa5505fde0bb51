package webserver

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"chartdesk/apperror"
	"chartdesk/chartview"
	"chartdesk/desk"
	"chartdesk/indicator"
	"chartdesk/model"
	fiberhelpers "chartdesk/utils/fiberhelper"
	"chartdesk/utils/fiberhelper/middleware"
	"chartdesk/utils/fiberhelper/response"
	"chartdesk/utils/tools"
)

// WebServer : desk 명령을 HTTP 로 노출
type WebServer struct {
	desk *desk.Desk
	app  *fiber.App
}

// IndicatorResponse : 지표 이름과 시리즈 (MACD 는 3개)
type IndicatorResponse struct {
	Names  []string                `json:"names"`
	Series [][]model.IndicatorData `json:"series"`
}

type SymbolResponse struct {
	Symbol string `json:"symbol"`
}

type RemovedResponse struct {
	Removed int `json:"removed"`
}

func NewWebServer(d *desk.Desk) *WebServer {
	app := fiber.New(fiber.Config{
		AppName:               "chartdesk",
		ErrorHandler:          fiberhelpers.DefaultErrorHandler,
		DisableStartupMessage: true,
	})
	app.Use(fiberhelpers.NewRecover())
	app.Use(middleware.LogMiddleware("/health"))

	ws := &WebServer{desk: d, app: app}
	ws.routes()
	return ws
}

func (ws *WebServer) routes() {
	ws.app.Get("/health", func(c *fiber.Ctx) error {
		return response.Ext{Ctx: c}.Ok(fiber.Map{"status": "ok"})
	})

	ws.app.Get("/symbols", ws.listSymbols)
	ws.app.Post("/symbols/:symbol", ws.addSymbol)
	ws.app.Delete("/symbols/:symbol", ws.removeSymbol)

	series := ws.app.Group("/series/:symbol/:timeframe")
	series.Get("/", ws.getSeries)
	series.Get("/window", ws.getWindow)
	series.Post("/refresh", ws.refreshSeries)
	series.Put("/", ws.resetSeries)
	series.Delete("/quotes", ws.removeQuote)

	ws.app.Get("/indicators/:symbol/:timeframe", ws.getIndicator)
	ws.app.Post("/backtest", ws.runBacktest)
	ws.app.Get("/search/:query", ws.search)
	ws.app.Get("/fetch/failed", ws.failedKeys)
	ws.app.Get("/chart/:symbol/:timeframe", ws.chart)
}

// App : 테스트에서 app.Test 로 사용
func (ws *WebServer) App() *fiber.App {
	return ws.app
}

// Start : SIGINT/SIGTERM 까지 listen
func (ws *WebServer) Start(port string) error {
	return fiberhelpers.ListenWithGraceFullyShutdown(ws.app, port)
}

func (ws *WebServer) listSymbols(c *fiber.Ctx) error {
	return response.Ext{Ctx: c}.Ok(ws.desk.ListSymbols())
}

func (ws *WebServer) addSymbol(c *fiber.Ctx) error {
	symbol := strings.ToUpper(c.Params("symbol"))
	if err := ws.desk.AddSymbol(symbol); err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Created(SymbolResponse{Symbol: symbol})
}

func (ws *WebServer) removeSymbol(c *fiber.Ctx) error {
	if err := ws.desk.RemoveSymbol(c.Params("symbol")); err != nil {
		return err
	}
	return response.Ext{Ctx: c}.NoContent()
}

func (ws *WebServer) getSeries(c *fiber.Ctx) error {
	tf, err := model.ParseTimeframe(c.Params("timeframe"))
	if err != nil {
		return err
	}
	quotes, err := ws.desk.GetSeries(c.Params("symbol"), tf)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Ok(quotes)
}

func (ws *WebServer) getWindow(c *fiber.Ctx) error {
	tf, err := model.ParseTimeframe(c.Params("timeframe"))
	if err != nil {
		return err
	}
	w, err := ws.desk.GetWindow(c.Params("symbol"), tf)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Ok(w)
}

func (ws *WebServer) refreshSeries(c *fiber.Ctx) error {
	tf, err := model.ParseTimeframe(c.Params("timeframe"))
	if err != nil {
		return err
	}
	quotes, err := ws.desk.RefreshSeries(c.UserContext(), c.Params("symbol"), tf)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Ok(quotes)
}

// resetSeries : 최근 구간으로 시리즈 전체 교체
func (ws *WebServer) resetSeries(c *fiber.Ctx) error {
	tf, err := model.ParseTimeframe(c.Params("timeframe"))
	if err != nil {
		return err
	}
	quotes, err := ws.desk.ResetSeries(c.UserContext(), c.Params("symbol"), tf)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Ok(quotes)
}

// removeQuote : ?time=2024-02-01T00:00:00Z
func (ws *WebServer) removeQuote(c *fiber.Ctx) error {
	tf, err := model.ParseTimeframe(c.Params("timeframe"))
	if err != nil {
		return err
	}
	t, err := tools.ParseDate(c.Query("time"))
	if err != nil {
		return apperror.Wrap(apperror.KindInvalidParameters, err, "invalid time")
	}
	removed, err := ws.desk.RemoveQuote(c.Params("symbol"), tf, t)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Ok(RemovedResponse{Removed: removed})
}

// getIndicator : ?kind=SMA&lengths=5 / ?kind=MACD&lengths=12,26,9
func (ws *WebServer) getIndicator(c *fiber.Ctx) error {
	tf, err := model.ParseTimeframe(c.Params("timeframe"))
	if err != nil {
		return err
	}
	kind, err := indicator.ParseKind(c.Query("kind"))
	if err != nil {
		return err
	}
	lengths, err := parseLengths(c.Query("lengths"))
	if err != nil {
		return err
	}

	series, err := ws.desk.GetIndicator(c.Params("symbol"), tf, kind, lengths)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Ok(IndicatorResponse{
		Names:  indicator.Names(kind, lengths),
		Series: series,
	})
}

func (ws *WebServer) runBacktest(c *fiber.Ctx) error {
	req, err := fiberhelpers.RequestParse[desk.BacktestRequest](c)
	if err != nil {
		return err
	}
	result, err := ws.desk.RunBacktest(c.UserContext(), req)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Ok(result)
}

func (ws *WebServer) search(c *fiber.Ctx) error {
	symbols, err := ws.desk.SearchSymbols(c.UserContext(), c.Params("query"))
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.Ok(symbols)
}

func (ws *WebServer) failedKeys(c *fiber.Ctx) error {
	return response.Ext{Ctx: c}.Ok(ws.desk.FailedKeys())
}

// chart : ?indicators=SMA:20,EMA:50
func (ws *WebServer) chart(c *fiber.Ctx) error {
	tf, err := model.ParseTimeframe(c.Params("timeframe"))
	if err != nil {
		return err
	}
	specs, err := chartview.ParseOverlays(c.Query("indicators"))
	if err != nil {
		return err
	}
	html, err := chartview.Render(ws.desk, c.Params("symbol"), tf, specs)
	if err != nil {
		return err
	}
	return response.Ext{Ctx: c}.HTML(html)
}

func parseLengths(raw string) ([]int, error) {
	lengths, err := tools.ParseInts(raw, ",")
	if err != nil {
		return nil, apperror.Wrap(apperror.KindInvalidParameters, err, "invalid lengths")
	}
	return lengths, nil
}
