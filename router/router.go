package router

import (
	"github.com/labstack/echo/v4"

	"nolabor/pkg/analysis/controller"
	"nolabor/pkg/middleware"
	userrepo "nolabor/pkg/user/repository"
)

func New(
	e *echo.Echo,
	users userrepo.UserRepository,
	strictAuth bool,
	analysisCtrl controller.AnalysisController,
	healthCtrl interface{ Health(echo.Context) error },
) *echo.Echo {
	e.Use(middleware.DevLogin(users))
	e.Use(middleware.RequireUser(strictAuth))

	e.GET("/health", healthCtrl.Health)

	e.POST("/generate", analysisCtrl.Generate)
	e.GET("/thinking", analysisCtrl.Thinking)
	e.GET("/get_session_data", analysisCtrl.GetSessionData)
	e.POST("/start_analysis", analysisCtrl.StartAnalysis)
	e.GET("/check_analysis_status", analysisCtrl.CheckStatus)
	e.GET("/analysis_status", analysisCtrl.CheckStatus)
	e.GET("/get_ai_thinking_stream", analysisCtrl.ThinkingStream)
	e.GET("/results", analysisCtrl.Results)
	e.GET("/analyses", analysisCtrl.List)

	return e
}
