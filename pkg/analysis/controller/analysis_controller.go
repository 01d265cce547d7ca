package controller

import "github.com/labstack/echo/v4"

type AnalysisController interface {
	Generate(c echo.Context) error
	Thinking(c echo.Context) error
	GetSessionData(c echo.Context) error
	StartAnalysis(c echo.Context) error
	CheckStatus(c echo.Context) error
	ThinkingStream(c echo.Context) error
	Results(c echo.Context) error
	List(c echo.Context) error
}
