package main

import (
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"nolabor/config"
	"nolabor/database"
	"nolabor/pkg/ai"
	analysisctrl "nolabor/pkg/analysis/controllerImp"
	analysisrepoimp "nolabor/pkg/analysis/repositoryImp"
	analysissvc "nolabor/pkg/analysis/serviceImp"
	"nolabor/pkg/logger"
	"nolabor/pkg/modelcfg"
	"nolabor/pkg/prompt"
	"nolabor/pkg/session"
	subrepoimp "nolabor/pkg/submission/repositoryImp"
	userrepoimp "nolabor/pkg/user/repositoryImp"
	"nolabor/router"
)

type healthCtrl struct{}

func (healthCtrl) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

func main() {
	cfg := config.Load()

	zlog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zlog.Sync()

	db := database.OpenSQLite(cfg.DBPath, cfg.LLMModel)

	subs := subrepoimp.New(db)
	analyses := analysisrepoimp.New(db)
	users := userrepoimp.New(db)
	models := modelcfg.New(db)

	var llm ai.Client
	if cfg.LLMAPIKey == "" {
		zlog.Warn("LLM_API_KEY empty, using mock client")
		llm = ai.NewMock()
	} else {
		llm = ai.NewOpenAI(cfg.LLMEndpoint, cfg.LLMAPIKey, zlog)
	}

	assembler := prompt.New(cfg.PromptDir, zlog)
	svc := analysissvc.New(subs, analyses, users, models, assembler, llm, zlog, cfg.LLMModel)
	sess := session.NewManager(cfg.SessionSecret)
	ctrl := analysisctrl.New(svc, sess, zlog)

	e := echo.New()
	e.HideBanner = true
	// the LLM call blocks inside the request worker; the write budget
	// must outlast the full retry schedule
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.WriteTimeout = 12 * time.Minute

	router.New(e, users, cfg.StrictAuth, ctrl, healthCtrl{})

	zlog.Info("listening", "port", cfg.Port)
	if err := e.Start(":" + cfg.Port); err != nil {
		zlog.Fatal("server stopped", "err", err)
	}
}
