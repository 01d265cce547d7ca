// pkg/analysis/serviceImp/analysis_service_imp.go

package serviceImp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nolabor/entities"
	"nolabor/pkg/ai"
	analysisrepo "nolabor/pkg/analysis/repository"
	"nolabor/pkg/analysis/service"
	"nolabor/pkg/logger"
	"nolabor/pkg/modelcfg"
	"nolabor/pkg/plan/fallback"
	"nolabor/pkg/plan/schema"
	"nolabor/pkg/plan/types"
	"nolabor/pkg/prompt"
	"nolabor/pkg/session"
	subrepo "nolabor/pkg/submission/repository"
	userrepo "nolabor/pkg/user/repository"
)

// recoveryWindow bounds the START_FAILED probe for an analysis that
// landed despite the boundary blowing up.
const recoveryWindow = 10 * time.Minute

// processingBudget is the nominal wall clock the heartbeat maps onto.
const processingBudget = 150 * time.Second

var stageLabels = []string{
	"正在理解项目背景",
	"正在分析关键人与资源",
	"正在设计收入机制",
	"正在推演风险与备选方案",
	"正在整理输出",
}

type AnalysisSvc struct {
	subs     subrepo.SubmissionRepository
	analyses analysisrepo.AnalysisRepository
	users    userrepo.UserRepository
	models   modelcfg.Repository
	prompts  *prompt.Assembler
	llm      ai.Client
	log      *logger.Logger

	defaultModel string
}

func New(
	subs subrepo.SubmissionRepository,
	analyses analysisrepo.AnalysisRepository,
	users userrepo.UserRepository,
	models modelcfg.Repository,
	prompts *prompt.Assembler,
	llm ai.Client,
	log *logger.Logger,
	defaultModel string,
) service.AnalysisService {
	return &AnalysisSvc{
		subs: subs, analyses: analyses, users: users, models: models,
		prompts: prompts, llm: llm, log: log, defaultModel: defaultModel,
	}
}

func (s *AnalysisSvc) Ingest(uid string, form *types.FormData) (*entities.Submission, error) {
	raw, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("marshal form: %w", err)
	}
	if err := s.subs.SupersedePending(uid); err != nil {
		return nil, fmt.Errorf("supersede pending: %w", err)
	}
	sub := &entities.Submission{
		ID:                 uuid.NewString(),
		UserID:             uid,
		ProjectName:        form.ProjectName,
		ProjectDescription: form.ProjectDescription,
		FormData:           string(raw),
		Status:             entities.SubmissionPending,
	}
	if err := s.subs.Create(sub); err != nil {
		return nil, fmt.Errorf("create submission: %w", err)
	}
	s.log.Info("submission ingested", "id", sub.ID, "uid", uid, "project", form.ProjectName)
	return sub, nil
}

func (s *AnalysisSvc) Start(ctx context.Context, uid, submissionID string) (out service.StartOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("start_analysis panic", "uid", uid, "submission", submissionID, "panic", r)
			out = s.recoverStart(uid, submissionID)
		}
	}()

	sub, err := s.subs.FindByID(submissionID, uid)
	if err != nil {
		return service.StartOutcome{
			Status:    session.StatusError,
			ErrorCode: service.CodeNoFormData,
			Message:   "找不到提交的表单，请重新填写",
		}
	}

	switch sub.Status {
	case entities.SubmissionProcessing:
		// idempotency guard: a run is already in flight
		p, st := heartbeat(sub.UpdatedAt)
		return service.StartOutcome{Status: session.StatusProcessing, Progress: p, Stage: st, Message: "分析进行中"}
	case entities.SubmissionCompleted:
		return s.completedOutcome(uid, sub)
	case entities.SubmissionTimeout:
		// an earlier run was cut off after marking timeout; finish it
		return s.completeWithFallback(sub, entities.AnalysisFallback, false)
	case entities.SubmissionError:
		return service.StartOutcome{Status: session.StatusError, ErrorCode: service.CodeExecutionError, Message: "上次分析失败，请重新提交"}
	case entities.SubmissionSuperseded:
		return service.StartOutcome{Status: session.StatusError, ErrorCode: service.CodeNoFormData, Message: "该提交已被新的提交取代"}
	}

	won, err := s.subs.MarkProcessing(sub.ID)
	if err != nil {
		return service.StartOutcome{Status: session.StatusError, ErrorCode: service.CodeExecutionError, Message: "无法开始分析，请稍后重试"}
	}
	if !won {
		// raced with another request for the same submission
		if cur, err := s.subs.FindByID(submissionID, uid); err == nil {
			if cur.Status == entities.SubmissionCompleted {
				return s.completedOutcome(uid, cur)
			}
			p, st := heartbeat(cur.UpdatedAt)
			return service.StartOutcome{Status: session.StatusProcessing, Progress: p, Stage: st, Message: "分析进行中"}
		}
		return service.StartOutcome{Status: session.StatusProcessing, Message: "分析进行中"}
	}

	okQuota, err := s.users.ConsumeQuota(uid)
	if err != nil {
		_ = s.subs.SetStatus(sub.ID, entities.SubmissionPending)
		return service.StartOutcome{Status: session.StatusError, ErrorCode: service.CodeExecutionError, Message: "无法开始分析，请稍后重试"}
	}
	if !okQuota {
		_ = s.subs.SetStatus(sub.ID, entities.SubmissionPending)
		return service.StartOutcome{Status: session.StatusError, ErrorCode: service.CodeNoQuota, Message: "分析次数已用完"}
	}

	form, err := parseForm(sub.FormData)
	if err != nil {
		s.log.Error("stored form unreadable", "submission", sub.ID, "err", err)
		_ = s.subs.SetStatus(sub.ID, entities.SubmissionError)
		return service.StartOutcome{Status: session.StatusError, ErrorCode: service.CodeExecutionError, Message: "表单数据损坏，请重新提交"}
	}

	system, user, assistant := s.prompts.Assemble(form)
	params := s.models.Params(modelcfg.SiteMainAnalysis, ai.DefaultParams(s.defaultModel))

	raw, err := s.llm.GeneratePlan(ctx, system, user, assistant, params)
	if err != nil {
		if ai.IsTransport(err) {
			s.log.Warn("llm transport failure, switching to fallback", "submission", sub.ID, "err", err)
			_ = s.subs.SetStatus(sub.ID, entities.SubmissionTimeout)
			return s.completeWithFallback(sub, entities.AnalysisFallback, true)
		}
		s.log.Warn("llm provider failure, switching to fallback", "submission", sub.ID, "err", err)
		return s.completeWithFallback(sub, entities.AnalysisFallback, false)
	}

	plan, err := schema.Validate(raw)
	if err != nil {
		s.log.Warn("llm output failed schema validation", "submission", sub.ID, "err", err)
		return s.completeWithFallback(sub, entities.AnalysisFallback, false)
	}

	anal, err := s.persist(sub, plan, entities.AnalysisReal)
	if err != nil {
		s.log.Error("persist real analysis", "submission", sub.ID, "err", err)
		return s.completeWithFallback(sub, entities.AnalysisFallback, false)
	}
	_ = s.subs.SetStatus(sub.ID, entities.SubmissionCompleted)
	s.log.Info("analysis completed", "submission", sub.ID, "analysis", anal.ID, "type", anal.AnalysisType)
	return service.StartOutcome{
		Status:      session.StatusCompleted,
		Progress:    100,
		Message:     "分析完成",
		ResultID:    anal.ID,
		RedirectURL: "/results",
	}
}

func (s *AnalysisSvc) Status(uid, submissionID string) service.StatusOutcome {
	sub, err := s.subs.FindByID(submissionID, uid)
	if err != nil {
		return service.StatusOutcome{
			Status:    session.StatusError,
			ErrorCode: service.CodeNoFormData,
			Message:   "找不到提交的表单，请重新填写",
		}
	}

	switch sub.Status {
	case entities.SubmissionPending:
		return service.StatusOutcome{Status: session.StatusNotStarted, Message: "等待开始分析"}
	case entities.SubmissionProcessing:
		p, st := heartbeat(sub.UpdatedAt)
		return service.StatusOutcome{Status: session.StatusProcessing, Progress: p, Stage: st, Message: "分析进行中"}
	case entities.SubmissionCompleted:
		o := s.completedOutcome(uid, sub)
		return service.StatusOutcome{
			Status: o.Status, Progress: o.Progress, Message: o.Message,
			ErrorCode: o.ErrorCode, ResultID: o.ResultID, RedirectURL: o.RedirectURL,
		}
	case entities.SubmissionTimeout:
		// /start_analysis was interrupted after marking timeout; polling
		// is the recovery path, so materialize the fallback here. This is
		// the endpoint's only permitted write.
		o := s.completeWithFallback(sub, entities.AnalysisFallback, true)
		return service.StatusOutcome{
			Status: o.Status, Progress: o.Progress, Message: o.Message,
			ErrorCode: o.ErrorCode, ResultID: o.ResultID, RedirectURL: o.RedirectURL,
		}
	case entities.SubmissionSuperseded:
		return service.StatusOutcome{Status: session.StatusNotStarted, Message: "该提交已被新的提交取代"}
	default:
		return service.StatusOutcome{Status: session.StatusError, ErrorCode: service.CodeExecutionError, Message: "分析失败，请重新提交"}
	}
}

func (s *AnalysisSvc) Resolve(uid, submissionID, resultID string) (*entities.Analysis, error) {
	var sub *entities.Submission
	if submissionID != "" {
		sub, _ = s.subs.FindByID(submissionID, uid)
	}

	if resultID != "" {
		if a, err := s.analyses.FindByID(resultID, uid); err == nil {
			if sub == nil || a.ProjectName == sub.ProjectName {
				// upgrade an emergency fallback when a real run landed later
				if a.AnalysisType == entities.AnalysisEmergencyFallback {
					if real, _ := s.analyses.LatestByProject(uid, a.ProjectName, entities.AnalysisReal); real != nil {
						return real, nil
					}
				}
				return a, nil
			}
			// result points at a different project; look for a better match
			if real, _ := s.analyses.LatestByProject(uid, sub.ProjectName, entities.AnalysisReal); real != nil {
				return real, nil
			}
			if any, _ := s.analyses.LatestByProject(uid, sub.ProjectName, ""); any != nil {
				return any, nil
			}
		}
	}

	if sub != nil {
		// never blank: synthesize an emergency fallback from the form
		form, err := parseForm(sub.FormData)
		if err == nil {
			if a, err := s.persist(sub, fallback.Generate(form), entities.AnalysisEmergencyFallback); err == nil {
				s.log.Warn("materialized emergency fallback", "submission", sub.ID, "analysis", a.ID)
				return a, nil
			}
		}
	}
	return nil, service.ErrNoFormData
}

func (s *AnalysisSvc) FormData(uid, submissionID string) (*types.FormData, error) {
	sub, err := s.subs.FindByID(submissionID, uid)
	if err != nil {
		return nil, service.ErrNoFormData
	}
	return parseForm(sub.FormData)
}

func (s *AnalysisSvc) ListByUser(uid string) ([]entities.Analysis, error) {
	return s.analyses.ListByUser(uid)
}

// completeWithFallback runs the fallback generator and closes the
// lifecycle as completed. transport selects the error code used when even
// the fallback cannot be persisted.
func (s *AnalysisSvc) completeWithFallback(sub *entities.Submission, tag string, transport bool) service.StartOutcome {
	form, err := parseForm(sub.FormData)
	if err != nil {
		_ = s.subs.SetStatus(sub.ID, entities.SubmissionError)
		return service.StartOutcome{Status: session.StatusError, ErrorCode: service.CodeExecutionError, Message: "表单数据损坏，请重新提交"}
	}
	anal, err := s.persist(sub, fallback.Generate(form), tag)
	if err != nil {
		s.log.Error("fallback persist failed", "submission", sub.ID, "err", err)
		_ = s.subs.SetStatus(sub.ID, entities.SubmissionError)
		code := service.CodeInvalidResult
		if transport {
			code = service.CodeNetworkAndFallbackFailed
		}
		return service.StartOutcome{Status: session.StatusError, ErrorCode: code, Message: "分析失败，请稍后重试"}
	}
	_ = s.subs.SetStatus(sub.ID, entities.SubmissionCompleted)
	s.log.Info("analysis completed via fallback", "submission", sub.ID, "analysis", anal.ID, "type", tag)
	return service.StartOutcome{
		Status:       session.StatusCompleted,
		Progress:     100,
		Message:      "分析完成",
		ResultID:     anal.ID,
		RedirectURL:  "/results",
		FallbackUsed: true,
	}
}

// completedOutcome resolves the analysis reference for an already
// completed submission.
func (s *AnalysisSvc) completedOutcome(uid string, sub *entities.Submission) service.StartOutcome {
	a, _ := s.analyses.LatestByProject(uid, sub.ProjectName, entities.AnalysisReal)
	if a == nil {
		a, _ = s.analyses.LatestByProject(uid, sub.ProjectName, "")
	}
	out := service.StartOutcome{
		Status:      session.StatusCompleted,
		Progress:    100,
		Message:     "分析完成",
		RedirectURL: "/results",
	}
	if a != nil {
		out.ResultID = a.ID
		out.FallbackUsed = a.AnalysisType != entities.AnalysisReal
	}
	return out
}

// recoverStart is the START_FAILED boundary: if an analysis for the
// project landed recently despite the exception, adopt it.
func (s *AnalysisSvc) recoverStart(uid, submissionID string) service.StartOutcome {
	sub, err := s.subs.FindByID(submissionID, uid)
	if err == nil {
		if a, _ := s.analyses.RecentByProject(uid, sub.ProjectName, time.Now().Add(-recoveryWindow)); a != nil {
			_ = s.subs.SetStatus(sub.ID, entities.SubmissionCompleted)
			return service.StartOutcome{
				Status:       session.StatusCompleted,
				Progress:     100,
				Message:      "分析完成",
				ResultID:     a.ID,
				RedirectURL:  "/results",
				FallbackUsed: a.AnalysisType != entities.AnalysisReal,
			}
		}
		_ = s.subs.SetStatus(sub.ID, entities.SubmissionError)
	}
	return service.StartOutcome{Status: session.StatusError, ErrorCode: service.CodeStartFailed, Message: "分析启动失败，请重试"}
}

func (s *AnalysisSvc) persist(sub *entities.Submission, plan *types.Plan, tag string) (*entities.Analysis, error) {
	raw, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	var form types.FormData
	_ = json.Unmarshal([]byte(sub.FormData), &form)
	a := &entities.Analysis{
		ID:                 uuid.NewString(),
		UserID:             sub.UserID,
		FormData:           sub.FormData,
		ResultData:         string(raw),
		ProjectName:        sub.ProjectName,
		ProjectDescription: sub.ProjectDescription,
		TeamSize:           len(form.KeyPersons),
		AnalysisType:       tag,
	}
	if err := s.analyses.Create(a); err != nil {
		return nil, err
	}
	return a, nil
}

func parseForm(raw string) (*types.FormData, error) {
	var f types.FormData
	if err := json.Unmarshal([]byte(raw), &f); err != nil {
		return nil, fmt.Errorf("parse form data: %w", err)
	}
	return &f, nil
}

// heartbeat derives decorative progress from how long the run has been
// processing. Monotone within a run, capped below completion.
func heartbeat(since time.Time) (int, string) {
	elapsed := time.Since(since)
	if elapsed < 0 {
		elapsed = 0
	}
	p := 5 + int(elapsed*90/processingBudget)
	if p > 95 {
		p = 95
	}
	idx := p * len(stageLabels) / 100
	if idx >= len(stageLabels) {
		idx = len(stageLabels) - 1
	}
	return p, stageLabels[idx]
}
