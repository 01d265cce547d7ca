// pkg/analysis/controllerImp/analysis_controller_imp.go

package controllerImp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"nolabor/pkg/analysis/service"
	"nolabor/pkg/logger"
	"nolabor/pkg/plan/types"
	"nolabor/pkg/roles"
	"nolabor/pkg/session"
)

type AnalysisCtrl struct {
	svc  service.AnalysisService
	sess *session.Manager
	log  *logger.Logger
}

func New(svc service.AnalysisService, sess *session.Manager, log *logger.Logger) *AnalysisCtrl {
	return &AnalysisCtrl{svc: svc, sess: sess, log: log}
}

// Generate ingests the form, resets the lifecycle, and sends the client
// to the thinking page.
func (h *AnalysisCtrl) Generate(c echo.Context) error {
	uid := c.Get("uid").(string)

	form, err := bindForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": err.Error()})
	}

	sub, err := h.svc.Ingest(uid, form)
	if err != nil {
		h.log.Error("ingest failed", "uid", uid, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "保存提交失败，请重试"})
	}

	st := h.sess.Load(c)
	st.UID = uid
	st.SubmissionID = sub.ID
	st.ResetLifecycle()
	if err := h.sess.Save(c, st); err != nil {
		h.log.Error("session save failed", "uid", uid, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error_code": service.CodeSessionError})
	}
	return c.Redirect(http.StatusFound, "/thinking")
}

// Thinking serves the waiting shell; the real UI is an external template.
func (h *AnalysisCtrl) Thinking(c echo.Context) error {
	return c.HTML(http.StatusOK, `<!doctype html><html><head><meta charset="utf-8"><title>分析中…</title></head>
<body><p>正在为你设计收入管道，请稍候。</p>
<script>
function poll(){fetch('/check_analysis_status').then(r=>r.json()).then(d=>{
  if(d.status==='completed'&&d.redirect_url){location.href=d.redirect_url;return;}
  if(d.status==='not_started'){fetch('/start_analysis',{method:'POST'});}
  setTimeout(poll,2000);}).catch(()=>setTimeout(poll,3000));}
poll();
</script></body></html>`)
}

// GetSessionData returns the pending form payload referenced by the
// session.
func (h *AnalysisCtrl) GetSessionData(c echo.Context) error {
	uid := c.Get("uid").(string)
	st := h.sess.Load(c)
	if st.SubmissionID == "" {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "error_code": service.CodeNoFormData})
	}
	form, err := h.svc.FormData(uid, st.SubmissionID)
	if err != nil {
		return c.JSON(http.StatusOK, echo.Map{"success": false, "error_code": service.CodeNoFormData})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "form_data": form})
}

// StartAnalysis begins or resumes the run. The LLM call blocks here;
// idempotent against re-entry from a second tab.
func (h *AnalysisCtrl) StartAnalysis(c echo.Context) error {
	uid := c.Get("uid").(string)
	st := h.sess.Load(c)
	if st.SubmissionID == "" {
		return c.JSON(http.StatusOK, echo.Map{
			"status": session.StatusError, "error_code": service.CodeNoFormData,
			"message": "找不到提交的表单，请重新填写",
		})
	}

	if st.Started && st.Status == session.StatusProcessing {
		// session-side idempotency guard: report, never re-enter
		out := h.svc.Status(uid, st.SubmissionID)
		return c.JSON(http.StatusOK, statusJSON(out))
	}

	st.Started = true
	st.Status = session.StatusProcessing
	_ = h.sess.Save(c, st)

	out := h.svc.Start(c.Request().Context(), uid, st.SubmissionID)

	st.Status = out.Status
	st.Progress = out.Progress
	st.Stage = out.Stage
	st.LastError = out.ErrorCode
	if out.ResultID != "" {
		st.ResultID = out.ResultID
	}
	if err := h.sess.Save(c, st); err != nil {
		h.log.Error("session save failed after start", "uid", uid, "err", err)
	}

	resp := echo.Map{"status": out.Status, "message": out.Message}
	if out.Progress > 0 {
		resp["progress"] = out.Progress
	}
	if out.Stage != "" {
		resp["stage"] = out.Stage
	}
	if out.ErrorCode != "" {
		resp["error_code"] = out.ErrorCode
	}
	if out.RedirectURL != "" {
		resp["redirect_url"] = out.RedirectURL
	}
	if out.FallbackUsed {
		resp["is_backup"] = true
	}
	return c.JSON(http.StatusOK, resp)
}

// CheckStatus is the polling endpoint. It always answers JSON, never
// HTML, and never 5xx's: its own panics collapse to a hand-built JSON
// string.
func (h *AnalysisCtrl) CheckStatus(c echo.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			h.log.Error("check_analysis_status panic", "panic", r)
			err = rawJSON(c, `{"status":"error","error_code":"`+service.CodeFatalError+`","message":"状态查询失败，请刷新页面"}`)
		}
	}()

	uid, ok := c.Get("uid").(string)
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{
			"status": session.StatusError, "error_code": service.CodeSessionError, "message": "会话不可用，请重新提交",
		})
	}
	st := h.sess.Load(c)
	if st.SubmissionID == "" {
		return c.JSON(http.StatusOK, echo.Map{
			"status": session.StatusError, "error_code": service.CodeNoFormData, "message": "找不到提交的表单，请重新填写",
		})
	}

	out := h.svc.Status(uid, st.SubmissionID)

	// reflect a terminal result back into the cookie so /results can
	// resolve it even if /start_analysis's response was lost
	if out.Status == session.StatusCompleted && out.ResultID != "" && st.ResultID != out.ResultID {
		st.Status = out.Status
		st.ResultID = out.ResultID
		st.Progress = out.Progress
		_ = h.sess.Save(c, st)
	}

	body, jerr := json.Marshal(statusJSON(out))
	if jerr != nil {
		return rawJSON(c, `{"status":"error","error_code":"`+service.CodeJSONifyFailed+`","message":"状态序列化失败"}`)
	}
	return rawJSON(c, string(body))
}

// ThinkingStream feeds the waiting page rotating prose derived from the
// submission. Decorative only; not lifecycle state.
func (h *AnalysisCtrl) ThinkingStream(c echo.Context) error {
	uid := c.Get("uid").(string)
	st := h.sess.Load(c)

	content := "正在梳理你的项目信息…"
	if st.SubmissionID != "" {
		if form, err := h.svc.FormData(uid, st.SubmissionID); err == nil {
			lines := thinkingLines(form)
			content = lines[int(time.Now().Unix()/3)%len(lines)]
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "thinking",
		"content":   content,
		"timestamp": time.Now().Unix(),
	})
}

// Results resolves the plan to render. HTML rendering itself is external;
// this returns the resolved payload.
func (h *AnalysisCtrl) Results(c echo.Context) error {
	uid := c.Get("uid").(string)
	st := h.sess.Load(c)

	a, err := h.svc.Resolve(uid, st.SubmissionID, st.ResultID)
	if err != nil {
		if errors.Is(err, service.ErrNoFormData) {
			return c.Redirect(http.StatusFound, "/?session_expired=1")
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error_code": service.CodeExecutionError})
	}

	if st.ResultID != a.ID {
		st.ResultID = a.ID
		st.Status = session.StatusCompleted
		_ = h.sess.Save(c, st)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":       true,
		"analysis_id":   a.ID,
		"analysis_type": a.AnalysisType,
		"is_backup":     a.AnalysisType != "real",
		"result":        json.RawMessage(a.ResultData),
	})
}

// List returns the user's analysis history (denormalized columns only).
func (h *AnalysisCtrl) List(c echo.Context) error {
	uid := c.Get("uid").(string)
	as, err := h.svc.ListByUser(uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error_code": service.CodeExecutionError})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "analyses": as})
}

func statusJSON(out service.StatusOutcome) echo.Map {
	resp := echo.Map{"status": out.Status, "message": out.Message}
	if out.Progress > 0 || out.Status == session.StatusProcessing {
		resp["progress"] = out.Progress
	}
	if out.Stage != "" {
		resp["stage"] = out.Stage
	}
	if out.ErrorCode != "" {
		resp["error_code"] = out.ErrorCode
	}
	if out.RedirectURL != "" {
		resp["redirect_url"] = out.RedirectURL
	}
	return resp
}

func rawJSON(c echo.Context, body string) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSONCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	_, err := c.Response().Write([]byte(body))
	return err
}

// bindForm accepts the submission either as a key_persons JSON field or
// as parallel person_* form arrays.
func bindForm(c echo.Context) (*types.FormData, error) {
	name := strings.TrimSpace(c.FormValue("project_name"))
	desc := strings.TrimSpace(c.FormValue("project_description"))
	if name == "" {
		return nil, errors.New("项目名称不能为空")
	}
	if desc == "" {
		return nil, errors.New("项目描述不能为空")
	}

	form := &types.FormData{ProjectName: name, ProjectDescription: desc}

	if raw := strings.TrimSpace(c.FormValue("key_persons")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &form.KeyPersons); err != nil {
			return nil, errors.New("关键人数据格式错误")
		}
	} else if params, err := c.FormParams(); err == nil {
		names := params["person_name[]"]
		rolesArr := params["person_role[]"]
		resArr := params["person_resources[]"]
		happyArr := params["person_make_happy[]"]
		notesArr := params["person_notes[]"]
		for i, n := range names {
			n = strings.TrimSpace(n)
			if n == "" {
				continue
			}
			p := types.Person{Name: n}
			if i < len(rolesArr) {
				p.Role = roles.Normalize(strings.TrimSpace(rolesArr[i]))
			}
			if i < len(resArr) {
				p.Resources = splitList(resArr[i])
			}
			if i < len(happyArr) {
				p.MakeHappy = splitList(happyArr[i])
			}
			if i < len(notesArr) {
				p.Notes = strings.TrimSpace(notesArr[i])
			}
			form.KeyPersons = append(form.KeyPersons, p)
		}
	}

	for i := range form.KeyPersons {
		form.KeyPersons[i].Name = strings.TrimSpace(form.KeyPersons[i].Name)
		if form.KeyPersons[i].Name == "" {
			return nil, errors.New("关键人姓名不能为空")
		}
		form.KeyPersons[i].Role = roles.Normalize(form.KeyPersons[i].Role)
	}

	if raw := strings.TrimSpace(c.FormValue("external_resources")); raw != "" {
		var arr []string
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			form.ExternalResources = arr
		} else {
			form.ExternalResources = splitList(raw)
		}
	}
	return form, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '，' || r == '、' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func thinkingLines(form *types.FormData) []string {
	lines := []string{
		"正在分析「" + form.ProjectName + "」的收入结构…",
		"正在梳理各方资源与动机…",
		"正在寻找可以撮合的需求与交付…",
		"正在设计防绕过与结算机制…",
		"正在评估风险与备选方案…",
	}
	for _, p := range form.KeyPersons {
		lines = append(lines, "正在思考如何让"+p.Name+"（"+roles.Display(p.Role)+"）留在管道里…")
	}
	return lines
}
