package session

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestStateRoundTrip(t *testing.T) {
	m := NewManager("test-secret")
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	st := m.Load(c)
	st.UID = "u1"
	st.SubmissionID = "sub-1"
	st.Status = StatusProcessing
	st.Started = true
	if err := m.Save(c, st); err != nil {
		t.Fatal(err)
	}

	// carry the cookie into a second request
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range rec.Result().Cookies() {
		req2.AddCookie(ck)
	}
	c2 := e.NewContext(req2, httptest.NewRecorder())

	got := m.Load(c2)
	if got.UID != "u1" || got.SubmissionID != "sub-1" || got.Status != StatusProcessing || !got.Started {
		t.Fatalf("round trip lost state: %+v", got)
	}
}

func TestLoadGarbageCookieYieldsZeroState(t *testing.T) {
	m := NewManager("test-secret")
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "nolabor_session", Value: "not-a-session"})
	c := e.NewContext(req, httptest.NewRecorder())

	if got := m.Load(c); got.SubmissionID != "" || got.Started {
		t.Fatalf("garbage cookie should yield zero state, got %+v", got)
	}
}

func TestShrinkEvictionOrder(t *testing.T) {
	big := strings.Repeat("x", 4000)
	st := &State{
		UID:          "u1",
		SubmissionID: "sub-1",
		Stage:        "正在整理输出",
		FormSnapshot: big,
		ResultBlob:   big,
	}
	Shrink(st)

	if st.ResultBlob != "" {
		t.Error("result blob should evict first")
	}
	if st.FormSnapshot != "" {
		t.Error("form snapshot should evict second")
	}
	if st.Stage == "" {
		t.Error("stage should survive once payloads are gone")
	}
	if EncodedSize(st) > MaxCookieBytes {
		t.Fatalf("still oversize after eviction: %d", EncodedSize(st))
	}
}

func TestResetLifecycle(t *testing.T) {
	st := &State{
		UID: "u1", SubmissionID: "sub-1", ResultID: "res-1",
		Status: StatusCompleted, Progress: 100, Stage: "done",
		Started: true, LastError: "boom",
	}
	st.ResetLifecycle()
	if st.ResultID != "" || st.Started || st.Progress != 0 || st.LastError != "" {
		t.Fatalf("lifecycle not fully reset: %+v", st)
	}
	if st.Status != StatusNotStarted {
		t.Fatalf("status = %s", st.Status)
	}
	if st.UID != "u1" || st.SubmissionID != "sub-1" {
		t.Fatal("reset must keep identity and submission reference")
	}
}

func TestSaveKeepsCookieUnderBound(t *testing.T) {
	m := NewManager("test-secret")
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	st := &State{UID: "u1", SubmissionID: "sub-1", FormSnapshot: strings.Repeat("表单", 3000)}
	if err := m.Save(c, st); err != nil {
		t.Fatal(err)
	}
	for _, ck := range rec.Result().Cookies() {
		if len(ck.Value) > 4096 {
			t.Fatalf("cookie %s is %d bytes", ck.Name, len(ck.Value))
		}
	}
}
