// pkg/session/session.go

// Package session is the cookie-side half of the lifecycle split: a small
// reference bag (UUIDs + lifecycle fields), never form or result payloads.
// The durable payloads live in the submissions and analyses tables.
package session

import (
	"encoding/json"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
)

const (
	cookieName = "nolabor_session"

	// MaxCookieBytes bounds the serialized session. Browsers clamp
	// cookies around 4 KB; staying under 3.5 KB leaves headroom for the
	// signature and attributes.
	MaxCookieBytes = 3500
)

// Lifecycle statuses as stored in the session and reported by polling.
const (
	StatusNotStarted = "not_started"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusError      = "error"
	StatusTimeout    = "timeout"
)

// State is everything the cookie may carry.
type State struct {
	UID          string `json:"uid,omitempty"`
	SubmissionID string `json:"submission_id,omitempty"`
	ResultID     string `json:"result_id,omitempty"`
	Status       string `json:"status,omitempty"`
	Progress     int    `json:"progress,omitempty"`
	Stage        string `json:"stage,omitempty"`
	Started      bool   `json:"started,omitempty"`
	LastError    string `json:"last_error,omitempty"`

	// Legacy escape hatches. Older builds stuffed payloads into the
	// cookie; these exist so the eviction order has something to evict
	// and old cookies still decode.
	FormSnapshot string `json:"form_snapshot,omitempty"`
	ResultBlob   string `json:"result_blob,omitempty"`
}

// ResetLifecycle clears everything /generate owns: the started flag, the
// result reference, the error, progress.
func (s *State) ResetLifecycle() {
	s.ResultID = ""
	s.Status = StatusNotStarted
	s.Progress = 0
	s.Stage = ""
	s.Started = false
	s.LastError = ""
	s.FormSnapshot = ""
	s.ResultBlob = ""
}

type Manager struct {
	store *sessions.CookieStore
}

func NewManager(secret string) *Manager {
	st := sessions.NewCookieStore([]byte(secret))
	st.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
	}
	return &Manager{store: st}
}

// Load never fails: an unreadable or absent cookie yields a zero state.
func (m *Manager) Load(c echo.Context) *State {
	sess, err := m.store.Get(c.Request(), cookieName)
	if err != nil || sess == nil {
		return &State{}
	}
	raw, ok := sess.Values["state"].(string)
	if !ok {
		return &State{}
	}
	var st State
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return &State{}
	}
	return &st
}

// Save writes the state back, evicting payload fields in priority order
// (result blob, then form snapshot, then stage label) until the encoded
// size fits MaxCookieBytes.
func (m *Manager) Save(c echo.Context, st *State) error {
	Shrink(st)
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	sess, _ := m.store.Get(c.Request(), cookieName)
	if sess == nil {
		sess, _ = m.store.New(c.Request(), cookieName)
	}
	sess.Values["state"] = string(raw)
	return sess.Save(c.Request(), c.Response())
}

// Shrink enforces the size bound in place.
func Shrink(st *State) {
	for _, drop := range []func(){
		func() { st.ResultBlob = "" },
		func() { st.FormSnapshot = "" },
		func() { st.Stage = "" },
	} {
		if EncodedSize(st) <= MaxCookieBytes {
			return
		}
		drop()
	}
}

// EncodedSize approximates the on-wire cookie size: JSON bytes plus
// base64 expansion plus signature overhead.
func EncodedSize(st *State) int {
	raw, err := json.Marshal(st)
	if err != nil {
		return 0
	}
	return len(raw)*4/3 + 64
}
