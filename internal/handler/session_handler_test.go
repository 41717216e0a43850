package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/repository"
	"github.com/okulapps/etut-api/internal/service"
	"github.com/okulapps/etut-api/pkg/response"
)

// memStore applies mutations synchronously so handler tests run against the
// real service stack without a database.
type memStore struct {
	st repository.State
}

func (m *memStore) View() repository.State       { return m.st }
func (m *memStore) Sessions() []models.Session   { return m.st.Sessions }
func (m *memStore) Teachers() []models.Teacher   { return m.st.Teachers }
func (m *memStore) Students() []models.Student   { return m.st.Students }
func (m *memStore) TimeSlots() []models.TimeSlot { return m.st.TimeSlots }

func (m *memStore) Update(fn func(st *repository.State) ([]string, error)) error {
	_, err := fn(&m.st)
	return err
}

func newSessionTestStack() (*SessionHandler, *memStore) {
	store := &memStore{st: repository.State{
		Teachers: []models.Teacher{
			{
				ID:      "t-ahmet",
				Name:    "Ahmet Hoca",
				Subject: "Matematik",
				AvailableHours: models.AvailableHours{
					"Pazartesi": {"09:30-10:10"},
				},
			},
		},
		Students:  []models.Student{{ID: "s-ali", Name: "Ali Veli", Class: "9-A", StudentNumber: "101"}},
		TimeSlots: models.DefaultTimeSlots(),
	}}
	svc := service.NewSchedulingService(store, nil, nil, nil, nil)
	return NewSessionHandler(svc), store
}

func performJSON(t *testing.T, handlerFn gin.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handlerFn(c)
	return w
}

func TestSessionHandlerValidateReturnsDecision(t *testing.T) {
	handler, _ := newSessionTestStack()

	// A guard rejection is still HTTP 200; the decision carries the reason.
	w := performJSON(t, handler.Validate, http.MethodPost, "/sessions/validate", service.ValidateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-05",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data struct {
			Valid  bool   `json:"valid"`
			Reason string `json:"reason"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Valid)
	assert.Equal(t, "TEACHER_UNAVAILABLE", envelope.Data.Reason)
}

func TestSessionHandlerCreate(t *testing.T) {
	handler, store := newSessionTestStack()

	w := performJSON(t, handler.Create, http.MethodPost, "/sessions", service.CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, store.st.Sessions, 1)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)

	// Committing the same week again maps the guard onto 409.
	w = performJSON(t, handler.Create, http.MethodPost, "/sessions", service.CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "WEEKLY_LIMIT_EXCEEDED", envelope.Error.Code)
}

func TestSessionHandlerCreateInvalidBody(t *testing.T) {
	handler, _ := newSessionTestStack()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/sessions", bytes.NewBufferString(`{"teacher_id":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Create(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionHandlerTransitions(t *testing.T) {
	handler, store := newSessionTestStack()

	w := performJSON(t, handler.Create, http.MethodPost, "/sessions", service.CreateSessionRequest{
		TeacherID: "t-ahmet", StudentID: "s-ali", TimeSlot: "09:30-10:10", Date: "2024-03-04",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	id := store.st.Sessions[0].ID

	gin.SetMode(gin.TestMode)
	w = httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/sessions/"+id+"/absent", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "id", Value: id}}

	handler.MarkAbsent(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.SessionAbsent, store.st.Sessions[0].Status)
	assert.True(t, store.st.Students[0].IsBanned)

	// Already terminal.
	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/sessions/"+id+"/complete", nil)
	c.Params = gin.Params{{Key: "id", Value: id}}
	handler.Complete(c)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestSessionHandlerListRejectsUnknownStatus(t *testing.T) {
	handler, _ := newSessionTestStack()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/sessions?status=cancelled", nil)

	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
