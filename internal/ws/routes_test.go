package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"mypetsvoice/backend/internal/prompt"
	"mypetsvoice/backend/internal/session"
	"mypetsvoice/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, session.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.New(logger.Config{Level: "error"})
	store := session.NewMemoryStore()
	pool := NewPool(1, 4, &blockingGenerator{reply: "meow!"}, log)
	hub := NewHub(store, pool, log)
	go hub.Run()

	r := gin.New()
	NewHandler(hub, store, log).RegisterRoutes(r)
	return r, store
}

func postForm(r *gin.Engine, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validPetForm() url.Values {
	return url.Values{
		"name":         {"Momo"},
		"species":      {"Cat"},
		"breed":        {"Korean Shorthair"},
		"personality":  {"playful", "curious"},
		"speech_style": {"cute"},
		"owner_call":   {"mom"},
		"likes":        {"tuna, sunny spots"},
	}
}

func TestCreatePetBindsPersonaAndSetsCookie(t *testing.T) {
	r, store := newTestRouter(t)

	w := postForm(r, "/create_pet", validPetForm())

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success  bool   `json:"success"`
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "/chat", body.Redirect)

	var sid string
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == sessionCookie {
			sid = cookie.Value
		}
	}
	require.NotEmpty(t, sid, "session cookie must be set")

	persona, err := store.Persona(context.Background(), sid)
	require.NoError(t, err)
	assert.Equal(t, "Momo", persona.Name)
	assert.Equal(t, "playful, curious", persona.Personality)
	assert.Equal(t, "tuna, sunny spots", persona.Likes)
}

func TestCreatePetMissingNameRejected(t *testing.T) {
	r, _ := newTestRouter(t)

	form := validPetForm()
	form.Del("name")

	w := postForm(r, "/create_pet", form)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePetRebindResetsConversation(t *testing.T) {
	r, store := newTestRouter(t)
	ctx := context.Background()

	require.NoError(t, store.BindPersona(ctx, "sid-1", prompt.PetProfile{Name: "Old"}))
	seq, err := store.AppendUserTurn(ctx, "sid-1", "hi")
	require.NoError(t, err)
	require.NoError(t, store.CompleteTurn(ctx, "sid-1", seq, "meow"))

	w := postForm(r, "/create_pet", validPetForm(), &http.Cookie{Name: sessionCookie, Value: "sid-1"})
	require.Equal(t, http.StatusOK, w.Code)

	history, err := store.History(ctx, "sid-1")
	require.NoError(t, err)
	assert.Empty(t, history)

	persona, err := store.Persona(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "Momo", persona.Name)
}

func TestChatPageRedirectsWithoutPersona(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestChatPageRendersBoundPet(t *testing.T) {
	r, store := newTestRouter(t)
	require.NoError(t, store.BindPersona(context.Background(), "sid-1", prompt.PetProfile{Name: "Momo", Species: "Cat"}))

	req := httptest.NewRequest(http.MethodGet, "/chat", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "sid-1"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Momo")
}

func TestWsRefusedWithoutPersona(t *testing.T) {
	r, _ := newTestRouter(t)

	// No cookie at all
	req := httptest.NewRequest(http.MethodGet, "/ws", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Cookie present but nothing bound
	req = httptest.NewRequest(http.MethodGet, "/ws", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: "unknown-sid"})
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestIndexPageServesCatalogs(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Cat")
	assert.Contains(t, body, "playful")
	assert.Contains(t, body, "cute")
}
