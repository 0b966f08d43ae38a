package ws

import (
	"net/http"
	"strings"
	"time"

	"mypetsvoice/backend/internal/prompt"
	"mypetsvoice/backend/internal/session"
	"mypetsvoice/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sessionCookie = "pet_sid"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// Handler wires the persona form, chat page and websocket upgrade
type Handler struct {
	hub   *Hub
	store session.Store
	log   *logger.Logger
}

func NewHandler(hub *Hub, store session.Store, log *logger.Logger) *Handler {
	return &Handler{hub: hub, store: store, log: log}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.SetHTMLTemplate(pageTemplates)

	r.GET("/", h.indexPage)
	r.POST("/create_pet", h.createPet)
	r.GET("/chat", h.chatPage)
	r.GET("/ws", h.serveWs)
}

func (h *Handler) indexPage(c *gin.Context) {
	c.HTML(http.StatusOK, "index", gin.H{
		"Species":           speciesCatalog,
		"PersonalityTraits": personalityTraits,
		"SpeechStyles":      speechStyles,
	})
}

// createPet binds a persona built from the form to the caller's session and
// hands back the redirect target. Rebinding discards any running
// conversation.
func (h *Handler) createPet(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("name"))
	species := strings.TrimSpace(c.PostForm("species"))
	speechStyle := strings.TrimSpace(c.PostForm("speech_style"))
	ownerCall := strings.TrimSpace(c.PostForm("owner_call"))
	personality := c.PostFormArray("personality")

	if name == "" || species == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and species are required"})
		return
	}
	if speechStyle == "" || ownerCall == "" || len(personality) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "personality, speech style and owner call are required"})
		return
	}

	profile := prompt.PetProfile{
		Name:          name,
		Species:       species,
		Breed:         strings.TrimSpace(c.PostForm("breed")),
		Age:           strings.TrimSpace(c.PostForm("age")),
		Gender:        strings.TrimSpace(c.PostForm("gender")),
		Birthday:      strings.TrimSpace(c.PostForm("birthday")),
		Personality:   strings.Join(personality, ", "),
		SpeakingStyle: speechStyle,
		UserCall:      ownerCall,
		Likes:         joinCommaList(c.PostForm("likes")),
		Dislikes:      joinCommaList(c.PostForm("dislikes")),
		Habits:        joinCommaList(c.PostForm("habits")),
		EtcInfo:       strings.TrimSpace(c.PostForm("special_notes")),
	}

	sid := h.sessionID(c)
	if sid == "" {
		sid = uuid.New().String()
	}

	if err := h.store.BindPersona(c.Request.Context(), sid, profile); err != nil {
		h.log.Error("failed to bind persona", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save pet"})
		return
	}

	c.SetCookie(sessionCookie, sid, int((24 * time.Hour).Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "redirect": "/chat"})
}

func (h *Handler) chatPage(c *gin.Context) {
	sid := h.sessionID(c)
	if sid == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}
	profile, err := h.store.Persona(c.Request.Context(), sid)
	if err != nil {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "chat", gin.H{"Pet": profile})
}

// serveWs refuses the upgrade when no persona is bound, matching the
// connect-time rejection on the page flow
func (h *Handler) serveWs(c *gin.Context) {
	sid := h.sessionID(c)
	if sid == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "no session"})
		return
	}
	if _, err := h.store.Persona(c.Request.Context(), sid); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no pet persona bound to this session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(h.hub, conn, sid)
	h.hub.register <- client

	go client.writePump()
	go client.resultLoop()
	go client.readPump()

	client.sendEvent("connected", map[string]string{"message": "Connected."})
}

func (h *Handler) sessionID(c *gin.Context) string {
	sid, err := c.Cookie(sessionCookie)
	if err != nil {
		return ""
	}
	return sid
}

// joinCommaList normalizes a comma-separated form field, dropping empty
// items
func joinCommaList(raw string) string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return strings.Join(items, ", ")
}
