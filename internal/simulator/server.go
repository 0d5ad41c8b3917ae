package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"

	"linguacall/internal/domain/booking"
	"linguacall/internal/domain/call"
	"linguacall/internal/domain/user"
	"linguacall/pkg/logger"
)

// Server is the in-memory stand-in for the LinguaCall platform. It
// serves the HTTP API and the push channel, good enough to develop and
// test the client against without any external services.
type Server struct {
	state     *State
	hub       *Hub
	log       *logger.Logger
	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewServer(state *State, log *logger.Logger, jwtSecret string, jwtTTLMinutes int) *Server {
	return &Server{
		state:     state,
		hub:       NewHub(),
		log:       log,
		jwtSecret: []byte(jwtSecret),
		jwtTTL:    time.Duration(jwtTTLMinutes) * time.Minute,
	}
}

func errorResponse(c *gin.Context, status int, detail string) {
	c.JSON(status, gin.H{"detail": detail})
}

// Router builds the gin engine with all platform routes.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/auth/login", s.login)
	r.GET("/ws", s.connectWS)

	authed := r.Group("/", s.authMiddleware())
	{
		authed.POST("/auth/logout", s.logout)
		authed.GET("/auth/me", s.me)

		authed.GET("/calls/active", s.activeCalls)
		authed.POST("/calls/start", s.startCall)
		authed.POST("/calls/end", s.endCall)
		authed.PUT("/calls/:id", s.updateCall)
		authed.GET("/calls/history", s.callHistory)

		authed.GET("/queue", s.getQueue)
		authed.GET("/queue/metrics", s.getMetrics)

		authed.GET("/bookings/", s.listBookings)
		authed.POST("/bookings/", s.createBooking)

		authed.GET("/translators/", s.listTranslators)
		authed.PUT("/translators/:id", s.updateTranslator)
	}
	return r
}

func (s *Server) issueToken(userID string) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.jwtTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func (s *Server) parseToken(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("invalid token")
	}
	claims := parsed.Claims.(*jwt.RegisteredClaims)
	return claims.Subject, nil
}

func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := s.parseToken(extractBearer(c))
		if err != nil {
			errorResponse(c, http.StatusUnauthorized, "Could not validate credentials")
			c.Abort()
			return
		}
		u, ok := s.state.UserByID(userID)
		if !ok {
			errorResponse(c, http.StatusUnauthorized, "Could not validate credentials")
			c.Abort()
			return
		}
		c.Set("user", u)
		c.Next()
	}
}

func extractBearer(c *gin.Context) string {
	value := c.GetHeader("Authorization")
	parts := strings.SplitN(value, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func currentUser(c *gin.Context) *user.User {
	u, _ := c.Get("user")
	return u.(*user.User)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request")
		return
	}
	u, ok := s.state.Authenticate(req.Email, req.Password)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	token, err := s.issueToken(u.ID)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "token issue failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "user": u})
}

func (s *Server) logout(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"detail": "logged out"})
}

func (s *Server) me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

func (s *Server) activeCalls(c *gin.Context) {
	calls := s.state.ActiveCalls()
	if calls == nil {
		calls = []call.Call{}
	}
	c.JSON(http.StatusOK, calls)
}

type startCallRequest struct {
	RoomName     string `json:"roomName" binding:"required"`
	CustomerInfo *struct {
		CustomerName  string `json:"customerName"`
		CustomerPhone string `json:"customerPhone"`
	} `json:"customerInfo"`
}

func (s *Server) startCall(c *gin.Context) {
	var req startCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "roomName is required")
		return
	}
	var name, phone string
	if req.CustomerInfo != nil {
		name = req.CustomerInfo.CustomerName
		phone = req.CustomerInfo.CustomerPhone
	}
	created := s.state.CreateCall(req.RoomName, name, phone)
	s.broadcastCallUpdate(created.ID, call.Patch{Status: &created.Status, StartTime: created.StartTime})
	c.JSON(http.StatusOK, created)
}

type endCallRequest struct {
	CallID string `json:"callId" binding:"required"`
}

func (s *Server) endCall(c *gin.Context) {
	var req endCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "callId is required")
		return
	}
	ended, found, err := s.state.EndCall(req.CallID)
	if !found {
		errorResponse(c, http.StatusNotFound, "Call not found")
		return
	}
	if err != nil {
		errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	s.broadcastCallUpdate(ended.ID, call.Patch{
		Status:   &ended.Status,
		EndTime:  ended.EndTime,
		Duration: &ended.Duration,
	})
	c.JSON(http.StatusOK, ended)
}

func (s *Server) updateCall(c *gin.Context) {
	var patch call.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request")
		return
	}
	updated, ok := s.state.UpdateCall(c.Param("id"), patch)
	if !ok {
		errorResponse(c, http.StatusNotFound, "Call not found")
		return
	}
	s.broadcastCallUpdate(updated.ID, patch)
	c.JSON(http.StatusOK, updated)
}

func (s *Server) callHistory(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	history := s.state.CallHistory(limit)
	if history == nil {
		history = []call.Call{}
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) getQueue(c *gin.Context) {
	queue := s.state.Queue()
	if queue == nil {
		queue = []call.QueueItem{}
	}
	c.JSON(http.StatusOK, queue)
}

func (s *Server) getMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.state.Metrics())
}

func (s *Server) listBookings(c *gin.Context) {
	rangeStart := parseTimeQuery(c, "start_date")
	rangeEnd := parseTimeQuery(c, "end_date")
	bookings := s.state.Bookings(rangeStart, rangeEnd)
	if bookings == nil {
		bookings = []booking.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

func (s *Server) createBooking(c *gin.Context) {
	u := currentUser(c)
	if !u.Role.CanBook() && u.Role != user.RoleAdmin {
		errorResponse(c, http.StatusForbidden, "Not authorized to create bookings")
		return
	}
	var draft booking.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request")
		return
	}
	created, err := s.state.CreateBooking(draft, u.ID, u.CompanyID)
	if err != nil {
		switch {
		case errors.Is(err, errTranslatorNotFound):
			errorResponse(c, http.StatusNotFound, err.Error())
		case errors.Is(err, errBookingConflict):
			errorResponse(c, http.StatusConflict, err.Error())
		default:
			errorResponse(c, http.StatusBadRequest, err.Error())
		}
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) listTranslators(c *gin.Context) {
	availableOnly := c.Query("available_only") == "true"
	translators := s.state.Translators(availableOnly, c.Query("language"))
	if translators == nil {
		translators = []user.User{}
	}
	c.JSON(http.StatusOK, translators)
}

func (s *Server) updateTranslator(c *gin.Context) {
	var update user.TranslatorUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid request")
		return
	}
	updated, ok := s.state.UpdateTranslator(c.Param("id"), update)
	if !ok {
		errorResponse(c, http.StatusNotFound, "Translator not found")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// connectWS upgrades the push channel. The token is optional query
// state; when present it must verify.
func (s *Server) connectWS(c *gin.Context) {
	if token := c.Query("token"); token != "" {
		if _, err := s.parseToken(token); err != nil {
			errorResponse(c, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	client := newWSClient(conn)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.hub.register(client)
	go client.writeLoop(ctx)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	}

	s.hub.unregister(client)
}

func (s *Server) broadcastCallUpdate(callID string, patch call.Patch) {
	payload, err := json.Marshal(gin.H{
		"type":    "call_update",
		"callId":  callID,
		"updates": patch,
	})
	if err != nil {
		s.log.Errorf("marshal call_update: %v", err)
		return
	}
	s.hub.Broadcast(payload)
}

func parseTimeQuery(c *gin.Context, key string) time.Time {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
