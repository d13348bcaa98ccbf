package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yearendparty/banquet/backend/internal/fortune"
	"github.com/yearendparty/banquet/backend/internal/seating"
	"github.com/yearendparty/banquet/backend/internal/voting"
	"go.uber.org/zap"
)

var (
	errMissingSeatingService = errors.New("seating service dependency required")
	errMissingVotingService  = errors.New("voting service dependency required")
	errMissingFortuneClient  = errors.New("fortune client dependency required")
	errInvalidAuthorization  = errors.New("authorization header missing or invalid")
)

// AdminTokenManager issues and validates admin session tokens.
type AdminTokenManager interface {
	IssueAdminToken(ctx context.Context, passcode string) (string, int64, error)
	ValidateToken(token string) (string, error)
	PasscodeConfigured() bool
}

// Dependencies wires the HTTP surface.
type Dependencies struct {
	SeatingService *seating.Service
	VotingService  *voting.Service
	FortuneClient  *fortune.Client
	TokenManager   AdminTokenManager
	Broadcaster    *TallyBroadcaster
	UploadsDir     string
	Logger         *zap.Logger
}

// NewHTTPHandler assembles the gin router for the banquet API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.SeatingService == nil {
		return nil, errMissingSeatingService
	}
	if deps.VotingService == nil {
		return nil, errMissingVotingService
	}
	if deps.FortuneClient == nil {
		return nil, errMissingFortuneClient
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	broadcaster := deps.Broadcaster
	if broadcaster == nil {
		broadcaster = NewTallyBroadcaster()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	handler := &httpHandler{
		seating:     deps.SeatingService,
		voting:      deps.VotingService,
		fortune:     deps.FortuneClient,
		tokens:      deps.TokenManager,
		broadcaster: broadcaster,
		uploadsDir:  deps.UploadsDir,
		logger:      logger,
	}

	api := router.Group("/api")
	api.GET("/tables", handler.handleListTables)
	api.POST("/seats/lookup", handler.handleLookupSeat)
	api.POST("/fortune", handler.handleFortune)
	api.GET("/photos", handler.handleListPhotos)
	api.GET("/photos/stream", handler.handlePhotoStream)
	api.POST("/photos/upload", handler.handlePhotoUpload)
	api.POST("/photos/:id/vote", handler.handleVote)
	api.GET("/voting/status", handler.handleVotingStatus)
	api.POST("/admin/login", handler.handleAdminLogin)

	admin := api.Group("/")
	admin.Use(handler.authorizeAdmin)
	admin.POST("/tables", handler.handleSaveTables)
	admin.POST("/voting/status", handler.handleUpdateVotingStatus)

	if deps.UploadsDir != "" {
		router.Static("/uploads", deps.UploadsDir)
	}

	return router, nil
}

type httpHandler struct {
	seating     *seating.Service
	voting      *voting.Service
	fortune     *fortune.Client
	tokens      AdminTokenManager
	broadcaster *TallyBroadcaster
	uploadsDir  string
	logger      *zap.Logger
}

func (h *httpHandler) handleListTables(c *gin.Context) {
	tables, err := h.seating.ListTables(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to list tables", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_tables_failed"})
		return
	}

	// An empty directory is seeded with the default floor plan so the
	// first visitor sees a populated canvas.
	if len(tables) == 0 {
		if err := h.seating.EnsureSeedData(c.Request.Context()); err != nil {
			h.logger.Error("failed to seed seat directory", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_tables_failed"})
			return
		}
		tables, err = h.seating.ListTables(c.Request.Context())
		if err != nil {
			h.logger.Error("failed to list tables after seed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list_tables_failed"})
			return
		}
	}

	c.JSON(http.StatusOK, tables)
}

func (h *httpHandler) handleSaveTables(c *gin.Context) {
	var tables []seating.Table
	if err := c.ShouldBindJSON(&tables); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.seating.ReplaceAll(c.Request.Context(), tables); err != nil {
		h.logger.Error("failed to save tables", zap.Error(err), zap.Int("table_count", len(tables)))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type lookupRequestPayload struct {
	Name string `json:"name"`
}

func (h *httpHandler) handleLookupSeat(c *gin.Context) {
	var request lookupRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	found, err := h.seating.LookupSeat(c.Request.Context(), request.Name)
	switch {
	case errors.Is(err, seating.ErrNameRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "name_required"})
	case errors.Is(err, seating.ErrSeatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "seat_not_found"})
	case err != nil:
		h.logger.Error("seat lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup_failed"})
	default:
		c.JSON(http.StatusOK, found)
	}
}

type fortuneRequestPayload struct {
	Name      string `json:"name"`
	TableName string `json:"tableName"`
}

func (h *httpHandler) handleFortune(c *gin.Context) {
	var request fortuneRequestPayload
	if err := c.ShouldBindJSON(&request); err != nil ||
		strings.TrimSpace(request.Name) == "" || strings.TrimSpace(request.TableName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	// Generate masks upstream failures behind the fallback greeting; the
	// lookup flow never sees a raw error.
	text, _ := h.fortune.Generate(c.Request.Context(), request.Name, request.TableName)
	c.JSON(http.StatusOK, gin.H{"text": text})
}

func (h *httpHandler) handleListPhotos(c *gin.Context) {
	photos, err := h.voting.ListPhotos(c.Request.Context(), clientIP(c.Request))
	if err != nil {
		h.logger.Error("failed to list photos", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_photos_failed"})
		return
	}
	c.JSON(http.StatusOK, photos)
}

func (h *httpHandler) handleVote(c *gin.Context) {
	photoID := c.Param("id")
	voterIP := clientIP(c.Request)

	photo, err := h.voting.CastVote(c.Request.Context(), photoID, voterIP)
	switch {
	case errors.Is(err, voting.ErrVotingClosed):
		c.JSON(http.StatusForbidden, gin.H{"error": "voting_closed"})
		return
	case errors.Is(err, voting.ErrAlreadyVoted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "already_voted"})
		return
	case errors.Is(err, voting.ErrPhotoNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "photo_not_found"})
		return
	case err != nil:
		h.logger.Error("failed to cast vote", zap.Error(err), zap.String("photo_id", photoID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "vote_failed"})
		return
	}

	h.broadcaster.Publish(TallyEvent{
		EventType: RealtimeEventVoteTally,
		PhotoID:   photo.ID,
		VoteCount: photo.VoteCount,
		Timestamp: time.Now().UTC(),
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "photo": photo})
}

func (h *httpHandler) handleVotingStatus(c *gin.Context) {
	status, err := h.voting.VotingStatus(c.Request.Context())
	if err != nil {
		h.logger.Error("failed to get voting status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status_failed"})
		return
	}
	c.JSON(http.StatusOK, status)
}

type votingStatusPayload struct {
	VotingEnabled *bool `json:"votingEnabled"`
	VotingStopped *bool `json:"votingStopped"`
}

func (h *httpHandler) handleUpdateVotingStatus(c *gin.Context) {
	var request votingStatusPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	status, err := h.voting.UpdateStatus(c.Request.Context(), request.VotingEnabled, request.VotingStopped)
	if err != nil {
		h.logger.Error("failed to update voting status", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status_update_failed"})
		return
	}
	c.JSON(http.StatusOK, status)
}

type adminLoginPayload struct {
	Passcode string `json:"passcode"`
}

type adminLoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

func (h *httpHandler) handleAdminLogin(c *gin.Context) {
	if h.tokens == nil || !h.tokens.PasscodeConfigured() {
		c.JSON(http.StatusNotFound, gin.H{"error": "admin_login_disabled"})
		return
	}

	var request adminLoginPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.Passcode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	token, expiresIn, err := h.tokens.IssueAdminToken(c.Request.Context(), request.Passcode)
	if err != nil {
		h.logger.Warn("admin login rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, adminLoginResponse{
		AccessToken: token,
		ExpiresIn:   expiresIn,
		TokenType:   "Bearer",
	})
}

// authorizeAdmin gates the layout-save and voting-control routes. With no
// passcode configured the routes stay open, matching deployments on a
// trusted venue network.
func (h *httpHandler) authorizeAdmin(c *gin.Context) {
	if h.tokens == nil || !h.tokens.PasscodeConfigured() {
		c.Next()
		return
	}

	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errInvalidAuthorization.Error()})
		return
	}
	if _, err := h.tokens.ValidateToken(token); err != nil {
		h.logger.Warn("admin token validation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}
