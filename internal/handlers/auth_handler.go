package handler

import (
	"net/http"

	"invoice-dashboard-backend/internal/services/reporting"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type AuthHandler struct {
	queries *reporting.Service
}

func NewAuthHandler(queries *reporting.Service) *AuthHandler {
	return &AuthHandler{queries: queries}
}

type loginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=6"`
}

// Login checks credentials against the stored bcrypt hash. Unknown emails and
// wrong passwords get the same answer.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid credentials format"})
		return
	}

	user, err := h.queries.LookupUserByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondQueryError(c, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, user)
}
