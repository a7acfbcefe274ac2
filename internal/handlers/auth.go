package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"inkwell/internal/services"
)

type AuthHandler struct {
	accounts *services.AccountService
}

func NewAuthHandler(accounts *services.AccountService) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type signupRequest struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.accounts.Signup(c.Request.Context(), req.Fullname, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req signupRequest
	if !bindJSON(c, &req) {
		return
	}
	s, err := h.accounts.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
