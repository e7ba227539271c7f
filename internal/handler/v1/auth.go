package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dentavia/dentavia/internal/domain"
	"github.com/dentavia/dentavia/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type registerRequest struct {
	FirstName   string     `json:"first_name" binding:"required"`
	LastName    string     `json:"last_name" binding:"required"`
	Email       string     `json:"email" binding:"required,email"`
	Password    string     `json:"password" binding:"required"`
	Phone       string     `json:"phone"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Role        string     `json:"role" binding:"required"`
}

type userResponse struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	FirstName        string  `json:"first_name"`
	LastName         string  `json:"last_name"`
	Phone            string  `json:"phone,omitempty"`
	Role             string  `json:"role"`
	DelegationStatus string  `json:"delegation_status,omitempty"`
	AssignedDoctorID *string `json:"assigned_doctor_id,omitempty"`
}

func toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
		Role:      string(u.Role),
	}
	if u.Role == domain.RoleSecretary {
		resp.DelegationStatus = string(u.DelegationStatus)
		if u.AssignedDoctorID != nil {
			id := u.AssignedDoctorID.String()
			resp.AssignedDoctorID = &id
		}
	}
	return resp
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.auth.Register(c.Request.Context(), service.RegisterCommand{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Password:    req.Password,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Role:        domain.Role(req.Role),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondCreated(c, toUserResponse(user))
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Tokens *domain.TokenPair `json:"tokens"`
	User   userResponse      `json:"user"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req) {
		return
	}

	tokens, user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, loginResponse{Tokens: tokens, User: toUserResponse(user)})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if !bindJSON(c, &req) {
		return
	}

	tokens, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, tokens)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	id, ok := actorID(c)
	if !ok {
		return
	}

	var req changePasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.auth.ChangePassword(c.Request.Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, gin.H{"updated": true})
}
