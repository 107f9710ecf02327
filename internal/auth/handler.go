package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/payflow/gateway/internal/httperr"
	"github.com/payflow/gateway/internal/identity"
)

var validate = validator.New()

// Handler exposes the authentication endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds the auth HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	FullName string `json:"full_name" validate:"required"`
	Phone    string `json:"phone" validate:"omitempty,e164"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type userResponse struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Register creates a new user plus wallet and returns a token pair.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Validation("Invalid input data")
	}
	if err := validate.Struct(req); err != nil {
		return httperr.Validation("Invalid input data")
	}

	user, pair, err := h.service.Register(c.UserContext(), identity.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return httperr.New(http.StatusBadRequest, httperr.CodeUserExists, "User with this email already exists")
		}
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User registered successfully",
		"user": userResponse{
			ID:        user.ID,
			Email:     user.Email,
			FullName:  user.FullName,
			CreatedAt: user.CreatedAt,
		},
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Login authenticates a user and returns a token pair.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Validation("Invalid input data")
	}
	if err := validate.Struct(req); err != nil {
		return httperr.Validation("Invalid input data")
	}

	user, pair, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			return httperr.New(http.StatusUnauthorized, httperr.CodeInvalidCredentials, "Invalid email or password")
		case errors.Is(err, identity.ErrAccountDisabled):
			return httperr.New(http.StatusForbidden, httperr.CodeAccountDisabled, "Your account has been disabled")
		default:
			return err
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "Login successful",
		"user": userResponse{
			ID:       user.ID,
			Email:    user.Email,
			FullName: user.FullName,
		},
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

// Refresh issues a new access token using a valid refresh token.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Validation("Invalid input data")
	}
	if err := validate.Struct(req); err != nil {
		return httperr.Validation("Invalid input data")
	}

	access, err := h.service.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			return httperr.New(http.StatusUnauthorized, httperr.CodeInvalidToken, "Invalid or expired refresh token")
		}
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"accessToken": access})
}

// Logout revokes the provided refresh token.
func (h *Handler) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return httperr.Validation("Invalid input data")
	}
	if err := validate.Struct(req); err != nil {
		return httperr.Validation("Invalid input data")
	}

	if err := h.service.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return err
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "Logged out successfully"})
}
