package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/aldoetobex/council-case-backend/pkg/logger"
	"github.com/aldoetobex/council-case-backend/pkg/models"
	"github.com/aldoetobex/council-case-backend/pkg/validation"
)

/* ================================ DTOs ================================= */

// Request body for /signup
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Email    string `json:"email" validate:"required,email,max=120"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// Request body for /login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=120"`
	Password string `json:"password" validate:"required"`
}

// Standard auth response
type AuthResponse struct {
	Token string      `json:"token"`
	Role  models.Role `json:"role"`
	User  UserProfile `json:"user"`
}

// Public profile shape
type UserProfile struct {
	ID        uuid.UUID   `json:"id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Name      string      `json:"name"`
	Phone     string      `json:"phone,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

func Profile(u models.User) UserProfile {
	return UserProfile{ID: u.ID, Email: u.Email, Role: u.Role, Name: u.Name, Phone: u.Phone, CreatedAt: u.CreatedAt}
}

/* ============================== Handler ================================= */

type Handler struct{ db *gorm.DB }

func NewHandler(db *gorm.DB) *Handler { return &Handler{db: db} }

// HashPassword bcrypt-hashes a password with the default cost.
func HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(hash), err
}

// NormalizeEmail lower-cases and trims an email.
func NormalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

/* =============================== Signup ================================= */

// @Summary      Sign up
// @Description  Register a new end user (shaykhs are created by admins)
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  SignupRequest  true  "Signup payload"
// @Success      201      {object}  AuthResponse
// @Failure      400      {object}  models.ValidationErrorResponse
// @Failure      409      {object}  models.ErrorResponse  "email already exists"
// @Router       /signup [post]
func (h *Handler) Signup(c *fiber.Ctx) error {
	var in SignupRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.Email = NormalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return fiber.ErrInternalServerError
	}

	u := models.User{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		Name:         in.Name,
		Phone:        strings.TrimSpace(in.Phone),
		Active:       true,
	}
	if err := h.db.Create(&u).Error; err != nil {
		return fiber.NewError(fiber.StatusConflict, "email already exists")
	}

	token, err := IssueToken(u.ID.String(), u.Role)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.Status(fiber.StatusCreated).JSON(AuthResponse{Token: token, Role: u.Role, User: Profile(u)})
}

/* ================================ Login ================================= */

// @Summary      Login
// @Description  Authenticate and receive a JWT
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body  LoginRequest  true  "Login payload"
// @Success      200      {object}  AuthResponse
// @Failure      400      {object}  models.ValidationErrorResponse
// @Failure      401      {object}  models.ErrorResponse
// @Router       /login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var in LoginRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.ErrBadRequest
	}
	in.Email = NormalizeEmail(in.Email)

	if errs, _ := validation.Validate(in); errs != nil {
		return validation.Respond(c, errs)
	}

	var u models.User
	if err := h.db.Where("email = ?", in.Email).First(&u).Error; err != nil {
		return fiber.ErrUnauthorized
	}
	if !u.Active {
		return fiber.NewError(fiber.StatusUnauthorized, "account disabled")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)) != nil {
		return fiber.ErrUnauthorized
	}

	token, err := IssueToken(u.ID.String(), u.Role)
	if err != nil {
		return fiber.ErrInternalServerError
	}
	return c.JSON(AuthResponse{Token: token, Role: u.Role, User: Profile(u)})
}

/* ================================= Me =================================== */

// @Summary      Get current user profile
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  UserProfile
// @Failure      401  {object}  models.ErrorResponse
// @Router       /me [get]
func (h *Handler) Me(c *fiber.Ctx) error {
	var u models.User
	if err := h.db.First(&u, "id = ?", MustUserID(c)).Error; err != nil {
		return fiber.ErrUnauthorized
	}
	return c.JSON(Profile(u))
}

/* ============================== Bootstrap =============================== */

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func EnsureAdmin(db *gorm.DB, email, password string) error {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	var u models.User
	err := db.Where("email = ?", email).First(&u).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u = models.User{Email: email, PasswordHash: hash, Role: models.RoleAdmin, Name: "Administrator", Active: true}
	if err := db.Create(&u).Error; err != nil {
		return err
	}
	logger.SLog.Infof("bootstrap admin %s created", email)
	return nil
}
