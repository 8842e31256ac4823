package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/oksasatya/user-account-api/internal/application"
	"github.com/oksasatya/user-account-api/internal/domain/entity"
	"github.com/oksasatya/user-account-api/pkg/response"
	"github.com/oksasatya/user-account-api/pkg/validation"
)

// Response messages, kept verbatim from the API contract.
const (
	MsgRegisterMissing = "Nama, email, dan password wajib diisi"
	MsgEmailTaken      = "Email sudah terdaftar"
	MsgLoginMissing    = "Email dan Password wajib diisi"
	MsgBadCredentials  = "Email atau Password salah"
	MsgLoginOK         = "Login berhasil"
	MsgUserNotFound    = "User tidak ditemukan"
	MsgNothingToUpdate = "Tidak ada data yang diupdate"
	MsgProfileUpdated  = "Profil berhasil diperbarui"
	MsgServerError     = "Terjadi kesalahan pada server"
)

type UserHandler struct {
	Svc    *userapp.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *userapp.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/users/register (multipart; avatar optional).
func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBind(&req); err != nil {
		h.rejectPayload(c, err, MsgRegisterMissing)
		return
	}
	avatar, _ := c.FormFile("avatar") // optional

	u, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password, avatar)
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrMissingFields):
			response.Error(c, http.StatusBadRequest, MsgRegisterMissing)
		case errors.Is(err, userapp.ErrEmailTaken):
			response.Error(c, http.StatusBadRequest, MsgEmailTaken)
		default:
			h.serverError(c, "register failed", err)
		}
		return
	}
	c.JSON(http.StatusCreated, u)
}

// Login handles POST /api/users/login. A missing account and a password
// mismatch answer with the identical status and message.
func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.rejectPayload(c, err, MsgLoginMissing)
		return
	}

	u, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrMissingFields):
			response.Error(c, http.StatusBadRequest, MsgLoginMissing)
		case errors.Is(err, userapp.ErrInvalidCredentials):
			response.Error(c, http.StatusNotFound, MsgBadCredentials)
		default:
			h.serverError(c, "login failed", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgLoginOK, "user": u})
}

// List handles GET /api/users?search=&lastVisible=.
func (h *UserHandler) List(c *gin.Context) {
	users, next, err := h.Svc.List(c.Request.Context(), c.Query("search"), c.Query("lastVisible"))
	if err != nil {
		h.serverError(c, "list users failed", err)
		return
	}
	if users == nil {
		users = []entity.User{}
	}
	var lastVisible any
	if next != "" {
		lastVisible = next
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "lastVisible": lastVisible})
}

// GetByID handles GET /api/users/:id.
func (h *UserHandler) GetByID(c *gin.Context) {
	u, err := h.Svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, userapp.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, MsgUserNotFound)
			return
		}
		h.serverError(c, "get user failed", err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Update handles PUT /api/users/:id (multipart; both fields optional, but at
// least one must be present).
func (h *UserHandler) Update(c *gin.Context) {
	name := c.PostForm("name")
	avatar, _ := c.FormFile("avatar")

	u, err := h.Svc.Update(c.Request.Context(), c.Param("id"), name, avatar)
	if err != nil {
		switch {
		case errors.Is(err, userapp.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, MsgUserNotFound)
		case errors.Is(err, userapp.ErrNothingToUpdate):
			response.Error(c, http.StatusBadRequest, MsgNothingToUpdate)
		default:
			h.serverError(c, "update user failed", err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": MsgProfileUpdated, "user": u})
}

// rejectPayload answers a failed presence check with the fixed contract
// message; the per-field details only reach the debug log.
func (h *UserHandler) rejectPayload(c *gin.Context, err error, msg string) {
	if h.Logger != nil {
		h.Logger.WithField("details", validation.ToDetails(err)).Debug("payload rejected")
	}
	response.Error(c, http.StatusBadRequest, msg)
}

func (h *UserHandler) serverError(c *gin.Context, msg string, err error) {
	if h.Logger != nil {
		h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Error(msg)
	}
	response.Unexpected(c, MsgServerError, err)
}
