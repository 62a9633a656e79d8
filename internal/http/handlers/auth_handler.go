// README: Registration and login endpoints, one pair per role.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ridepool/internal/modules/account"
)

type AuthHandler struct {
	accounts *account.Service
}

func NewAuthHandler(accounts *account.Service) *AuthHandler {
	return &AuthHandler{accounts: accounts}
}

type registerUserReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type registerDriverReq struct {
	Email         string `json:"email"`
	Password      string `json:"password"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	LicenseNumber string `json:"license_number"`
	VehicleInfo   string `json:"vehicle_info"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) RegisterUser(c *gin.Context) {
	var req registerUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	s, err := h.accounts.RegisterUser(c.Request.Context(), account.RegisterUserCommand{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionView(s))
}

func (h *AuthHandler) RegisterDriver(c *gin.Context) {
	var req registerDriverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	s, err := h.accounts.RegisterDriver(c.Request.Context(), account.RegisterDriverCommand{
		Email:         req.Email,
		Password:      req.Password,
		Name:          req.Name,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
		VehicleInfo:   req.VehicleInfo,
	})
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionView(s))
}

func (h *AuthHandler) RegisterAdmin(c *gin.Context) {
	var req registerUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	s, err := h.accounts.RegisterAdmin(c.Request.Context(), account.RegisterAdminCommand{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		writeFault(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionView(s))
}

func (h *AuthHandler) login(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginReq
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
		s, err := h.accounts.Login(c.Request.Context(), role, req.Email, req.Password)
		if err != nil {
			writeFault(c, err)
			return
		}
		c.JSON(http.StatusOK, newSessionView(s))
	}
}

func (h *AuthHandler) LoginUser(c *gin.Context)   { h.login(account.RoleUser)(c) }
func (h *AuthHandler) LoginDriver(c *gin.Context) { h.login(account.RoleDriver)(c) }
func (h *AuthHandler) LoginAdmin(c *gin.Context)  { h.login(account.RoleAdmin)(c) }
