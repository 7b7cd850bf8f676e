package httpx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oaklandbooks/bookstore-api/internal/user"
)

type registerRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=50"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type updateProfileRequest struct {
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Email       *string `json:"email" binding:"omitempty,email"`
	PhoneNumber *string `json:"phone_number"`
	Address     *string `json:"address"`
}

func registerHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		u, token, err := svc.Register(c.Request.Context(), user.Registration{
			Username:    req.Username,
			Email:       req.Email,
			Password:    req.Password,
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			PhoneNumber: req.PhoneNumber,
			Address:     req.Address,
		})
		if err != nil {
			Error(c, err)
			return
		}
		Created(c, "Registration successful", gin.H{"token": token, "user": u})
	}
}

func loginHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		u, token, err := svc.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, user.ErrInvalidCredentials) {
				Fail(c, http.StatusUnauthorized, err.Error())
				return
			}
			Error(c, err)
			return
		}
		c.JSON(http.StatusOK, Response{Success: true, Message: "Login successful",
			Data: gin.H{"token": token, "user": u}})
	}
}

// logoutHandler exists for API symmetry; the token is stateless, so the
// client just discards it.
func logoutHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		Message(c, "Logout successful")
	}
}

func getProfileHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.GetByID(c.Request.Context(), Principal(c).UserID)
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, u)
	}
}

func updateProfileHandler(users user.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		err := users.UpdateProfile(c.Request.Context(), Principal(c).UserID, user.ProfileUpdate{
			FirstName:   req.FirstName,
			LastName:    req.LastName,
			Email:       req.Email,
			PhoneNumber: req.PhoneNumber,
			Address:     req.Address,
		})
		if err != nil {
			Error(c, err)
			return
		}
		Message(c, "Profile updated successfully")
	}
}

func changePasswordHandler(svc *user.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		err := svc.ChangePassword(c.Request.Context(), Principal(c).UserID,
			req.CurrentPassword, req.NewPassword)
		if err != nil {
			if errors.Is(err, user.ErrWrongPassword) {
				Fail(c, http.StatusUnauthorized, err.Error())
				return
			}
			Error(c, err)
			return
		}
		Message(c, "Password changed successfully")
	}
}
