package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/oaklandbooks/bookstore-api/internal/passwordreset"
)

type resetRequestRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6"`
}

const resetSentMessage = "If an account exists with this email, a password reset link has been sent"

// requestResetHandler answers identically for known and unknown emails. In
// development the plaintext token rides along so the flow can be exercised
// without a mail server.
func requestResetHandler(svc *passwordreset.Service, development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		token, err := svc.Request(c.Request.Context(), req.Email)
		if err != nil {
			Error(c, err)
			return
		}

		resp := Response{Success: true, Message: resetSentMessage}
		if development && token != "" {
			resp.Data = gin.H{"devToken": token}
		}
		c.JSON(200, resp)
	}
}

func verifyResetHandler(svc *passwordreset.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		email, err := svc.Verify(c.Request.Context(), c.Param("token"))
		if err != nil {
			Error(c, err)
			return
		}
		OK(c, gin.H{"email": email})
	}
}

func resetPasswordHandler(svc *passwordreset.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resetPasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, err)
			return
		}

		if err := svc.Reset(c.Request.Context(), req.Token, req.NewPassword); err != nil {
			Error(c, err)
			return
		}
		Message(c, "Password reset successful")
	}
}
