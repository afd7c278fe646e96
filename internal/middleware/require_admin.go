package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lumina_back_office/internal/models"
	"lumina_back_office/internal/utils"
)

// RequireAdmin vérifie que l'utilisateur a le rôle "admin"
func RequireAdmin(c *gin.Context) {
	role, exists := c.Get("role")
	if !exists || role != "admin" {
		utils.LogSecurityEvent(c, utils.EventPrivilegeDenied, utils.SeverityMedium, "rôle admin requis")
		c.JSON(http.StatusForbidden, gin.H{
			"code":  models.CodeForbidden,
			"error": "Accès réservé aux administrateurs",
		})
		c.Abort()
		return
	}
	c.Next()
}
