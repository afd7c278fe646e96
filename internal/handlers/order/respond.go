package order

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"lumina_back_office/internal/models"
)

// respondError traduit les erreurs typées du moteur de commandes vers la
// taxonomie HTTP. Le détail interne n'est exposé qu'en dehors de la prod.
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	var transitionErr *models.InvalidTransitionError
	var cancellationErr *models.IllegalCancellationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  models.CodeValidation,
			"error": validationErr.Error(),
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":             models.CodeInvalidTransition,
			"error":            transitionErr.Error(),
			"current_status":   transitionErr.From,
			"requested_status": transitionErr.To,
		})
	case errors.As(err, &cancellationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":   models.CodeIllegalCancellation,
			"error":  cancellationErr.Error(),
			"status": cancellationErr.Status,
		})
	case errors.Is(err, models.ErrUnknownStatus):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":  models.CodeValidation,
			"error": err.Error(),
		})
	default:
		body := gin.H{
			"code":  models.CodeInternalError,
			"error": "Erreur interne",
		}
		if os.Getenv("GIN_MODE") != "release" {
			body["detail"] = err.Error()
		}
		c.JSON(http.StatusInternalServerError, body)
	}
}
