package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Static lists for the unauthenticated frontend pages. No auth, no
// per-user data.

func (a *API) PublicCareers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": []string{"Software Engineer", "Data Analyst", "Nurse", "Teacher"},
	})
}

func (a *API) PublicFields(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": []string{"Computer Science", "Health", "Education", "Business"},
	})
}

func (a *API) PublicTrends(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"items": []string{"AI", "Cybersecurity", "Green jobs"},
	})
}
