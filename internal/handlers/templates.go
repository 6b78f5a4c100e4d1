package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polica/planogram-service/internal/layout"
	"github.com/polica/planogram-service/internal/optimizer"
)

// ListStrategies returns the available allocation strategies
// @Summary List allocation strategies
// @Description Returns every strategy the engine can run, with a short description of its placement behavior
// @Tags planogram
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /internal/planogram/strategies [get]
func ListStrategies(c *gin.Context) {
	strategies := optimizer.Strategies()
	c.JSON(http.StatusOK, gin.H{
		"strategies": strategies,
		"count":      len(strategies),
	})
}

// ListTemplates returns the built-in store templates
// @Summary List store templates
// @Description Returns the built-in store layouts that can be named in optimization requests instead of an inline layout
// @Tags planogram
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /internal/planogram/templates [get]
func ListTemplates(c *gin.Context) {
	templates := layout.Templates()
	c.JSON(http.StatusOK, gin.H{
		"templates": templates,
		"count":     len(templates),
	})
}
