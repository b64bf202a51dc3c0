package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"records-backend/internal/shared/server/middleware"
	"records-backend/internal/shared/server/respond"
)

func registerWhoAmIRoutes(rg *gin.RouterGroup) {
	rg.GET("/whoami", whoAmIHandler)
}

func whoAmIHandler(c *gin.Context) {
	actor := middleware.ActorFromContext(c)
	if actor == "" {
		actor = middleware.AnonymousActor
	}
	response := gin.H{"actor": actor}
	if name := middleware.ActorNameFromContext(c); name != "" {
		response["name"] = name
	}
	respond.JSON(c, http.StatusOK, response)
}
