package event

import (
	"github.com/gin-gonic/gin"
)

func Routes(r gin.IRouter, authenticator gin.HandlerFunc, handler Handler) {
	tokenAuthenticationRouter := r.Group("")
	tokenAuthenticationRouter.Use(authenticator)
	tokenAuthenticationRouter.POST("/events/:id/recurrence", handler.Repeat)
}
