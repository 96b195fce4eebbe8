package chat

import (
	"github.com/gin-gonic/gin"
)

func Routes(r gin.IRouter, authenticator gin.HandlerFunc, handler Handler) {
	queryStringAuthenticationRouter := r.Group("")
	queryStringAuthenticationRouter.Use(authenticator)
	queryStringAuthenticationRouter.GET("/ws", handler.Connect)
}
