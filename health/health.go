// Package health runs the liveness endpoint the hosting platform polls.
// It shares nothing with the bot loop and answers 200 on every path and
// method.
package health

import (
	"fmt"
	"net/http"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewRouter() *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			// Probes fire constantly, keep them out of the logs
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				return nil
			},
		}),
	)

	ok := func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}

	router.NoRoute(ok)
	router.NoMethod(ok)

	return router
}

// Run blocks serving the health endpoint, callers start it on its own
// goroutine.
func Run() error {
	return NewRouter().Run(fmt.Sprintf(":%d", viper.GetInt("health.port")))
}
