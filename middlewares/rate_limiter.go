package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"github.com/yeremiapane/global-bites/utils"
)

// RateLimit limits requests per client IP. formatted uses the "<limit>-<period>" form,
// e.g. "5-M" for five requests a minute.
func RateLimit(formatted string) (gin.HandlerFunc, error) {
	rate, err := limiter.NewRateFromFormatted(formatted)
	if err != nil {
		return nil, err
	}

	store := memory.NewStore()
	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance,
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			utils.InfoLogger.WithField("client_ip", c.ClientIP()).Warnf("Rate limit reached on %s", c.FullPath())
			utils.RespondError(c, http.StatusTooManyRequests, errors.New("too many requests, please slow down"))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			utils.RespondAppError(c, err)
		}),
	), nil
}
