package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/global-bites/kds"
	"github.com/yeremiapane/global-bites/middlewares"
	"github.com/yeremiapane/global-bites/utils"
)

const (
	kdsReadLimit = 512
	kdsPongWait  = 60 * time.Second
	kdsPingEvery = kdsPongWait * 9 / 10
)

type KDSController struct {
	Hub      *kds.Hub
	upgrader websocket.Upgrader
}

// NewKDSController accepts upgrades from the given origins. An empty list or "*" allows any.
func NewKDSController(hub *kds.Hub, allowedOrigins []string) *KDSController {
	origins := make(map[string]struct{}, len(allowedOrigins))
	allowAll := len(allowedOrigins) == 0
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		origins[o] = struct{}{}
	}

	return &KDSController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || allowAll {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

// KDSHandler -> websocket endpoint streaming order events
func (kc *KDSController) KDSHandler(c *gin.Context) {
	role := c.GetString(middlewares.ContextRole)
	if role == "" {
		utils.RespondAppError(c, utils.NewUnauthorized("unauthorized"))
		return
	}

	ws, err := kc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("KDS websocket upgrade failed")
		return
	}

	kc.Hub.Register(ws, role)
	defer kc.Hub.Unregister(ws)

	ws.SetReadLimit(kdsReadLimit)
	ws.SetReadDeadline(time.Now().Add(kdsPongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(kdsPongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(ws, done)

	// client tidak mengirim apa-apa, baca hanya untuk mendeteksi disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
}

func keepAlive(ws *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(kdsPingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second)); err != nil {
				return
			}
		}
	}
}
