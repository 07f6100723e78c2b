package tracker

import (
	"encoding/base64"
	"net/http"
	"net/url"

	"clickboard/clicks/config"
	"clickboard/tools/ioc"
	"clickboard/tools/logger"
	"clickboard/tools/middleware"

	"github.com/gin-gonic/gin"
)

// 1x1 透明 GIF
const onePixelGIFBase64 = "R0lGODlhAQABAPAAAAAAAAAAACH5BAEAAAAALAAAAAABAAEAAAICRAEAOw=="

var onePixelGIF, _ = base64.StdEncoding.DecodeString(onePixelGIFBase64)

type ApiHandler struct {
	handler *Handler
}

func init() {
	ioc.Api.RegisterContainer("TrackerHandler", &ApiHandler{})
}

// Init 仅在 TRACKER_ENABLED 时挂载埋点路由
func (h *ApiHandler) Init() error {
	c, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if !c.TrackerEnabled {
		return nil
	}

	h.handler = NewHandler(NewStore(), c.TrackerRedirectURL, c.GetLogger())
	h.handler.Register(c.Application.GinServer())
	c.GetLogger().Info("Tracker enabled: /track_open, /track_click, /clicks")

	return nil
}

type Handler struct {
	store       *Store
	redirectURL string
	log         *logger.Logger
}

func NewHandler(store *Store, redirectURL string, log *logger.Logger) *Handler {
	return &Handler{store: store, redirectURL: redirectURL, log: log}
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/track_open", h.TrackOpenHandler)
	r.GET("/track_click", h.TrackClickHandler)
	r.GET("/clicks", h.ClicksHandler)
}

// TrackOpenHandler 记录邮件打开，返回 1x1 GIF
func (h *Handler) TrackOpenHandler(c *gin.Context) {
	email := c.Query("email")
	ip := c.ClientIP()
	h.log.Info("Email opened by: %s from IP: %s", email, ip)

	h.store.Record(email, ip, EventOpen)

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/gif", onePixelGIF)
}

// TrackClickHandler 记录链接点击，跳转到报名页
func (h *Handler) TrackClickHandler(c *gin.Context) {
	email := c.Query("email")
	ip := c.ClientIP()
	h.log.Info("Link clicked by: %s from IP: %s", email, ip)

	h.store.Record(email, ip, EventClick)

	target, err := url.Parse(h.redirectURL)
	if err != nil {
		middleware.Failed(err, c)
		return
	}
	q := target.Query()
	q.Set("email", email)
	target.RawQuery = q.Encode()

	c.Redirect(http.StatusTemporaryRedirect, target.String())
}

// ClicksHandler 返回全部事件
func (h *Handler) ClicksHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.List())
}
