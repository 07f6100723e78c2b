package handler

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"clickboard/clicks/config"
	"clickboard/clicks/pkg/render"
	"clickboard/tools/ioc"
	"clickboard/tools/middleware"

	"github.com/gin-gonic/gin"
)

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Click data</title>
</head>
<body>
  <h1>Click data</h1>
  <pre id="{{.ID}}">{{.Content}}</pre>
</body>
</html>
`

type ApiHandler struct {
	handler *Handler
}

func init() {
	ioc.Api.RegisterContainer("ClicksHandler", &ApiHandler{})
}

func (h *ApiHandler) Init() error {
	c, err := config.LoadConfig()
	if err != nil {
		return err
	}

	h.handler = NewHandler(c.GetRenderer(), c.GetRegion(), c.RefreshOnView)

	h.handler.RegisterPage(c.Application.GinServer())
	h.handler.Register(c.Application.GinRootRouter().Group("clicks"))

	return nil
}

type Handler struct {
	runner        Runner
	region        *render.Region
	refreshOnView bool
	page          *template.Template
}

func NewHandler(runner Runner, region *render.Region, refreshOnView bool) *Handler {
	return &Handler{
		runner:        runner,
		region:        region,
		refreshOnView: refreshOnView,
		page:          template.Must(template.New("page").Parse(pageTemplate)),
	}
}

// RegisterPage 页面挂在根路径
func (h *Handler) RegisterPage(r gin.IRouter) {
	r.GET("/", h.PageHandler)
}

func (h *Handler) Register(r gin.IRouter) {
	r.GET("/content", h.ContentHandler)
	r.POST("/refresh", h.RefreshHandler)
	r.GET("/status", h.StatusHandler)
}

// PageHandler 渲染包含输出区域的页面，开启 refreshOnView 时先拉取一次
func (h *Handler) PageHandler(c *gin.Context) {
	if h.refreshOnView {
		h.runner.Run(c.Request.Context())
	}

	var buf bytes.Buffer
	err := h.page.Execute(&buf, ContentView{
		ID:        h.region.ID(),
		Content:   h.region.Content(),
		UpdatedAt: h.region.UpdatedAt(),
	})
	if err != nil {
		middleware.Failed(err, c)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) ContentHandler(c *gin.Context) {
	if h.region.Writes() == 0 {
		middleware.Failed(middleware.ErrNotFound("nothing has been rendered into #%s yet", h.region.ID()), c)
		return
	}

	middleware.Success(ContentView{
		ID:        h.region.ID(),
		Content:   h.region.Content(),
		UpdatedAt: h.region.UpdatedAt(),
	}, c)
}

// RefreshHandler 同步执行一次拉取，返回执行后的状态；restart=true 时放弃正在进行的拉取重新开始
func (h *Handler) RefreshHandler(c *gin.Context) {
	if restart, _ := strconv.ParseBool(c.Query("restart")); restart {
		h.runner.Rerun(c.Request.Context())
	} else {
		h.runner.Run(c.Request.Context())
	}
	middleware.Success(h.runner.Status(), c)
}

func (h *Handler) StatusHandler(c *gin.Context) {
	middleware.Success(h.runner.Status(), c)
}
