package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"ac_watchdog/internal/ir"
	"ac_watchdog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJS   = "application/javascript"

	maxFormBytes = 1 << 16 // 64 KB
)

// queryArg is one name=value pair in request order.
type queryArg struct {
	Name  string
	Value string
}

// orderedArgs splits an urlencoded string keeping the order of the pairs.
// Malformed escapes are skipped.
func orderedArgs(raw string) []queryArg {
	var out []queryArg
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		name, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}
		out = append(out, queryArg{Name: name, Value: value})
	}
	return out
}

// requestArgs returns the query arguments followed by urlencoded form fields.
func requestArgs(c *gin.Context) []queryArg {
	args := orderedArgs(c.Request.URL.RawQuery)
	if c.Request.Method != http.MethodPost || c.ContentType() != binding.MIMEPOSTForm || c.Request.Body == nil {
		return args
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxFormBytes))
	if err != nil {
		return args
	}
	return append(args, orderedArgs(string(body))...)
}

// @Summary      Status page
// @Tags         device
// @Produce      html
// @Success      200  {string}  string
// @Router       / [get]
func (h *Handler) index(c *gin.Context) {
	snap, err := h.services.Monitoring.Detailed(c.Request.Context())
	if err != nil {
		h.logError("status_page_failed", err)
		c.Data(http.StatusInternalServerError, contentTypeText, []byte(errGetStatus))
		return
	}
	page, err := service.RenderHTML(snap, h.now())
	if err != nil {
		h.logError("status_page_render_failed", err)
		c.Data(http.StatusInternalServerError, contentTypeText, []byte(errGetStatus))
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, []byte(page))
}

// @Summary      Compact sensor readings
// @Description  One quoted two-decimal reading per sensor, e.g. ["21.50","22.00"]
// @Tags         device
// @Produce      html
// @Success      200  {string}  string
// @Router       /sensData [get]
func (h *Handler) sensData(c *gin.Context) {
	temps, err := h.services.Monitoring.Compact(c.Request.Context())
	if err != nil {
		h.logError("sens_data_failed", err)
		c.Data(http.StatusInternalServerError, contentTypeText, []byte(errGetStatus))
		return
	}
	c.Data(http.StatusOK, contentTypeHTML, []byte(service.FormatCompact(temps)))
}

// @Summary      Send AC commands
// @Description  Each argument name is a command, run in request order. Values are ignored and unknown names are skipped.
// @Tags         device
// @Param        autostart    query  string  false  "Power on, cool, max fan, 16 °C"
// @Param        poweron      query  string  false  "Power on"
// @Param        modecooling  query  string  false  "Cooling mode"
// @Param        modevent     query  string  false  "Vent mode"
// @Success      200
// @Router       /aux [get]
// @Router       /aux [post]
func (h *Handler) aux(c *gin.Context) {
	ctx := c.Request.Context()
	for _, arg := range requestArgs(c) {
		err := h.services.Commands.Trigger(ctx, arg.Name)
		switch {
		case err == nil:
		case errors.Is(err, ir.ErrUnknownCommand):
			if h.log != nil {
				h.log.Debugw("aux_unknown_arg", "name", arg.Name)
			}
		default:
			h.logError("aux_command_failed", err, "name", arg.Name)
		}
	}
	c.Status(http.StatusOK)
}

func (h *Handler) jscript(c *gin.Context) {
	c.Data(http.StatusOK, contentTypeJS, nil)
}

// notFound mirrors the firmware's plain-text diagnostic.
func (h *Handler) notFound(c *gin.Context) {
	args := requestArgs(c)

	var b strings.Builder
	b.WriteString("File Not Found\n\n")
	b.WriteString("URI: " + c.Request.URL.Path)
	b.WriteString("\nMethod: " + c.Request.Method)
	b.WriteString("\nArguments: " + strconv.Itoa(len(args)) + "\n")
	for _, a := range args {
		b.WriteString(" " + a.Name + ": " + a.Value + "\n")
	}
	c.Data(http.StatusNotFound, contentTypeText, []byte(b.String()))
}
