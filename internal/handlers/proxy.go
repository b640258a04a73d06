package handlers

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/nushka/internal/services"
)

// ProxyHandler forwards requests verbatim to the upstream backend the
// browser cannot reach directly.
type ProxyHandler struct {
	upstream *services.UpstreamService
}

// NewProxyHandler builds a ProxyHandler.
func NewProxyHandler(upstream *services.UpstreamService) *ProxyHandler {
	return &ProxyHandler{upstream: upstream}
}

// Proxy relays method and body to the upstream origin and mirrors the
// response. Non-JSON upstream bodies are wrapped as {"message": text}.
func (h *ProxyHandler) Proxy(c *fiber.Ctx) error {
	method := strings.ToUpper(strings.TrimSpace(c.Method()))
	if method == "" {
		method = http.MethodGet
	}

	path := strings.TrimLeft(strings.TrimSpace(c.Params("*")), "/")

	query := url.Values{}
	for k, v := range c.Queries() {
		query.Set(k, v)
	}

	resp, err := h.upstream.Do(method, path, query, c.Body(), c.Get("Content-Type"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	var payload interface{}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		payload = fiber.Map{"message": string(resp.Body)}
	}

	return c.Status(resp.Status).JSON(payload)
}
