// Package http provides http transport for punch ingestion
package http

import (
	stdhttp "net/http"

	"punchclock/internal/modkit/httpkit"
	"punchclock/internal/platform/net/http/bind"
	"punchclock/internal/services/punches/domain"
	svc "punchclock/internal/services/punches/service"
)

// maxBodyBytes caps a batch body; a full batch of verbose records fits comfortably
const maxBodyBytes = 4 << 20

// Register mounts ingestion endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	r.Post("/", httpkit.Handle(h.ingest))
}

type handlers struct{ svc svc.Service }

// swagger:route POST /punches Punches punchesIngest
// @Summary Ingest one punch or a batch
// @Description Each item is validated and stored on its own. 201 when at least one item was stored, 400 when all were rejected
// @Tags Punches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body object true "A punch object or an array of them"
// @Success 201 {object} domain.Result "at least one inserted"
// @Failure 400 {object} domain.Result "all rejected"
// @Failure 401 {object} httpkit.Envelope "missing or unknown token"
// @Router /punches [post]
func (h *handlers) ingest(r *stdhttp.Request) httpkit.Response {
	body, err := bind.Body(r, maxBodyBytes)
	if err != nil {
		return httpkit.Error(err)
	}
	items, err := domain.SplitBatch(body)
	if err != nil {
		return httpkit.Error(err)
	}

	client, _ := httpkit.Client(r) // empty when auth is off
	res, err := h.svc.Ingest(r.Context(), client, items)
	if err != nil {
		return httpkit.Error(err)
	}
	if !res.Accepted() {
		return httpkit.Response{Status: stdhttp.StatusBadRequest, Body: res}
	}
	return httpkit.Created(res)
}
