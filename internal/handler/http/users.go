package http

import (
	"context"
	"net/http"

	"github.com/MKhiriev/go-trace-keeper/internal/tracelog"
	"github.com/MKhiriev/go-trace-keeper/models"
)

func (h *Handler) registerUser(ctx context.Context, inv *tracelog.Invocation) tracelog.Result {
	var req models.RegisterRequest
	if err := decodeJSON(inv.Body, &req); err != nil {
		return tracelog.Immediate(nil, err)
	}

	user, err := h.services.UserService.Register(ctx, req)
	if err != nil {
		return tracelog.Immediate(nil, err)
	}
	return tracelog.Immediate(tracelog.Response{Status: http.StatusCreated, Body: user}, nil)
}

func (h *Handler) findUser(ctx context.Context, inv *tracelog.Invocation) tracelog.Result {
	login, _ := stringArg(inv, "login")
	return tracelog.Immediate(h.services.UserService.Find(ctx, login))
}
