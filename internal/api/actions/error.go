package actions

import (
	"CallWaitingAI/pkg/response"
	"net/http"
)

var (
	ErrUnknownAction   = response.NewError(http.StatusNotFound, "no registered action for name")
	ErrMissingSenderID = response.NewError(http.StatusBadRequest, "tracker has no sender id")
)
