package service

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/StefanoGysin/voxy/internal/models"
)

// ImageURLSniffer reports whether free text appears to contain an image
// URL. The heuristic is behind an interface so it can be swapped without
// touching the routing rule itself.
type ImageURLSniffer interface {
	ContainsImageURL(text string) bool
}

var imageURLPattern = regexp.MustCompile(`(?i)https?://\S+\.(png|jpe?g|gif|webp|bmp)(\?\S*)?(\s|$)`)

// ExtensionSniffer matches http(s) URLs ending in a common image extension.
type ExtensionSniffer struct{}

func (ExtensionSniffer) ContainsImageURL(text string) bool {
	return imageURLPattern.MatchString(text)
}

// Router selects the execution path for a turn before any model call.
//
// An explicitly supplied image parameter always selects the direct vision
// path. An image-looking URL embedded in the message text never does: a
// pasted link may be something to discuss rather than analyze, so that
// case defers to the supervisor, where the model itself decides whether to
// call the vision tool.
type Router struct {
	sniffer ImageURLSniffer
	logger  *slog.Logger
}

func NewRouter(sniffer ImageURLSniffer, logger *slog.Logger) *Router {
	if sniffer == nil {
		sniffer = ExtensionSniffer{}
	}
	return &Router{sniffer: sniffer, logger: logger}
}

// DecideRoute validates the request and picks a route, recording the
// decision in the turn context. It never mutates the thread.
func (r *Router) DecideRoute(req models.TurnRequest, turnCtx *models.Context) (models.Route, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" && req.ImageURL == "" {
		return "", models.NewRoutingError("message is empty and no image was supplied")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return "", models.NewRoutingError("user id is required")
	}

	if req.ImageURL != "" {
		turnCtx.ImageURL = req.ImageURL
		turnCtx.Route = models.RouteDirect
		return models.RouteDirect, nil
	}

	if r.sniffer.ContainsImageURL(message) {
		// Unreliable signal; let the supervisor's model judge it.
		r.logger.Debug("message contains an image-like url, deferring to supervisor")
	}

	turnCtx.Route = models.RouteSupervisor
	return models.RouteSupervisor, nil
}
