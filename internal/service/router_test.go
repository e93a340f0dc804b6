package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StefanoGysin/voxy/internal/models"
)

func TestDecideRouteExplicitImage(t *testing.T) {
	router := NewRouter(nil, discardLogger())

	turnCtx := &models.Context{}
	route, err := router.DecideRoute(models.TurnRequest{
		UserID:   "u1",
		Message:  "What is in this picture?",
		ImageURL: "https://example.com/cat.png",
	}, turnCtx)

	require.NoError(t, err)
	assert.Equal(t, models.RouteDirect, route)
	assert.Equal(t, "https://example.com/cat.png", turnCtx.ImageURL)
	assert.Equal(t, models.RouteDirect, turnCtx.Route)
}

func TestDecideRouteImageURLInTextStaysSupervised(t *testing.T) {
	router := NewRouter(nil, discardLogger())

	turnCtx := &models.Context{}
	route, err := router.DecideRoute(models.TurnRequest{
		UserID:  "u1",
		Message: "Is https://example.com/photo.jpg a good thumbnail?",
	}, turnCtx)

	require.NoError(t, err)
	assert.Equal(t, models.RouteSupervisor, route)
	assert.Empty(t, turnCtx.ImageURL)
}

func TestDecideRoutePlainText(t *testing.T) {
	router := NewRouter(nil, discardLogger())

	route, err := router.DecideRoute(models.TurnRequest{
		UserID:  "u1",
		Message: "Translate hello to French",
	}, &models.Context{})

	require.NoError(t, err)
	assert.Equal(t, models.RouteSupervisor, route)
}

func TestDecideRouteEmptyTurn(t *testing.T) {
	router := NewRouter(nil, discardLogger())

	_, err := router.DecideRoute(models.TurnRequest{UserID: "u1", Message: "   "}, &models.Context{})
	require.Error(t, err)
	assert.Equal(t, models.ErrRouting, models.ErrorKindOf(err))
}

func TestDecideRouteImageOnlyIsValid(t *testing.T) {
	router := NewRouter(nil, discardLogger())

	route, err := router.DecideRoute(models.TurnRequest{
		UserID:   "u1",
		ImageURL: "https://example.com/diagram.webp",
	}, &models.Context{})

	require.NoError(t, err)
	assert.Equal(t, models.RouteDirect, route)
}

func TestDecideRouteMissingUser(t *testing.T) {
	router := NewRouter(nil, discardLogger())

	_, err := router.DecideRoute(models.TurnRequest{Message: "hello"}, &models.Context{})
	require.Error(t, err)
	assert.Equal(t, models.ErrRouting, models.ErrorKindOf(err))
}

func TestExtensionSniffer(t *testing.T) {
	sniffer := ExtensionSniffer{}

	assert.True(t, sniffer.ContainsImageURL("see https://cdn.example.com/a/b.PNG please"))
	assert.True(t, sniffer.ContainsImageURL("http://example.com/x.jpeg?w=100"))
	assert.False(t, sniffer.ContainsImageURL("see https://example.com/report.pdf"))
	assert.False(t, sniffer.ContainsImageURL("no links at all"))
}
