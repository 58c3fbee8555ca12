package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issueboard/internal/notify"
)

func dialNotifications(t *testing.T, g *gateway, viewID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(g.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/views/" + viewID + "/notifications?access_token=" + g.token
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) notify.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev notify.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestNotifications_StreamStatusChange(t *testing.T) {
	// Arrange
	g := newGateway(t)
	id := g.openView(t)
	conn := dialNotifications(t, g, id.String())

	// Act
	resp := g.do(http.MethodPut, "/views/"+id.String()+"/issues/"+g.issues["PROJ-1"].String()+"/status", gin.H{"status": "done"})
	require.Equal(t, http.StatusOK, resp.Code)

	// Assert
	first := readEvent(t, conn)
	assert.Equal(t, notify.EventShown, first.Type)
	assert.Equal(t, "Updating task status...", first.Notification.Message)

	// the pending toast is replaced, then the result is shown
	var last notify.Event
	for last.Notification.Message != "Task status updated" {
		last = readEvent(t, conn)
	}
	assert.Equal(t, notify.EventShown, last.Type)
	assert.Equal(t, notify.KindSuccess, last.Notification.Kind)
}

func TestNotifications_SendsCurrentFirst(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)
	g.backend.Fail(http.MethodGet, "/api/jira/issues", http.StatusInternalServerError, "")
	g.do(http.MethodPost, "/views/"+id.String()+"/refresh", nil)

	conn := dialNotifications(t, g, id.String())

	ev := readEvent(t, conn)
	assert.Equal(t, notify.KindError, ev.Notification.Kind)
	assert.Equal(t, "Failed to load tasks", ev.Notification.Message)
}

func TestNotifications_ClosedWithView(t *testing.T) {
	g := newGateway(t)
	id := g.openView(t)
	conn := dialNotifications(t, g, id.String())

	require.Equal(t, http.StatusNoContent, g.do(http.MethodDelete, "/views/"+id.String(), nil).Code)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestNotifications_UnknownView(t *testing.T) {
	g := newGateway(t)

	resp := g.do(http.MethodGet, "/views/"+g.project.String()+"/notifications", nil)

	assert.Equal(t, http.StatusNotFound, resp.Code)
}
