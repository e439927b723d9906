package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/temirov/turtle/internal/session"
)

const (
	websocketBufferSizeConstant        = 4096
	websocketWriteTimeoutConstant      = 10 * time.Second
	websocketReadLimitConstant         = 1 << 20
	clientEventRunConstant             = "run"
	clientEventStopConstant            = "stop"
	clientConnectedMessageConstant     = "client connected"
	clientLeftMessageConstant          = "client disconnected"
	clientUpgradeFailedMessageConstant = "websocket upgrade failed"
	clientUnknownEventMessageConstant  = "ignoring unknown client event"
	clientRunRequestedMessageConstant  = "starting program run"
	clientStopRequestedMessageConstant = "stopping program run"
	logFieldClientIdentifierConstant   = "client_id"
	logFieldRemoteAddressConstant      = "remote_address"
	logFieldClientEventConstant        = "client_event"
)

var websocketUpgrader = websocket.Upgrader{
	ReadBufferSize:  websocketBufferSizeConstant,
	WriteBufferSize: websocketBufferSizeConstant,
}

// clientMessage is a request from the browser: {"event":"run","data":"fd 10"}
// or {"event":"stop"}.
type clientMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// clientConnection serializes writes to one websocket.
type clientConnection struct {
	socket     *websocket.Conn
	writeMutex sync.Mutex
}

// Emit writes event as a JSON text message.
func (connection *clientConnection) Emit(event session.Event) error {
	connection.writeMutex.Lock()
	defer connection.writeMutex.Unlock()

	if deadlineError := connection.socket.SetWriteDeadline(time.Now().Add(websocketWriteTimeoutConstant)); deadlineError != nil {
		return deadlineError
	}
	return connection.socket.WriteJSON(event)
}

func (connection *clientConnection) close() {
	connection.writeMutex.Lock()
	defer connection.writeMutex.Unlock()

	_ = connection.socket.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(websocketWriteTimeoutConstant),
	)
	_ = connection.socket.Close()
}

func (server *Server) handleWebsocket(responseWriter http.ResponseWriter, request *http.Request) {
	socket, upgradeError := websocketUpgrader.Upgrade(responseWriter, request, nil)
	if upgradeError != nil {
		server.logger.Warn(clientUpgradeFailedMessageConstant, zap.String(logFieldRemoteAddressConstant, request.RemoteAddr), zap.Error(upgradeError))
		return
	}
	socket.SetReadLimit(websocketReadLimitConstant)

	clientIdentifier := uuid.NewString()
	connection := &clientConnection{socket: socket}
	logger := server.logger.With(
		zap.String(logFieldClientIdentifierConstant, clientIdentifier),
		zap.String(logFieldRemoteAddressConstant, request.RemoteAddr),
	)

	server.trackConnection(connection)
	logger.Info(clientConnectedMessageConstant)
	defer func() {
		server.sessions.Remove(clientIdentifier)
		server.untrackConnection(connection)
		connection.close()
		logger.Info(clientLeftMessageConstant)
	}()

	for {
		var message clientMessage
		if readError := socket.ReadJSON(&message); readError != nil {
			var closeError *websocket.CloseError
			if !errors.As(readError, &closeError) {
				logger.Debug(clientLeftMessageConstant, zap.Error(readError))
			}
			return
		}

		switch message.Event {
		case clientEventRunConstant:
			logger.Info(clientRunRequestedMessageConstant)
			server.sessions.Start(clientIdentifier, message.Data, connection)
		case clientEventStopConstant:
			logger.Info(clientStopRequestedMessageConstant)
			server.sessions.Stop(clientIdentifier)
		default:
			logger.Warn(clientUnknownEventMessageConstant, zap.String(logFieldClientEventConstant, message.Event))
		}
	}
}

func (server *Server) trackConnection(connection *clientConnection) {
	server.connectionsMutex.Lock()
	defer server.connectionsMutex.Unlock()
	server.connections[connection] = struct{}{}
}

func (server *Server) untrackConnection(connection *clientConnection) {
	server.connectionsMutex.Lock()
	defer server.connectionsMutex.Unlock()
	delete(server.connections, connection)
}

// closeConnections closes every open websocket so their handlers return.
func (server *Server) closeConnections() {
	server.connectionsMutex.Lock()
	defer server.connectionsMutex.Unlock()
	for connection := range server.connections {
		_ = connection.socket.Close()
	}
}
