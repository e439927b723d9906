package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/turtle/internal/interpreter"
	"github.com/temirov/turtle/internal/logo"
	"github.com/temirov/turtle/internal/programs"
	"github.com/temirov/turtle/internal/session"
	"github.com/temirov/turtle/internal/turtle"
)

const (
	indexTemplateNameConstant       = "templates/index.html"
	codeFormFieldConstant           = "code"
	programNamePathValueConstant    = "name"
	contentTypeHeaderConstant       = "Content-Type"
	contentTypeJSONConstant         = "application/json"
	contentTypeHTMLConstant         = "text/html; charset=utf-8"
	contentTypeSVGConstant          = "image/svg+xml"
	maximumRequestBodyBytesConstant = 1 << 20
	readHeaderTimeoutConstant       = 10 * time.Second

	indexRoutePatternConstant         = "GET /{$}"
	parseRoutePatternConstant         = "POST /{$}"
	renderRoutePatternConstant        = "POST /render"
	websocketRoutePatternConstant     = "GET /ws"
	listProgramsRoutePatternConstant  = "GET /programs"
	getProgramRoutePatternConstant    = "GET /programs/{name}"
	saveProgramRoutePatternConstant   = "PUT /programs/{name}"
	deleteProgramRoutePatternConstant = "DELETE /programs/{name}"

	listenErrorTemplateConstant          = "listen on %s: %w"
	serveErrorTemplateConstant           = "serve http: %w"
	shutdownErrorTemplateConstant        = "shut down http server: %w"
	serverListeningMessageConstant       = "server listening"
	serverStoppingMessageConstant        = "server stopping"
	responseEncodeFailedMessageConstant  = "unable to encode response"
	renderFailedMessageConstant          = "unable to render program"
	programStoreFailedMessageConstant    = "program store request failed"
	logFieldAddressConstant              = "address"
	logFieldProgramNameConstant          = "program_name"
	invalidFormMessageConstant           = "invalid form submission"
	requestBodyUnreadableMessageConstant = "request body could not be read"
	internalServerErrorMessageConstant   = "internal server error"
)

//go:embed templates/index.html
var templateFiles embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFiles, indexTemplateNameConstant))

// ProgramRepository stores named programs.
type ProgramRepository interface {
	Save(executionContext context.Context, name string, source string) (programs.Program, error)
	Get(executionContext context.Context, name string) (programs.Program, error)
	List(executionContext context.Context) ([]programs.Program, error)
	Delete(executionContext context.Context, name string) error
}

// Dependencies are the collaborators of a Server. Programs is optional.
type Dependencies struct {
	Logger      *zap.Logger
	Sessions    *session.Manager
	Interpreter *interpreter.Interpreter
	Programs    ProgramRepository
}

// Server serves the Logo web application.
type Server struct {
	configuration Configuration
	logger        *zap.Logger
	sessions      *session.Manager
	interpreter   *interpreter.Interpreter
	programs      ProgramRepository
	handler       http.Handler

	connectionsMutex sync.Mutex
	connections      map[*clientConnection]struct{}
}

type errorResponse struct {
	Error string `json:"error"`
}

type indexPage struct {
	SupportedColors []string
}

// New constructs a Server. Missing dependencies are replaced with defaults.
func New(configuration Configuration, dependencies Dependencies) *Server {
	configuration = configuration.Sanitize()

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	programInterpreter := dependencies.Interpreter
	if programInterpreter == nil {
		programInterpreter = interpreter.New(configuration.InterpreterOptions(interpreter.Options{}))
	}
	sessions := dependencies.Sessions
	if sessions == nil {
		sessions = session.NewManager(session.Configuration{
			EmitInterval: configuration.EmitInterval,
			Interpreter:  configuration.InterpreterOptions(interpreter.Options{}),
		}, logger)
	}

	server := &Server{
		configuration: configuration,
		logger:        logger,
		sessions:      sessions,
		interpreter:   programInterpreter,
		programs:      dependencies.Programs,
		connections:   map[*clientConnection]struct{}{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(indexRoutePatternConstant, server.handleIndex)
	mux.HandleFunc(parseRoutePatternConstant, server.handleParse)
	mux.HandleFunc(renderRoutePatternConstant, server.handleRender)
	mux.HandleFunc(websocketRoutePatternConstant, server.handleWebsocket)
	if server.programs != nil {
		mux.HandleFunc(listProgramsRoutePatternConstant, server.handleListPrograms)
		mux.HandleFunc(getProgramRoutePatternConstant, server.handleGetProgram)
		mux.HandleFunc(saveProgramRoutePatternConstant, server.handleSaveProgram)
		mux.HandleFunc(deleteProgramRoutePatternConstant, server.handleDeleteProgram)
	}
	server.handler = mux

	return server
}

// Handler returns the HTTP handler serving every route.
func (server *Server) Handler() http.Handler {
	return server.handler
}

// Serve listens on the configured address until executionContext is done.
func (server *Server) Serve(executionContext context.Context) error {
	listener, listenError := net.Listen("tcp", server.configuration.Address)
	if listenError != nil {
		return fmt.Errorf(listenErrorTemplateConstant, server.configuration.Address, listenError)
	}
	return server.ServeListener(executionContext, listener)
}

// ServeListener serves on listener until executionContext is done, then shuts
// down gracefully, closes websocket connections and stops every program run.
func (server *Server) ServeListener(executionContext context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           server.handler,
		ReadHeaderTimeout: readHeaderTimeoutConstant,
	}
	httpServer.RegisterOnShutdown(server.closeConnections)

	server.logger.Info(serverListeningMessageConstant, zap.String(logFieldAddressConstant, listener.Addr().String()))

	group, groupContext := errgroup.WithContext(executionContext)
	group.Go(func() error {
		serveError := httpServer.Serve(listener)
		if errors.Is(serveError, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf(serveErrorTemplateConstant, serveError)
	})
	group.Go(func() error {
		<-groupContext.Done()
		server.logger.Info(serverStoppingMessageConstant)

		shutdownContext, cancel := context.WithTimeout(context.Background(), server.configuration.ShutdownTimeout)
		defer cancel()
		shutdownError := httpServer.Shutdown(shutdownContext)
		server.sessions.Shutdown()
		if shutdownError != nil {
			return fmt.Errorf(shutdownErrorTemplateConstant, shutdownError)
		}
		return nil
	})
	return group.Wait()
}

func (server *Server) handleIndex(responseWriter http.ResponseWriter, request *http.Request) {
	responseWriter.Header().Set(contentTypeHeaderConstant, contentTypeHTMLConstant)
	if renderError := indexTemplate.Execute(responseWriter, indexPage{SupportedColors: interpreter.SupportedColors}); renderError != nil {
		server.logger.Error(renderFailedMessageConstant, zap.Error(renderError))
	}
}

func (server *Server) handleParse(responseWriter http.ResponseWriter, request *http.Request) {
	source, present := server.submittedSource(responseWriter, request)
	if !present {
		return
	}

	program, parseError := logo.Parse(source)
	if parseError != nil {
		server.writeJSON(responseWriter, http.StatusBadRequest, errorResponse{Error: parseError.Error()})
		return
	}
	server.writeJSON(responseWriter, http.StatusOK, program)
}

func (server *Server) handleRender(responseWriter http.ResponseWriter, request *http.Request) {
	source, present := server.submittedSource(responseWriter, request)
	if !present {
		return
	}

	program, parseError := logo.Parse(source)
	if parseError != nil {
		server.writeJSON(responseWriter, http.StatusBadRequest, errorResponse{Error: parseError.Error()})
		return
	}

	state := turtle.NewState()
	runError := server.interpreter.Run(request.Context(), program, state.Apply)
	if runError != nil {
		server.writeJSON(responseWriter, http.StatusUnprocessableEntity, errorResponse{Error: runError.Error()})
		return
	}

	var document strings.Builder
	if renderError := turtle.RenderSVG(state.Drawing(), &document, turtle.RenderOptions{ShowTurtle: true}); renderError != nil {
		server.logger.Error(renderFailedMessageConstant, zap.Error(renderError))
		server.writeJSON(responseWriter, http.StatusInternalServerError, errorResponse{Error: internalServerErrorMessageConstant})
		return
	}
	responseWriter.Header().Set(contentTypeHeaderConstant, contentTypeSVGConstant)
	responseWriter.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(responseWriter, document.String())
}

// submittedSource reads the code form field. It answers 204 and reports false
// when the field is missing or empty.
func (server *Server) submittedSource(responseWriter http.ResponseWriter, request *http.Request) (string, bool) {
	request.Body = http.MaxBytesReader(responseWriter, request.Body, maximumRequestBodyBytesConstant)
	if formError := request.ParseForm(); formError != nil {
		server.writeJSON(responseWriter, http.StatusBadRequest, errorResponse{Error: invalidFormMessageConstant})
		return "", false
	}
	source := request.PostForm.Get(codeFormFieldConstant)
	if len(source) == 0 {
		responseWriter.WriteHeader(http.StatusNoContent)
		return "", false
	}
	return strings.TrimSpace(source), true
}

func (server *Server) handleListPrograms(responseWriter http.ResponseWriter, request *http.Request) {
	storedPrograms, listError := server.programs.List(request.Context())
	if listError != nil {
		server.writeProgramError(responseWriter, "", listError)
		return
	}
	server.writeJSON(responseWriter, http.StatusOK, storedPrograms)
}

func (server *Server) handleGetProgram(responseWriter http.ResponseWriter, request *http.Request) {
	name := request.PathValue(programNamePathValueConstant)
	program, getError := server.programs.Get(request.Context(), name)
	if getError != nil {
		server.writeProgramError(responseWriter, name, getError)
		return
	}
	server.writeJSON(responseWriter, http.StatusOK, program)
}

func (server *Server) handleSaveProgram(responseWriter http.ResponseWriter, request *http.Request) {
	name := request.PathValue(programNamePathValueConstant)
	body, readError := io.ReadAll(http.MaxBytesReader(responseWriter, request.Body, maximumRequestBodyBytesConstant))
	if readError != nil {
		server.writeJSON(responseWriter, http.StatusBadRequest, errorResponse{Error: requestBodyUnreadableMessageConstant})
		return
	}
	program, saveError := server.programs.Save(request.Context(), name, string(body))
	if saveError != nil {
		server.writeProgramError(responseWriter, name, saveError)
		return
	}
	server.writeJSON(responseWriter, http.StatusOK, program)
}

func (server *Server) handleDeleteProgram(responseWriter http.ResponseWriter, request *http.Request) {
	name := request.PathValue(programNamePathValueConstant)
	if deleteError := server.programs.Delete(request.Context(), name); deleteError != nil {
		server.writeProgramError(responseWriter, name, deleteError)
		return
	}
	responseWriter.WriteHeader(http.StatusNoContent)
}

func (server *Server) writeProgramError(responseWriter http.ResponseWriter, name string, programError error) {
	switch {
	case errors.Is(programError, programs.ErrProgramNotFound):
		server.writeJSON(responseWriter, http.StatusNotFound, errorResponse{Error: programError.Error()})
	case errors.Is(programError, programs.ErrInvalidName), errors.Is(programError, programs.ErrInvalidSource):
		server.writeJSON(responseWriter, http.StatusBadRequest, errorResponse{Error: programError.Error()})
	default:
		server.logger.Error(programStoreFailedMessageConstant, zap.String(logFieldProgramNameConstant, name), zap.Error(programError))
		server.writeJSON(responseWriter, http.StatusInternalServerError, errorResponse{Error: internalServerErrorMessageConstant})
	}
}

func (server *Server) writeJSON(responseWriter http.ResponseWriter, statusCode int, payload any) {
	responseWriter.Header().Set(contentTypeHeaderConstant, contentTypeJSONConstant)
	responseWriter.WriteHeader(statusCode)
	if encodeError := json.NewEncoder(responseWriter).Encode(payload); encodeError != nil {
		server.logger.Warn(responseEncodeFailedMessageConstant, zap.Error(encodeError))
	}
}
