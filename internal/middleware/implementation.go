package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/handlers"
	"github.com/akolanti/ChatPDF/internal/metrics"
	"github.com/akolanti/ChatPDF/internal/session"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type chainConfig struct {
	authToken    string
	noAuthBypass bool
	sessions     *session.Registry
}

var chain chainConfig

// Init must run before the server accepts requests.
func Init(settings *config.Settings, sessions *session.Registry) {
	chain = chainConfig{
		authToken:    settings.AuthToken,
		noAuthBypass: settings.NoAuthBypass,
		sessions:     sessions,
	}
}

var GetModelsHandler = Wrap(handlers.GetModelsHandler)
var PutSessionModelHandler = Wrap(handlers.PutSessionModelHandler)
var GetSessionHandler = Wrap(handlers.GetSessionHandler)
var GetSessionPagesHandler = Wrap(handlers.GetSessionPagesHandler)
var ChatHandler = Wrap(handlers.ChatHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var PostIngestHandler = Wrap(handlers.PostIngestHandler)

// Wrap runs the full chain, including session resolution.
func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return wrap(next, true)
}

// WrapWithoutSession is for endpoints that carry their own session id,
// such as the MCP transport.
func WrapWithoutSession(next http.Handler) http.HandlerFunc {
	return wrap(next.ServeHTTP, false)
}

func wrap(next http.HandlerFunc, withSession bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		defer func() {
			metrics.HttpRequestsTotal.WithLabelValues(utils.GetRoutePattern(r), strconv.Itoa(rec.Status)).Inc()
		}()

		re := processRequest(requestResponseStruct{req: r, writer: rec}, withSession)
		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)
	}
}

func processRequest(re requestResponseStruct, withSession bool) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Debug("New request received", "method", re.req.Method, "path", re.req.URL.Path)

	steps := []func(requestResponseStruct) requestResponseStruct{injectTrace, authenticate, rateLimiter}
	if withSession {
		steps = append(steps, resolveSession)
	}
	for _, step := range steps {
		re = step(re)
		if re.badRequest.isBadRequest {
			return re
		}
	}
	return re
}

func writeFailure(w http.ResponseWriter, failure failureStruct) {
	handlers.WriteErrorResponse(w, failure.httpCode, "", failure.errorMessage)
}
