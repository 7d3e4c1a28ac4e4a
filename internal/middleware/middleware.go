package middleware

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/pkg/logger_i"
)

func injectTrace(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Injecting trace middleware")
	req := re.req
	if req == nil {
		//this is a bad request
		re.badRequest.httpCode = http.StatusBadRequest
		re.badRequest.errorMessage = "request is empty"
		re.badRequest.isBadRequest = true
		return re
	}
	trace := req.Header.Get(config.TRACE_ID_HEADER)
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set(config.TRACE_ID_HEADER, trace)
	re.writer.Header().Set(config.TRACE_ID_HEADER, trace)
	re.req = req.WithContext(ctx)

	re.logger.Debug("trace middleware injected")
	return re
}

func authenticate(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Authenticating request")

	if !IsValidBearerToken(re.req.Header.Get("Authorization"), re.logger) {
		re.badRequest.isBadRequest = true
		re.badRequest.errorMessage = "Unauthorized"
		re.badRequest.httpCode = http.StatusUnauthorized
		return re
	}
	re.logger.Debug("Authorized")
	return re
}

func IsValidBearerToken(authHeader string, log *logger_i.Logger) bool {
	if chain.noAuthBypass {
		log.Warn("auth bypass enabled")
		return true
	}
	if chain.authToken == "" {
		log.Error("No AUTH_TOKEN configured, rejecting")
		return false
	}
	if authHeader == "" {
		log.Error("Empty authorization header")
		return false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Error("No Bearer header")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(authHeader, "Bearer ")), []byte(chain.authToken)) != 1 {
		log.Error("Invalid authorization header")
		return false
	}

	return true
}

func rateLimiter(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Rate limiter middleware")
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}

	if !limiterInstance.GetLimiter(ip).Allow() {
		re.logger.Warn("Too many requests", "ip", ip)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Rate limit exceeded",
		}
		return re
	}
	re.logger.Debug("Rate limiter middleware authorized")
	return re
}

// resolveSession attaches the caller's session to the request. A missing or
// malformed X-Session-Id gets a new session; the id is echoed on the response.
func resolveSession(re requestResponseStruct) requestResponseStruct {
	if chain.sessions == nil {
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusServiceUnavailable,
			errorMessage: "sessions are not available",
		}
		return re
	}
	requested := re.req.Header.Get(config.SESSION_ID_HEADER)
	if !utils.IsValidUUID(requested) {
		requested = ""
	}
	sess, created := chain.sessions.GetOrCreate(requested)
	if created {
		re.logger.Info("New session", "sessionId", sess.Id)
	}

	re.logger = re.logger.With("sessionId", sess.Id)
	re.writer.Header().Set(config.SESSION_ID_HEADER, sess.Id)
	re.req = re.req.WithContext(context.WithValue(re.req.Context(), config.SESSION_ID_KEY, sess.Id))
	return re
}

func handleBadRequest(re requestResponseStruct) {
	re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
	writeFailure(re.writer, re.badRequest)
}
