package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/nvaruna/RagChatServer/internal/adapter/utils"
	"github.com/nvaruna/RagChatServer/internal/auth"
	"github.com/nvaruna/RagChatServer/internal/config"
	"github.com/nvaruna/RagChatServer/internal/handlers"
)

func cors(re requestResponseStruct) requestResponseStruct {
	re.writer.Header().Set("Access-Control-Allow-Origin", config.AllowedOrigin)
	re.writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
	re.writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Trace-Id")

	if re.req.Method == http.MethodOptions {
		re.writer.WriteHeader(http.StatusNoContent)
		re.preflight = true
	}
	return re
}

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
	trace := req.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set(`X-Trace-Id`, trace)
	re.req = req.WithContext(ctx)
	re.logger.Debug("trace middleware injected")
	return re
}

// authenticate resolves the caller from the Authorization header. Requests
// without a header proceed as anonymous; a header that fails validation is
// rejected so a client holding an expired token notices instead of silently
// losing its identity.
func authenticate(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Authenticating request")
	authHeader := re.req.Header.Get("Authorization")
	if authHeader == "" {
		re.logger.Debug("No authorization header, anonymous request")
		return re
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		re.badRequest.isBadRequest = true
		re.badRequest.errorMessage = "malformed authorization header"
		re.badRequest.httpCode = http.StatusUnauthorized
		return re
	}

	userId, err := auth.ParseAccessToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		re.logger.Warn("Token validation failed", "error", err)
		re.badRequest.isBadRequest = true
		re.badRequest.errorMessage = "invalid or expired token"
		re.badRequest.httpCode = http.StatusUnauthorized
		return re
	}

	re.logger = re.logger.With("userId", userId)
	re.req = re.req.WithContext(context.WithValue(re.req.Context(), config.USER_ID_KEY, userId))
	re.logger.Debug("Authorized")
	return re
}

func rateLimiter(re requestResponseStruct) requestResponseStruct {
	re.logger.Debug("Rate limiter middleware")
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}
	if !limiterInstance.GetLimiter(ip).Allow() {
		re.logger.Error("Too many requests", "Rate Limiter exceeded", ip)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Rate limit exceeded. Slow down",
		}
		return re
	}
	re.logger.Debug("Rate limiter middleware authorized")
	return re
}

func handleBadRequest(re requestResponseStruct) bool {
	if re.badRequest.isBadRequest {
		re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
		handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, re.badRequest.errorMessage)
		return false
	}
	return true
}
