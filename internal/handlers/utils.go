package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/akolanti/ChatPDF/internal/adapter"
	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/config"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateContext(ctx context.Context) bool {
	if err := ctx.Err(); err != nil {
		logRH.FromContext(ctx).Warn("context error", "error", err)
		return false
	}
	return true
}

func closeBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		logRH.Error("Couldn't close the request body", "error", err)
	}
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

func processNewJobData(w http.ResponseWriter, request *http.Request, newJob newJobData) {
	newJob.id = utils.GetNewUUID()
	newJob.traceId, _ = request.Context().Value(config.TRACE_ID_KEY).(string)

	if _, err := CreateNewJob(request.Context(), newJob); err != nil {
		logRH.FromContext(request.Context()).Error("Couldn't queue job", "error", err)
		if newJob.isDocumentIngest() {
			_ = os.Remove(newJob.documentSource)
		}
		WriteErrorResponse(w, http.StatusServiceUnavailable, newJob.sessionId, "Could not queue the request")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id, newJob.sessionId))
}
