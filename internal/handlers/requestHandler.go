package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/akolanti/ChatPDF/internal/adapter"
	"github.com/akolanti/ChatPDF/internal/adapter/utils"
	"github.com/akolanti/ChatPDF/internal/api"
	"github.com/akolanti/ChatPDF/internal/config"
	"github.com/akolanti/ChatPDF/internal/rag/ingest"
	"github.com/akolanti/ChatPDF/internal/rag/prompt"
)

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// GetModelsHandler godoc
// @Summary      List model options
// @Description  The three model options in display order. The option only picks the prompt template.
// @Tags         Session
// @Produce      json
// @Param        X-Session-Id  header    string  false  "Session id, issued when absent"
// @Success      200  {object}  api.ModelsResponse
// @Router       /models [get]
func GetModelsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	selected := prompt.Default()
	if sess, ok := currentSession(r.Context()); ok {
		selected = sess.Model()
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToModelsResponse(selected))
}

// PutSessionModelHandler godoc
// @Summary      Select the model option
// @Description  Changes the prompt template used for the next question of this session.
// @Tags         Session
// @Accept       json
// @Produce      json
// @Param        X-Session-Id  header    string                  false  "Session id, issued when absent"
// @Param        request       body      api.ModelSelectRequest  true   "Model option id"
// @Success      200  {object}  api.SessionResponse
// @Failure      400  {object}  api.JobResponse  "Unknown model option"
// @Router       /session/model [put]
func PutSessionModelHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sess, ok := currentSession(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}

	var requestData api.ModelSelectRequest
	defer closeBody(r)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, sess.Id, "Bad Request")
		return
	}
	if err := sess.SetModel(requestData.Model); err != nil {
		logRH.FromContext(r.Context()).Warn("Rejected model option", "model", requestData.Model)
		WriteErrorResponse(w, http.StatusBadRequest, sess.Id, err.Error())
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(sess.Summary()))
}

// GetSessionHandler godoc
// @Summary      Session state
// @Description  Selected model option, loaded document and whether questions are accepted.
// @Tags         Session
// @Produce      json
// @Param        X-Session-Id  header    string  false  "Session id, issued when absent"
// @Success      200  {object}  api.SessionResponse
// @Router       /session [get]
func GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sess, ok := currentSession(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToSessionResponse(sess.Summary()))
}

// GetSessionPagesHandler godoc
// @Summary      Loaded pages
// @Description  Text of every page kept from the last successful upload.
// @Tags         Session
// @Produce      json
// @Param        X-Session-Id  header    string  false  "Session id, issued when absent"
// @Success      200  {object}  api.PagesResponse
// @Router       /session/pages [get]
func GetSessionPagesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	sess, ok := currentSession(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToPagesResponse(sess))
}

// ChatHandler godoc
// @Summary      Ask a question about the loaded document
// @Description  Queues a question for the session's document and returns a job ID to track status.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        X-Session-Id  header    string           false  "Session id, issued when absent"
// @Param        request       body      api.ChatRequest  true   "Question"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Empty question"
// @Failure      409      {object}  api.JobResponse      "No document loaded yet"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request", "remote", request.RemoteAddr)
		return
	}
	sess, ok := currentSession(request.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}

	var requestData api.ChatRequest
	defer closeBody(request)
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Message) == "" {
		logRH.FromContext(request.Context()).Warn("Bad Chat Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, sess.Id, "Bad Request")
		return
	}
	if sess.Index() == nil {
		WriteErrorResponse(w, http.StatusConflict, sess.Id, "Please load a PDF document first")
		return
	}
	processNewJobData(w, request, newJobData{
		sessionId:   sess.Id,
		message:     requestData.Message,
		modelOption: sess.Model(),
	})
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a job of this session using its ID.
// @Tags         Job Status
// @Produce      json
// @Param        X-Session-Id  header    string  false  "Session id"
// @Param        id            path      string  true   "Job ID"
// @Success      200  {object}  api.JobResponse   "The current status of the job"
// @Failure      404  {object}  api.JobResponse   "Job not found"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	result, isFound := GetJobStatus(r.Context(), idString)
	sessionId, _ := r.Context().Value(config.SESSION_ID_KEY).(string)

	logRH.FromContext(r.Context()).Debug("Get Status Request", "jobId", idString)
	if !isFound || result.SessionId != sessionId {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}

// PostIngestHandler handles the upload of a PDF document.
// @Summary      Upload a PDF
// @Description  Receives a PDF via multipart/form-data, stores it until the ingestion job has run and queues that job. A successful upload replaces the session's document.
// @Tags         Ingestion
// @Accept       multipart/form-data
// @Produce      json
// @Param        X-Session-Id  header    string  false  "Session id, issued when absent"
// @Param        document      formData  file    true   "The PDF file to upload"
// @Success      202  {object}  api.InitJobResponse "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse "Missing file, not a .pdf or file too large"
// @Failure      500  {object}  api.JobResponse "Storage error"
// @Router       /ingest [post]
func PostIngestHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request", "remote", r.RemoteAddr)
		return
	}
	sess, ok := currentSession(r.Context())
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Session unavailable")
		return
	}
	settings := handlerInstance.ingest

	r.Body = http.MaxBytesReader(w, r.Body, settings.MaxUploadBytes)
	if err := r.ParseMultipartForm(settings.MaxUploadBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, sess.Id, "File too large or bad request")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	fileReader, fileMetadata, err := r.FormFile("document")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, sess.Id, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	upload, err := ingest.SaveUpload(ingest.UploadDir(settings.UploadDir), fileMetadata.Filename, fileReader)
	if errors.Is(err, ingest.ErrNotPDF) {
		WriteErrorResponse(w, http.StatusBadRequest, sess.Id, err.Error())
		return
	}
	if err != nil {
		logRH.FromContext(r.Context()).Error("Couldn't store upload", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, sess.Id, "Storage error")
		return
	}

	processNewJobData(w, r, newJobData{
		sessionId:      sess.Id,
		documentName:   upload.FileName,
		documentSource: upload.Path,
	})
}
