package ui

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sheetqa/app"
	"sheetqa/domain/answer"
	"sheetqa/internal/errors"
)

// ErrorResponse is the JSON error body
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SheetsResponse lists the session's sheets
type SheetsResponse struct {
	FileName string       `json:"file_name,omitempty"`
	Sheets   []apiPreview `json:"sheets"`
}

type apiPreview struct {
	app.SheetPreview
	Head tableView `json:"head"`
}

func apiPreviews(previews []app.SheetPreview) []apiPreview {
	out := make([]apiPreview, 0, len(previews))
	for _, p := range previews {
		out = append(out, apiPreview{SheetPreview: p, Head: sheetTable(p)})
	}
	return out
}

// QueryRequest is the JSON body of POST /api/query
type QueryRequest struct {
	Question string `json:"question" form:"question"`
}

// QueryResponse carries the answer of POST /api/query
type QueryResponse struct {
	Question string         `json:"question"`
	Result   *answer.Result `json:"result,omitempty"`
}

func errorBody(err error) ErrorResponse {
	return ErrorResponse{Error: err.Error(), Code: errors.GetCode(err)}
}

// statusForError maps an error code to an HTTP status
func statusForError(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeUnsupportedFormat, errors.CodeParseError:
		return http.StatusBadRequest
	case errors.CodeExternalService, errors.CodeModelReplyInvalid:
		return http.StatusBadGateway
	case errors.CodeQueryError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) abortWithError(c *gin.Context, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("api request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.AbortWithStatusJSON(status, errorBody(err))
}

// handleAPISheets returns the previews of the session's workbook
func (s *Server) handleAPISheets(c *gin.Context) {
	state, err := s.sessionState(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	defer state.Unlock()

	resp := SheetsResponse{Sheets: apiPreviews(s.deps.Workbooks.Preview(state.Workbook))}
	if state.Workbook != nil {
		resp.FileName = state.Workbook.FileName
	}
	c.JSON(http.StatusOK, resp)
}

// handleAPIUpload parses a workbook into the session
func (s *Server) handleAPIUpload(c *gin.Context) {
	state, err := s.sessionState(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	defer state.Unlock()

	fileName, data, err := readUpload(c)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) {
			err = errors.InvalidInput("no file uploaded in field " + uploadField)
		}
		s.abortWithError(c, err)
		return
	}
	wb, err := s.deps.Workbooks.Load(c.Request.Context(), fileName, data)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	state.SetWorkbook(wb)

	c.JSON(http.StatusOK, SheetsResponse{FileName: wb.FileName, Sheets: apiPreviews(s.deps.Workbooks.Preview(wb))})
}

// handleAPIQuery answers a question against the session's workbook. The
// question may come as JSON or as a form field.
func (s *Server) handleAPIQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBind(&req); err != nil {
		s.abortWithError(c, errors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	state, err := s.sessionState(c)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	defer state.Unlock()

	res, err := s.deps.Queries.Ask(c.Request.Context(), state.Workbook, req.Question, localizer(c).Code())
	if err != nil {
		if errors.HasCode(err, errors.CodeExternalService) {
			s.deps.Health.Invalidate()
		}
		s.abortWithError(c, err)
		return
	}
	state.LastQuestion = req.Question
	state.LastResult = res

	c.JSON(http.StatusOK, QueryResponse{Question: req.Question, Result: res})
}
