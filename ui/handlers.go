package ui

import (
	"bytes"
	stderrors "errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sheetqa/app"
	"sheetqa/internal/errors"
	"sheetqa/internal/i18n"
)

// uploadField is the multipart field carrying the workbook
const uploadField = "workbook"

// handleIndex renders the main page, or the connection error page when
// the model service cannot be reached
func (s *Server) handleIndex(c *gin.Context) {
	loc := localizer(c)
	if !s.modelReachable(c, loc) {
		return
	}

	state, err := s.sessionState(c)
	if err != nil {
		s.renderFailure(c, err)
		return
	}
	defer state.Unlock()

	page := s.newPage(loc)
	s.fill(page, state)
	s.renderTemplate(c, http.StatusOK, "index.html", page)
}

// handleUpload parses the uploaded workbook. On failure the session keeps
// its previous workbook.
func (s *Server) handleUpload(c *gin.Context) {
	loc := localizer(c)
	if !s.modelReachable(c, loc) {
		return
	}

	state, err := s.sessionState(c)
	if err != nil {
		s.renderFailure(c, err)
		return
	}
	defer state.Unlock()

	page := s.newPage(loc)
	fileName, data, err := readUpload(c)
	switch {
	case stderrors.Is(err, http.ErrMissingFile):
		page.Banners = append(page.Banners, banner{Kind: bannerInfo, Message: loc.T(i18n.NoFileSelected)})
	case err != nil:
		page.Banners = append(page.Banners, banner{Kind: bannerError, Message: loc.T(i18n.UploadFailed, err.Error())})
	default:
		wb, err := s.deps.Workbooks.Load(c.Request.Context(), fileName, data)
		if err != nil {
			page.Banners = append(page.Banners, banner{Kind: bannerError, Message: loc.T(i18n.UploadFailed, err.Error())})
			break
		}
		state.SetWorkbook(wb)
		page.Banners = append(page.Banners, banner{Kind: bannerSuccess, Message: loc.T(i18n.UploadSuccess, wb.Len())})
	}

	s.fill(page, state)
	s.renderTemplate(c, http.StatusOK, "index.html", page)
}

// handleQuery answers the submitted question. A blank question renders the
// page without calling the model; a failure keeps the previews.
func (s *Server) handleQuery(c *gin.Context) {
	loc := localizer(c)
	if !s.modelReachable(c, loc) {
		return
	}

	state, err := s.sessionState(c)
	if err != nil {
		s.renderFailure(c, err)
		return
	}
	defer state.Unlock()

	page := s.newPage(loc)
	question := c.PostForm("question")
	if !app.IsEmptyQuestion(question) && state.Workbook != nil {
		res, err := s.deps.Queries.Ask(c.Request.Context(), state.Workbook, question, loc.Code())
		if err != nil {
			if errors.HasCode(err, errors.CodeExternalService) {
				s.deps.Health.Invalidate()
			}
			state.LastQuestion = strings.TrimSpace(question)
			state.LastResult = nil
			page.Banners = append(page.Banners, banner{Kind: bannerError, Message: loc.T(i18n.QueryFailed, err.Error())})
		} else {
			state.LastQuestion = strings.TrimSpace(question)
			state.LastResult = res
		}
	}

	s.fill(page, state)
	s.renderTemplate(c, http.StatusOK, "index.html", page)
}

// handleReset clears the session's workbook
func (s *Server) handleReset(c *gin.Context) {
	state, err := s.sessionState(c)
	if err != nil {
		s.renderFailure(c, err)
		return
	}
	state.Reset()
	state.Unlock()
	c.Redirect(http.StatusSeeOther, "/")
}

// handleHealth reports whether the model endpoint answers
func (s *Server) handleHealth(c *gin.Context) {
	body := gin.H{"status": "ok", "model": s.deps.Model, "sessions": s.deps.Sessions.Len()}
	if s.deps.Usage != nil {
		body["usage"] = s.deps.Usage.Totals()
		body["usage_by_operation"] = s.deps.Usage.ByOperation()
	}
	if err := s.deps.Health.Check(c.Request.Context()); err != nil {
		body["status"] = "unavailable"
		body["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}

// modelReachable renders the connection error page and returns false when
// the model endpoint is down
func (s *Server) modelReachable(c *gin.Context, loc *i18n.Localizer) bool {
	err := s.deps.Health.Check(c.Request.Context())
	if err == nil {
		return true
	}
	page := s.newPage(loc)
	page.ErrorDetail = err.Error()
	s.renderTemplate(c, http.StatusServiceUnavailable, "connection_error.html", page)
	return false
}

func (s *Server) renderFailure(c *gin.Context, err error) {
	s.logger.Error("request failed", "path", c.Request.URL.Path, "error", err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, errorBody(err))
}

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, status int, templateName string, data any) {
	// Render to a buffer first so a template error does not leave a half
	// written page
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		s.logger.Error("template error", "template", templateName, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "template rendering failed", "code": errors.CodeInternalError})
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

// readUpload returns the uploaded file's name and bytes. A request without
// a file returns http.ErrMissingFile.
func readUpload(c *gin.Context) (string, []byte, error) {
	header, err := c.FormFile(uploadField)
	if err != nil {
		if stderrors.Is(err, http.ErrMissingFile) || stderrors.Is(err, http.ErrNotMultipart) {
			return "", nil, http.ErrMissingFile
		}
		return "", nil, errors.InvalidInput("failed to read upload: " + err.Error())
	}
	data, err := readFileHeader(header)
	if err != nil {
		return header.Filename, nil, errors.InvalidInput("failed to read upload: " + err.Error())
	}
	return header.Filename, data, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
