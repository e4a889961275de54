package ui

import (
	"html/template"
	"strings"

	"sheetqa/app"
	"sheetqa/domain/answer"
	"sheetqa/internal/i18n"
	"sheetqa/internal/session"
)

// Banner kinds
const (
	bannerSuccess = "success"
	bannerError   = "error"
	bannerInfo    = "info"
)

type banner struct {
	Kind    string
	Message string
}

type tableView struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type previewView struct {
	Name    string
	Rows    int
	Columns int
	Table   tableView
}

type answerView struct {
	Kind        answer.Kind
	Table       *tableView
	JSON        string
	Text        string
	Query       string
	Explanation string
	Truncated   bool
	ShownRows   int
}

type pageData struct {
	L         *i18n.Localizer
	Languages []string
	Model     string
	BaseURL   string
	Accept    string

	Banners     []banner
	FileName    string
	PreviewRows int
	Previews    []previewView
	Question    string
	Answer      *answerView
	Help        template.HTML
	ErrorDetail string
}

func (s *Server) newPage(loc *i18n.Localizer) *pageData {
	return &pageData{
		L:         loc,
		Languages: i18n.Languages(),
		Model:     s.deps.Model,
		BaseURL:   s.deps.BaseURL,
		Accept:    strings.Join(s.deps.Workbooks.AcceptedExtensions(), ","),
		Help:      s.help[loc.Code()],
	}
}

// fill adds the session's workbook and last answer
func (s *Server) fill(page *pageData, state *session.State) {
	if state.Workbook == nil {
		return
	}
	page.FileName = state.Workbook.FileName
	page.PreviewRows = s.deps.Workbooks.PreviewRows()
	for _, p := range s.deps.Workbooks.Preview(state.Workbook) {
		page.Previews = append(page.Previews, previewView{
			Name:    p.Name,
			Rows:    p.Rows,
			Columns: p.Columns,
			Table:   sheetTable(p),
		})
	}
	page.Question = state.LastQuestion
	if state.LastResult != nil {
		page.Answer = newAnswerView(state.LastResult)
	}
}

func sheetTable(p app.SheetPreview) tableView {
	view := tableView{Columns: p.Head.Columns, Rows: make([][]string, 0, p.Head.NumRows())}
	for _, row := range p.Head.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = v.String()
		}
		view.Rows = append(view.Rows, cells)
	}
	return view
}

func newAnswerView(res *answer.Result) *answerView {
	view := &answerView{
		Kind:        res.Kind,
		Query:       res.Query,
		Explanation: res.Explanation,
		Truncated:   res.Truncated,
	}
	switch res.Kind {
	case answer.KindTable:
		t := &tableView{Columns: res.Table.Columns, Rows: make([][]string, 0, len(res.Table.Rows))}
		for _, row := range res.Table.Rows {
			cells := make([]string, len(row))
			for i, v := range row {
				cells[i] = answer.FormatScalar(v)
			}
			t.Rows = append(t.Rows, cells)
		}
		view.Table = t
		view.ShownRows = len(t.Rows)
	case answer.KindCollection:
		view.JSON = res.PrettyJSON()
		if items, ok := res.Collection.([]any); ok {
			view.ShownRows = len(items)
		}
	default:
		view.Text = res.Text
	}
	return view
}
