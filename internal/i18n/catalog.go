package i18n

// Message keys
const (
	PageTitle            = "page_title"
	Title                = "title"
	Description          = "description"
	UploadLabel          = "upload_label"
	UploadButton         = "upload_button"
	UploadSuccess        = "upload_success"
	UploadFailed         = "upload_failed"
	NoFileSelected       = "no_file_selected"
	PreviewHeading       = "preview_heading"
	SheetShape           = "sheet_shape"
	SheetEmpty           = "sheet_empty"
	QuestionLabel        = "question_label"
	QuestionPlaceholder  = "question_placeholder"
	AskButton            = "ask_button"
	ResetButton          = "reset_button"
	AnswerHeading        = "answer_heading"
	QueryFailed          = "query_failed"
	ExplanationLabel     = "explanation_label"
	ExecutedQueryLabel   = "executed_query_label"
	ResultTruncated      = "result_truncated"
	EmptyAnswer          = "empty_answer"
	HelpToggle           = "help_toggle"
	ConnectionErrorTitle = "connection_error_title"
	ConnectionError      = "connection_error"
	ErrorDetails         = "error_details"
	RetryButton          = "retry_button"
	LanguageLabel        = "language_label"
)

type entry struct {
	en string
	zh string
}

var messages = map[string]entry{
	PageTitle:            {"Excel QA Tool (Local Ollama)", "Excel 问答工具（本地 Ollama）"},
	Title:                {"Data Insights (Local Ollama Version)", "数据洞察（本地 Ollama 版）"},
	Description:          {"Upload an Excel file and ask questions in natural language. The system will use local Ollama to process all sheets.", "上传 Excel 文件并用自然语言提问。系统将使用本地 Ollama 处理所有工作表。"},
	UploadLabel:          {"Select an Excel file", "选择 Excel 文件"},
	UploadButton:         {"Upload", "上传"},
	UploadSuccess:        {"Successfully loaded Excel file with %d sheets.", "已成功加载 Excel 文件，共 %d 个工作表。"},
	UploadFailed:         {"Error processing the Excel file: %s", "处理 Excel 文件时出错：%s"},
	NoFileSelected:       {"Choose a file to upload.", "请选择要上传的文件。"},
	PreviewHeading:       {"Sheet Previews (First %d Rows):", "工作表预览（前 %d 行）："},
	SheetShape:           {"%d rows, %d columns", "%d 行，%d 列"},
	SheetEmpty:           {"This sheet is empty.", "该工作表为空。"},
	QuestionLabel:        {"Enter your question (in natural language)", "输入您的问题（自然语言）"},
	QuestionPlaceholder:  {"Who has the highest salary?", "谁的薪水最高？"},
	AskButton:            {"Ask", "提问"},
	ResetButton:          {"Clear workbook", "清除工作簿"},
	AnswerHeading:        {"Answer:", "回答："},
	QueryFailed:          {"Error processing the query: %s", "处理查询时出错：%s"},
	ExplanationLabel:     {"How this was answered", "解答说明"},
	ExecutedQueryLabel:   {"Executed query", "执行的查询"},
	ResultTruncated:      {"Only the first %d rows are shown.", "仅显示前 %d 行。"},
	EmptyAnswer:          {"The query returned no value.", "查询未返回任何值。"},
	HelpToggle:           {"Usage Instructions", "使用说明"},
	ConnectionErrorTitle: {"Model service unavailable", "模型服务不可用"},
	ConnectionError:      {"Unable to connect to the local Ollama service. Please ensure it is running.", "无法连接到本地 Ollama 服务，请确保其正在运行。"},
	ErrorDetails:         {"Error details: %s", "错误详情：%s"},
	RetryButton:          {"Retry", "重试"},
	LanguageLabel:        {"Language", "语言"},
}
