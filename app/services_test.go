package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"sheetqa/adapters/excel"
	"sheetqa/adapters/llm"
	"sheetqa/adapters/query"
	"sheetqa/ai"
	"sheetqa/domain/answer"
	"sheetqa/internal/errors"
	"sheetqa/internal/logging"
	"sheetqa/internal/profiling"
)

func workbookBytes(t *testing.T, sheets int, rows int) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for s := 0; s < sheets; s++ {
		name := fmt.Sprintf("Region%d", s+1)
		if s == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", name))
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		require.NoError(t, f.SetSheetRow(name, "A1", &[]any{"product", "units"}))
		for r := 0; r < rows; r++ {
			cell, _ := excelize.CoordinatesToCellName(1, r+2)
			require.NoError(t, f.SetSheetRow(name, cell, &[]any{fmt.Sprintf("p%d", r), r + 1}))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func newWorkbookService() *WorkbookService {
	logger := logging.Discard()
	return NewWorkbookService(excel.NewDataReader(excel.DefaultReaderConfig(), logger), 5, logger)
}

func newQueryService(t *testing.T, mock *llm.MockLLMClient) *QueryService {
	t.Helper()
	logger := logging.Discard()
	client, err := ai.NewStructuredClient[ai.Plan](mock, ai.NewPromptManager("", logger), "plan", true, logger)
	require.NoError(t, err)
	planner := ai.NewPlanner(client, ai.NewSheetDescriber(profiling.NewDataProfiler(logger), 5), logger)
	return NewQueryService(planner, query.NewSQLExecutor(1000, logger), nil, logger)
}

func TestWorkbookService_PreviewOnePerSheet(t *testing.T) {
	svc := newWorkbookService()
	wb, err := svc.Load(context.Background(), "/tmp/uploads/sales.xlsx", workbookBytes(t, 3, 12))
	require.NoError(t, err)
	assert.Equal(t, "sales.xlsx", wb.FileName)

	previews := svc.Preview(wb)
	require.Len(t, previews, 3)
	for i, p := range previews {
		assert.Equal(t, fmt.Sprintf("Region%d", i+1), p.Name)
		assert.Equal(t, 12, p.Rows)
		assert.Equal(t, 2, p.Columns)
		assert.LessOrEqual(t, p.Head.NumRows(), 5)
	}
	assert.Empty(t, svc.Preview(nil))
}

func TestWorkbookService_ParseFailure(t *testing.T) {
	_, err := newWorkbookService().Load(context.Background(), "broken.xlsx", []byte("PK\x03\x04 not really a zip"))
	require.Error(t, err)
	code := errors.GetCode(err)
	assert.Contains(t, []string{errors.CodeParseError, errors.CodeUnsupportedFormat}, code)
}

func TestQueryService_EmptyQuestionMakesNoCall(t *testing.T) {
	mock := &llm.MockLLMClient{}
	svc := newQueryService(t, mock)
	wb, err := newWorkbookService().Load(context.Background(), "s.xlsx", workbookBytes(t, 1, 2))
	require.NoError(t, err)

	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := svc.Ask(context.Background(), wb, q, "en")
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	}
	assert.Empty(t, mock.Requests())
}

func TestQueryService_OneCallOverAllSheets(t *testing.T) {
	mock := &llm.MockLLMClient{Response: `{"kind":"query","query":"SELECT SUM(units) FROM Region2","answer":"","explanation":"summed units"}`}
	svc := newQueryService(t, mock)
	wb, err := newWorkbookService().Load(context.Background(), "s.xlsx", workbookBytes(t, 4, 3))
	require.NoError(t, err)

	res, err := svc.Ask(context.Background(), wb, " total units in region 2? ", "en")
	require.NoError(t, err)
	assert.Equal(t, answer.KindText, res.Kind)
	assert.Equal(t, "6", res.Text)
	assert.Equal(t, "SELECT SUM(units) FROM Region2", res.Query)
	assert.Equal(t, "summed units", res.Explanation)

	requests := mock.Requests()
	require.Len(t, requests, 1)
	prompt := requests[0].Messages[1].Content
	for i := 1; i <= 4; i++ {
		assert.Contains(t, prompt, fmt.Sprintf(`"Region%d"`, i))
	}
}

func TestQueryService_DirectAnswer(t *testing.T) {
	mock := &llm.MockLLMClient{Response: `{"kind":"answer","query":"","answer":"The workbook tracks units per product.","explanation":""}`}
	wb, err := newWorkbookService().Load(context.Background(), "s.xlsx", workbookBytes(t, 1, 1))
	require.NoError(t, err)

	res, err := newQueryService(t, mock).Ask(context.Background(), wb, "what is this?", "en")
	require.NoError(t, err)
	assert.Equal(t, "The workbook tracks units per product.", res.Text)
	assert.Empty(t, res.Query)
}

func TestQueryService_ErrorsPropagate(t *testing.T) {
	wb, err := newWorkbookService().Load(context.Background(), "s.xlsx", workbookBytes(t, 1, 1))
	require.NoError(t, err)

	down := &llm.MockLLMClient{Error: errors.ExternalServiceError("llm", fmt.Errorf("connection refused"))}
	_, err = newQueryService(t, down).Ask(context.Background(), wb, "q", "en")
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))

	badSQL := &llm.MockLLMClient{Response: `{"kind":"query","query":"SELECT nope FROM Region1","answer":"","explanation":""}`}
	_, err = newQueryService(t, badSQL).Ask(context.Background(), wb, "q", "en")
	assert.Equal(t, errors.CodeQueryError, errors.GetCode(err))

	garbage := &llm.MockLLMClient{Response: "Sorry, I can't."}
	_, err = newQueryService(t, garbage).Ask(context.Background(), wb, "q", "en")
	assert.Equal(t, errors.CodeModelReplyInvalid, errors.GetCode(err))

	_, err = newQueryService(t, &llm.MockLLMClient{}).Ask(context.Background(), nil, "q", "en")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestHealthProbe_CachesSuccess(t *testing.T) {
	mock := &llm.MockLLMClient{}
	probe := NewHealthProbe(mock, time.Minute, logging.Discard())
	current := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	probe.now = func() time.Time { return current }

	require.NoError(t, probe.Check(context.Background()))
	require.NoError(t, probe.Check(context.Background()))
	assert.Equal(t, 1, mock.PingCalls())

	current = current.Add(2 * time.Minute)
	require.NoError(t, probe.Check(context.Background()))
	assert.Equal(t, 2, mock.PingCalls())

	probe.Invalidate()
	require.NoError(t, probe.Check(context.Background()))
	assert.Equal(t, 3, mock.PingCalls())
}

func TestHealthProbe_FailureIsNotCached(t *testing.T) {
	mock := &llm.MockLLMClient{PingError: errors.ExternalServiceError("llm", fmt.Errorf("dial tcp: connection refused"))}
	probe := NewHealthProbe(mock, time.Minute, logging.Discard())

	err := probe.Check(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "connection refused"))
	assert.Error(t, probe.Check(context.Background()))
	assert.Equal(t, 2, mock.PingCalls())
}

func TestHealthProbe_ConcurrentChecks(t *testing.T) {
	probe := NewHealthProbe(&llm.MockLLMClient{}, time.Minute, logging.Discard())
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, probe.Check(context.Background()))
		}()
	}
	wg.Wait()
}

// ctxClient is a model client whose Ping reports the context it ran under
type ctxClient struct {
	llm.MockLLMClient
	deadline bool
}

func (c *ctxClient) Ping(ctx context.Context) error {
	_, c.deadline = ctx.Deadline()
	return ctx.Err()
}

func TestHealthProbe_CallerCancellationDoesNotFailPing(t *testing.T) {
	client := &ctxClient{}
	probe := NewHealthProbe(client, time.Minute, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, probe.Check(ctx))
	assert.True(t, client.deadline, "ping runs with its own deadline")
}
