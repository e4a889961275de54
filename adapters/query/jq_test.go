package query

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetqa/domain/answer"
	"sheetqa/internal/errors"
	"sheetqa/internal/logging"
)

func TestJQExecutor_Bind(t *testing.T) {
	bindings := NewJQExecutor(100, logging.Discard()).Bind(testWorkbook())

	require.Len(t, bindings, 3)
	assert.Equal(t, `.sheets["2024 Depts"]`, bindings[1].Ref)
	assert.Equal(t, `.["salary"]`, bindings[0].Columns[2])
}

func TestJQExecutor_Execute(t *testing.T) {
	exec := NewJQExecutor(100, logging.Discard())
	wb := testWorkbook()

	tests := []struct {
		name  string
		query string
		kind  answer.Kind
		text  string
	}{
		{name: "scalar", query: `.sheets.Employees | map(.salary) | add`, kind: answer.KindText, text: "18300"},
		{name: "records become table", query: `.sheets.Employees | map(select(.dept == "eng") | {name, salary})`, kind: answer.KindTable},
		{name: "mapping is collection", query: `.sheets.Employees | group_by(.dept) | map({key: .[0].dept, value: length}) | from_entries`, kind: answer.KindCollection},
		{name: "several emissions form a list", query: `.sheets.Employees[].name`, kind: answer.KindCollection},
		{name: "no emission is empty text", query: `empty`, kind: answer.KindText, text: ""},
		{name: "sheet names with spaces", query: `.sheets["2024 Depts"] | length`, kind: answer.KindText, text: "2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := exec.Execute(context.Background(), wb, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, res.Kind)
			if tt.kind == answer.KindText {
				assert.Equal(t, tt.text, res.Text)
			}
		})
	}
}

func TestJQExecutor_NoEnvironment(t *testing.T) {
	t.Setenv("SHEETQA_SECRET", "hunter2")
	require.Equal(t, "hunter2", os.Getenv("SHEETQA_SECRET"))

	res, err := NewJQExecutor(100, logging.Discard()).Execute(context.Background(), testWorkbook(), `$ENV.SHEETQA_SECRET`)
	require.NoError(t, err)
	assert.Equal(t, "", res.Text)
}

func TestJQExecutor_Errors(t *testing.T) {
	exec := NewJQExecutor(100, logging.Discard())

	_, err := exec.Execute(context.Background(), testWorkbook(), `.sheets[`)
	assert.Equal(t, errors.CodeQueryError, errors.GetCode(err))

	_, err = exec.Execute(context.Background(), testWorkbook(), `.sheets.Employees | error("boom")`)
	assert.Equal(t, errors.CodeQueryError, errors.GetCode(err))
}

func TestJQExecutor_CapsOutputs(t *testing.T) {
	res, err := NewJQExecutor(2, logging.Discard()).Execute(context.Background(), testWorkbook(), `.sheets.Employees[]`)
	require.NoError(t, err)
	require.Equal(t, answer.KindTable, res.Kind)
	assert.Len(t, res.Table.Rows, 2)
	assert.True(t, res.Truncated)
}
