package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sheetqa/domain/answer"
	"sheetqa/internal/errors"
	"sheetqa/internal/logging"
)

func TestSQLExecutor_Bind(t *testing.T) {
	bindings := NewSQLExecutor(100, logging.Discard()).Bind(testWorkbook())

	require.Len(t, bindings, 3)
	assert.Equal(t, "Employees", bindings[0].Ref)
	assert.Equal(t, `"Name_2"`, bindings[0].Columns[4])
	assert.Equal(t, "t_2024_Depts", bindings[1].Ref)
	assert.Equal(t, "2024 Depts", bindings[1].Sheet)
}

func TestSQLExecutor_Execute(t *testing.T) {
	exec := NewSQLExecutor(100, logging.Discard())
	wb := testWorkbook()

	tests := []struct {
		name    string
		query   string
		kind    answer.Kind
		text    string
		columns []string
		rows    int
	}{
		{name: "aggregate collapses to scalar", query: "SELECT SUM(salary) FROM Employees;", kind: answer.KindText, text: "18300"},
		{name: "count", query: "select count(*) from Employees where active = 1", kind: answer.KindText, text: "2"},
		{name: "join across sheets", query: `SELECT e.name, d.opened FROM Employees e JOIN t_2024_Depts d ON e.dept = d.dept ORDER BY e.name`, kind: answer.KindTable, columns: []string{"name", "opened"}, rows: 3},
		{name: "cte", query: "WITH t AS (SELECT dept, AVG(salary) AS avg FROM Employees GROUP BY dept) SELECT * FROM t ORDER BY dept", kind: answer.KindTable, columns: []string{"dept", "avg"}, rows: 2},
		{name: "empty sheet table exists", query: "SELECT COUNT(*) FROM Notes", kind: answer.KindText, text: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := exec.Execute(context.Background(), wb, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, res.Kind)
			if tt.kind == answer.KindText {
				assert.Equal(t, tt.text, res.Text)
			} else {
				assert.Equal(t, tt.columns, res.Table.Columns)
				assert.Len(t, res.Table.Rows, tt.rows)
			}
		})
	}
}

func TestSQLExecutor_TimestampsAreText(t *testing.T) {
	res, err := NewSQLExecutor(100, logging.Discard()).Execute(context.Background(), testWorkbook(), "SELECT opened FROM t_2024_Depts WHERE dept = 'eng'")
	require.NoError(t, err)
	assert.Equal(t, "2021-05-06T00:00:00Z", res.Text)
}

func TestSQLExecutor_CapsRows(t *testing.T) {
	res, err := NewSQLExecutor(2, logging.Discard()).Execute(context.Background(), testWorkbook(), "SELECT name, salary FROM Employees")
	require.NoError(t, err)
	assert.Len(t, res.Table.Rows, 2)
	assert.True(t, res.Truncated)
}

func TestSQLExecutor_RejectsWrites(t *testing.T) {
	exec := NewSQLExecutor(100, logging.Discard())
	for _, q := range []string{
		"DELETE FROM Employees",
		"SELECT 1; DROP TABLE Employees",
		"ATTACH DATABASE 'x.db' AS x",
		"WITH t AS (SELECT 1) INSERT INTO Notes VALUES (1)",
		"",
	} {
		_, err := exec.Execute(context.Background(), testWorkbook(), q)
		require.Error(t, err, q)
		assert.Equal(t, errors.CodeQueryError, errors.GetCode(err), q)
	}
}

func TestSQLExecutor_BadQueryIsQueryError(t *testing.T) {
	_, err := NewSQLExecutor(100, logging.Discard()).Execute(context.Background(), testWorkbook(), "SELECT missing_column FROM Employees")
	require.Error(t, err)
	assert.Equal(t, errors.CodeQueryError, errors.GetCode(err))
}

func TestSingleStatement(t *testing.T) {
	stmt, err := singleStatement("SELECT 'a;b' AS x; ;")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 'a;b' AS x", stmt)

	_, err = singleStatement("-- note\n(SELECT 1)")
	assert.NoError(t, err)

	_, err = singleStatement("SELECT 'open")
	assert.Error(t, err)
}

func TestSanitizeIdentifier(t *testing.T) {
	assert.Equal(t, "Q1_Sales", sanitizeIdentifier("Q1 Sales!"))
	assert.Equal(t, "t_", sanitizeIdentifier("***"))
	assert.Equal(t, "t_sqlite_master", sanitizeIdentifier("sqlite_master"))
	assert.Equal(t, "销售", sanitizeIdentifier("销售"))
	assert.Equal(t, []string{"Sheet", "Sheet_2", "sheet_3"}, tableNames([]string{"Sheet", "Sheet!", "sheet"}))
}
