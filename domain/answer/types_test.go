package answer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_RecordsBecomeTable(t *testing.T) {
	res := Classify([]any{
		map[string]any{"name": "Ann", "salary": 10.0},
		map[string]any{"name": "Bo", "dept": "ops"},
	})

	require.Equal(t, KindTable, res.Kind)
	assert.Equal(t, []string{"name", "salary", "dept"}, res.Table.Columns)
	assert.Equal(t, []any{"Bo", nil, "ops"}, res.Table.Rows[1])
}

func TestClassify_Shapes(t *testing.T) {
	assert.Equal(t, KindCollection, Classify([]any{1.0, 2.0}).Kind)
	assert.Equal(t, KindCollection, Classify([]any{}).Kind)
	assert.Equal(t, KindCollection, Classify(map[string]any{"a": 1.0}).Kind)

	res := Classify(42.0)
	assert.Equal(t, KindText, res.Kind)
	assert.Equal(t, "42", res.Text)

	assert.Equal(t, "3.25", Classify(3.25).Text)
	assert.Equal(t, "true", Classify(true).Text)
	assert.Equal(t, "", Classify(nil).Text)
	assert.Equal(t, "7", Classify(int64(7)).Text)
}

func TestFromTable_CollapsesSingleCell(t *testing.T) {
	res := FromTable(&Table{Columns: []string{"total"}, Rows: [][]any{{int64(12)}}})
	assert.Equal(t, KindText, res.Kind)
	assert.Equal(t, "12", res.Text)

	wide := FromTable(&Table{Columns: []string{"a", "b"}, Rows: [][]any{{1, 2}}})
	assert.Equal(t, KindTable, wide.Kind)
}

func TestPrettyJSON(t *testing.T) {
	res := Classify(map[string]any{"sales": 3.0})
	assert.Equal(t, "{\n  \"sales\": 3\n}", res.PrettyJSON())
}
