package msgproc

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/postgres-ai/askdb/pkg/config"
	"gitlab.com/postgres-ai/askdb/pkg/models"
)

func TestParseVerdict(t *testing.T) {
	testCases := []struct {
		caseName string
		answer   string
		expected models.AuditVerdict
		parseErr bool
	}{
		{
			caseName: "valid verdict",
			answer:   `{"isValid": true, "error": "", "suggestedFix": ""}`,
			expected: models.AuditVerdict{IsValid: true},
		},
		{
			caseName: "fenced verdict with a fix",
			answer:   "```json\n{\"isValid\": false, \"error\": \"Unknown column\", \"suggestedFix\": \"```sql\\nSELECT Name FROM Customers\\n```\"}\n```",
			expected: models.AuditVerdict{Error: "Unknown column", SuggestedFix: "SELECT Name FROM Customers"},
		},
		{
			caseName: "verdict surrounded by prose",
			answer:   "Here is my verdict: {\"ISVALID\": true, \"error\": null} Hope it helps.",
			expected: models.AuditVerdict{IsValid: true},
		},
		{
			caseName: "missing isValid is invalid",
			answer:   `{"error": "", "suggestedFix": "SELECT 1"}`,
			expected: models.AuditVerdict{Error: genericAuditError, SuggestedFix: "SELECT 1"},
		},
		{
			caseName: "no JSON",
			answer:   "The query is fine.",
			parseErr: true,
		},
		{
			caseName: "broken JSON",
			answer:   `{"isValid": tru}`,
			parseErr: true,
		},
		{
			caseName: "wrong field type",
			answer:   `{"isValid": "yes"}`,
			parseErr: true,
		},
	}

	for _, tc := range testCases {
		t.Log(tc.caseName)

		verdict, err := parseVerdict(tc.answer)

		if tc.parseErr {
			assert.True(t, errors.Is(err, ErrAuditParse))
			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tc.expected, verdict)
	}
}

func TestResultJSON(t *testing.T) {
	svc := &ProcessingService{config: config.Pipeline{MaxResultRows: 2, MaxCellChars: 5, MaxResultJSONSize: 50000}}

	resultJSON := svc.resultJSON(models.QueryResult{
		Success: true,
		Columns: []string{"Name", "Phone"},
		Rows: []models.Row{
			{"Name": "Alexander", "Phone": nil},
			{"Name": "Bob", "Phone": "555"},
			{"Name": "Carl", "Phone": "556"},
		},
	})

	assert.Equal(t, `[{"Name":"Al...","Phone":null},{"Name":"Bob","Phone":"555"}]`, resultJSON)

	svc.config.MaxResultJSONSize = 20

	resultJSON = svc.resultJSON(models.QueryResult{
		Success: true,
		Columns: []string{"Name"},
		Rows:    []models.Row{{"Name": "Ann"}, {"Name": "Bea"}},
	})

	assert.True(t, strings.HasPrefix(resultJSON, `[{"Name":"Ann"},{"Na`))
	assert.True(t, strings.HasSuffix(resultJSON, resultTruncationMarker))

	assert.Equal(t, "[]", svc.resultJSON(models.QueryResult{Success: true}))
}

func TestInterpreterPrompt(t *testing.T) {
	prompt := interpreterPrompt("How many?", "SELECT COUNT(*) FROM T", []string{"Id", "Name"}, 2, "[]")
	assert.Contains(t, prompt, "COLUMNS: Id, Name")
	assert.Contains(t, prompt, "ROW COUNT: 2")
	assert.NotContains(t, prompt, "ZERO ROWS")

	prompt = interpreterPrompt("How many?", "SELECT COUNT(*) FROM T", []string{"Id"}, 0, "[]")
	assert.Contains(t, prompt, "THE QUERY RETURNED ZERO ROWS")
}

func TestGeneratorPrompt(t *testing.T) {
	prompt := generatorPrompt("TABLE Payments", []string{"PaymentDate", "DueDate"})
	assert.Contains(t, prompt, "TABLE Payments")
	assert.Contains(t, prompt, "stored as text: PaymentDate, DueDate.")
	assert.Contains(t, prompt, "LIKE with % wildcards")
}

func TestClassifierPrompt(t *testing.T) {
	assert.Contains(t, classifierPrompt, "Answer with exactly one word: QUERY or GREETING.")
}

func TestFormatQuotes(t *testing.T) {
	assert.Equal(t, `SELECT * FROM T WHERE Name = 'Ann' AND "Col" = 1`,
		formatQuotes("SELECT * FROM T WHERE Name = ‘Ann’ AND “Col” = 1"))
}

func TestFixedDelay(t *testing.T) {
	assert.NoError(t, NoDelay.Delay(context.Background()))
	assert.NoError(t, FixedDelay(time.Millisecond).Delay(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, context.Canceled, FixedDelay(time.Hour).Delay(ctx))
	assert.Equal(t, context.Canceled, NoDelay.Delay(ctx))
}
