package sqlrewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{
			input:    "SELECT * FROM Payments WHERE YEAR(CreatedOn) = 2024",
			expected: "SELECT * FROM Payments WHERE YEAR(TRY_CONVERT(DATETIME, CreatedOn, 120)) = 2024",
		},
		{
			input:    "SELECT * FROM Payments WHERE YEAR(TRY_CONVERT(DATETIME, CreatedOn, 120)) = 2024",
			expected: "SELECT * FROM Payments WHERE YEAR(TRY_CONVERT(DATETIME, CreatedOn, 120)) = 2024",
		},
		{
			input:    "SELECT * FROM Payments p WHERE month( p.PaymentDate ) = 3 AND DAY([DueDate]) = 1",
			expected: "SELECT * FROM Payments p WHERE MONTH(TRY_CONVERT(DATETIME, p.PaymentDate, 120)) = 3 AND DAY(TRY_CONVERT(DATETIME, [DueDate], 120)) = 1",
		},
		{
			input:    "SELECT CONVERT(date, ChequeDate) FROM Payments WHERE CONVERT(DATETIME, ModifiedOn) > GETDATE()",
			expected: "SELECT TRY_CONVERT(DATETIME, ChequeDate, 120) FROM Payments WHERE TRY_CONVERT(DATETIME, ModifiedOn, 120) > GETDATE()",
		},
		{
			input:    "SELECT YEAR(BirthDate), YEAR(CreatedOnUtc) FROM Customers",
			expected: "SELECT YEAR(BirthDate), YEAR(CreatedOnUtc) FROM Customers",
		},
		{
			input:    "SELECT name FROM Customers",
			expected: "SELECT name FROM Customers",
		},
		{
			input:    "not even ( SQL",
			expected: "not even ( SQL",
		},
	}

	normalizer := NewNormalizer(nil)

	for _, tc := range testCases {
		normalized := normalizer.Normalize(tc.input)
		assert.Equal(t, tc.expected, normalized)
		assert.Equal(t, normalized, normalizer.Normalize(normalized), "normalization must be idempotent")
	}
}

func TestNormalizeCustomColumns(t *testing.T) {
	normalizer := NewNormalizer([]string{"SoldOn", " "})

	assert.Equal(t, "SELECT YEAR(TRY_CONVERT(DATETIME, SoldOn, 120)), YEAR(CreatedOn) FROM Plots",
		normalizer.Normalize("SELECT YEAR(SoldOn), YEAR(CreatedOn) FROM Plots"))
}

func TestRewriteDialect(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{
			input:    "SELECT * FROM Payments WHERE EXTRACT(YEAR FROM PaymentDate) = 2024",
			expected: "SELECT * FROM Payments WHERE YEAR(PaymentDate) = 2024",
		},
		{
			input:    "SELECT extract(quarter from TRY_CONVERT(DATETIME, PaymentDate, 120)) FROM Payments",
			expected: "SELECT DATEPART(QUARTER, TRY_CONVERT(DATETIME, PaymentDate, 120)) FROM Payments",
		},
		{
			input:    "SELECT * FROM Payments WHERE Amount > 0 AND CreatedAt < CURRENT_DATE",
			expected: "SELECT * FROM Payments WHERE Amount > 0 AND CreatedAt < CAST(GETDATE() AS DATE)",
		},
		{
			input:    "SELECT NOW(), CURRENT_TIMESTAMP()",
			expected: "SELECT GETDATE(), GETDATE()",
		},
		{
			input:    "SELECT COUNT(*) FROM Customers",
			expected: "SELECT COUNT(*) FROM Customers",
		},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, RewriteDialect(tc.input))
	}
}

func TestHasPortableDateConstructs(t *testing.T) {
	assert.True(t, HasPortableDateConstructs("SELECT EXTRACT(MONTH FROM x) FROM T"))
	assert.True(t, HasPortableDateConstructs("SELECT * FROM T WHERE d = current_date"))
	assert.False(t, HasPortableDateConstructs("SELECT MONTH(x), CURRENT_TIMESTAMP FROM T"))
}

func TestDiff(t *testing.T) {
	assert.Contains(t, Diff("SELECT 1", "SELECT 2"), "SELECT ")
}
