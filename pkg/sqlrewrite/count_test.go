package sqlrewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCountQuery(t *testing.T) {
	assert.True(t, IsCountQuery("SELECT COUNT(*) FROM Customers"))
	assert.True(t, IsCountQuery("  select count (Id) from T"))
	assert.False(t, IsCountQuery("SELECT Name, COUNT(*) FROM T GROUP BY Name"))
	assert.False(t, IsCountQuery("SELECT * FROM Counters"))
}

func TestDeriveRowQuery(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
		derived  bool
	}{
		{
			input:    "SELECT COUNT(*) FROM Customers WHERE Gender='F'",
			expected: "SELECT * FROM Customers WHERE Gender='F'",
			derived:  true,
		},
		{
			input:    "SELECT COUNT(Id) AS Cnt FROM T",
			expected: "SELECT * FROM T",
			derived:  true,
		},
		{
			input:    "select count(distinct CustomerId) [Total]\nfrom Payments\nwhere Amount > 100",
			expected: "SELECT * from Payments\nwhere Amount > 100",
			derived:  true,
		},
		{
			input:    "SELECT COUNT(ISNULL(Phone, Mobile)) AS Cnt FROM Customers",
			expected: "SELECT * FROM Customers",
			derived:  true,
		},
		{
			input:    "SELECT COUNT(*) AS Total, (SELECT MAX(Id) FROM Plots) AS Top FROM Customers",
			expected: "SELECT * FROM Customers",
			derived:  true,
		},
		{
			input:    "SELECT COUNT(*) FROM Payments GROUP BY CustomerId",
			expected: "SELECT COUNT(*) FROM Payments GROUP BY CustomerId",
			derived:  false,
		},
		{
			input:    "SELECT COUNT(*) FROM Customers WHERE Id IN (SELECT CustomerId FROM Payments GROUP BY CustomerId)",
			expected: "SELECT * FROM Customers WHERE Id IN (SELECT CustomerId FROM Payments GROUP BY CustomerId)",
			derived:  true,
		},
		{
			input:    "SELECT Name FROM Customers",
			expected: "SELECT Name FROM Customers",
			derived:  false,
		},
	}

	for _, tc := range testCases {
		derived, ok := DeriveRowQuery(tc.input)
		assert.Equal(t, tc.expected, derived, tc.input)
		assert.Equal(t, tc.derived, ok, tc.input)
	}
}

func TestTopLevelKeyword(t *testing.T) {
	assert.Equal(t, 9, topLevelKeyword("SELECT 1 FROM T", "FROM"))
	assert.Equal(t, -1, topLevelKeyword("SELECT 'FROM' AS f", "FROM"))
	assert.Equal(t, -1, topLevelKeyword("SELECT (SELECT 1 FROM T)", "FROM"))
	assert.Equal(t, -1, topLevelKeyword("SELECT FROMAGE", "FROM"))
	assert.Equal(t, 16, topLevelKeyword("SELECT a FROM T group   by a", "GROUP BY"))
}
