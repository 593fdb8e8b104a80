/*
2024 © Postgres.ai
*/

package msgproc

import (
	"fmt"
	"strings"
)

// Intent tokens the classifier answers with.
const (
	intentQuery    = "QUERY"
	intentGreeting = "GREETING"
)

const classifierPrompt = `You are an intent classifier for a property management database assistant.
Decide whether the user message needs data from the database or is just a conversation.

Answer with exactly one word: ` + intentQuery + ` or ` + intentGreeting + `.

Examples:
- "Hello" -> GREETING
- "Thanks, that helps!" -> GREETING
- "What can you do?" -> GREETING
- "How many customers do we have?" -> QUERY
- "Show the payments received last month" -> QUERY
- "Which plots are still available in block C?" -> QUERY
- "List dealers with more than 5 registrations" -> QUERY`

const conversationPrompt = `You are a friendly assistant of a property management back office.
You can answer questions about customers, inventory and plots, payments, transfers, waivers, refunds,
dealers and registrations by querying the database.
Reply briefly and naturally. If the user asks what you can do, suggest a few example questions.
Never invent data: facts about the business come only from database queries.`

const generatorPromptTemplate = `You are an expert Microsoft SQL Server (T-SQL) developer.
Write a single SQL query that answers the user's question using the database schema below.

%s

RULES:
1. Return ONLY the SQL query. No explanations, no comments, no markdown, no code fences.
2. Only SELECT statements are allowed. Never use INSERT, UPDATE, DELETE, DROP, ALTER, CREATE, TRUNCATE, EXEC or EXECUTE.
3. Use only the exact table and column names that exist in the schema. Never guess names.
4. Write exactly one statement. Do not use semicolons, comments or stored procedures.
5. Use TOP n to limit rows. Never use LIMIT or OFFSET ... FETCH without ORDER BY.
6. Use SQL Server date functions: GETDATE(), DATEADD(), DATEDIFF(), YEAR(), MONTH(), DAY(), DATEPART().
7. Never use EXTRACT(), NOW(), CURRENT_DATE or INTERVAL.
8. Some date columns are stored as text: %s.
   Always read them through TRY_CONVERT(DATETIME, column, 120), for example YEAR(TRY_CONVERT(DATETIME, PaymentDate, 120)).
9. For string comparisons use LIKE with %% wildcards when the user gives a partial name.
10. When the user asks "how many", use COUNT(*) and filter with WHERE instead of returning every row.
11. Join tables only through the key columns described in the schema.`

const auditorPromptTemplate = `You are a strict SQL Server query auditor.
Check the SQL query below against the database schema. The query was written to answer this question:
"%s"

%s

SQL QUERY:
%s

CHECK:
1. Every table exists in the schema.
2. Every column exists in the table it is taken from.
3. Only SQL Server functions are used: no EXTRACT(), NOW(), CURRENT_DATE, LIMIT or INTERVAL.
4. Text date columns are read through TRY_CONVERT(DATETIME, column, 120).
5. The query is a single SELECT statement.

Answer ONLY with JSON in this exact shape, without markdown:
{"isValid": true or false, "error": "what is wrong or an empty string", "suggestedFix": "the corrected SQL query or an empty string"}`

const interpreterPromptTemplate = `You are a helpful assistant explaining database query results to a non-technical user.
The user asked: "%s"

The following SQL query was executed:
%s

COLUMNS: %s
ROW COUNT: %d

RESULT DATA (JSON):
%s

INSTRUCTIONS:
- Answer the user's question in plain language based ONLY on the result data above.
- Mention concrete numbers and names from the data. Never invent values that are not in the data.
- If the query counted records, state the count clearly.
- Keep the answer short. Do not show SQL. Use a short list when there are several items.
%s`

const emptyResultInstructions = `
IMPORTANT: THE QUERY RETURNED ZERO ROWS.
- You MUST tell the user that no results were found for their question.
- Do NOT make up any data, names, numbers or examples.
- You may suggest rephrasing the question or checking the spelling of names.`

func generatorPrompt(schemaText string, stringDateColumns []string) string {
	return fmt.Sprintf(generatorPromptTemplate, schemaText, strings.Join(stringDateColumns, ", "))
}

func auditorPrompt(question, schemaText, sql string) string {
	return fmt.Sprintf(auditorPromptTemplate, question, schemaText, sql)
}

func interpreterPrompt(question, sql string, columns []string, rowCount int, resultJSON string) string {
	instructions := ""
	if rowCount == 0 {
		instructions = emptyResultInstructions
	}

	return fmt.Sprintf(interpreterPromptTemplate, question, sql, strings.Join(columns, ", "), rowCount, resultJSON, instructions)
}
