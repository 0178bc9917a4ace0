package mcp

import "github.com/mark3labs/mcp-go/mcp"

var analyzeToolDef = mcp.NewTool("string_analyze",
	mcp.WithDescription("Analyze a string and store the result. Whitespace is trimmed and collapsed before analysis; "+
		"a string that normalizes to an already stored value is rejected with ALREADY_EXISTS."),
	mcp.WithString("value",
		mcp.Required(),
		mcp.Description("Text to analyze"),
	),
)

var fetchToolDef = mcp.NewTool("string_fetch",
	mcp.WithDescription("Fetch the stored analysis of a string"),
	mcp.WithString("value",
		mcp.Required(),
		mcp.Description("Text to look up (normalized before lookup)"),
	),
)

var deleteToolDef = mcp.NewTool("string_delete",
	mcp.WithDescription("Permanently delete a stored string"),
	mcp.WithString("value",
		mcp.Required(),
		mcp.Description("Text to delete (normalized before lookup)"),
	),
)

var listToolDef = mcp.NewTool("string_list",
	mcp.WithDescription("List stored strings matching all given filters, newest first. No filters lists everything."),
	mcp.WithBoolean("is_palindrome",
		mcp.Description("Only palindromes (true) or only non-palindromes (false)"),
	),
	mcp.WithNumber("min_length",
		mcp.Description("Minimum length in characters, inclusive"),
	),
	mcp.WithNumber("max_length",
		mcp.Description("Maximum length in characters, inclusive"),
	),
	mcp.WithNumber("word_count",
		mcp.Description("Exact number of words"),
	),
	mcp.WithString("contains_character",
		mcp.Description("Single character that must occur (case-insensitive)"),
	),
)

var queryToolDef = mcp.NewTool("string_query",
	mcp.WithDescription("List stored strings using a natural-language filter, e.g. "+
		`"single word palindromes" or "strings longer than 10 characters containing the letter z"`),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural-language description of the strings to find"),
	),
)

var translateToolDef = mcp.NewTool("string_translate",
	mcp.WithDescription("Show the structured filters a natural-language query translates to, without querying"),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural-language filter description"),
	),
)
