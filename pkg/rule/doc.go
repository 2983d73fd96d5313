/*
Package rule parses Pacemaker location rule strings and compares them
against the rule elements stored in the CIB.

Grammar:

	rule  := expr ((and|or) expr)*
	expr  := date (gt|lt) VALUE
	       | date in_range VALUE to duration FIELDS
	       | date in_range VALUE to VALUE
	       | date-spec FIELDS
	       | (defined|not_defined) ATTR
	       | ATTR (lt|gt|lte|gte|eq|ne) [string|integer|number|version] VALUE

FIELDS is a space separated list of hours, monthdays, weekdays, yeardays,
months, weeks, years, weekyears and moon assignments.

A rule carries a single boolean operator. When a string mixes "and" and
"or" the first operator found is used for the whole rule. Anything the
grammar does not recognise is a parse error, so a typo never silently
turns into a rule that can't match.

Rule.Element renders the XML pcs would store, and Rule.Matches accepts
that rendering: Parse(s).Matches(Parse(s).Element(id, score)) is always
true.
*/
package rule
