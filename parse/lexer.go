package parse

import (
	"strconv"
	"strings"

	"github.com/prasrvenkat/hron/schedule"
)

type tokenKind int

const (
	tokEvery tokenKind = iota
	tokOn
	tokAt
	tokFrom
	tokTo
	tokIn
	tokOf
	tokThe
	tokLast
	tokExcept
	tokUntil
	tokStarting
	tokDuring
	tokYear
	tokDay
	tokWeekday
	tokWeekend
	tokWeek
	tokMonth
	tokDayName
	tokMonthName
	tokOrdinal
	tokUnit
	tokNumber
	tokOrdinalNumber
	tokTime
	tokISODate
	tokComma
	tokTimezone
	tokNearest
	tokNext
	tokPrevious
)

type token struct {
	kind tokenKind
	span schedule.Span

	// value fields, one set depending on kind
	weekday  schedule.Weekday
	month    schedule.Month
	ordinal  schedule.Ordinal
	unit     schedule.Unit
	number   int
	time     schedule.TimeOfDay
	date     string
	timezone string
}

// lexer splits an expression into tokens. Keywords are case-insensitive.
// After an "in" keyword the next word is captured verbatim as a timezone
// name, since IANA names contain slashes and mixed case.
type lexer struct {
	input   string
	pos     int
	afterIn bool
}

func tokenize(input string) ([]token, error) {
	l := &lexer{input: input}
	var tokens []token
	for {
		l.skipSpace()
		if l.pos >= len(l.input) {
			return tokens, nil
		}

		if l.afterIn {
			l.afterIn = false
			tok, err := l.lexTimezone()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			continue
		}

		start := l.pos
		switch ch := l.input[l.pos]; {
		case ch == ',':
			l.pos++
			tokens = append(tokens, token{kind: tokComma, span: schedule.Span{Start: start, End: l.pos}})
		case isDigit(ch):
			tok, err := l.lexNumeric()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		case isAlpha(ch):
			tok, err := l.lexWord()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
		default:
			return nil, schedule.NewLexError("unexpected character '"+string(ch)+"'",
				schedule.Span{Start: start, End: start + 1}, l.input)
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *lexer) lexTimezone() (token, error) {
	l.skipSpace()
	start := l.pos
	for l.pos < len(l.input) && !isSpace(l.input[l.pos]) {
		l.pos++
	}
	tz := l.input[start:l.pos]
	if tz == "" {
		return token{}, schedule.NewLexError("expected timezone after 'in'",
			schedule.Span{Start: start, End: start + 1}, l.input)
	}
	return token{kind: tokTimezone, span: schedule.Span{Start: start, End: l.pos}, timezone: tz}, nil
}

// lexNumeric reads a digit run and decides among an ISO date (YYYY-MM-DD),
// a wall time (HH:MM or H:MM), an ordinal number (1st, 22nd), or a plain
// number.
func (l *lexer) lexNumeric() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	digits := l.input[start:l.pos]

	if len(digits) == 4 && l.pos < len(l.input) && l.input[l.pos] == '-' {
		rest := l.input[start:]
		if len(rest) >= 10 &&
			rest[4] == '-' && isDigit(rest[5]) && isDigit(rest[6]) &&
			rest[7] == '-' && isDigit(rest[8]) && isDigit(rest[9]) {
			l.pos = start + 10
			return token{kind: tokISODate, span: schedule.Span{Start: start, End: l.pos}, date: l.input[start:l.pos]}, nil
		}
	}

	if (len(digits) == 1 || len(digits) == 2) && l.pos < len(l.input) && l.input[l.pos] == ':' {
		l.pos++
		minStart := l.pos
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
		minDigits := l.input[minStart:l.pos]
		if len(minDigits) == 2 {
			span := schedule.Span{Start: start, End: l.pos}
			hour, err := strconv.Atoi(digits)
			if err != nil {
				return token{}, schedule.NewLexError("invalid time hour", span, l.input)
			}
			minute, err := strconv.Atoi(minDigits)
			if err != nil {
				return token{}, schedule.NewLexError("invalid time minute", span, l.input)
			}
			if hour > 23 || minute > 59 {
				return token{}, schedule.NewLexError("invalid time", span, l.input)
			}
			return token{kind: tokTime, span: span, time: schedule.TimeOfDay{Hour: hour, Minute: minute}}, nil
		}
	}

	num, err := strconv.Atoi(digits)
	if err != nil {
		return token{}, schedule.NewLexError("invalid number", schedule.Span{Start: start, End: l.pos}, l.input)
	}

	if l.pos+1 < len(l.input) {
		switch strings.ToLower(l.input[l.pos : l.pos+2]) {
		case "st", "nd", "rd", "th":
			l.pos += 2
			return token{kind: tokOrdinalNumber, span: schedule.Span{Start: start, End: l.pos}, number: num}, nil
		}
	}

	return token{kind: tokNumber, span: schedule.Span{Start: start, End: l.pos}, number: num}, nil
}

func (l *lexer) lexWord() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && (isAlnum(l.input[l.pos]) || l.input[l.pos] == '_') {
		l.pos++
	}
	word := strings.ToLower(l.input[start:l.pos])
	span := schedule.Span{Start: start, End: l.pos}

	tok, ok := keywords[word]
	if !ok {
		return token{}, schedule.NewLexError("unknown keyword '"+word+"'", span, l.input)
	}
	tok.span = span

	if tok.kind == tokIn {
		l.afterIn = true
	}
	return tok, nil
}

var keywords = map[string]token{
	"every":    {kind: tokEvery},
	"on":       {kind: tokOn},
	"at":       {kind: tokAt},
	"from":     {kind: tokFrom},
	"to":       {kind: tokTo},
	"in":       {kind: tokIn},
	"of":       {kind: tokOf},
	"the":      {kind: tokThe},
	"last":     {kind: tokLast},
	"except":   {kind: tokExcept},
	"until":    {kind: tokUntil},
	"starting": {kind: tokStarting},
	"during":   {kind: tokDuring},
	"year":     {kind: tokYear},
	"years":    {kind: tokYear},
	"day":      {kind: tokDay},
	"days":     {kind: tokDay},
	"weekday":  {kind: tokWeekday},
	"weekdays": {kind: tokWeekday},
	"weekend":  {kind: tokWeekend},
	"weekends": {kind: tokWeekend},
	"week":     {kind: tokWeek},
	"weeks":    {kind: tokWeek},
	"month":    {kind: tokMonth},
	"months":   {kind: tokMonth},

	"monday":    {kind: tokDayName, weekday: schedule.Monday},
	"mon":       {kind: tokDayName, weekday: schedule.Monday},
	"tuesday":   {kind: tokDayName, weekday: schedule.Tuesday},
	"tue":       {kind: tokDayName, weekday: schedule.Tuesday},
	"wednesday": {kind: tokDayName, weekday: schedule.Wednesday},
	"wed":       {kind: tokDayName, weekday: schedule.Wednesday},
	"thursday":  {kind: tokDayName, weekday: schedule.Thursday},
	"thu":       {kind: tokDayName, weekday: schedule.Thursday},
	"friday":    {kind: tokDayName, weekday: schedule.Friday},
	"fri":       {kind: tokDayName, weekday: schedule.Friday},
	"saturday":  {kind: tokDayName, weekday: schedule.Saturday},
	"sat":       {kind: tokDayName, weekday: schedule.Saturday},
	"sunday":    {kind: tokDayName, weekday: schedule.Sunday},
	"sun":       {kind: tokDayName, weekday: schedule.Sunday},

	"january":   {kind: tokMonthName, month: schedule.January},
	"jan":       {kind: tokMonthName, month: schedule.January},
	"february":  {kind: tokMonthName, month: schedule.February},
	"feb":       {kind: tokMonthName, month: schedule.February},
	"march":     {kind: tokMonthName, month: schedule.March},
	"mar":       {kind: tokMonthName, month: schedule.March},
	"april":     {kind: tokMonthName, month: schedule.April},
	"apr":       {kind: tokMonthName, month: schedule.April},
	"may":       {kind: tokMonthName, month: schedule.May},
	"june":      {kind: tokMonthName, month: schedule.June},
	"jun":       {kind: tokMonthName, month: schedule.June},
	"july":      {kind: tokMonthName, month: schedule.July},
	"jul":       {kind: tokMonthName, month: schedule.July},
	"august":    {kind: tokMonthName, month: schedule.August},
	"aug":       {kind: tokMonthName, month: schedule.August},
	"september": {kind: tokMonthName, month: schedule.September},
	"sep":       {kind: tokMonthName, month: schedule.September},
	"october":   {kind: tokMonthName, month: schedule.October},
	"oct":       {kind: tokMonthName, month: schedule.October},
	"november":  {kind: tokMonthName, month: schedule.November},
	"nov":       {kind: tokMonthName, month: schedule.November},
	"december":  {kind: tokMonthName, month: schedule.December},
	"dec":       {kind: tokMonthName, month: schedule.December},

	"first":  {kind: tokOrdinal, ordinal: schedule.First},
	"second": {kind: tokOrdinal, ordinal: schedule.Second},
	"third":  {kind: tokOrdinal, ordinal: schedule.Third},
	"fourth": {kind: tokOrdinal, ordinal: schedule.Fourth},
	"fifth":  {kind: tokOrdinal, ordinal: schedule.Fifth},

	"nearest":  {kind: tokNearest},
	"next":     {kind: tokNext},
	"previous": {kind: tokPrevious},

	"min":     {kind: tokUnit, unit: schedule.UnitMinutes},
	"mins":    {kind: tokUnit, unit: schedule.UnitMinutes},
	"minute":  {kind: tokUnit, unit: schedule.UnitMinutes},
	"minutes": {kind: tokUnit, unit: schedule.UnitMinutes},
	"hour":    {kind: tokUnit, unit: schedule.UnitHours},
	"hours":   {kind: tokUnit, unit: schedule.UnitHours},
	"hr":      {kind: tokUnit, unit: schedule.UnitHours},
	"hrs":     {kind: tokUnit, unit: schedule.UnitHours},
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' }
func isAlnum(b byte) bool { return isAlpha(b) || isDigit(b) }
func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }
